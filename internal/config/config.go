package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/headshot/internal/constants"
)

type Config struct {
	Input    InputConfig
	Output   OutputConfig
	Fetch    FetchConfig
	Detector DetectorConfig
	Web      WebConfig
}

type InputConfig struct {
	Path      string   // roster CSV path
	Withdrawn []string // names marked as withdrawn in generated profiles
}

type OutputConfig struct {
	PhotosDir    string // defaults to public/photos
	ProfilesDir  string // defaults to content/candidates
	MaxDimension int    // defaults to 800
	JPEGQuality  int    // defaults to 90
}

type FetchConfig struct {
	UserAgent   string
	Timeout     time.Duration
	InsecureTLS bool  // skip certificate and hostname verification for photo hosts
	MaxBytes    int64 // upper bound on a downloaded body
}

type DetectorConfig struct {
	CascadePath string // overrides the bundled pigo facefinder cascade when set
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // CORS origins besides localhost
	// AllowPrivateTargets lets /crop fetch loopback, private and link-local
	// hosts.
	AllowPrivateTargets bool
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean (1, true, yes, ...).
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

// envDuration reads an environment variable as a positive time.Duration ("30s", "1m").
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	return &Config{
		Input: InputConfig{
			Path:      os.Getenv("HEADSHOT_INPUT"),
			Withdrawn: envList("HEADSHOT_WITHDRAWN"),
		},
		Output: OutputConfig{
			PhotosDir:    envString("HEADSHOT_OUTPUT_DIR", constants.DefaultPhotosDir),
			ProfilesDir:  envString("HEADSHOT_PROFILES_DIR", constants.DefaultProfilesDir),
			MaxDimension: envInt("HEADSHOT_MAX_DIMENSION", constants.MaxDimension),
			JPEGQuality:  envInt("HEADSHOT_JPEG_QUALITY", constants.JPEGQuality),
		},
		Fetch: FetchConfig{
			UserAgent:   envString("HEADSHOT_USER_AGENT", constants.BrowserUserAgent),
			Timeout:     envDuration("HEADSHOT_FETCH_TIMEOUT", constants.FetchTimeout),
			InsecureTLS: envBool("HEADSHOT_INSECURE_TLS", true),
			MaxBytes:    int64(envInt("HEADSHOT_FETCH_MAX_BYTES", constants.MaxDownloadBytes)),
		},
		Detector: DetectorConfig{
			CascadePath: os.Getenv("HEADSHOT_CASCADE"),
		},
		Web: WebConfig{
			Host:                envString("WEB_HOST", "127.0.0.1"),
			Port:                envInt("WEB_PORT", 8080),
			AllowedOrigins:      envList("WEB_ALLOWED_ORIGINS"),
			AllowPrivateTargets: envBool("WEB_ALLOW_PRIVATE_TARGETS", false),
		},
	}
}

// IsWithdrawn reports whether name is in the withdrawn list. Comparison ignores
// case and surrounding whitespace.
func (c *InputConfig) IsWithdrawn(name string) bool {
	name = strings.TrimSpace(name)
	for _, w := range c.Withdrawn {
		if strings.EqualFold(w, name) {
			return true
		}
	}
	return false
}
