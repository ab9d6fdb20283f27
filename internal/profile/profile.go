// Package profile renders per-person markdown pages with YAML front matter.
package profile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/headshot/internal/roster"
	"github.com/kozaktomas/headshot/internal/slug"
)

const (
	noBio         = "Biography coming soon."
	announcements = "Campaign announcements will be posted here."
	noSupporters  = "Information coming soon."
)

// FrontMatter is the metadata block at the top of a profile page.
type FrontMatter struct {
	Name      string `yaml:"name"`
	Byline    string `yaml:"byline"`
	Photo     string `yaml:"photo"`
	Website   string `yaml:"website"`
	Withdrawn bool   `yaml:"withdrawn"`
	Order     int    `yaml:"order"`
	Social    Social `yaml:"social"`
}

type Social struct {
	X         string `yaml:"x"`
	Facebook  string `yaml:"facebook"`
	Instagram string `yaml:"instagram"`
	YouTube   string `yaml:"youtube"`
	LinkedIn  string `yaml:"linkedin"`
	TikTok    string `yaml:"tiktok"`
	Email     string `yaml:"email"`
}

// PhotoPath is the site path of the thumbnail for identity.
func PhotoPath(identity string) string {
	return "/photos/" + slug.Make(identity) + ".jpg"
}

// Render builds the markdown page for row.
func Render(row roster.Row, order int, withdrawn bool) ([]byte, error) {
	fm := FrontMatter{
		Name:      row.Name,
		Byline:    row.Byline,
		Photo:     PhotoPath(row.Name),
		Website:   row.Website,
		Withdrawn: withdrawn,
		Order:     order,
		Social: Social{
			X:         row.X,
			Facebook:  row.Facebook,
			Instagram: row.Instagram,
			YouTube:   row.YouTube,
			TikTok:    row.TikTok,
		},
	}

	meta, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n")

	section(&buf, "Bio", orDefault(cleanBio(row.Bio), noBio))
	section(&buf, "Announcements", announcements)
	section(&buf, "Staff & Supporters", orDefault(strings.TrimSpace(row.Supporters), noSupporters))

	return buf.Bytes(), nil
}

func section(buf *bytes.Buffer, title, body string) {
	fmt.Fprintf(buf, "\n## %s\n\n%s\n", title, body)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// cleanBio turns "•" bullets into markdown list items.
func cleanBio(bio string) string {
	bio = strings.TrimSpace(bio)
	if bio == "" {
		return ""
	}
	lines := strings.Split(bio, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "•"); ok {
			line = "-" + rest
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// Generated is one written profile.
type Generated struct {
	Name      string
	Path      string
	Withdrawn bool
}

// Generate writes <dir>/<slug>.md for every row with a name. Order is the
// 1-based position in rows, so unnamed rows still use up a number.
// isWithdrawn may be nil.
func Generate(dir string, rows []roster.Row, isWithdrawn func(name string) bool) ([]Generated, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating profiles directory: %w", err)
	}

	var out []Generated
	for i, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}
		row.Name = name

		withdrawn := isWithdrawn != nil && isWithdrawn(name)
		content, err := Render(row, i+1, withdrawn)
		if err != nil {
			return out, fmt.Errorf("rendering %s: %w", name, err)
		}

		path := filepath.Join(dir, slug.Make(name)+".md")
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return out, fmt.Errorf("writing %s: %w", path, err)
		}
		out = append(out, Generated{Name: name, Path: path, Withdrawn: withdrawn})
	}
	return out, nil
}
