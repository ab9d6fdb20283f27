// Package roster reads the people spreadsheet exported as CSV.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kozaktomas/headshot/internal/pipeline"
)

// Column headers, compared case-insensitively.
const (
	ColName       = "name"
	ColPhoto      = "photo"
	ColByline     = "by-line"
	ColWebsite    = "website"
	ColBio        = "bio"
	ColSupporters = "supporters & staff"
	ColX          = "x"
	ColFacebook   = "fb"
	ColTikTok     = "tiktok"
	ColInstagram  = "insta"
	ColYouTube    = "youtube"
)

// ErrNoNameColumn is returned when the header lacks a Name column.
var ErrNoNameColumn = errors.New("roster has no Name column")

// Row is one person. All values are trimmed; missing columns are empty.
type Row struct {
	Name       string
	Photo      string
	Byline     string
	Website    string
	Bio        string
	Supporters string
	X          string
	Facebook   string
	TikTok     string
	Instagram  string
	YouTube    string
}

// Record is the row as pipeline input.
func (r Row) Record() pipeline.Record {
	return pipeline.Record{Identity: r.Name, PhotoURL: r.Photo}
}

// Records converts rows, keeping their order.
func Records(rows []Row) []pipeline.Record {
	out := make([]pipeline.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}

// Load reads the roster file at path.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	rows, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading roster %s: %w", path, err)
	}
	return rows, nil
}

// Read parses CSV with a header row. Row order follows the source, and rows
// with an empty name are kept so positions stay aligned with the sheet.
func Read(r io.Reader) ([]Row, error) {
	// Spreadsheet exports often start with a UTF-8 byte order mark.
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("roster is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}
	if _, ok := columns[ColName]; !ok {
		return nil, ErrNoNameColumn
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(rows)+1, err)
		}

		get := func(col string) string {
			i, ok := columns[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		rows = append(rows, Row{
			Name:       get(ColName),
			Photo:      get(ColPhoto),
			Byline:     get(ColByline),
			Website:    get(ColWebsite),
			Bio:        get(ColBio),
			Supporters: get(ColSupporters),
			X:          get(ColX),
			Facebook:   get(ColFacebook),
			TikTok:     get(ColTikTok),
			Instagram:  get(ColInstagram),
			YouTube:    get(ColYouTube),
		})
	}
	return rows, nil
}
