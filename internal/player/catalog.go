// Package player generates embeddable stream URLs from a static source table.
package player

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/endoverdosing/vyla-api/internal/tmdb"
	"github.com/endoverdosing/vyla-api/internal/validate"
)

//go:embed sources.yaml
var defaultSources []byte

const (
	placeholderID      = "{id}"
	placeholderSeason  = "{season}"
	placeholderEpisode = "{episode}"
)

var placeholderPattern = regexp.MustCompile(`\{[^{}]*\}`)

// URLs holds the per-kind stream URL templates of a source.
type URLs struct {
	Movie string `yaml:"movie" json:"movie"`
	TV    string `yaml:"tv" json:"tv"`
}

// Source is one configured player provider.
type Source struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	French         bool   `yaml:"french" json:"french"`
	NeedsSandbox   bool   `yaml:"needs_sandbox" json:"needs_sandbox"`
	SupportsEvents bool   `yaml:"supports_events" json:"supports_events"`
	EventOrigin    string `yaml:"event_origin" json:"event_origin,omitempty"`
	StartTimeParam string `yaml:"start_time_param" json:"start_time_param,omitempty"`
	TimeFormat     string `yaml:"time_format" json:"time_format,omitempty"`
	URLs           URLs   `yaml:"urls" json:"urls"`
}

type sourceFile struct {
	Sources []Source `yaml:"sources"`
}

// Entry is a generated source ready to embed.
type Entry struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	StreamURL      string  `json:"stream_url"`
	IsFrench       bool    `json:"is_french"`
	NeedsSandbox   bool    `json:"needs_sandbox"`
	StartTimeParam *string `json:"start_time_param"`
	TimeFormat     *string `json:"time_format"`
	SupportsEvents bool    `json:"supports_events"`
	EventOrigin    *string `json:"event_origin"`
}

// Catalog is an immutable, validated list of sources in display order.
type Catalog struct {
	sources []Source
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultSources)
}

// Load reads a catalog from path on fsys. An empty path yields the built-in table.
func Load(fsys afero.Fs, path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read player sources: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML source table. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f sourceFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("player sources: empty document")
		}
		return nil, fmt.Errorf("player sources: %w", err)
	}
	return NewCatalog(f.Sources)
}

// NewCatalog validates sources and returns a catalog over a copy of them.
// Every template problem is reported, not just the first one.
func NewCatalog(sources []Source) (*Catalog, error) {
	v := validate.New()
	if len(sources) == 0 {
		v.AddError("sources", "at least one source is required", nil)
	}

	seen := make(map[string]struct{}, len(sources))
	for i, s := range sources {
		field := fmt.Sprintf("sources[%d]", i)
		if s.ID != "" {
			field = "sources." + s.ID
		}
		v.NotEmpty(field+".id", s.ID)
		v.NotEmpty(field+".name", s.Name)
		if _, dup := seen[s.ID]; dup && s.ID != "" {
			v.AddError(field+".id", "duplicate source id", s.ID)
		}
		seen[s.ID] = struct{}{}

		checkTemplate(v, field+".urls.movie", s.URLs.Movie, placeholderID)
		checkTemplate(v, field+".urls.tv", s.URLs.TV, placeholderID, placeholderSeason, placeholderEpisode)
		if s.EventOrigin != "" {
			v.URL(field+".event_origin", s.EventOrigin, []string{"https"})
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return &Catalog{sources: slices.Clone(sources)}, nil
}

func checkTemplate(v *validate.Validator, field, tmpl string, required ...string) {
	if strings.TrimSpace(tmpl) == "" {
		v.AddError(field, "template cannot be empty", tmpl)
		return
	}
	found := placeholderPattern.FindAllString(tmpl, -1)
	for _, token := range found {
		if !slices.Contains(required, token) {
			v.AddError(field, fmt.Sprintf("unknown placeholder %s", token), tmpl)
		}
	}
	for _, token := range required {
		if !slices.Contains(found, token) {
			v.AddError(field, fmt.Sprintf("missing placeholder %s", token), tmpl)
		}
	}
	// Placeholders are stripped before the URL check so the host is parseable.
	v.URL(field, placeholderPattern.ReplaceAllString(tmpl, "0"), []string{"https", "http"})
}

// Len returns the number of sources.
func (c *Catalog) Len() int { return len(c.sources) }

// Sources returns a copy of the configured sources.
func (c *Catalog) Sources() []Source { return slices.Clone(c.sources) }

// Generate renders one entry per source in configuration order. For tv, zero
// season or episode values are filled with 1.
func (c *Catalog) Generate(kind tmdb.MediaType, id int64, season, episode int) []Entry {
	var r *strings.Replacer
	if kind == tmdb.MediaTV {
		if season <= 0 {
			season = 1
		}
		if episode <= 0 {
			episode = 1
		}
		r = strings.NewReplacer(
			placeholderID, strconv.FormatInt(id, 10),
			placeholderSeason, strconv.Itoa(season),
			placeholderEpisode, strconv.Itoa(episode),
		)
	} else {
		r = strings.NewReplacer(placeholderID, strconv.FormatInt(id, 10))
	}

	out := make([]Entry, 0, len(c.sources))
	for _, s := range c.sources {
		tmpl := s.URLs.Movie
		if kind == tmdb.MediaTV {
			tmpl = s.URLs.TV
		}
		out = append(out, Entry{
			ID:             s.ID,
			Name:           s.Name,
			StreamURL:      r.Replace(tmpl),
			IsFrench:       s.French,
			NeedsSandbox:   s.NeedsSandbox,
			StartTimeParam: optional(s.StartTimeParam),
			TimeFormat:     optional(s.TimeFormat),
			SupportsEvents: s.SupportsEvents,
			EventOrigin:    optional(s.EventOrigin),
		})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
