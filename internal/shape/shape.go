// Package shape turns provider payloads into the public response schema.
// Every function here is pure apart from the injected clock.
package shape

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/endoverdosing/vyla-api/internal/images"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

const (
	// DefaultLinkPrefix is the mount point of the public API.
	DefaultLinkPrefix = "/api"

	untitled   = "Untitled"
	noOverview = "No overview available."

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Shaper builds responses. It is safe for concurrent use.
type Shaper struct {
	images     *images.Builder
	linkPrefix string
	now        func() time.Time
}

// Option customises a Shaper.
type Option func(*Shaper)

// WithClock replaces time.Now for response timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Shaper) { s.now = now }
}

// WithLinkPrefix sets the prefix of every navigation link (default "/api").
func WithLinkPrefix(prefix string) Option {
	return func(s *Shaper) { s.linkPrefix = prefix }
}

// New returns a Shaper rendering image URLs through b.
func New(b *images.Builder, opts ...Option) *Shaper {
	s := &Shaper{
		images:     b,
		linkPrefix: DefaultLinkPrefix,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timestamp renders the current time the way every response carries it.
func (s *Shaper) Timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

// Media is a provider row after the shared fallback rules were applied.
type Media struct {
	ID          int64
	Type        tmdb.MediaType
	Title       string
	Overview    *string
	Poster      string
	Backdrop    string
	Logo        string
	ReleaseDate *string
	Year        *string
	Rating      *float64
	GenreIDs    []int
	Popularity  float64
	Adult       bool
}

// Normalize applies the fallback chains shared by every shaper. fallback is
// the kind implied by the endpoint and may be empty.
func Normalize(raw tmdb.Item, fallback tmdb.MediaType) Media {
	m := Media{
		ID:          raw.ID,
		Type:        resolveType(raw, fallback),
		Title:       Title(raw.Title, raw.Name),
		Overview:    optional(raw.Overview),
		Poster:      raw.PosterPath,
		Backdrop:    raw.BackdropPath,
		Logo:        raw.LogoPath,
		ReleaseDate: optional(firstNonEmpty(raw.ReleaseDate, raw.FirstAirDate)),
		Year:        Year(raw.ReleaseDate, raw.FirstAirDate),
		Rating:      Rating(raw.VoteAverage),
		GenreIDs:    raw.GenreIDs,
		Popularity:  raw.Popularity,
		Adult:       raw.Adult,
	}
	if m.GenreIDs == nil {
		m.GenreIDs = []int{}
	}
	return m
}

func resolveType(raw tmdb.Item, fallback tmdb.MediaType) tmdb.MediaType {
	switch {
	case raw.MediaType == tmdb.MediaMovie || raw.MediaType == tmdb.MediaTV:
		return raw.MediaType
	case fallback == tmdb.MediaMovie || fallback == tmdb.MediaTV:
		return fallback
	case raw.Title != "":
		return tmdb.MediaMovie
	case raw.Name != "" || raw.FirstAirDate != "":
		return tmdb.MediaTV
	default:
		return tmdb.MediaMovie
	}
}

// Title resolves a display title: movie title, then tv name, then "Untitled".
func Title(title, name string) string {
	return firstNonEmpty(title, name, untitled)
}

// Year returns the first four characters of the first usable date.
func Year(dates ...string) *string {
	for _, d := range dates {
		if len(d) >= 4 {
			y := d[:4]
			return &y
		}
	}
	return nil
}

// Rating rounds to one decimal place; zero means no rating.
func Rating(v float64) *float64 {
	if v == 0 || math.IsNaN(v) {
		return nil
	}
	r := math.Round(v*10) / 10
	return &r
}

// Pagination is the paging block of every list response.
type Pagination struct {
	Page         int  `json:"page"`
	TotalPages   int  `json:"total_pages"`
	TotalResults int  `json:"total_results"`
	HasNext      bool `json:"has_next"`
	HasPrev      bool `json:"has_prev"`
}

// Paginate derives the navigation flags from page and totalPages.
func Paginate(page, totalPages, totalResults int) Pagination {
	return Pagination{
		Page:         page,
		TotalPages:   totalPages,
		TotalResults: totalResults,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}
}

// Summary is the card shape shared by lists, search, related and home rows.
type Summary struct {
	ID          int64          `json:"id"`
	Type        tmdb.MediaType `json:"type"`
	Title       string         `json:"title"`
	Overview    *string        `json:"overview"`
	Poster      *string        `json:"poster"`
	Backdrop    *string        `json:"backdrop"`
	Rating      *float64       `json:"rating"`
	Year        *string        `json:"year"`
	ReleaseDate *string        `json:"release_date"`
	GenreIDs    []int          `json:"genre_ids"`
	Popularity  float64        `json:"popularity"`
	DetailsLink string         `json:"details_link"`
}

func (s *Shaper) summary(m Media, posterSize, backdropSize string) Summary {
	return Summary{
		ID:          m.ID,
		Type:        m.Type,
		Title:       m.Title,
		Overview:    m.Overview,
		Poster:      s.images.URL(images.Poster, m.Poster, posterSize),
		Backdrop:    s.images.URL(images.Backdrop, m.Backdrop, backdropSize),
		Rating:      m.Rating,
		Year:        m.Year,
		ReleaseDate: m.ReleaseDate,
		GenreIDs:    m.GenreIDs,
		Popularity:  m.Popularity,
		DetailsLink: s.DetailsLink(m.Type, m.ID),
	}
}

// DetailsLink is the navigation link of a title.
func (s *Shaper) DetailsLink(kind tmdb.MediaType, id int64) string {
	return s.linkPrefix + "/details/" + string(kind) + "/" + strconv.FormatInt(id, 10)
}

// CastLink is the navigation link of a person.
func (s *Shaper) CastLink(id int64) string {
	return s.linkPrefix + "/cast/" + strconv.FormatInt(id, 10)
}

// PlayerLink is the link to the player sources of a movie or show.
func (s *Shaper) PlayerLink(kind tmdb.MediaType, id int64) string {
	return s.linkPrefix + "/player/" + string(kind) + "/" + strconv.FormatInt(id, 10)
}

// EpisodePlayerLink is the player link of a single episode.
func (s *Shaper) EpisodePlayerLink(tvID int64, season, episode int) string {
	return fmt.Sprintf("%s?s=%d&e=%d", s.PlayerLink(tmdb.MediaTV, tvID), season, episode)
}

// EpisodeLink is the navigation link of a single episode.
func (s *Shaper) EpisodeLink(tvID int64, season, episode int) string {
	return fmt.Sprintf("%s/episodes/%d/%d/%d", s.linkPrefix, tvID, season, episode)
}

// EpisodeIdentifier formats season and episode as S01E02.
func EpisodeIdentifier(season, episode int) string {
	return fmt.Sprintf("S%02dE%02d", season, episode)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
