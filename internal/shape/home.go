package shape

import (
	"slices"

	"github.com/endoverdosing/vyla-api/internal/images"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
	"github.com/endoverdosing/vyla-api/internal/version"
)

// Layouts of home sections.
const (
	LayoutCarousel = "carousel"
	LayoutRow      = "row"
)

// Category describes one home section. Kind is the fallback media type of
// its rows and may be empty for mixed feeds.
type Category struct {
	Title  string
	Layout string
	Kind   tmdb.MediaType
}

// Feed pairs a category with its upstream page. A nil Page is a failed fetch.
type Feed struct {
	Category
	Page *tmdb.Page
}

// Section is one row of the home feed.
type Section struct {
	Title      string    `json:"title"`
	LayoutType string    `json:"layout_type"`
	ItemCount  int       `json:"item_count"`
	Items      []Summary `json:"items"`
}

// HomeMeta describes the home page for clients rendering it.
type HomeMeta struct {
	Timestamp   string  `json:"timestamp"`
	Version     string  `json:"version"`
	APIVersion  string  `json:"api_version"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Canonical   string  `json:"canonical"`
	Type        string  `json:"type"`
	Image       *string `json:"image"`
}

// HomeStats counts what the feed contains.
type HomeStats struct {
	TotalSections int `json:"total_sections"`
	TotalItems    int `json:"total_items"`
}

// Home is the curated feed response.
type Home struct {
	Success bool      `json:"success"`
	Data    []Section `json:"data"`
	Meta    HomeMeta  `json:"meta"`
	Stats   HomeStats `json:"stats"`
}

// Home builds the feed in category order. Rows without artwork and empty
// sections are dropped; rows are sorted by popularity, highest first.
func (s *Shaper) Home(feeds []Feed) Home {
	out := Home{
		Success: true,
		Data:    []Section{},
		Meta: HomeMeta{
			Timestamp:   s.Timestamp(),
			Version:     version.Version,
			APIVersion:  version.APIVersion,
			Title:       "Vyla - Home",
			Description: "Discover trending movies and TV shows",
			Canonical:   "/",
			Type:        "website",
		},
	}

	for _, f := range feeds {
		if f.Page == nil {
			continue
		}
		if out.Meta.Image == nil && len(f.Page.Results) > 0 {
			out.Meta.Image = s.images.URL(images.Backdrop, f.Page.Results[0].BackdropPath, images.Original)
		}

		items := s.homeItems(f.Page.Results, f.Kind)
		if len(items) == 0 {
			continue
		}
		layout := f.Layout
		if layout == "" {
			layout = LayoutRow
		}
		out.Data = append(out.Data, Section{
			Title:      f.Title,
			LayoutType: layout,
			ItemCount:  len(items),
			Items:      items,
		})
		out.Stats.TotalItems += len(items)
	}
	out.Stats.TotalSections = len(out.Data)
	return out
}

func (s *Shaper) homeItems(results []tmdb.Item, kind tmdb.MediaType) []Summary {
	items := make([]Summary, 0, len(results))
	for _, raw := range results {
		if raw.PosterPath == "" && raw.BackdropPath == "" {
			continue
		}
		items = append(items, s.summary(Normalize(raw, kind), "w342", "w780"))
	}
	slices.SortStableFunc(items, func(a, b Summary) int {
		switch {
		case a.Popularity > b.Popularity:
			return -1
		case a.Popularity < b.Popularity:
			return 1
		default:
			return 0
		}
	})
	return items
}
