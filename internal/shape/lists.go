package shape

import (
	"github.com/endoverdosing/vyla-api/internal/images"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

// SearchMeta echoes the query with its paging.
type SearchMeta struct {
	Query string `json:"query"`
	Pagination
	BackPath string `json:"back_path"`
}

// Search is the multi search response.
type Search struct {
	Success bool       `json:"success"`
	Meta    SearchMeta `json:"meta"`
	Results []Summary  `json:"results"`
}

// Search keeps movie and tv rows that have a poster. page is the requested
// page number.
func (s *Shaper) Search(query string, page int, res *tmdb.Page) Search {
	out := Search{
		Success: true,
		Meta: SearchMeta{
			Query:      query,
			Pagination: Paginate(page, res.TotalPages, res.TotalResults),
			BackPath:   s.linkPrefix + "/home",
		},
		Results: make([]Summary, 0, len(res.Results)),
	}
	for _, raw := range res.Results {
		if raw.MediaType == tmdb.MediaPerson || raw.PosterPath == "" {
			continue
		}
		out.Results = append(out.Results, s.summary(Normalize(raw, ""), "w500", "w780"))
	}
	return out
}

// List is the discovery passthrough response.
type List struct {
	Success bool `json:"success"`
	Pagination
	Results []Summary `json:"results"`
}

// List shapes an arbitrary paginated provider list.
func (s *Shaper) List(res *tmdb.Page) List {
	page := res.Page
	if page < 1 {
		page = 1
	}
	out := List{
		Success:    true,
		Pagination: Paginate(page, res.TotalPages, res.TotalResults),
		Results:    make([]Summary, 0, len(res.Results)),
	}
	for _, raw := range res.Results {
		if raw.MediaType == tmdb.MediaPerson {
			continue
		}
		out.Results = append(out.Results, s.summary(Normalize(raw, ""), "w500", "w780"))
	}
	return out
}

// GenreListMeta counts the genres.
type GenreListMeta struct {
	Timestamp   string `json:"timestamp"`
	TotalGenres int    `json:"total_genres"`
}

// GenreList is the genre catalog of one media type.
type GenreList struct {
	Success bool           `json:"success"`
	Type    tmdb.MediaType `json:"type"`
	Genres  []tmdb.Genre   `json:"genres"`
	Meta    GenreListMeta  `json:"meta"`
}

// GenreList shapes /genre/{kind}/list.
func (s *Shaper) GenreList(kind tmdb.MediaType, res *tmdb.GenreList) GenreList {
	genres := res.Genres
	if genres == nil {
		genres = []tmdb.Genre{}
	}
	return GenreList{
		Success: true,
		Type:    kind,
		Genres:  genres,
		Meta: GenreListMeta{
			Timestamp:   s.Timestamp(),
			TotalGenres: len(genres),
		},
	}
}

// BrowseItem is a discover row with its title artwork.
type BrowseItem struct {
	Summary
	TitleImage *string `json:"title_image"`
	Adult      bool    `json:"adult"`
}

// BrowseMeta describes a genre browse page.
type BrowseMeta struct {
	Type    tmdb.MediaType `json:"type"`
	GenreID int64          `json:"genre_id"`
	Pagination
	SortBy    string `json:"sort_by"`
	Timestamp string `json:"timestamp"`
}

// Browse is the browse-by-genre response.
type Browse struct {
	Success bool         `json:"success"`
	Meta    BrowseMeta   `json:"meta"`
	Results []BrowseItem `json:"results"`
}

// Browse shapes a discover page for one genre. Rows without an id or any
// artwork are dropped.
func (s *Shaper) Browse(kind tmdb.MediaType, genreID int64, page int, sortBy string, res *tmdb.Page) Browse {
	out := Browse{
		Success: true,
		Meta: BrowseMeta{
			Type:       kind,
			GenreID:    genreID,
			Pagination: Paginate(page, res.TotalPages, res.TotalResults),
			SortBy:     sortBy,
			Timestamp:  s.Timestamp(),
		},
		Results: make([]BrowseItem, 0, len(res.Results)),
	}
	for _, raw := range res.Results {
		if raw.ID == 0 || (raw.PosterPath == "" && raw.BackdropPath == "") {
			continue
		}
		m := Normalize(raw, kind)
		m.Type = kind
		out.Results = append(out.Results, BrowseItem{
			Summary:    s.summary(m, "w342", "w780"),
			TitleImage: s.images.URL(images.Logo, m.Logo, "w500"),
			Adult:      m.Adult,
		})
	}
	return out
}
