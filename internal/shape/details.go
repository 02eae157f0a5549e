package shape

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/endoverdosing/vyla-api/internal/images"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

const (
	detailsCastLimit    = 20
	detailsRelatedLimit = 10
	youtubeWatchURL     = "https://www.youtube.com/watch?v="
	defaultLanguage     = "en"
)

// Links are the navigation links of a details page.
type Links struct {
	Self      string `json:"self"`
	Canonical string `json:"canonical"`
}

// DetailsMeta describes a details page.
type DetailsMeta struct {
	Pagination  Pagination     `json:"pagination"`
	Links       Links          `json:"links"`
	Type        tmdb.MediaType `json:"type"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Image       *string        `json:"image"`
	Timestamp   string         `json:"timestamp"`
}

// Company is a production company.
type Company struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country"`
}

// Creator is a tv show creator.
type Creator struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Profile *string `json:"profile"`
}

// DetailsInfo is the main block of a details page.
type DetailsInfo struct {
	ID                  int64          `json:"id"`
	Type                tmdb.MediaType `json:"type"`
	Title               string         `json:"title"`
	Tagline             *string        `json:"tagline"`
	Overview            string         `json:"overview"`
	Runtime             *int           `json:"runtime"`
	ReleaseDate         *string        `json:"release_date"`
	Year                *string        `json:"year"`
	Rating              *float64       `json:"rating"`
	VoteCount           int            `json:"vote_count"`
	Genres              []tmdb.Genre   `json:"genres"`
	Backdrop            *string        `json:"backdrop"`
	Poster              *string        `json:"poster"`
	TrailerURL          *string        `json:"trailer_url"`
	Homepage            *string        `json:"homepage"`
	Status              *string        `json:"status"`
	OriginalLanguage    string         `json:"original_language"`
	ProductionCompanies []Company      `json:"production_companies"`
	NumberOfSeasons     *int           `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes    *int           `json:"number_of_episodes,omitempty"`
	CreatedBy           []Creator      `json:"created_by,omitempty"`
}

// CastMember is a billed performer.
type CastMember struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Character    string  `json:"character"`
	Profile      *string `json:"profile"`
	ViewCastLink string  `json:"view_cast_link"`
	Order        int     `json:"order"`
}

// Season is a season entry of a tv details page.
type Season struct {
	Number       int     `json:"number"`
	Name         string  `json:"name"`
	EpisodeCount int     `json:"episode_count"`
	AirDate      *string `json:"air_date"`
	Poster       *string `json:"poster"`
	Overview     string  `json:"overview"`
}

// Details is the details page response.
type Details struct {
	Success    bool         `json:"success"`
	Meta       DetailsMeta  `json:"meta"`
	Info       DetailsInfo  `json:"info"`
	Cast       []CastMember `json:"cast"`
	Related    []Summary    `json:"related"`
	Seasons    []Season     `json:"seasons,omitempty"`
	PlayerLink string       `json:"player_link"`
}

// Details shapes a title. credits, related and videos may be nil when their
// fetch failed; the matching sections are then empty.
func (s *Shaper) Details(kind tmdb.MediaType, d *tmdb.Details, credits *tmdb.Credits, related *tmdb.Page, videos *tmdb.Videos) Details {
	title := Title(d.Title, d.Name)
	hero := firstNonEmpty(d.BackdropPath, d.PosterPath)

	out := Details{
		Success: true,
		Meta: DetailsMeta{
			Pagination: Paginate(1, 1, 1),
			Links: Links{
				Self:      s.DetailsLink(kind, d.ID),
				Canonical: "/" + string(kind) + "/" + strconv.FormatInt(d.ID, 10),
			},
			Type:        kind,
			Title:       title,
			Description: optional(d.Overview),
			Image:       s.images.URL(images.Backdrop, hero, images.Original),
			Timestamp:   s.Timestamp(),
		},
		Info: DetailsInfo{
			ID:                  d.ID,
			Type:                kind,
			Title:               title,
			Tagline:             optional(d.Tagline),
			Overview:            firstNonEmpty(d.Overview, noOverview),
			Runtime:             runtimeOf(d),
			ReleaseDate:         optional(firstNonEmpty(d.ReleaseDate, d.FirstAirDate)),
			Year:                Year(d.ReleaseDate, d.FirstAirDate),
			Rating:              Rating(d.VoteAverage),
			VoteCount:           d.VoteCount,
			Genres:              d.Genres,
			Backdrop:            s.images.URL(images.Backdrop, hero, images.Original),
			Poster:              s.images.URL(images.Poster, d.PosterPath, "w780"),
			TrailerURL:          trailerURL(videos),
			Homepage:            optional(d.Homepage),
			Status:              optional(d.Status),
			OriginalLanguage:    firstNonEmpty(d.OriginalLanguage, defaultLanguage),
			ProductionCompanies: s.companies(d.ProductionCompanies),
		},
		Cast:       s.detailsCast(credits),
		Related:    s.related(kind, related),
		PlayerLink: s.PlayerLink(kind, d.ID),
	}
	if out.Info.Genres == nil {
		out.Info.Genres = []tmdb.Genre{}
	}

	if kind == tmdb.MediaTV {
		seasons, episodes := d.NumberOfSeasons, d.NumberOfEpisodes
		out.Info.NumberOfSeasons = &seasons
		out.Info.NumberOfEpisodes = &episodes
		out.Info.CreatedBy = s.creators(d.CreatedBy)
		out.Seasons = s.seasons(d)
	}
	return out
}

func runtimeOf(d *tmdb.Details) *int {
	if d.Runtime > 0 {
		return optionalInt(d.Runtime)
	}
	if len(d.EpisodeRunTime) > 0 {
		return optionalInt(d.EpisodeRunTime[0])
	}
	return nil
}

func trailerURL(videos *tmdb.Videos) *string {
	if videos == nil {
		return nil
	}
	for _, v := range videos.Results {
		if v.Type == "Trailer" && v.Site == "YouTube" && v.Key != "" {
			u := youtubeWatchURL + v.Key
			return &u
		}
	}
	return nil
}

func (s *Shaper) companies(in []tmdb.Company) []Company {
	out := make([]Company, 0, len(in))
	for _, c := range in {
		out = append(out, Company{
			ID:            c.ID,
			Name:          c.Name,
			LogoPath:      s.images.URL(images.Logo, c.LogoPath, "w500"),
			OriginCountry: c.OriginCountry,
		})
	}
	return out
}

func (s *Shaper) creators(in []tmdb.Creator) []Creator {
	out := make([]Creator, 0, len(in))
	for _, c := range in {
		out = append(out, Creator{
			ID:      c.ID,
			Name:    c.Name,
			Profile: s.images.URL(images.Profile, c.ProfilePath, "w185"),
		})
	}
	return out
}

func (s *Shaper) detailsCast(credits *tmdb.Credits) []CastMember {
	if credits == nil {
		return []CastMember{}
	}
	cast := slices.Clone(credits.Cast)
	slices.SortStableFunc(cast, func(a, b tmdb.CastCredit) int { return cmp.Compare(a.Order, b.Order) })
	if len(cast) > detailsCastLimit {
		cast = cast[:detailsCastLimit]
	}

	out := make([]CastMember, 0, len(cast))
	for _, c := range cast {
		out = append(out, s.castMember(c))
	}
	return out
}

func (s *Shaper) castMember(c tmdb.CastCredit) CastMember {
	return CastMember{
		ID:           c.ID,
		Name:         c.Name,
		Character:    firstNonEmpty(c.Character, "Unknown"),
		Profile:      s.images.URL(images.Profile, c.ProfilePath, "w185"),
		ViewCastLink: s.CastLink(c.ID),
		Order:        c.Order,
	}
}

func (s *Shaper) related(kind tmdb.MediaType, page *tmdb.Page) []Summary {
	if page == nil {
		return []Summary{}
	}
	results := page.Results
	if len(results) > detailsRelatedLimit {
		results = results[:detailsRelatedLimit]
	}
	out := make([]Summary, 0, len(results))
	for _, raw := range results {
		out = append(out, s.summary(Normalize(raw, kind), "w342", "w780"))
	}
	return out
}

// seasons lists regular seasons in ascending order; specials (season 0) are
// left out. Seasons without artwork borrow the show poster.
func (s *Shaper) seasons(d *tmdb.Details) []Season {
	out := make([]Season, 0, len(d.Seasons))
	for _, ss := range d.Seasons {
		if ss.SeasonNumber <= 0 {
			continue
		}
		poster := firstNonEmpty(ss.PosterPath, d.PosterPath)
		out = append(out, Season{
			Number:       ss.SeasonNumber,
			Name:         firstNonEmpty(ss.Name, "Season "+strconv.Itoa(ss.SeasonNumber)),
			EpisodeCount: ss.EpisodeCount,
			AirDate:      optional(ss.AirDate),
			Poster:       s.images.URL(images.Poster, poster, "w780"),
			Overview:     firstNonEmpty(ss.Overview, noOverview),
		})
	}
	slices.SortStableFunc(out, func(a, b Season) int { return cmp.Compare(a.Number, b.Number) })
	return out
}
