package tmdb

import "fmt"

// MediaType is the provider's media kind.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaTV     MediaType = "tv"
	MediaPerson MediaType = "person"
)

// ParseMediaType accepts only the two browsable kinds, movie and tv.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaMovie, MediaTV:
		return MediaType(s), nil
	default:
		return "", fmt.Errorf("invalid media type %q", s)
	}
}

// Item is one result row of a list, search or discover response.
type Item struct {
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"media_type,omitempty"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	LogoPath     string    `json:"logo_path,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`
	VoteCount    int       `json:"vote_count,omitempty"`
	Popularity   float64   `json:"popularity,omitempty"`
	GenreIDs     []int     `json:"genre_ids,omitempty"`
	Adult        bool      `json:"adult,omitempty"`
	Character    string    `json:"character,omitempty"`
}

// Page is a paginated result list.
type Page struct {
	Page         int    `json:"page"`
	Results      []Item `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

// Genre is an id/name pair.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the payload of /genre/{kind}/list.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// Company is a production company.
type Company struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path,omitempty"`
	OriginCountry string `json:"origin_country,omitempty"`
}

// Creator is a tv show creator.
type Creator struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// SeasonSummary is a season entry embedded in tv details.
type SeasonSummary struct {
	ID           int64  `json:"id"`
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	Overview     string `json:"overview,omitempty"`
	AirDate      string `json:"air_date,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
	EpisodeCount int    `json:"episode_count"`
}

// Details is the payload of /movie/{id} and /tv/{id}.
type Details struct {
	Item

	Tagline             string          `json:"tagline,omitempty"`
	Runtime             int             `json:"runtime,omitempty"`
	EpisodeRunTime      []int           `json:"episode_run_time,omitempty"`
	Genres              []Genre         `json:"genres,omitempty"`
	ProductionCompanies []Company       `json:"production_companies,omitempty"`
	Homepage            string          `json:"homepage,omitempty"`
	Status              string          `json:"status,omitempty"`
	OriginalLanguage    string          `json:"original_language,omitempty"`
	NumberOfSeasons     int             `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes    int             `json:"number_of_episodes,omitempty"`
	CreatedBy           []Creator       `json:"created_by,omitempty"`
	Seasons             []SeasonSummary `json:"seasons,omitempty"`
}

// CastCredit is a cast entry of a credits payload or an episode guest star.
type CastCredit struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
	Order       int    `json:"order"`
}

// CrewCredit is a crew entry.
type CrewCredit struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job,omitempty"`
	Department  string `json:"department,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// Credits is the payload of /{kind}/{id}/credits.
type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastCredit `json:"cast"`
	Crew []CrewCredit `json:"crew"`
}

// Video is one entry of /{kind}/{id}/videos.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name,omitempty"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official,omitempty"`
}

// Videos is the payload of /{kind}/{id}/videos.
type Videos struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}

// Person is the payload of /person/{id}.
type Person struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Biography          string `json:"biography,omitempty"`
	Birthday           string `json:"birthday,omitempty"`
	Deathday           string `json:"deathday,omitempty"`
	PlaceOfBirth       string `json:"place_of_birth,omitempty"`
	ProfilePath        string `json:"profile_path,omitempty"`
	KnownForDepartment string `json:"known_for_department,omitempty"`
}

// CombinedCredits is the payload of /person/{id}/combined_credits.
type CombinedCredits struct {
	ID   int64  `json:"id"`
	Cast []Item `json:"cast"`
}

// Episode is the payload of /tv/{id}/season/{s}/episode/{e} and an entry of a season.
type Episode struct {
	ID             int64        `json:"id"`
	EpisodeNumber  int          `json:"episode_number"`
	SeasonNumber   int          `json:"season_number"`
	Name           string       `json:"name"`
	Overview       string       `json:"overview,omitempty"`
	AirDate        string       `json:"air_date,omitempty"`
	Runtime        int          `json:"runtime,omitempty"`
	StillPath      string       `json:"still_path,omitempty"`
	VoteAverage    float64      `json:"vote_average,omitempty"`
	VoteCount      int          `json:"vote_count,omitempty"`
	ProductionCode string       `json:"production_code,omitempty"`
	Crew           []CrewCredit `json:"crew,omitempty"`
	GuestStars     []CastCredit `json:"guest_stars,omitempty"`
}

// Season is the payload of /tv/{id}/season/{s}.
type Season struct {
	ID           int64     `json:"id"`
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview,omitempty"`
	AirDate      string    `json:"air_date,omitempty"`
	PosterPath   string    `json:"poster_path,omitempty"`
	Episodes     []Episode `json:"episodes"`
}

// Configuration is the payload of /configuration.
type Configuration struct {
	Images struct {
		SecureBaseURL string   `json:"secure_base_url"`
		PosterSizes   []string `json:"poster_sizes"`
		BackdropSizes []string `json:"backdrop_sizes"`
		ProfileSizes  []string `json:"profile_sizes"`
		LogoSizes     []string `json:"logo_sizes"`
		StillSizes    []string `json:"still_sizes"`
	} `json:"images"`
}

// statusBody is the error payload the provider sends with non-2xx responses.
type statusBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
