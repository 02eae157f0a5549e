package shape

import (
	"slices"

	"github.com/endoverdosing/vyla-api/internal/images"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

const guestStarLimit = 10

var writerJobs = []string{"Writer", "Screenplay", "Story"}

// EpisodeSummary is an episode row of a season page.
type EpisodeSummary struct {
	ID            int64    `json:"id"`
	EpisodeNumber int      `json:"episode_number"`
	SeasonNumber  int      `json:"season_number"`
	Name          string   `json:"name"`
	Overview      string   `json:"overview"`
	AirDate       *string  `json:"air_date"`
	Runtime       *int     `json:"runtime"`
	Still         *string  `json:"still"`
	Rating        *float64 `json:"rating"`
	VoteCount     int      `json:"vote_count"`
	EpisodeLink   string   `json:"episode_link"`
	PlayerLink    string   `json:"player_link"`
}

// ShowRef points back at the parent show.
type ShowRef struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Poster      *string `json:"poster"`
	DetailsLink string  `json:"details_link"`
}

// SeasonData is the body of a season page.
type SeasonData struct {
	ID           int64            `json:"id"`
	SeasonNumber int              `json:"season_number"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview"`
	AirDate      *string          `json:"air_date"`
	Poster       *string          `json:"poster"`
	EpisodeCount int              `json:"episode_count"`
	Episodes     []EpisodeSummary `json:"episodes"`
	TVShow       ShowRef          `json:"tv_show"`
}

// SeasonMeta echoes the request keys.
type SeasonMeta struct {
	TVID         int64  `json:"tv_id"`
	SeasonNumber int    `json:"season_number"`
	Timestamp    string `json:"timestamp"`
}

// SeasonPage is the season response.
type SeasonPage struct {
	Success bool       `json:"success"`
	Data    SeasonData `json:"data"`
	Meta    SeasonMeta `json:"meta"`
}

// Season shapes a season. show may be nil when the parent fetch failed; the
// show reference then carries only the id and link.
func (s *Shaper) Season(tvID int64, seasonNumber int, season *tmdb.Season, show *tmdb.Details) SeasonPage {
	episodes := make([]EpisodeSummary, 0, len(season.Episodes))
	for _, e := range season.Episodes {
		episodes = append(episodes, EpisodeSummary{
			ID:            e.ID,
			EpisodeNumber: e.EpisodeNumber,
			SeasonNumber:  seasonNumber,
			Name:          e.Name,
			Overview:      firstNonEmpty(e.Overview, noOverview),
			AirDate:       optional(e.AirDate),
			Runtime:       optionalInt(e.Runtime),
			Still:         s.images.URL(images.Still, e.StillPath, "w300"),
			Rating:        Rating(e.VoteAverage),
			VoteCount:     e.VoteCount,
			EpisodeLink:   s.EpisodeLink(tvID, seasonNumber, e.EpisodeNumber),
			PlayerLink:    s.EpisodePlayerLink(tvID, seasonNumber, e.EpisodeNumber),
		})
	}

	ref := ShowRef{ID: tvID, DetailsLink: s.DetailsLink(tmdb.MediaTV, tvID)}
	if show != nil {
		ref.Name = Title("", show.Name)
		ref.Poster = s.images.URL(images.Poster, show.PosterPath, "w780")
	}

	return SeasonPage{
		Success: true,
		Data: SeasonData{
			ID:           season.ID,
			SeasonNumber: season.SeasonNumber,
			Name:         season.Name,
			Overview:     firstNonEmpty(season.Overview, noOverview),
			AirDate:      optional(season.AirDate),
			Poster:       s.images.URL(images.Poster, season.PosterPath, "w780"),
			EpisodeCount: len(episodes),
			Episodes:     episodes,
			TVShow:       ref,
		},
		Meta: SeasonMeta{
			TVID:         tvID,
			SeasonNumber: seasonNumber,
			Timestamp:    s.Timestamp(),
		},
	}
}

// CrewMember is a director or writer credit.
type CrewMember struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Job     string  `json:"job,omitempty"`
	Profile *string `json:"profile"`
}

// Crew splits episode crew into directors and writers.
type Crew struct {
	Directors []CrewMember `json:"directors"`
	Writers   []CrewMember `json:"writers"`
}

// EpisodeData is the body of an episode page.
type EpisodeData struct {
	ID             int64        `json:"id"`
	EpisodeNumber  int          `json:"episode_number"`
	SeasonNumber   int          `json:"season_number"`
	Name           string       `json:"name"`
	Overview       string       `json:"overview"`
	AirDate        *string      `json:"air_date"`
	Runtime        *int         `json:"runtime"`
	Still          *string      `json:"still"`
	Rating         *float64     `json:"rating"`
	VoteCount      int          `json:"vote_count"`
	Crew           Crew         `json:"crew"`
	GuestStars     []CastMember `json:"guest_stars"`
	ProductionCode *string      `json:"production_code"`
}

// EpisodeMeta echoes the request keys.
type EpisodeMeta struct {
	TVID              int64  `json:"tv_id"`
	SeasonNumber      int    `json:"season_number"`
	EpisodeNumber     int    `json:"episode_number"`
	EpisodeIdentifier string `json:"episode_identifier"`
	PlayerLink        string `json:"player_link"`
	Timestamp         string `json:"timestamp"`
}

// EpisodePage is the episode response.
type EpisodePage struct {
	Success bool        `json:"success"`
	Data    EpisodeData `json:"data"`
	Meta    EpisodeMeta `json:"meta"`
}

// Episode shapes a single episode.
func (s *Shaper) Episode(tvID int64, seasonNumber, episodeNumber int, e *tmdb.Episode) EpisodePage {
	crew := Crew{Directors: []CrewMember{}, Writers: []CrewMember{}}
	for _, c := range e.Crew {
		profile := s.images.URL(images.Profile, c.ProfilePath, "w185")
		switch {
		case c.Job == "Director":
			crew.Directors = append(crew.Directors, CrewMember{ID: c.ID, Name: c.Name, Profile: profile})
		case slices.Contains(writerJobs, c.Job):
			crew.Writers = append(crew.Writers, CrewMember{ID: c.ID, Name: c.Name, Job: c.Job, Profile: profile})
		}
	}

	guests := e.GuestStars
	if len(guests) > guestStarLimit {
		guests = guests[:guestStarLimit]
	}
	guestStars := make([]CastMember, 0, len(guests))
	for _, g := range guests {
		guestStars = append(guestStars, s.castMember(g))
	}

	return EpisodePage{
		Success: true,
		Data: EpisodeData{
			ID:             e.ID,
			EpisodeNumber:  e.EpisodeNumber,
			SeasonNumber:   e.SeasonNumber,
			Name:           e.Name,
			Overview:       firstNonEmpty(e.Overview, noOverview),
			AirDate:        optional(e.AirDate),
			Runtime:        optionalInt(e.Runtime),
			Still:          s.images.URL(images.Still, e.StillPath, images.Original),
			Rating:         Rating(e.VoteAverage),
			VoteCount:      e.VoteCount,
			Crew:           crew,
			GuestStars:     guestStars,
			ProductionCode: optional(e.ProductionCode),
		},
		Meta: EpisodeMeta{
			TVID:              tvID,
			SeasonNumber:      seasonNumber,
			EpisodeNumber:     episodeNumber,
			EpisodeIdentifier: EpisodeIdentifier(seasonNumber, episodeNumber),
			PlayerLink:        s.EpisodePlayerLink(tvID, seasonNumber, episodeNumber),
			Timestamp:         s.Timestamp(),
		},
	}
}
