package shape

import (
	"github.com/endoverdosing/vyla-api/internal/player"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

// PlayerMeta identifies the content the sources play.
type PlayerMeta struct {
	ContentID         int64          `json:"content_id"`
	Type              tmdb.MediaType `json:"type"`
	BackPath          string         `json:"back_path"`
	Season            *int           `json:"season,omitempty"`
	Episode           *int           `json:"episode,omitempty"`
	EpisodeIdentifier string         `json:"episode_identifier,omitempty"`
	Timestamp         string         `json:"timestamp"`
}

// Instructions tell clients how to use the sources.
type Instructions struct {
	Usage string `json:"usage"`
	Note  string `json:"note"`
}

// Player is the player sources response.
type Player struct {
	Success      bool           `json:"success"`
	Meta         PlayerMeta     `json:"meta"`
	Sources      []player.Entry `json:"sources"`
	Instructions Instructions   `json:"instructions"`
}

// Player wraps generated entries. season and episode are ignored for movies.
func (s *Shaper) Player(kind tmdb.MediaType, id int64, season, episode int, entries []player.Entry) Player {
	meta := PlayerMeta{
		ContentID: id,
		Type:      kind,
		BackPath:  s.DetailsLink(kind, id),
		Timestamp: s.Timestamp(),
	}
	if kind == tmdb.MediaTV {
		meta.Season = &season
		meta.Episode = &episode
		meta.EpisodeIdentifier = EpisodeIdentifier(season, episode)
	}
	if entries == nil {
		entries = []player.Entry{}
	}
	return Player{
		Success: true,
		Meta:    meta,
		Sources: entries,
		Instructions: Instructions{
			Usage: "Embed stream_url in an iframe for playback",
			Note:  "Some sources may require additional configuration or may be region-restricted",
		},
	}
}
