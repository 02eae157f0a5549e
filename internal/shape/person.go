package shape

import (
	"github.com/endoverdosing/vyla-api/internal/images"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

const knownForLimit = 20

// Credit is a title a person appeared in.
type Credit struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Poster      *string `json:"poster"`
	DetailsLink string  `json:"details_link"`
}

// KnownFor splits a filmography by kind.
type KnownFor struct {
	Movies []Credit `json:"movies"`
	Shows  []Credit `json:"shows"`
}

// Person is the cast page response.
type Person struct {
	Success      bool     `json:"success"`
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Biography    *string  `json:"biography"`
	Birthday     *string  `json:"birthday"`
	PlaceOfBirth *string  `json:"place_of_birth"`
	Profile      *string  `json:"profile"`
	KnownFor     KnownFor `json:"known_for"`
}

// Person shapes a person page. credits may be nil when the fetch failed.
func (s *Shaper) Person(p *tmdb.Person, credits *tmdb.CombinedCredits) Person {
	out := Person{
		Success:      true,
		ID:           p.ID,
		Name:         p.Name,
		Biography:    optional(p.Biography),
		Birthday:     optional(p.Birthday),
		PlaceOfBirth: optional(p.PlaceOfBirth),
		Profile:      s.images.URL(images.Profile, p.ProfilePath, "h632"),
		KnownFor: KnownFor{
			Movies: []Credit{},
			Shows:  []Credit{},
		},
	}
	if credits == nil {
		return out
	}

	for _, raw := range credits.Cast {
		c := Credit{
			ID:          raw.ID,
			Title:       Title(raw.Title, raw.Name),
			Poster:      s.images.URL(images.Poster, raw.PosterPath, "w342"),
			DetailsLink: s.DetailsLink(raw.MediaType, raw.ID),
		}
		switch raw.MediaType {
		case tmdb.MediaMovie:
			if len(out.KnownFor.Movies) < knownForLimit {
				out.KnownFor.Movies = append(out.KnownFor.Movies, c)
			}
		case tmdb.MediaTV:
			if len(out.KnownFor.Shows) < knownForLimit {
				out.KnownFor.Shows = append(out.KnownFor.Shows, c)
			}
		}
	}
	return out
}
