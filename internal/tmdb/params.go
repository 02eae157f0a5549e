package tmdb

import (
	"net/url"

	"github.com/google/go-querystring/query"
)

// SearchParams are the query parameters of /search/multi.
type SearchParams struct {
	Query        string `url:"query"`
	Page         int    `url:"page,omitempty"`
	IncludeAdult bool   `url:"include_adult"`
}

// DiscoverParams are the query parameters of /discover/{kind}.
type DiscoverParams struct {
	WithGenres   string `url:"with_genres,omitempty"`
	WithNetworks string `url:"with_networks,omitempty"`
	SortBy       string `url:"sort_by,omitempty"`
	Page         int    `url:"page,omitempty"`
	IncludeAdult bool   `url:"include_adult"`
}

// PageParams carries only a page number.
type PageParams struct {
	Page int `url:"page,omitempty"`
}

func encode(op string, v any) (url.Values, error) {
	values, err := query.Values(v)
	if err != nil {
		return nil, &Error{Sentinel: ErrBadResponse, Operation: op, Message: "encode query", Err: err}
	}
	return values, nil
}
