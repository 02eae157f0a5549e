package tmdb

import (
	"context"
	"net/url"
	"strconv"
)

func idPath(kind MediaType, id int64, suffix string) string {
	return "/" + string(kind) + "/" + strconv.FormatInt(id, 10) + suffix
}

// Details fetches /{kind}/{id}.
func (c *Client) Details(ctx context.Context, kind MediaType, id int64) (*Details, error) {
	var out Details
	if err := c.Get(ctx, idPath(kind, id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Credits fetches /{kind}/{id}/credits.
func (c *Client) Credits(ctx context.Context, kind MediaType, id int64) (*Credits, error) {
	var out Credits
	if err := c.Get(ctx, idPath(kind, id, "/credits"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recommendations fetches /{kind}/{id}/recommendations.
func (c *Client) Recommendations(ctx context.Context, kind MediaType, id int64) (*Page, error) {
	return c.page(ctx, idPath(kind, id, "/recommendations"), nil)
}

// Videos fetches /{kind}/{id}/videos.
func (c *Client) Videos(ctx context.Context, kind MediaType, id int64) (*Videos, error) {
	var out Videos
	if err := c.Get(ctx, idPath(kind, id, "/videos"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Person fetches /person/{id}.
func (c *Client) Person(ctx context.Context, id int64) (*Person, error) {
	var out Person
	if err := c.Get(ctx, idPath(MediaPerson, id, ""), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CombinedCredits fetches /person/{id}/combined_credits.
func (c *Client) CombinedCredits(ctx context.Context, id int64) (*CombinedCredits, error) {
	var out CombinedCredits
	if err := c.Get(ctx, idPath(MediaPerson, id, "/combined_credits"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchMulti fetches /search/multi.
func (c *Client) SearchMulti(ctx context.Context, p SearchParams) (*Page, error) {
	const op = "/search/multi"
	q, err := encode(op, p)
	if err != nil {
		return nil, err
	}
	return c.page(ctx, op, q)
}

// Trending fetches /trending/{scope}/{window}; scope is "all", "movie" or "tv".
func (c *Client) Trending(ctx context.Context, scope, window string) (*Page, error) {
	return c.page(ctx, "/trending/"+scope+"/"+window, nil)
}

// TopRated fetches /{kind}/top_rated.
func (c *Client) TopRated(ctx context.Context, kind MediaType) (*Page, error) {
	return c.page(ctx, "/"+string(kind)+"/top_rated", nil)
}

// Discover fetches /discover/{kind}.
func (c *Client) Discover(ctx context.Context, kind MediaType, p DiscoverParams) (*Page, error) {
	op := "/discover/" + string(kind)
	q, err := encode(op, p)
	if err != nil {
		return nil, err
	}
	return c.page(ctx, op, q)
}

// GenreList fetches /genre/{kind}/list.
func (c *Client) GenreList(ctx context.Context, kind MediaType) (*GenreList, error) {
	var out GenreList
	if err := c.Get(ctx, "/genre/"+string(kind)+"/list", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Season fetches /tv/{id}/season/{season}.
func (c *Client) Season(ctx context.Context, tvID int64, season int) (*Season, error) {
	var out Season
	path := idPath(MediaTV, tvID, "/season/"+strconv.Itoa(season))
	if err := c.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Episode fetches /tv/{id}/season/{season}/episode/{episode}.
func (c *Client) Episode(ctx context.Context, tvID int64, season, episode int) (*Episode, error) {
	var out Episode
	path := idPath(MediaTV, tvID, "/season/"+strconv.Itoa(season)+"/episode/"+strconv.Itoa(episode))
	if err := c.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List fetches an arbitrary paginated endpoint such as /movie/popular.
func (c *Client) List(ctx context.Context, path string, query url.Values) (*Page, error) {
	return c.page(ctx, path, query)
}

// Configuration fetches /configuration. It is cheap and authenticated, which
// makes it a good readiness probe.
func (c *Client) Configuration(ctx context.Context) (*Configuration, error) {
	var out Configuration
	if err := c.Get(ctx, "/configuration", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) page(ctx context.Context, path string, query url.Values) (*Page, error) {
	var out Page
	if err := c.Get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
