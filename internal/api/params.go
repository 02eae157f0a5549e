package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/endoverdosing/vyla-api/internal/tmdb"
)

const (
	minQueryLen   = 2
	maxQueryLen   = 200
	defaultSortBy = "popularity.desc"
)

var (
	sortByPattern   = regexp.MustCompile(`^[a-z_]+\.(asc|desc)$`)
	endpointPattern = regexp.MustCompile(`^/[a-z0-9_/]+$`)
	filePattern     = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)

	// Keys the list passthrough never forwards from callers.
	reservedListParams = map[string]bool{"api_key": true}
)

// chiParam returns the raw path parameter for request echoes.
func chiParam(r *http.Request, name string) string { return chi.URLParam(r, name) }

// mediaTypeParam reads the {type} path parameter.
func mediaTypeParam(r *http.Request, req Request) (tmdb.MediaType, *Error) {
	raw := chi.URLParam(r, "type")
	kind, err := tmdb.ParseMediaType(raw)
	if err != nil {
		return "", validationError(req, "Invalid type %q: must be 'movie' or 'tv'", raw)
	}
	return kind, nil
}

// positiveIDParam reads a numeric path parameter that must be >= 1.
func positiveIDParam(r *http.Request, name string, req Request) (int64, *Error) {
	raw := chi.URLParam(r, name)
	if !digitsPattern.MatchString(raw) {
		return 0, validationError(req, "Invalid %s: must be a positive integer", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, validationError(req, "Invalid %s: must be a positive integer", name)
	}
	return id, nil
}

// intParam parses raw as a base-10 integer of at least minVal. An empty raw is
// reported as missing.
func intParam(raw, name string, minVal int, req Request) (int, *Error) {
	if raw == "" {
		return 0, validationError(req, "Missing %s", name)
	}
	if !digitsPattern.MatchString(raw) {
		return 0, validationError(req, "Invalid %s: must be an integer >= %d", name, minVal)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minVal {
		return 0, validationError(req, "Invalid %s: must be an integer >= %d", name, minVal)
	}
	return v, nil
}

// pageParam reads ?page=, defaulting to 1 when absent.
func pageParam(r *http.Request, req Request) (int, *Error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	return intParam(raw, "page", 1, req)
}

// searchQuery trims ?q= and enforces the length bounds.
func searchQuery(r *http.Request, req Request) (string, *Error) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	switch {
	case q == "":
		return "", validationError(req, "Query parameter 'q' is required")
	case len([]rune(q)) < minQueryLen:
		return "", validationError(req, "Query must be at least %d characters", minQueryLen)
	case len([]rune(q)) > maxQueryLen:
		return "", validationError(req, "Query must be at most %d characters", maxQueryLen)
	}
	return q, nil
}

// sortByParam reads ?sort_by=, defaulting to popularity.desc.
func sortByParam(r *http.Request, req Request) (string, *Error) {
	raw := r.URL.Query().Get("sort_by")
	if raw == "" {
		return defaultSortBy, nil
	}
	if !sortByPattern.MatchString(raw) {
		return "", validationError(req, "Invalid sort_by %q: expected field.asc or field.desc", raw)
	}
	return raw, nil
}

// listEndpoint validates the provider path of the list passthrough.
func listEndpoint(raw string, req Request) (string, *Error) {
	if raw == "" {
		return "", validationError(req, "Endpoint required")
	}
	if !endpointPattern.MatchString(raw) || strings.Contains(raw, "//") {
		return "", validationError(req, "Invalid endpoint %q", raw)
	}
	return raw, nil
}

// listParams decodes the JSON object carried by ?params= into query values.
// Scalars are stringified; arrays become repeated keys. A page key gets the
// same check as ?page=.
func listParams(raw string, req Request) (url.Values, *Error) {
	out := url.Values{}
	if raw == "" {
		return out, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		return nil, validationError(req, "Invalid params: must be a JSON object")
	}
	for k, v := range obj {
		if reservedListParams[k] {
			return nil, validationError(req, "Invalid params: %q cannot be overridden", k)
		}
		switch tv := v.(type) {
		case []any:
			for _, item := range tv {
				s, ok := scalarString(item)
				if !ok {
					return nil, validationError(req, "Invalid params: %q must hold scalars", k)
				}
				out.Add(k, s)
			}
		default:
			s, ok := scalarString(tv)
			if !ok {
				return nil, validationError(req, "Invalid params: %q must hold scalars", k)
			}
			out.Set(k, s)
		}
	}
	if pages, ok := out["page"]; ok {
		if len(pages) != 1 {
			return nil, validationError(req, "Invalid page: must be an integer >= 1")
		}
		page, verr := intParam(pages[0], "page", 1, req)
		if verr != nil {
			return nil, verr
		}
		out.Set("page", strconv.Itoa(page))
	}
	return out, nil
}

func scalarString(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case bool:
		return strconv.FormatBool(tv), true
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64), true
	case nil:
		return "", true
	default:
		return fmt.Sprint(tv), false
	}
}

// imageFile validates the {file} segment of the image proxy.
func imageFile(raw string) bool {
	return filePattern.MatchString(raw) && !strings.Contains(raw, "..")
}
