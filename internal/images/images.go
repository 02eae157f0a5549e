// Package images builds public URLs for provider image paths.
package images

import (
	"slices"
	"strings"
)

// Class is an image family with its own size ladder.
type Class string

const (
	Poster   Class = "poster"
	Backdrop Class = "backdrop"
	Profile  Class = "profile"
	Logo     Class = "logo"
	Still    Class = "still"
)

// Mode selects how URLs are rendered.
type Mode string

const (
	// ModeDirect links straight to the provider CDN.
	ModeDirect Mode = "direct"
	// ModeProxy links to the same-origin image proxy.
	ModeProxy Mode = "proxy"
)

const (
	DefaultCDNBase     = "https://image.tmdb.org/t/p"
	DefaultProxyPrefix = "/api/image"

	// Original is valid for every class.
	Original = "original"
)

var classSizes = map[Class][]string{
	Poster:   {"w92", "w154", "w185", "w342", "w500", "w780", Original},
	Backdrop: {"w300", "w780", "w1280", Original},
	Profile:  {"w45", "w185", "h632", Original},
	Logo:     {"w45", "w92", "w154", "w185", "w300", "w500", Original},
	Still:    {"w92", "w185", "w300", Original},
}

var defaultSizes = map[Class]string{
	Poster:   "w500",
	Backdrop: "w780",
	Profile:  "w185",
	Logo:     "w185",
	Still:    "w300",
}

var proxySizes = func() []string {
	var all []string
	for _, sizes := range classSizes {
		for _, s := range sizes {
			if !slices.Contains(all, s) {
				all = append(all, s)
			}
		}
	}
	slices.Sort(all)
	return all
}()

// Builder renders image URLs in one mode. The zero value is not usable; use New.
type Builder struct {
	mode        Mode
	cdnBase     string
	proxyPrefix string
}

// New returns a Builder. Empty bases fall back to the defaults and an unknown
// mode is treated as direct.
func New(mode Mode, cdnBase, proxyPrefix string) *Builder {
	if mode != ModeProxy {
		mode = ModeDirect
	}
	if cdnBase == "" {
		cdnBase = DefaultCDNBase
	}
	if proxyPrefix == "" {
		proxyPrefix = DefaultProxyPrefix
	}
	return &Builder{
		mode:        mode,
		cdnBase:     strings.TrimRight(cdnBase, "/"),
		proxyPrefix: strings.TrimRight(proxyPrefix, "/"),
	}
}

// Mode reports the rendering mode.
func (b *Builder) Mode() Mode { return b.mode }

// URL returns the URL for path at size, or nil when path is empty. An
// unknown size for the class falls back to the class default.
func (b *Builder) URL(class Class, path, size string) *string {
	s := b.String(class, path, size)
	if s == "" {
		return nil
	}
	return &s
}

// String is URL without the pointer; it returns "" for an empty path.
func (b *Builder) String(class Class, path, size string) string {
	file := strings.TrimPrefix(path, "/")
	if file == "" {
		return ""
	}
	size = SizeFor(class, size)
	if b.mode == ModeProxy {
		return b.proxyPrefix + "/" + size + "/" + file
	}
	return b.cdnBase + "/" + size + "/" + file
}

// SizeFor returns size when the class accepts it, else the class default.
func SizeFor(class Class, size string) string {
	sizes, ok := classSizes[class]
	if !ok {
		class, sizes = Poster, classSizes[Poster]
	}
	if slices.Contains(sizes, size) {
		return size
	}
	return defaultSizes[class]
}

// IsProxySize reports whether size is accepted by any class.
func IsProxySize(size string) bool {
	_, found := slices.BinarySearch(proxySizes, size)
	return found
}

// ProxySizes returns the sorted union of all class sizes.
func ProxySizes() []string {
	return slices.Clone(proxySizes)
}
