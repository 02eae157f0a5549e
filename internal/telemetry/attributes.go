// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by server and upstream spans.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"
	HTTPRequestIDKey  = "http.request_id"

	MediaTypeKey    = "media.type"
	MediaIDKey      = "media.id"
	MediaSeasonKey  = "media.season"
	MediaEpisodeKey = "media.episode"
	FanoutCallsKey  = "fanout.calls"
	FanoutFailedKey = "fanout.failed"
	ImageSizeKey    = "image.size"
	ImageSourceKey  = "image.source"
	ErrorKey        = "error"
	ErrorKindKey    = "error.kind"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// MediaAttributes describes the title a request is about. Zero season and
// episode are left out.
func MediaAttributes(kind string, id int64, season, episode int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(MediaTypeKey, kind),
		attribute.Int64(MediaIDKey, id),
	}
	if season > 0 {
		attrs = append(attrs, attribute.Int(MediaSeasonKey, season))
	}
	if episode > 0 {
		attrs = append(attrs, attribute.Int(MediaEpisodeKey, episode))
	}
	return attrs
}

// FanoutAttributes records how many upstream calls a request made and how
// many of them failed.
func FanoutAttributes(calls, failed int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(FanoutCallsKey, calls),
		attribute.Int(FanoutFailedKey, failed),
	}
}

// ImageAttributes describes an image proxy response.
func ImageAttributes(size, source string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(ImageSizeKey, size),
		attribute.String(ImageSourceKey, source),
	}
}

// ErrorAttributes marks a span as failed with the given error kind.
func ErrorAttributes(kind string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorKindKey, kind),
	}
}
