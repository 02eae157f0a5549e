package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldService   = "service"
	FieldVersion   = "version"
	FieldComponent = "component"
	FieldEvent     = "event"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"

	// HTTP fields
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldRoute      = "route"
	FieldStatus     = "status"
	FieldDurationMS = "duration_ms"
	FieldBytes      = "bytes"
	FieldRemoteAddr = "remote_addr"
	FieldUserAgent  = "user_agent"

	// Upstream fields
	FieldUpstreamPath   = "upstream_path"
	FieldUpstreamStatus = "upstream_status"

	// Media fields
	FieldMediaType = "media_type"
	FieldMediaID   = "media_id"
)
