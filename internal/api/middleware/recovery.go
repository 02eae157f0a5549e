package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/endoverdosing/vyla-api/internal/log"
)

// TimestampLayout is the ISO-8601 layout used for every response timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type panicBody struct {
	Success   bool       `json:"success"`
	Error     string     `json:"error"`
	RequestID string     `json:"request_id,omitempty"`
	Timestamp string     `json:"timestamp"`
	Debug     *panicInfo `json:"debug,omitempty"`
}

type panicInfo struct {
	Panic string `json:"panic"`
	Stack string `json:"stack"`
}

// Recoverer ensures that panics inside any downstream handler do not crash
// the process. It logs the panic with context and returns a redacted 500
// JSON body; with debug set the panic value and stack are included.
func Recoverer(debug bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				buf := make([]byte, 8192)
				n := runtime.Stack(buf, false)
				stack := string(buf[:n])

				reqID := log.RequestIDFromContext(r.Context())

				pathLabel := r.URL.Path
				if !utf8.ValidString(pathLabel) {
					pathLabel = strings.ToValidUTF8(pathLabel, "")
				}

				logger := log.WithComponentFromContext(r.Context(), "panic-recovery")
				logger.Error().
					Str(log.FieldEvent, "panic.recovered").
					Str(log.FieldMethod, r.Method).
					Str(log.FieldPath, pathLabel).
					Str(log.FieldRemoteAddr, r.RemoteAddr).
					Interface("panic_value", rec).
					Str("stack_trace", stack).
					Msg("panic recovered in HTTP handler")

				body := panicBody{
					Error:     "Internal server error",
					RequestID: reqID,
					Timestamp: time.Now().UTC().Format(TimestampLayout),
				}
				if debug {
					body.Debug = &panicInfo{Panic: fmt.Sprint(rec), Stack: stack}
				}

				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(body)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
