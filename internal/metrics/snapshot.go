package metrics

import (
	"time"

	dto "github.com/prometheus/client_model/go"
)

// Snapshot is a point-in-time summary of the service counters.
type Snapshot struct {
	StartedAt        time.Time         `json:"started_at"`
	UptimeSeconds    int64             `json:"uptime_seconds"`
	Requests         uint64            `json:"requests"`
	Errors           uint64            `json:"errors"`
	InFlight         int64             `json:"in_flight"`
	UpstreamCalls    uint64            `json:"upstream_calls"`
	UpstreamFailures uint64            `json:"upstream_failures"`
	ErrorsByKind     map[string]int64  `json:"errors_by_kind"`
	BreakerStates    map[string]string `json:"breaker_states,omitempty"`
}

// Snapshot reads the current counter values from the registry.
func (r *Registry) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{ErrorsByKind: map[string]int64{}}
	}

	s := Snapshot{
		StartedAt:     r.startedAt.UTC(),
		UptimeSeconds: int64(time.Since(r.startedAt).Seconds()),
		ErrorsByKind:  map[string]int64{},
	}

	families, err := r.reg.Gather()
	if err != nil {
		return s
	}

	for _, mf := range families {
		switch mf.GetName() {
		case namespace + "_http_requests_total":
			for _, m := range mf.GetMetric() {
				s.Requests += uint64(m.GetCounter().GetValue())
			}
		case namespace + "_http_errors_total":
			for _, m := range mf.GetMetric() {
				v := uint64(m.GetCounter().GetValue())
				s.Errors += v
				s.ErrorsByKind[label(m, "kind")] += int64(v)
			}
		case namespace + "_http_requests_in_flight":
			for _, m := range mf.GetMetric() {
				s.InFlight = int64(m.GetGauge().GetValue())
			}
		case namespace + "_upstream_requests_total":
			for _, m := range mf.GetMetric() {
				v := uint64(m.GetCounter().GetValue())
				s.UpstreamCalls += v
				if label(m, "outcome") != "ok" {
					s.UpstreamFailures += v
				}
			}
		case namespace + "_circuit_breaker_state":
			for _, m := range mf.GetMetric() {
				if m.GetGauge().GetValue() == 1 {
					if s.BreakerStates == nil {
						s.BreakerStates = map[string]string{}
					}
					s.BreakerStates[label(m, "component")] = label(m, "state")
				}
			}
		}
	}
	return s
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
