package metrics

var circuitStates = []string{"closed", "half-open", "open"}

// SetCircuitBreakerState records the active circuit breaker state for a component.
func (r *Registry) SetCircuitBreakerState(component, state string) {
	if r == nil {
		return
	}
	for _, s := range circuitStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		r.breakerState.WithLabelValues(component, s).Set(value)
	}
}

// RecordCircuitBreakerTrip increments the trip counter when circuit breaker opens.
func (r *Registry) RecordCircuitBreakerTrip(component, reason string) {
	if r == nil {
		return
	}
	r.breakerTrips.WithLabelValues(component, reason).Inc()
}
