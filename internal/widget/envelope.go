package widget

// Envelope is the result of one fetch attempt for a widget key.
// Exactly one of Payload and Err is populated. Degraded marks a
// reduced-fidelity payload served in place of a hard failure; it is
// still a success as far as rendering is concerned.
type Envelope struct {
	Payload  any    `json:"payload,omitempty"`
	Err      string `json:"error,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Success wraps a full-fidelity payload.
func Success(payload any) Envelope {
	return Envelope{Payload: payload}
}

// DegradedResult wraps a deliberately reduced payload that must still
// be renderable.
func DegradedResult(payload any) Envelope {
	return Envelope{Payload: payload, Degraded: true}
}

// Failure wraps a fetch error with the message the caller surfaces.
func Failure(msg string) Envelope {
	return Envelope{Err: msg}
}

// OK reports whether the envelope carries a payload.
func (e Envelope) OK() bool {
	return e.Err == ""
}
