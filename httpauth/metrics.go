package httpauth

import "sync/atomic"

// Metrics counts Gate decisions. Pass one in Config to observe a Gate;
// every method is safe for concurrent use and safe on a nil receiver, so
// wiring metrics stays optional.
type Metrics struct {
	requests   atomic.Int64
	anonymous  atomic.Int64
	trusted    atomic.Int64
	basicOK    atomic.Int64
	digestOK   atomic.Int64
	challenges atomic.Int64
	failures   atomic.Int64
	rejects    atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of Gate decision counters.
type MetricsSnapshot struct {
	// Requests counts every request entering the Gate.
	Requests int64

	// Anonymous counts requests forwarded without credentials, either
	// because the realm required none or because of the anonymous-OPTIONS
	// concession.
	Anonymous int64

	// Trusted counts requests accepted on the trusted auth header alone.
	Trusted int64

	// BasicOK and DigestOK count successful credential verifications.
	BasicOK  int64
	DigestOK int64

	// Challenges counts 401 responses issued to requests that did not
	// present verifiable credentials (no header, scheme downgrade,
	// unrecognized scheme with a fallback).
	Challenges int64

	// Failures counts 401 responses issued after a failed verification.
	Failures int64

	// Rejects counts empty 400 responses to unsupported schemes.
	Rejects int64
}

// Snapshot returns a copy of the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}

	return MetricsSnapshot{
		Requests:   m.requests.Load(),
		Anonymous:  m.anonymous.Load(),
		Trusted:    m.trusted.Load(),
		BasicOK:    m.basicOK.Load(),
		DigestOK:   m.digestOK.Load(),
		Challenges: m.challenges.Load(),
		Failures:   m.failures.Load(),
		Rejects:    m.rejects.Load(),
	}
}

func (m *Metrics) request() {
	if m != nil {
		m.requests.Add(1)
	}
}

func (m *Metrics) anonymousAllow() {
	if m != nil {
		m.anonymous.Add(1)
	}
}

func (m *Metrics) trustedAllow() {
	if m != nil {
		m.trusted.Add(1)
	}
}

func (m *Metrics) basicSuccess() {
	if m != nil {
		m.basicOK.Add(1)
	}
}

func (m *Metrics) digestSuccess() {
	if m != nil {
		m.digestOK.Add(1)
	}
}

func (m *Metrics) challenge() {
	if m != nil {
		m.challenges.Add(1)
	}
}

func (m *Metrics) failure() {
	if m != nil {
		m.failures.Add(1)
	}
}

func (m *Metrics) reject() {
	if m != nil {
		m.rejects.Add(1)
	}
}
