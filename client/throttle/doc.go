// Package throttle provides an [http.RoundTripper] that paces outbound
// exchanges with a token bucket from [golang.org/x/time/rate].
//
// Exchanges beyond the burst block until a token frees up or the
// request context ends:
//
//	rt, err := throttle.NewRoundTripper(10, 5, nil, http.DefaultTransport)
//	hc := &http.Client{Transport: rt}
//
// The client package wires this in through its WithThrottle option.
package throttle
