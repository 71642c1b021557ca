// Package client executes rendered requests and classifies the raw
// outcome of each exchange.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithThrottle(10, 5),
//	)
//
// # Three forms, one exchange
//
// A request can be executed as a lazy producer, a blocking call or a
// callback:
//
//	resp, err := c.Publisher(req).Await(ctx)
//	resp, err = c.Data(req)
//	c.Make(req, func(resp client.Response, err error) { ... })
//
// All three classify the same outcome the same way. Errors from the
// networking runtime are returned unchanged, a response that isn't
// HTTP-shaped yields [ErrHTTPCasting] and a missing body yields
// [ErrData]. Status codes are never interpreted here; that is the
// mapping package's job.
package client
