// Package provider describes HTTP requests declaratively and renders
// them into concrete [net/http] requests.
//
// # Describing a Request
//
// Each logical endpoint is a value implementing [Provider]. Ad-hoc
// requests can build a [Spec] with [New] and its options:
//
//	p := provider.New("https", "api.example.com",
//		provider.WithPath("users"),
//		provider.WithQuery(provider.QueryItem{Name: "page", Value: "2"}),
//	)
//
// A Spec defaults to GET with a JSON content type.
//
// # Rendering
//
// [Render] assembles the URL, sets the caller's headers followed by the
// Content-Type header, and attaches the body produced by [Provider.Body]:
//
//	req, err := provider.Render(ctx, p)
//	if errors.Is(err, provider.ErrURLGeneration) { ... }
//
// The Content-Type header is always present exactly once and always
// reflects [Provider.ContentType], even if the caller supplied one.
package provider
