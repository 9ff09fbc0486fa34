// Package fetch contains the resource URL normalizer and the private scheme transport
// of the desktop shell.
//
// The shell serves bundled UI assets under app:// from a static file server that cannot
// interpret query strings (cache busters like ?v=2). In desktop mode every request
// passes the normalizer, which drops the query of private-scheme targets and of
// relative targets; absolute http(s) targets are never touched.
//
// The normalizer is a http.RoundTripper middleware installed on the client the
// application uses (Install, NewClient); no global client or transport is modified.
package fetch
