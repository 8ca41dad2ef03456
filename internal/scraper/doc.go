// Package scraper downloads a programplan page and parses it into a document tree.
//
// The scraper package performs a single GET per run. Pages are transcoded to UTF-8 based
// on the Content-Type header and any <meta charset> declaration, so the cached copy and
// everything parsed from it is always UTF-8. EnsureCached skips the network entirely
// when a cached copy already exists.
package scraper
