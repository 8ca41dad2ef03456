// Package storage keeps the local copy of the downloaded programplan page.
//
// The cached document is reused verbatim on every later run; there is no freshness
// check. Writes go to a temporary file in the same directory and are renamed into
// place so an interrupted download never leaves a truncated cache behind.
package storage
