// Package cli implements the command-line interface for course-plan.
//
// The cli package provides the Cobra root command. It runs the batch phases in order
// (download, parse, resolve, extract, write), timing each one, and coordinates the
// scraper, storage, curriculum and table packages. Any error aborts the run.
package cli
