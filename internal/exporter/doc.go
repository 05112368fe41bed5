// Package exporter chains the fetch, extract and format steps of one scrape.
//
// A Pipeline is built once at startup from a Fetcher, the rule table and the
// exporter Identity. Each Collect call walks the steps in order and stops at
// the first failing one, reporting it as a *StageError. Nothing is cached
// between calls, so two scrapes of an unchanged console render identical
// bodies.
package exporter
