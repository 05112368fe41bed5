// Package extract turns the i2pd web console main page into metric samples.
//
// table.go holds the rule table: one Rule per metric (or per constant label
// set of a metric), each naming a regular expression locator, the named
// capture holding the value, the captures feeding labels and the normalizer
// applied to the value. DefaultRules returns it; Validate checks a table once
// at startup.
//
// extractor.go applies a table to a page. Extract never fails because of a
// single rule: rules without a match contribute nothing, rules whose value
// cannot be normalized are listed in Result.Failures. Only an empty or
// non-UTF-8 page is rejected outright.
//
// The package performs no I/O and keeps no state between calls, so one table
// is safely shared by concurrent scrapes.
package extract
