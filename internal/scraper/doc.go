// Package scraper fetches the i2pd web console page.
//
// New(config.Upstream) builds one *http.Client per upstream, reused across
// scrapes for connection pooling. Its Timeout is the hard bound on a whole
// fetch; the caller's context additionally lets an abandoned scrape cancel
// the request early. Optional basic auth is injected by a round-tripper.
//
// Fetch returns the page decoded to UTF-8 (using the response charset via
// golang.org/x/net/html/charset) or a *FetchError whose Kind is one of
// Timeout, ConnectionRefused, NonSuccessStatus or Transport. There are no
// retries and no caching.
package scraper
