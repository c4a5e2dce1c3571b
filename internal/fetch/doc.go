// Package fetch retrieves raw page content for the crawl engine.
//
// Two fetchers are provided:
//   - HTTPFetcher performs a plain request/response fetch with colly
//   - RenderFetcher drives a headless Chrome through chromedp so that
//     scripts run before the document is captured
//
// Router picks one of them per request based on the template's render flag.
//
// Every fetcher applies its own timeout and degrades failures (timeouts,
// refused connections, HTTP error statuses) to best-effort content, which
// may be empty. Such a page then simply yields no rows. The only error a
// fetcher returns for a failed transfer is the cancellation of the caller's
// context, because that ends the whole run.
package fetch
