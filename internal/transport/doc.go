// Package transport builds the HTTP transports used by the plain fetcher.
//
// A crawl can be routed through a SOCKS5 proxy (for example a local Tor
// daemon or an SSH dynamic forward). Client validates the proxy address,
// checks that the proxy actually speaks SOCKS5, and returns an
// *http.Transport that dials through it.
//
// Design decision: We do not connect in NewClient. The proxy may be started
// after the configuration is loaded, so connectivity is checked explicitly
// with CheckConnection right before the crawl begins.
package transport
