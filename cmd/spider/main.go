// Package main provides the entry point for the spider CLI.
//
// spider crawls web sites described by chains of XPath templates. Each
// template extracts named fields from a page, optionally saves them as
// table rows, and yields the URLs that the next template in the chain
// visits.
//
// Usage:
//
//	spider init
//	spider validate
//	spider run --spider blog
//
// See --help for all available options.
package main

// main is the entry point for spider.
func main() {
	Execute()
}
