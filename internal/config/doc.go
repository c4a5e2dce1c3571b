// Package config loads crawl definitions and run settings.
//
// A crawl definition is a YAML file (spider.yaml) describing the fetcher,
// the dedup backend, the sinks and one or more spiders, each a chain of
// templates. Config holds the settings that come from the command line.
package config
