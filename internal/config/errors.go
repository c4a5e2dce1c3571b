package config

import "errors"

// Configuration errors.
// These are returned (possibly wrapped with the offending spider, template
// or sink) by LoadFile, File.Validate and Config.Validate.
var (
	// ErrConfigNotFound is returned when the crawl definition file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrNoSpiders is returned when the file defines no spiders.
	ErrNoSpiders = errors.New("no spiders defined")

	// ErrNoTemplates is returned when a spider has no templates.
	ErrNoTemplates = errors.New("spider has no templates")

	// ErrDuplicateSpider is returned when two spiders share a name.
	ErrDuplicateSpider = errors.New("duplicate spider name")

	// ErrUnnamedSpider is returned when a spider has no name.
	ErrUnnamedSpider = errors.New("spider name must not be empty")

	// ErrUnknownSpider is returned when a selected spider is not defined.
	ErrUnknownSpider = errors.New("unknown spider")

	// ErrUnknownDedup is returned for an unsupported dedup kind.
	ErrUnknownDedup = errors.New("unknown dedup kind")

	// ErrUnknownSink is returned for an unsupported sink kind.
	ErrUnknownSink = errors.New("unknown sink kind")

	// ErrUnknownHook is returned when a template names a hook that is not registered.
	ErrUnknownHook = errors.New("unknown hook")

	// ErrMissingSinkSetting is returned when a sink lacks a required setting.
	ErrMissingSinkSetting = errors.New("missing sink setting")

	// ErrInvalidTimeout is returned when a timeout or wait is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must not be negative")

	// ErrInvalidParallel is returned when the number of concurrent spiders is not positive.
	ErrInvalidParallel = errors.New("invalid parallel: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must not be negative")

	// ErrUnknownReportFormat is returned for an unsupported report format.
	ErrUnknownReportFormat = errors.New("unknown report format")
)
