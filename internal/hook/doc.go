// Package hook provides named lifecycle hooks that crawl definitions can
// reference by name, and a helper to chain several hooks into one slot.
package hook
