// Package notifications pushes user-facing events to an ntfy topic. When no
// topic is configured every call is a silent no-op, so callers never guard
// their notification sites.
package notifications
