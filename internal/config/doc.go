// Package config loads, normalizes, and validates the TOML configuration
// file. Load never fails on a missing file; defaults carry the daemon until
// the user writes one.
package config
