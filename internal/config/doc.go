// Package config loads, normalizes, and validates zipcrack configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ZIPCRACK_NTFY_TOPIC. The Config type centralizes every knob the CLI and the
// search engine need, so the state directory, search keyspace and
// notification settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a de-duplicated alphabet, and clear validation errors.
package config
