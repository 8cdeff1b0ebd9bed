// Package config loads, normalizes, and validates the hotfolderd TOML
// configuration. All path fields are expanded to absolute paths before any
// other package sees them.
package config
