// Package config loads stackdiff settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/stackdiff/config.toml, falling back to
// ~/.config/stackdiff/config.toml. STACKDIFF_CONFIG overrides the location.
// A missing file is not an error; [Default] values apply.
//
// Example:
//
//	registry = "https://registry.npmjs.org"
//	cache_time = "1h"
//	limiter_time = "100ms"
//	max_depth = 0
//
//	[server]
//	addr = ":8080"
//	session_ttl = "30m"
//
// Command-line flags override file values.
package config
