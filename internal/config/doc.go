// Package config loads the kosh configuration file.
//
// The config lives at ~/.config/kosh/config.toml and is optional: a
// missing file yields a Config with defaults (local backend, INR display
// currency, 15-second query cache TTL). A present-but-malformed file is an
// error, since silently ignoring a typo in api_base would point the app at
// the wrong backend.
package config
