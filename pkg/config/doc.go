// Package config resolves execfmt configuration.
//
// Configuration is loaded in layers with koanf (embedded defaults, then the
// config file, then EXECFMT_* environment variables) into a raw key/value
// document, which Resolve validates into an immutable Config:
//
//	lineWidth = 100
//
//	[[commands]]
//	command = "rustfmt --edition 2021"
//	exts = ["rs"]
//
//	[[commands]]
//	command = "prettier --stdin-filepath {{file_path}}"
//	exts = ["ts", "tsx"]
//	associations = ["web/**/*.json"]
//
// Every problem in the document is reported at once as a list of
// diagnostics. Templates and match rules are compiled during resolution, so
// a Config that resolved without error can always be rendered and matched.
package config
