package execfmt

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Format files with the external formatters you already use"
	MsgFmtShort         = "Format files in place"
	MsgCheckShort       = "Report files that are not formatted"
	MsgStdinShort       = "Format standard input and print the result"
	MsgMatchShort       = "Show the commands that apply to a file"
	MsgMatchLong        = "Match lists, in execution order, every configured command whose rules match PATH."
	MsgFingerprintShort = "Print the configuration fingerprint"
	MsgFingerprintLong  = "Fingerprint prints the hash identifying everything in the configuration that can change formatting output. Caches are keyed by it."
	MsgConfigShort      = "Inspect and generate configuration"
	MsgConfigInitShort  = "Print a sample configuration"
	MsgConfigShowShort  = "Print the resolved configuration"
	MsgConfigPathShort  = "Print the configuration file in use"
	MsgCacheShort       = "Manage the formatting cache"
	MsgCacheClearShort  = "Remove every cached result"
	MsgCachePathShort   = "Print the cache directory"
	MsgWatchShort       = "Format files as they change"
	MsgTopicsShort      = "Display available documentation topics"
	MsgTopicsLong       = "Display a list of all available help topics, or one topic by name."
	MsgCompletionShort  = "Generate shell completion script"
	MsgVersionShort     = "Print version information"

	// Status messages
	MsgNoConfigFile     = "No configuration file found"
	MsgCacheCleared     = "Cache cleared: %s"
	MsgWatching         = "Watching %s"
	MsgConfigReloaded   = "Configuration reloaded"
	MsgWatchOutcome     = "%s %s"
	MsgResolvedFromFile = "# Resolved from %s\n"

	// Error messages
	MsgErrNoCommand    = "no command specified"
	MsgErrFilesFailed  = "%d file(s) failed to format"
	MsgErrUnformatted  = "%d file(s) are not formatted"
	MsgErrReadStdin    = "failed to read standard input: %w"
	MsgErrUnknownShape = "unknown format %q, expected toml or yaml"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Configuration file (default: discovered from the working directory)"
	MsgFlagTimeout  = "Override the command timeout, in seconds"
	MsgFlagOutput   = "Output format: auto, term, text or json"
	MsgFlagJobs     = "Number of files formatted in parallel (default: number of CPUs)"
	MsgFlagNoCache  = "Format every file, ignoring the cache"
	MsgFlagFilePath = "Path the text belongs to; selects commands and fills {{file_path}}"
	MsgFlagFormat   = "Output format: toml or yaml"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/fmt-long.txt
	msgFmtLongRaw string
	MsgFmtLong    = strings.TrimSpace(msgFmtLongRaw)

	//go:embed msgs/fmt-example.txt
	msgFmtExampleRaw string
	MsgFmtExample    = strings.TrimRight(msgFmtExampleRaw, "\n")

	//go:embed msgs/check-long.txt
	msgCheckLongRaw string
	MsgCheckLong    = strings.TrimSpace(msgCheckLongRaw)

	//go:embed msgs/stdin-long.txt
	msgStdinLongRaw string
	MsgStdinLong    = strings.TrimSpace(msgStdinLongRaw)

	//go:embed msgs/stdin-example.txt
	msgStdinExampleRaw string
	MsgStdinExample    = strings.TrimRight(msgStdinExampleRaw, "\n")

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
