package config

import (
	"math"
	"time"

	"github.com/arthur-debert/execfmt/pkg/matcher"
	"github.com/arthur-debert/execfmt/pkg/template"
)

// Defaults applied when a key is absent.
const (
	DefaultLineWidth   = 120
	DefaultIndentWidth = 2
	DefaultTimeout     = 30
	DefaultNewLineKind = NewLineLF
)

// MaxTimeout is the largest accepted timeout in seconds.
const MaxTimeout int64 = math.MaxUint32

// NewLineKind selects the line ending applied to formatted output.
type NewLineKind string

const (
	NewLineAuto   NewLineKind = "auto"
	NewLineCRLF   NewLineKind = "crlf"
	NewLineLF     NewLineKind = "lf"
	NewLineSystem NewLineKind = "system"
)

// Valid reports whether k is a known kind.
func (k NewLineKind) Valid() bool {
	switch k {
	case NewLineAuto, NewLineCRLF, NewLineLF, NewLineSystem:
		return true
	}
	return false
}

// GeneralConfig holds the settings shared by every command.
type GeneralConfig struct {
	LineWidth   int
	IndentWidth int
	UseTabs     bool
	NewLineKind NewLineKind
	CacheKey    string
	// Timeout is the per-invocation limit in seconds.
	Timeout int
	Cwd     string
}

// TimeoutDuration returns Timeout as a duration.
func (g GeneralConfig) TimeoutDuration() time.Duration {
	return time.Duration(g.Timeout) * time.Second
}

// CommandSpec is one configured external formatter. Fields must not be
// modified after resolution.
type CommandSpec struct {
	// Index is the position in the configured commands list.
	Index        int
	Command      string
	Exts         []string
	FileNames    []string
	Associations []string
	Stdin        bool
	// Cwd is the absolute working directory the command runs in.
	Cwd           string
	CacheKeyFiles []string
	// CacheKeyFilesHash is the digest of CacheKeyFiles contents, empty when
	// no files are listed.
	CacheKeyFilesHash string

	tmpl  *template.Command
	rules *matcher.Rules
}

// Template returns the compiled command template.
func (c *CommandSpec) Template() *template.Command {
	return c.tmpl
}

// MatchRules returns the compiled match rules.
func (c *CommandSpec) MatchRules() *matcher.Rules {
	return c.rules
}

// Config is a resolved configuration. It is immutable and safe to share
// between goroutines; reloading builds a new value.
type Config struct {
	General  GeneralConfig
	Commands []*CommandSpec
}

// Match returns the commands that apply to path, in configured order.
func (c *Config) Match(path string) []*CommandSpec {
	return matcher.Match(path, c.Commands)
}

// Extensions returns every configured extension, in order, without
// duplicates.
func (c *Config) Extensions() []string {
	var out []string
	seen := make(map[string]bool)
	for _, cmd := range c.Commands {
		for _, ext := range cmd.Exts {
			if !seen[ext] {
				seen[ext] = true
				out = append(out, ext)
			}
		}
	}
	return out
}

// FileNames returns every configured file name, in order, without
// duplicates.
func (c *Config) FileNames() []string {
	var out []string
	seen := make(map[string]bool)
	for _, cmd := range c.Commands {
		for _, name := range cmd.FileNames {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
