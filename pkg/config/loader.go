package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/logging"
	"github.com/arthur-debert/execfmt/pkg/paths"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EXECFMT_"

// ConfigFileNames are searched, in order, in the start directory.
var ConfigFileNames = []string{"execfmt.toml", ".execfmt.toml", "execfmt.yaml", ".execfmt.yaml"}

// envKeys maps environment variable suffixes to configuration keys.
var envKeys = map[string]string{
	"LINE_WIDTH":    "lineWidth",
	"INDENT_WIDTH":  "indentWidth",
	"USE_TABS":      "useTabs",
	"NEW_LINE_KIND": "newLineKind",
	"CACHE_KEY":     "cacheKey",
	"TIMEOUT":       "timeout",
	"CWD":           "cwd",
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// Path is an explicit config file. When empty the file is discovered.
	Path string
	// StartDir is searched for a config file. Defaults to the working directory.
	StartDir string
	// Overrides are applied last, above environment variables.
	Overrides map[string]interface{}
	// SkipEnv ignores EXECFMT_* variables.
	SkipEnv bool
}

// LoadResult is a resolved configuration plus the file it came from.
type LoadResult struct {
	Config *Config
	// Path is the config file used, empty when none was found.
	Path string
}

// Load layers embedded defaults, the config file, environment variables
// and overrides, then resolves the result.
func Load(opts LoadOptions) (*LoadResult, error) {
	logger := logging.GetLogger("config")

	startDir := opts.StartDir
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot determine working directory")
		}
		startDir = wd
	}

	path, err := FindConfigFile(opts.Path, startDir)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Load config file
	if path != "" {
		parser := parserFor(path)
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Load env vars
	if !opts.SkipEnv {
		if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
		}
	}

	// 4. Load overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	raw := k.Raw()
	workingDir := startDir
	if path != "" {
		workingDir = filepath.Dir(path)
		if _, ok := raw["cwd"]; !ok {
			raw["cwd"] = workingDir
		}
	}

	cfg, err := ResolveWithOptions(raw, ResolveOptions{WorkingDir: workingDir})
	if err != nil {
		if path != "" {
			if execErr, ok := err.(*errors.ExecfmtError); ok {
				execErr.WithDetail("path", path)
			}
		}
		return nil, err
	}

	logger.Debug().
		Str("path", path).
		Int("commands", len(cfg.Commands)).
		Msg("Configuration resolved")

	return &LoadResult{Config: cfg, Path: path}, nil
}

// FindConfigFile returns explicit when set, else the first known config file
// in startDir, else the user config file. An empty result means none exists.
func FindConfigFile(explicit, startDir string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(paths.ExpandHome(explicit))
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "invalid config path %s", explicit)
		}
		if _, err := os.Stat(abs); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not found", explicit).
				WithDetail("path", abs)
		}
		return abs, nil
	}

	for _, name := range ConfigFileNames {
		candidate := filepath.Join(startDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return filepath.Abs(candidate)
		}
	}

	if userPath := UserConfigPath(); userPath != "" {
		if info, err := os.Stat(userPath); err == nil && !info.IsDir() {
			return userPath, nil
		}
	}
	return "", nil
}

// UserConfigPath returns the per-user config file location.
func UserConfigPath() string {
	return paths.UserConfigPath()
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// envValue maps EXECFMT_LINE_WIDTH=80 to lineWidth=80. Unknown variables
// are skipped. Values that fail to parse are kept as strings so resolution
// reports them as type errors.
func envValue(key, value string) (string, interface{}) {
	name, ok := envKeys[strings.TrimPrefix(key, EnvPrefix)]
	if !ok {
		return "", nil
	}
	switch name {
	case "lineWidth", "indentWidth", "timeout":
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return name, n
		}
	case "useTabs":
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return name, b
		}
	}
	return name, value
}
