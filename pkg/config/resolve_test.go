package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/execfmt/pkg/config"
	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func command(fields map[string]interface{}) map[string]interface{} {
	return fields
}

func commands(cmds ...map[string]interface{}) []interface{} {
	out := make([]interface{}, len(cmds))
	for i, c := range cmds {
		out[i] = c
	}
	return out
}

func resolve(t *testing.T, raw map[string]interface{}) (*config.Config, error) {
	t.Helper()
	insensitive := false
	return config.ResolveWithOptions(raw, config.ResolveOptions{
		WorkingDir:      t.TempDir(),
		CaseInsensitive: &insensitive,
	})
}

func TestResolve_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.ResolveWithOptions(map[string]interface{}{
		"commands": commands(command(map[string]interface{}{"command": "rustfmt", "exts": "rs"})),
	}, config.ResolveOptions{WorkingDir: dir})
	require.NoError(t, err)

	assert.Equal(t, config.GeneralConfig{
		LineWidth:   120,
		IndentWidth: 2,
		UseTabs:     false,
		NewLineKind: config.NewLineLF,
		Timeout:     30,
	}, cfg.General)

	require.Len(t, cfg.Commands, 1)
	spec := cfg.Commands[0]
	assert.Equal(t, 0, spec.Index)
	assert.Equal(t, "rustfmt", spec.Command)
	assert.Equal(t, []string{"rs"}, spec.Exts)
	assert.True(t, spec.Stdin)
	assert.Equal(t, dir, spec.Cwd)
	assert.NotNil(t, spec.Template())
	assert.NotNil(t, spec.MatchRules())
}

func TestResolve_AllFields(t *testing.T) {
	cfg, err := resolve(t, map[string]interface{}{
		"lineWidth":   int64(80),
		"indentWidth": uint64(4),
		"useTabs":     true,
		"newLineKind": "crlf",
		"cacheKey":    "v7",
		"timeout":     float64(10),
		"commands": commands(
			command(map[string]interface{}{
				"command":      "shfmt {{file_path}}",
				"exts":         []interface{}{".SH", "bash", ""},
				"fileNames":    []interface{}{"bashrc"},
				"associations": "scripts/**/*",
				"stdin":        false,
			}),
		),
	})
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.General.LineWidth)
	assert.Equal(t, 4, cfg.General.IndentWidth)
	assert.True(t, cfg.General.UseTabs)
	assert.Equal(t, config.NewLineCRLF, cfg.General.NewLineKind)
	assert.Equal(t, "v7", cfg.General.CacheKey)
	assert.Equal(t, 10, cfg.General.Timeout)

	spec := cfg.Commands[0]
	assert.Equal(t, []string{"sh", "bash"}, spec.Exts)
	assert.Equal(t, []string{"bashrc"}, spec.FileNames)
	assert.Equal(t, []string{"scripts/**/*"}, spec.Associations)
	assert.False(t, spec.Stdin)
}

func TestResolve_CwdResolution(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.ResolveWithOptions(map[string]interface{}{
		"cwd": "root",
		"commands": commands(
			command(map[string]interface{}{"command": "a", "exts": "a"}),
			command(map[string]interface{}{"command": "b", "exts": "b", "cwd": "sub"}),
			command(map[string]interface{}{"command": "c", "exts": "c", "cwd": dir}),
		),
	}, config.ResolveOptions{WorkingDir: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "root"), cfg.General.Cwd)
	assert.Equal(t, filepath.Join(dir, "root"), cfg.Commands[0].Cwd)
	assert.Equal(t, filepath.Join(dir, "root", "sub"), cfg.Commands[1].Cwd)
	assert.Equal(t, dir, cfg.Commands[2].Cwd)
}

func TestResolve_CommandCwdExpandsHome(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg, err := config.ResolveWithOptions(map[string]interface{}{
		"cwd": dir,
		"commands": commands(
			command(map[string]interface{}{"command": "a", "exts": "a", "cwd": "~/tools"}),
		),
	}, config.ResolveOptions{WorkingDir: dir})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "tools"), cfg.Commands[0].Cwd)
}

func TestResolve_MaxTimeout(t *testing.T) {
	cfg, err := config.Resolve(map[string]interface{}{
		"timeout":  config.MaxTimeout,
		"commands": commands(command(map[string]interface{}{"command": "fmt", "exts": "rs"})),
	})
	require.NoError(t, err)
	assert.Positive(t, cfg.General.TimeoutDuration())
}

func TestResolve_Diagnostics(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]interface{}
		property string
		code     errors.ErrorCode
	}{
		{
			name:     "missing commands",
			raw:      map[string]interface{}{},
			property: "commands",
			code:     errors.ErrConfigMissingCommands,
		},
		{
			name:     "commands not an array",
			raw:      map[string]interface{}{"commands": "rustfmt"},
			property: "commands",
			code:     errors.ErrConfigInvalidType,
		},
		{
			name:     "command element not an object",
			raw:      map[string]interface{}{"commands": []interface{}{"rustfmt"}},
			property: "commands[0]",
			code:     errors.ErrConfigInvalidType,
		},
		{
			name: "empty command",
			raw: map[string]interface{}{"commands": commands(
				command(map[string]interface{}{"command": "  ", "exts": "rs"}),
			)},
			property: "commands[0].command",
			code:     errors.ErrConfigEmptyCommand,
		},
		{
			name: "missing command",
			raw: map[string]interface{}{"commands": commands(
				command(map[string]interface{}{"exts": "rs"}),
			)},
			property: "commands[0].command",
			code:     errors.ErrConfigEmptyCommand,
		},
		{
			name: "zero timeout",
			raw: map[string]interface{}{"timeout": 0, "commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs"}),
			)},
			property: "timeout",
			code:     errors.ErrConfigInvalidTimeout,
		},
		{
			name: "negative timeout",
			raw: map[string]interface{}{"timeout": int64(-5), "commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs"}),
			)},
			property: "timeout",
			code:     errors.ErrConfigInvalidTimeout,
		},
		{
			name: "fractional timeout",
			raw: map[string]interface{}{"timeout": 1.5, "commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs"}),
			)},
			property: "timeout",
			code:     errors.ErrConfigInvalidTimeout,
		},
		{
			name: "timeout beyond maximum",
			raw: map[string]interface{}{"timeout": int64(10_000_000_000), "commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs"}),
			)},
			property: "timeout",
			code:     errors.ErrConfigInvalidTimeout,
		},
		{
			name: "line width wrong type",
			raw: map[string]interface{}{"lineWidth": "wide", "commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs"}),
			)},
			property: "lineWidth",
			code:     errors.ErrConfigInvalidType,
		},
		{
			name: "zero line width",
			raw: map[string]interface{}{"lineWidth": 0, "commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs"}),
			)},
			property: "lineWidth",
			code:     errors.ErrConfigInvalidValue,
		},
		{
			name: "negative indent width",
			raw: map[string]interface{}{"indentWidth": -1, "commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs"}),
			)},
			property: "indentWidth",
			code:     errors.ErrConfigInvalidValue,
		},
		{
			name: "unknown new line kind",
			raw: map[string]interface{}{"newLineKind": "mac", "commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs"}),
			)},
			property: "newLineKind",
			code:     errors.ErrConfigInvalidValue,
		},
		{
			name: "top level associations",
			raw: map[string]interface{}{"associations": []interface{}{"**/*.rs"}, "commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs"}),
			)},
			property: "associations",
			code:     errors.ErrConfigUnknownKey,
		},
		{
			name: "unknown command key",
			raw: map[string]interface{}{"commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs", "extensions": "rs"}),
			)},
			property: "commands[0].extensions",
			code:     errors.ErrConfigUnknownKey,
		},
		{
			name: "non string ext",
			raw: map[string]interface{}{"commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": []interface{}{"rs", 5}}),
			)},
			property: "commands[0].exts[1]",
			code:     errors.ErrConfigInvalidType,
		},
		{
			name: "stdin wrong type",
			raw: map[string]interface{}{"commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs", "stdin": "yes"}),
			)},
			property: "commands[0].stdin",
			code:     errors.ErrConfigInvalidType,
		},
		{
			name: "invalid glob",
			raw: map[string]interface{}{"commands": commands(
				command(map[string]interface{}{"command": "fmt", "associations": []interface{}{"*.go", "src/[a-"}}),
			)},
			property: "commands[0].associations[1]",
			code:     errors.ErrConfigInvalidPattern,
		},
		{
			name: "unknown placeholder",
			raw: map[string]interface{}{"commands": commands(
				command(map[string]interface{}{"command": "fmt {{file_name}}", "exts": "rs"}),
			)},
			property: "commands[0].command",
			code:     errors.ErrConfigInvalidTemplate,
		},
		{
			name: "no match rule",
			raw: map[string]interface{}{"commands": commands(
				command(map[string]interface{}{"command": "fmt"}),
			)},
			property: "commands[0].exts",
			code:     errors.ErrConfigMissingMatchRule,
		},
		{
			name: "unreadable cache key file",
			raw: map[string]interface{}{"commands": commands(
				command(map[string]interface{}{"command": "fmt", "exts": "rs", "cacheKeyFiles": "missing.toml"}),
			)},
			property: "commands[0].cacheKeyFiles[0]",
			code:     errors.ErrConfigReadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := resolve(t, tt.raw)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, errors.ErrConfigInvalid, errors.GetErrorCode(err))

			diags := config.Diagnostics(err)
			require.Len(t, diags, 1, "diagnostics: %v", diags)
			assert.Equal(t, tt.property, diags[0].Property)
			assert.Equal(t, tt.code, diags[0].Code)
			assert.True(t, errors.IsErrorCode(err, tt.code))
		})
	}
}

func TestResolve_CollectsEveryDiagnostic(t *testing.T) {
	_, err := resolve(t, map[string]interface{}{
		"lineWidth": -3,
		"timeout":   0,
		"bogus":     true,
		"commands": commands(
			command(map[string]interface{}{"command": "", "exts": "rs"}),
			command(map[string]interface{}{"command": "ok", "exts": "go"}),
			command(map[string]interface{}{"command": "fmt"}),
		),
	})
	require.Error(t, err)

	var got []string
	for _, d := range config.Diagnostics(err) {
		got = append(got, d.Property)
	}
	assert.Equal(t, []string{
		"lineWidth",
		"timeout",
		"commands[0].command",
		"commands[2].exts",
		"bogus",
	}, got)
	assert.True(t, config.HasDiagnostic(err, errors.ErrConfigMissingMatchRule))
	assert.False(t, config.HasDiagnostic(err, errors.ErrConfigInvalidPattern))
}

func TestResolve_CacheKeyFilesHash(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rustfmt.toml"), []byte("edition = \"2021\"\n"), 0644))

	raw := func() map[string]interface{} {
		return map[string]interface{}{"commands": commands(
			command(map[string]interface{}{"command": "rustfmt", "exts": "rs", "cacheKeyFiles": "rustfmt.toml"}),
		)}
	}

	first, err := config.ResolveWithOptions(raw(), config.ResolveOptions{WorkingDir: dir})
	require.NoError(t, err)
	assert.Len(t, first.Commands[0].CacheKeyFilesHash, 64)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rustfmt.toml"), []byte("edition = \"2018\"\n"), 0644))
	second, err := config.ResolveWithOptions(raw(), config.ResolveOptions{WorkingDir: dir})
	require.NoError(t, err)
	assert.NotEqual(t, first.Commands[0].CacheKeyFilesHash, second.Commands[0].CacheKeyFilesHash)
}

func TestResolve_YAMLStyleMaps(t *testing.T) {
	cfg, err := resolve(t, map[string]interface{}{
		"commands": []interface{}{
			map[interface{}]interface{}{"command": "yamlfmt -", "exts": []interface{}{"yaml", "yml"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"yaml", "yml"}, cfg.Commands[0].Exts)
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	cmd := map[string]interface{}{"command": "fmt", "exts": "rs"}
	raw := map[string]interface{}{"lineWidth": 90, "commands": commands(cmd)}

	_, err := resolve(t, raw)
	require.NoError(t, err)
	assert.Contains(t, raw, "lineWidth")
	assert.Contains(t, cmd, "command")
}

func TestConfig_Match(t *testing.T) {
	cfg, err := resolve(t, map[string]interface{}{
		"commands": commands(
			command(map[string]interface{}{"command": "sort-json", "exts": "json"}),
			command(map[string]interface{}{"command": "rustfmt", "exts": "rs"}),
			command(map[string]interface{}{"command": "prettier", "exts": []interface{}{"json", "ts"}}),
		),
	})
	require.NoError(t, err)

	matched := cfg.Match(filepath.Join(string(filepath.Separator)+"work", "data.json"))
	require.Len(t, matched, 2)
	assert.Equal(t, "sort-json", matched[0].Command)
	assert.Equal(t, "prettier", matched[1].Command)

	assert.Empty(t, cfg.Match("README.md"))
	assert.Equal(t, []string{"json", "rs", "ts"}, cfg.Extensions())
}
