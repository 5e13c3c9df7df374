package config

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/execfmt/pkg/errors"
)

// File mirrors the configuration document, for writing it back out.
type File struct {
	LineWidth   int           `toml:"lineWidth" yaml:"lineWidth"`
	IndentWidth int           `toml:"indentWidth" yaml:"indentWidth"`
	UseTabs     bool          `toml:"useTabs" yaml:"useTabs"`
	NewLineKind string        `toml:"newLineKind" yaml:"newLineKind"`
	CacheKey    string        `toml:"cacheKey,omitempty" yaml:"cacheKey,omitempty"`
	Timeout     int           `toml:"timeout" yaml:"timeout"`
	Cwd         string        `toml:"cwd,omitempty" yaml:"cwd,omitempty"`
	Commands    []FileCommand `toml:"commands" yaml:"commands"`
}

// FileCommand is one entry of File.Commands.
type FileCommand struct {
	Command       string   `toml:"command" yaml:"command"`
	Exts          []string `toml:"exts,omitempty" yaml:"exts,omitempty"`
	FileNames     []string `toml:"fileNames,omitempty" yaml:"fileNames,omitempty"`
	Associations  []string `toml:"associations,omitempty" yaml:"associations,omitempty"`
	Stdin         bool     `toml:"stdin" yaml:"stdin"`
	Cwd           string   `toml:"cwd,omitempty" yaml:"cwd,omitempty"`
	CacheKeyFiles []string `toml:"cacheKeyFiles,omitempty" yaml:"cacheKeyFiles,omitempty"`
}

// SampleFile returns the configuration printed by "execfmt config init".
func SampleFile() *File {
	return &File{
		LineWidth:   DefaultLineWidth,
		IndentWidth: DefaultIndentWidth,
		NewLineKind: string(DefaultNewLineKind),
		Timeout:     DefaultTimeout,
		Commands: []FileCommand{
			{
				Command: "rustfmt --edition 2021",
				Exts:    []string{"rs"},
				Stdin:   true,
			},
			{
				Command:   "prettier --stdin-filepath {{file_path}} --tab-width {{indent_width}} --print-width {{line_width}}",
				Exts:      []string{"ts", "tsx", "js", "json"},
				FileNames: []string{".prettierrc"},
				Stdin:     true,
			},
			{
				Command:      "shfmt -i {{indent_width}} {{file_path}}",
				Associations: []string{"scripts/**/*"},
				Stdin:        false,
			},
		},
	}
}

// ToFile converts a resolved configuration back into document form.
func ToFile(cfg *Config) *File {
	f := &File{
		LineWidth:   cfg.General.LineWidth,
		IndentWidth: cfg.General.IndentWidth,
		UseTabs:     cfg.General.UseTabs,
		NewLineKind: string(cfg.General.NewLineKind),
		CacheKey:    cfg.General.CacheKey,
		Timeout:     cfg.General.Timeout,
		Cwd:         cfg.General.Cwd,
		Commands:    make([]FileCommand, 0, len(cfg.Commands)),
	}
	for _, spec := range cfg.Commands {
		f.Commands = append(f.Commands, FileCommand{
			Command:       spec.Command,
			Exts:          spec.Exts,
			FileNames:     spec.FileNames,
			Associations:  spec.Associations,
			Stdin:         spec.Stdin,
			Cwd:           spec.Cwd,
			CacheKeyFiles: spec.CacheKeyFiles,
		})
	}
	return f
}

// GenerateTOML renders f as TOML.
func GenerateTOML(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(f); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode TOML")
	}
	return buf.Bytes(), nil
}

// GenerateYAML renders f as YAML.
func GenerateYAML(f *File) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
	}
	return buf.Bytes(), nil
}
