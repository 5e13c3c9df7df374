package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"

	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/internal/hashutil"
	"github.com/arthur-debert/execfmt/pkg/matcher"
	"github.com/arthur-debert/execfmt/pkg/paths"
	"github.com/arthur-debert/execfmt/pkg/template"
)

// Diagnostic describes one problem found while resolving configuration.
type Diagnostic struct {
	// Property is the path to the offending value, e.g. "commands[1].exts[0]".
	Property string
	Code     errors.ErrorCode
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Property, d.Message)
}

// ResolveOptions tunes resolution.
type ResolveOptions struct {
	// WorkingDir anchors relative cwd and cacheKeyFiles values. Defaults to
	// the process working directory.
	WorkingDir string
	// CaseInsensitive folds case in file name and glob matching. Nil selects
	// the platform default.
	CaseInsensitive *bool
}

// Resolve validates a raw configuration document using default options.
func Resolve(raw map[string]interface{}) (*Config, error) {
	return ResolveWithOptions(raw, ResolveOptions{})
}

// ResolveWithOptions validates a raw configuration document, applies
// defaults and compiles templates and match rules. All problems are
// collected; the returned error carries them as details under
// "diagnostics" and wraps the first one.
func ResolveWithOptions(raw map[string]interface{}, opts ResolveOptions) (*Config, error) {
	workingDir := opts.WorkingDir
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot determine working directory")
		}
		workingDir = wd
	}
	caseInsensitive := matcher.DefaultCaseInsensitive()
	if opts.CaseInsensitive != nil {
		caseInsensitive = *opts.CaseInsensitive
	}

	r := &resolver{workingDir: workingDir, caseInsensitive: caseInsensitive}
	cfg := r.resolve(raw)
	if len(r.diags) > 0 {
		return nil, diagnosticsError(r.diags)
	}
	return cfg, nil
}

// Diagnostics extracts the diagnostics from an error returned by Resolve.
func Diagnostics(err error) []Diagnostic {
	details := errors.GetErrorDetails(err)
	if details == nil {
		return nil
	}
	diags, _ := details["diagnostics"].([]Diagnostic)
	return diags
}

// HasDiagnostic reports whether err carries a diagnostic with code.
func HasDiagnostic(err error, code errors.ErrorCode) bool {
	for _, d := range Diagnostics(err) {
		if d.Code == code {
			return true
		}
	}
	return false
}

func diagnosticsError(diags []Diagnostic) error {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.String()
	}
	first := errors.New(diags[0].Code, diags[0].Message).WithDetail("property", diags[0].Property)
	err := errors.Newf(errors.ErrConfigInvalid, "invalid configuration: %s", strings.Join(lines, "; ")).
		WithDetail("diagnostics", diags)
	err.Wrapped = first
	return err
}

type resolver struct {
	workingDir      string
	caseInsensitive bool
	diags           []Diagnostic
}

func (r *resolver) addf(property string, code errors.ErrorCode, format string, args ...interface{}) {
	r.diags = append(r.diags, Diagnostic{Property: property, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (r *resolver) resolve(raw map[string]interface{}) *Config {
	doc := copyMap(raw)

	general := GeneralConfig{
		LineWidth:   r.takeInt(doc, "lineWidth", "", DefaultLineWidth),
		IndentWidth: r.takeInt(doc, "indentWidth", "", DefaultIndentWidth),
		UseTabs:     r.takeBool(doc, "useTabs", "", false),
		NewLineKind: NewLineKind(r.takeString(doc, "newLineKind", "", string(DefaultNewLineKind))),
		CacheKey:    r.takeString(doc, "cacheKey", "", ""),
	}
	if general.LineWidth <= 0 {
		r.addf("lineWidth", errors.ErrConfigInvalidValue, "expected a positive integer, got %d", general.LineWidth)
	}
	if general.IndentWidth < 0 {
		r.addf("indentWidth", errors.ErrConfigInvalidValue, "expected a non-negative integer, got %d", general.IndentWidth)
	}
	if !general.NewLineKind.Valid() {
		r.addf("newLineKind", errors.ErrConfigInvalidValue,
			"expected one of auto, crlf, lf, system, got %q", general.NewLineKind)
	}

	general.Timeout = r.takeTimeout(doc)

	if cwd := r.takeString(doc, "cwd", "", ""); cwd != "" {
		general.Cwd = r.absolute(cwd)
	}

	cfg := &Config{General: general}

	value, ok := doc["commands"]
	delete(doc, "commands")
	switch {
	case !ok:
		r.addf("commands", errors.ErrConfigMissingCommands, "expected to find a \"commands\" array property")
	default:
		elements, isList := asList(value)
		if !isList {
			r.addf("commands", errors.ErrConfigInvalidType, "expected an array of command objects")
			break
		}
		for i, element := range elements {
			prefix := fmt.Sprintf("commands[%d]", i)
			obj, isObj := asMap(element)
			if !isObj {
				r.addf(prefix, errors.ErrConfigInvalidType, "expected to find only objects in the array")
				continue
			}
			if spec := r.resolveCommand(i, prefix, obj, general.Cwd); spec != nil {
				cfg.Commands = append(cfg.Commands, spec)
			}
		}
	}

	r.unknownKeys(doc, "")
	return cfg
}

func (r *resolver) takeTimeout(doc map[string]interface{}) int {
	value, ok := doc["timeout"]
	delete(doc, "timeout")
	if !ok {
		return DefaultTimeout
	}
	n, ok := toInt(value)
	if !ok {
		r.addf("timeout", errors.ErrConfigInvalidTimeout, "expected a whole number of seconds, got %v", value)
		return DefaultTimeout
	}
	if n <= 0 {
		r.addf("timeout", errors.ErrConfigInvalidTimeout, "expected a positive number of seconds, got %d", n)
		return DefaultTimeout
	}
	if int64(n) > MaxTimeout {
		r.addf("timeout", errors.ErrConfigInvalidTimeout, "expected at most %d seconds, got %d", MaxTimeout, n)
		return DefaultTimeout
	}
	return n
}

func (r *resolver) resolveCommand(index int, prefix string, obj map[string]interface{}, rootCwd string) *CommandSpec {
	before := len(r.diags)
	obj = copyMap(obj)

	spec := &CommandSpec{
		Index:   index,
		Command: strings.TrimSpace(r.takeString(obj, "command", prefix, "")),
		Stdin:   r.takeBool(obj, "stdin", prefix, true),
	}

	if spec.Command == "" {
		r.addf(join(prefix, "command"), errors.ErrConfigEmptyCommand, "expected to find a command name")
	} else {
		tmpl, err := template.Compile(spec.Command)
		switch {
		case errors.IsErrorCode(err, errors.ErrTemplateEmpty):
			r.addf(join(prefix, "command"), errors.ErrConfigEmptyCommand, "expected to find a command name")
		case err != nil:
			r.addf(join(prefix, "command"), errors.ErrConfigInvalidTemplate, "invalid template: %s", messageOf(err))
		default:
			spec.tmpl = tmpl
		}
	}

	switch cwd := paths.ExpandHome(r.takeString(obj, "cwd", prefix, "")); {
	case cwd != "" && rootCwd != "" && !filepath.IsAbs(cwd):
		spec.Cwd = filepath.Join(rootCwd, cwd)
	case cwd != "":
		spec.Cwd = r.absolute(cwd)
	case rootCwd != "":
		spec.Cwd = rootCwd
	default:
		spec.Cwd = r.workingDir
	}

	spec.Exts = r.takeStringList(obj, "exts", prefix)
	spec.FileNames = r.takeStringList(obj, "fileNames", prefix)
	spec.Associations = r.takeStringList(obj, "associations", prefix)
	spec.CacheKeyFiles = r.takeStringList(obj, "cacheKeyFiles", prefix)

	for i, ext := range spec.Exts {
		spec.Exts[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	spec.Exts = dropEmpty(spec.Exts)

	rules, err := matcher.Compile(matcher.Options{
		Exts:            spec.Exts,
		FileNames:       spec.FileNames,
		Associations:    spec.Associations,
		BaseDir:         spec.Cwd,
		CaseInsensitive: r.caseInsensitive,
	})
	if err != nil {
		property := join(prefix, "associations")
		if idx, ok := errors.GetErrorDetails(err)["index"].(int); ok {
			property = fmt.Sprintf("%s[%d]", property, idx)
		}
		r.addf(property, errors.ErrConfigInvalidPattern, "%s", messageOf(err))
	} else {
		spec.rules = rules
	}

	r.unknownKeys(obj, prefix)

	if len(r.diags) == before && rules != nil && rules.Empty() {
		r.addf(join(prefix, "exts"), errors.ErrConfigMissingMatchRule,
			"you must specify either: exts (recommended), fileNames, or associations")
	}

	if len(r.diags) == before && len(spec.CacheKeyFiles) > 0 {
		spec.CacheKeyFilesHash = r.hashCacheKeyFiles(prefix, spec)
	}

	if len(r.diags) > before {
		return nil
	}
	return spec
}

// hashCacheKeyFiles digests the contents of the listed files, resolved
// against the command's cwd.
func (r *resolver) hashCacheKeyFiles(prefix string, spec *CommandSpec) string {
	paths := make([]string, len(spec.CacheKeyFiles))
	for i, name := range spec.CacheKeyFiles {
		paths[i] = name
		if !filepath.IsAbs(name) {
			paths[i] = filepath.Join(spec.Cwd, name)
		}
	}
	digest, idx, err := hashutil.FilesDigest(paths)
	if err != nil {
		r.addf(fmt.Sprintf("%s.cacheKeyFiles[%d]", prefix, idx), errors.ErrConfigReadFailed,
			"unable to read file %q: %v", paths[idx], err)
		return ""
	}
	return digest
}

func (r *resolver) unknownKeys(obj map[string]interface{}, prefix string) {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		r.addf(join(prefix, key), errors.ErrConfigUnknownKey, "unknown property in configuration")
	}
}

func (r *resolver) absolute(path string) string {
	path = paths.ExpandHome(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.workingDir, path)
}

func (r *resolver) takeInt(obj map[string]interface{}, key, prefix string, def int) int {
	value, ok := obj[key]
	delete(obj, key)
	if !ok {
		return def
	}
	n, ok := toInt(value)
	if !ok {
		r.addf(join(prefix, key), errors.ErrConfigInvalidType, "expected an integer, got %T", value)
		return def
	}
	return n
}

func (r *resolver) takeBool(obj map[string]interface{}, key, prefix string, def bool) bool {
	value, ok := obj[key]
	delete(obj, key)
	if !ok {
		return def
	}
	b, ok := value.(bool)
	if !ok {
		r.addf(join(prefix, key), errors.ErrConfigInvalidType, "expected a boolean, got %T", value)
		return def
	}
	return b
}

func (r *resolver) takeString(obj map[string]interface{}, key, prefix, def string) string {
	value, ok := obj[key]
	delete(obj, key)
	if !ok || value == nil {
		return def
	}
	s, ok := value.(string)
	if !ok {
		r.addf(join(prefix, key), errors.ErrConfigInvalidType, "expected a string, got %T", value)
		return def
	}
	return s
}

// takeStringList accepts a single string or a list of strings.
func (r *resolver) takeStringList(obj map[string]interface{}, key, prefix string) []string {
	value, ok := obj[key]
	delete(obj, key)
	if !ok || value == nil {
		return nil
	}
	if s, isString := value.(string); isString {
		return dropEmpty([]string{s})
	}
	elements, isList := asList(value)
	if !isList {
		r.addf(join(prefix, key), errors.ErrConfigInvalidType, "expected string or array value")
		return nil
	}
	out := make([]string, 0, len(elements))
	for i, element := range elements {
		s, isString := element.(string)
		if !isString {
			r.addf(fmt.Sprintf("%s[%d]", join(prefix, key), i), errors.ErrConfigInvalidType, "expected string element")
			continue
		}
		out = append(out, s)
	}
	return dropEmpty(out)
}

// toInt converts the integral numeric types produced by the TOML, YAML and
// JSON decoders.
func toInt(value interface{}) (int, bool) {
	var (
		n   int
		err error
	)
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		n, err = safecast.Conv[int](v)
	case int16:
		n, err = safecast.Conv[int](v)
	case int32:
		n, err = safecast.Conv[int](v)
	case int64:
		n, err = safecast.Conv[int](v)
	case uint:
		n, err = safecast.Conv[int](v)
	case uint8:
		n, err = safecast.Conv[int](v)
	case uint16:
		n, err = safecast.Conv[int](v)
	case uint32:
		n, err = safecast.Conv[int](v)
	case uint64:
		n, err = safecast.Conv[int](v)
	case float64:
		n, err = safecast.Convert[int](v)
	default:
		return 0, false
	}
	return n, err == nil
}

func asList(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, true
	case []map[string]interface{}:
		out := make([]interface{}, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, true
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			s, ok := key.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	}
	return nil, false
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func dropEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func messageOf(err error) string {
	if e, ok := err.(*errors.ExecfmtError); ok {
		return e.Message
	}
	return err.Error()
}
