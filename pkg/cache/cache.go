// Package cache remembers which files are already formatted.
//
// Entries map an absolute path to the checksum of its formatted content.
// A cache file belongs to one configuration fingerprint, so editing the
// configuration starts from an empty cache instead of trusting results that
// another set of commands produced. A nil *Cache is valid and never hits.
package cache

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/arthur-debert/execfmt/pkg/errors"
	"github.com/arthur-debert/execfmt/pkg/internal/hashutil"
	"github.com/arthur-debert/execfmt/pkg/logging"
	"github.com/arthur-debert/execfmt/pkg/paths"
)

// Current schema version - increment when payload format changes
const schemaVersion uint16 = 1

type payload struct {
	Schema      uint16
	Fingerprint string
	// Entries maps absolute paths to content checksums.
	Entries map[string]string
}

// Cache is safe for concurrent use.
type Cache struct {
	mu          sync.Mutex
	path        string
	fingerprint string
	entries     map[string]string
	dirty       bool
	logger      zerolog.Logger
}

// DefaultDir returns the per-user cache directory.
func DefaultDir() string {
	return paths.CacheDir()
}

// Open loads the cache for fingerprint from dir. A missing, unreadable or
// outdated cache file yields an empty cache.
func Open(dir, fingerprint string) (*Cache, error) {
	if fingerprint == "" {
		return nil, errors.New(errors.ErrCache, "cache requires a fingerprint")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCache, "failed to create cache directory %s", dir)
	}

	c := &Cache{
		path:        filepath.Join(dir, fingerprint+".mp"),
		fingerprint: fingerprint,
		entries:     make(map[string]string),
		logger:      logging.GetLogger("cache"),
	}

	var p payload
	found, err := c.read(&p)
	switch {
	case err != nil:
		c.logger.Warn().Err(err).Str("path", c.path).Msg("Ignoring unreadable cache")
	case !found:
		c.logger.Debug().Str("path", c.path).Msg("No cache yet")
	case p.Schema != schemaVersion || p.Fingerprint != fingerprint:
		c.logger.Debug().Uint16("schema", p.Schema).Msg("Discarding outdated cache")
	default:
		if p.Entries != nil {
			c.entries = p.Entries
		}
		c.logger.Debug().Int("entries", len(c.entries)).Str("path", c.path).Msg("Cache loaded")
	}
	return c, nil
}

func (c *Cache) read(out *payload) (bool, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// IsFormatted reports whether content is what was last recorded for path.
func (c *Cache) IsFormatted(path string, content []byte) bool {
	if c == nil {
		return false
	}
	sum := hashutil.TextChecksum(content)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[path] == sum
}

// MarkFormatted records content as the formatted state of path.
func (c *Cache) MarkFormatted(path string, content []byte) {
	if c == nil {
		return
	}
	sum := hashutil.TextChecksum(content)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[path] != sum {
		c.entries[path] = sum
		c.dirty = true
	}
}

// Forget drops path from the cache.
func (c *Cache) Forget(path string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[path]; ok {
		delete(c.entries, path)
		c.dirty = true
	}
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Save writes the cache when it changed, replacing the file atomically.
func (c *Cache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}

	f, err := os.CreateTemp(filepath.Dir(c.path), "tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCache, "failed to create cache file")
	}
	tmp := f.Name()
	defer func() {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			c.logger.Warn().Err(err).Str("path", tmp).Msg("Failed to remove temporary cache file")
		}
	}()

	p := payload{Schema: schemaVersion, Fingerprint: c.fingerprint, Entries: c.entries}
	if err := msgpack.NewEncoder(f).Encode(&p); err != nil {
		_ = f.Close()
		return errors.Wrap(err, errors.ErrCache, "failed to encode cache")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCache, "failed to write cache")
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return errors.Wrap(err, errors.ErrCache, "failed to replace cache")
	}

	c.dirty = false
	c.logger.Debug().Int("entries", len(c.entries)).Str("path", c.path).Msg("Cache saved")
	return nil
}

// Clear removes every cache file in dir.
func Clear(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*.mp"))
	if err != nil {
		return errors.Wrap(err, errors.ErrCache, "failed to list cache files")
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrCache, "failed to remove %s", m)
		}
	}
	return nil
}
