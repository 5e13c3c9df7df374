// Package cachekey derives a fingerprint of a resolved configuration.
//
// Hosts keep formatted results keyed by the fingerprint, so it must change
// whenever anything that can affect output changes: the user's cacheKey,
// the general settings, every command with its match rules, and the
// contents of each command's cacheKeyFiles.
package cachekey

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"strconv"

	"github.com/arthur-debert/execfmt/pkg/config"
	"github.com/arthur-debert/execfmt/pkg/errors"
)

// Version tags the encoding. Bump it when the fingerprint layout or the
// formatting semantics change.
const Version = "execfmt/v1"

// Fingerprint returns the lowercase hex fingerprint of cfg. Identical
// configurations always produce identical fingerprints.
func Fingerprint(cfg *config.Config) (string, error) {
	if cfg == nil {
		return "", errors.New(errors.ErrInvalidInput, "fingerprint requires a configuration")
	}

	e := &encoder{h: sha256.New()}
	e.str(Version)
	e.str(cfg.General.CacheKey)
	e.int(cfg.General.LineWidth)
	e.int(cfg.General.IndentWidth)
	e.bool(cfg.General.UseTabs)
	e.str(string(cfg.General.NewLineKind))
	e.int(cfg.General.Timeout)

	e.int(len(cfg.Commands))
	for _, spec := range cfg.Commands {
		e.str(spec.Command)
		e.strs(spec.Exts)
		e.strs(spec.FileNames)
		e.strs(spec.Associations)
		e.bool(spec.Stdin)
		e.str(spec.Cwd)
		e.str(spec.CacheKeyFilesHash)
	}

	return hex.EncodeToString(e.h.Sum(nil)), nil
}

// encoder writes length-prefixed fields so adjacent values cannot collide.
type encoder struct {
	h   hash.Hash
	buf [binary.MaxVarintLen64]byte
}

func (e *encoder) str(s string) {
	n := binary.PutUvarint(e.buf[:], uint64(len(s)))
	e.h.Write(e.buf[:n])
	e.h.Write([]byte(s))
}

func (e *encoder) strs(values []string) {
	e.int(len(values))
	for _, v := range values {
		e.str(v)
	}
}

func (e *encoder) int(v int) {
	e.str(strconv.Itoa(v))
}

func (e *encoder) bool(v bool) {
	e.str(strconv.FormatBool(v))
}
