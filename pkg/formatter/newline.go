package formatter

import (
	"strings"

	"github.com/arthur-debert/execfmt/pkg/config"
)

// normalizeNewlines rewrites every line ending in text to the one selected
// by kind. original decides the ending for NewLineAuto.
func normalizeNewlines(text string, kind config.NewLineKind, original, goos string) string {
	if useCRLF(kind, original, goos) {
		return toCRLF(text)
	}
	return toLF(text)
}

func useCRLF(kind config.NewLineKind, original, goos string) bool {
	switch kind {
	case config.NewLineCRLF:
		return true
	case config.NewLineSystem:
		return goos == "windows"
	case config.NewLineAuto:
		return detectCRLF(original)
	default:
		return false
	}
}

// detectCRLF reports whether the first line ending in text is CRLF.
func detectCRLF(text string) bool {
	i := strings.IndexByte(text, '\n')
	return i > 0 && text[i-1] == '\r'
}

func toLF(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

func toCRLF(text string) string {
	return strings.ReplaceAll(toLF(text), "\n", "\r\n")
}
