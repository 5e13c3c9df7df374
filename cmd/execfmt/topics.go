package execfmt

import (
	"embed"
	"io/fs"
)

//go:embed topics
var topicFiles embed.FS

// helpTopics returns the embedded help topics rooted at the topics directory.
func helpTopics() fs.FS {
	sub, err := fs.Sub(topicFiles, "topics")
	if err != nil {
		return nil
	}
	return sub
}
