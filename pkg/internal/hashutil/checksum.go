package hashutil

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// FileChecksum calculates the SHA256 checksum of a file
func FileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

// TextChecksum calculates the SHA256 checksum of data
func TextChecksum(data []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// FilesDigest hashes the contents of paths in order into one hex digest.
// It returns the index of the file that could not be read alongside the
// error.
func FilesDigest(paths []string) (string, int, error) {
	hash := sha256.New()
	for i, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return "", i, err
		}
		_, err = io.Copy(hash, file)
		_ = file.Close()
		if err != nil {
			return "", i, err
		}
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), -1, nil
}
