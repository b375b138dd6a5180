package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// hashLen is the number of hex characters kept from a SHA256 digest. 64 bits
// is plenty for cache keying and change detection while keeping directory
// names readable.
const hashLen = 16

// HashFile returns the truncated SHA256 content hash of a single file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: paths are from controlled sources
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only descriptor

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil))[:hashLen], nil
}

// HashTree computes a deterministic content hash of all regular files under
// root, optionally restricted to the given extensions. Relative paths and
// contents both contribute, so a rename changes the hash as much as an edit
// does. Files are visited in sorted order with slash-normalized paths,
// making the hash stable across machines and platforms. A tree with no
// matching files hashes to the digest of no input, which is still a valid
// key.
func HashTree(root string, exts []string) (string, error) {
	files, err := CollectFiles(root, exts)
	if err != nil {
		return "", fmt.Errorf("collect files: %w", err)
	}

	h := sha256.New()
	for _, rel := range files {
		content, readErr := os.ReadFile(filepath.Join(root, rel)) //nolint:gosec // G304: paths are from controlled sources
		if readErr != nil {
			return "", fmt.Errorf("read %s: %w", rel, readErr)
		}
		h.Write([]byte(filepath.ToSlash(rel) + "\x00")) // hash.Hash.Write never returns an error
		h.Write(content)
		h.Write([]byte{0}) // separator after content to prevent cross-file collisions
	}
	return hex.EncodeToString(h.Sum(nil))[:hashLen], nil
}
