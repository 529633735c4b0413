// Package assets stores user-uploaded background images on local disk under
// a per-user namespace and hands back public URLs.
package assets

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// maxImageBytes bounds a decoded upload (8MB).
const maxImageBytes = 8 << 20

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Store writes background images below rootDir and builds URLs relative to
// publicBaseURL.
type Store struct {
	rootDir       string
	publicBaseURL string
	now           func() time.Time
}

func NewStore(rootDir, publicBaseURL string) *Store {
	return &Store{
		rootDir:       rootDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// SaveBackgroundImage decodes a data-URL payload and writes it to
// <root>/backgrounds/<userID>/<ts>-<sanitized name>. It returns the public
// URL of the stored file.
func (s *Store) SaveBackgroundImage(userID, dataURL, fileName string) (string, error) {
	payload, mimeType, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("unsupported content type %q", mimeType)
	}
	if len(payload) > maxImageBytes {
		return "", fmt.Errorf("image too large: %d bytes", len(payload))
	}

	// Keep stored names ASCII-only; uploads routinely carry CJK file names.
	safeName := unsafeChars.ReplaceAllString(fileName, "_")
	relPath := filepath.Join("backgrounds", userID, fmt.Sprintf("%d-%s", s.now().UnixMilli(), safeName))

	fullPath := filepath.Join(s.rootDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("creating asset directory: %w", err)
	}
	if err := os.WriteFile(fullPath, payload, 0o644); err != nil {
		return "", fmt.Errorf("writing asset: %w", err)
	}

	return s.publicBaseURL + "/" + filepath.ToSlash(relPath), nil
}

// decodeDataURL splits a `data:<mime>;base64,<payload>` URL into its decoded
// bytes and mime type.
func decodeDataURL(dataURL string) ([]byte, string, error) {
	header, encoded, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, "", fmt.Errorf("malformed data URL")
	}
	header = strings.TrimPrefix(header, "data:")
	mimeType, enc, found := strings.Cut(header, ";")
	if !found || enc != "base64" {
		return nil, "", fmt.Errorf("data URL is not base64-encoded")
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image data: %w", err)
	}
	return payload, mimeType, nil
}
