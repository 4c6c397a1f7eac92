// Package photos stores progress photos on disk and hands back file:// URIs
// for attaching to a workout.
package photos

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxSize is the largest photo accepted, in bytes.
const MaxSize = 10 << 20

var (
	ErrUnsupportedType = errors.New("unsupported photo type")
	ErrTooLarge        = errors.New("photo too large")
	ErrEmpty           = errors.New("photo is empty")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// Dir writes photos into one directory.
type Dir struct {
	path string
}

// New returns a Dir rooted at path, creating it if needed.
func New(path string) (*Dir, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving photo dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating photo dir: %w", err)
	}
	return &Dir{path: abs}, nil
}

// Path returns the absolute directory.
func (d *Dir) Path() string {
	return d.path
}

// Save writes the image in r under a fresh name and returns its file:// URI.
// An empty contentType is sniffed from the data.
func (d *Dir) Save(r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("reading photo: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	mediaType, _, _ := strings.Cut(contentType, ";")
	ext, ok := extensions[strings.TrimSpace(strings.ToLower(mediaType))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	name := filepath.Join(d.path, uuid.NewString()+ext)
	if err := writeFile(name, data); err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(name)}).String(), nil
}

// writeFile writes through a temp file and renames it into place, so a
// partial photo never appears under its final name.
func writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), ".tmp-photo-*")
	if err != nil {
		return fmt.Errorf("creating temp photo: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing photo: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing photo: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod photo: %w", err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("renaming photo: %w", err)
	}
	return nil
}

// Remove deletes a photo previously returned by Save. URIs outside the
// directory are ignored.
func (d *Dir) Remove(uri string) error {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return nil
	}
	name := filepath.FromSlash(u.Path)
	if filepath.Dir(name) != d.path {
		return nil
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing photo: %w", err)
	}
	return nil
}
