// Package stickers loads sticker assets by name and keeps their trimmed
// rasters in a bounded cache.
package stickers

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/menta2k/sticker-editor/internal/utils"
	"github.com/menta2k/sticker-editor/pkg/raster"
	"github.com/menta2k/sticker-editor/pkg/trimmer"
)

// DefaultCacheSize is used when a non-positive cache size is requested
const DefaultCacheSize = 64

// ErrUnknownSticker is returned for names that are not in the library
var ErrUnknownSticker = errors.New("unknown sticker")

// Library serves trimmed sticker rasters from a file system
type Library struct {
	fsys  fs.FS
	cache *lru.Cache[string, *image.NRGBA]
}

// Open creates a library backed by a directory on disk
func Open(dir string, cacheSize int) (*Library, error) {
	if !utils.DirExists(dir) {
		return nil, fmt.Errorf("sticker directory not found: %s", dir)
	}
	return New(os.DirFS(dir), cacheSize)
}

// New creates a library backed by fsys
func New(fsys fs.FS, cacheSize int) (*Library, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *image.NRGBA](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create sticker cache: %w", err)
	}
	return &Library{fsys: fsys, cache: cache}, nil
}

// List returns the names of all sticker images, sorted
func (l *Library) List() ([]string, error) {
	var names []string
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && utils.IsImageFile(p) {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stickers: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the trimmed raster for a sticker. The result is shared
// between callers and must be treated as read-only.
func (l *Library) Get(name string) (*image.NRGBA, error) {
	name = path.Clean(name)
	if !fs.ValidPath(name) || !utils.IsImageFile(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSticker, name)
	}

	if img, ok := l.cache.Get(name); ok {
		return img, nil
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSticker, name)
		}
		return nil, fmt.Errorf("failed to read sticker %s: %w", name, err)
	}

	img, err := raster.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("sticker %s: %w", name, err)
	}

	trimmed := trimmer.TrimNRGBA(img)
	l.cache.Add(name, trimmed)
	return trimmed, nil
}

// Cached reports how many trimmed stickers are currently held
func (l *Library) Cached() int {
	return l.cache.Len()
}

// Purge drops every cached raster
func (l *Library) Purge() {
	l.cache.Purge()
}
