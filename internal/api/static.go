package api

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// hashLen is how many hex digits of the content hash go into asset URLs.
const hashLen = 12

// StaticAssets serves files from fsys with content-hash cache busting.
// Path returns URLs like /static/css/styles.css?v=a1b2c3d4e5f6; a request
// whose v matches the current hash is cached as immutable.
type StaticAssets struct {
	mu       sync.RWMutex
	hashes   map[string]string // "/css/styles.css" -> short hash
	fsys     fs.FS
	basePath string
	logger   *slog.Logger
}

// NewStaticAssets hashes every file in fsys. basePath prefixes generated URLs.
func NewStaticAssets(fsys fs.FS, basePath string, logger *slog.Logger) *StaticAssets {
	sa := &StaticAssets{
		hashes:   make(map[string]string),
		fsys:     fsys,
		basePath: basePath,
		logger:   logger.With(slog.String("component", "static")),
	}
	sa.Rescan()
	return sa
}

// Path returns the cache-busted URL for a file such as "/css/styles.css".
// Unknown files get an unversioned URL.
func (sa *StaticAssets) Path(file string) string {
	sa.mu.RLock()
	hash, ok := sa.hashes[file]
	sa.mu.RUnlock()

	u := sa.basePath + "/static" + file
	if ok {
		u += "?v=" + hash
	}
	return u
}

// Handler serves the files below basePath+"/static/".
func (sa *StaticAssets) Handler() http.Handler {
	prefix := sa.basePath + "/static"
	files := http.StripPrefix(prefix, http.FileServerFS(sa.fsys))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cacheControl := "public, max-age=300"
		if v := r.URL.Query().Get("v"); v != "" {
			sa.mu.RLock()
			hash, ok := sa.hashes[strings.TrimPrefix(r.URL.Path, prefix)]
			sa.mu.RUnlock()
			if ok && hash == v {
				cacheControl = "public, max-age=31536000, immutable"
			} else {
				cacheControl = "public, max-age=3600"
			}
		}
		w.Header().Set("Cache-Control", cacheControl)
		files.ServeHTTP(w, r)
	})
}

// Rescan rehashes all files, picking up changes made at runtime.
func (sa *StaticAssets) Rescan() {
	hashes := make(map[string]string)

	err := fs.WalkDir(sa.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(sa.fsys, path)
		if err != nil {
			sa.logger.Warn("failed to hash static file", "path", path, "error", err)
			return nil
		}
		sum := sha256.Sum256(data)
		hashes["/"+path] = hex.EncodeToString(sum[:])[:hashLen]
		return nil
	})
	if err != nil {
		sa.logger.Warn("scanning static assets", "error", err)
	}

	sa.mu.Lock()
	sa.hashes = hashes
	sa.mu.Unlock()

	sa.logger.Info("static assets scanned", slog.Int("files", len(hashes)))
}
