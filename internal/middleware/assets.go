package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const assetsCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

// AssetsWithCache serves dir under /assets. Outside dev mode every file gets a weak
// ETag computed at startup and a week of cache; dev mode always revalidates.
func AssetsWithCache(dir string, dev bool) http.Handler {
	files := http.StripPrefix("/assets", http.FileServer(http.Dir(dir)))
	if dev {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			files.ServeHTTP(w, r)
		})
	}
	etags := assetETags(dir)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		w.Header().Set("Cache-Control", assetsCacheControl)
		if et, ok := etags[strings.TrimPrefix(r.URL.Path, "/assets")]; ok {
			w.Header().Set("ETag", et)
			if etagMatches(r.Header.Get("If-None-Match"), et) {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

// assetETags maps "/css/app.css" style paths to weak content hashes.
func assetETags(dir string) map[string]string {
	etags := map[string]string{}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		if et, err := fileETag(path); err == nil {
			etags["/"+filepath.ToSlash(rel)] = et
		}
		return nil
	})
	return etags
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		if c := strings.TrimSpace(candidate); c == etag || c == "*" {
			return true
		}
	}
	return false
}

func fileETag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`, nil
}
