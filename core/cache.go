package core

import (
	"compress/gzip"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// PageCache stores rendered pages on disk as index.html plus a gzipped copy,
// one directory per route below dir.
type PageCache struct {
	dir  string
	lock sync.Mutex
}

func NewPageCache(dir string) *PageCache {
	return &PageCache{dir: dir}
}

func (c *PageCache) Dir() string {
	return c.dir
}

func (c *PageCache) routeDir(route string) string {
	clean := strings.TrimPrefix(path.Clean("/"+route), "/")
	return filepath.Join(c.dir, filepath.FromSlash(clean))
}

func (c *PageCache) Get(route string) ([]byte, bool) {
	content, err := os.ReadFile(filepath.Join(c.routeDir(route), "index.html"))
	if err != nil {
		return nil, false
	}
	return content, true
}

func (c *PageCache) Save(route string, html []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	outDir := c.routeDir(route)
	if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
		return err
	}

	htmlPath := filepath.Join(outDir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0644); err != nil {
		return err
	}

	f, err := os.Create(htmlPath + ".gz")
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := gz.Write(html); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// Clear removes the cached page for route and everything below it. An empty
// route clears the whole cache.
func (c *PageCache) Clear(route string) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	return os.RemoveAll(c.routeDir(route))
}

// Count returns how many pages are cached.
func (c *PageCache) Count() int {
	count := 0
	filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && filepath.Base(path) == "index.html" {
			count++
		}
		return nil
	})
	return count
}
