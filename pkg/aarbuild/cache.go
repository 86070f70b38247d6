package aarbuild

import (
	"container/list"
	"os"
	"sync"
	"time"

	"github.com/benjaminschreck/aarbuild/pkg/aarbuild/docx"
)

// TemplateCache keeps parsed template packages keyed by file path. An entry
// is reused only while the file's modification time and size are unchanged.
// Callers always receive a clone since assembly mutates the trees.
type TemplateCache struct {
	mu      sync.Mutex
	cache   map[string]*cacheEntry
	lru     *list.List
	maxSize int
}

type cacheEntry struct {
	path    string
	pkg     *docx.Package
	modTime time.Time
	size    int64
	element *list.Element
}

// NewTemplateCache creates a cache holding at most maxSize packages.
// A maxSize of 0 disables caching.
func NewTemplateCache(maxSize int) *TemplateCache {
	return &TemplateCache{
		cache:   make(map[string]*cacheEntry),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// Load returns the package at path, parsing it when the cache has no
// current entry. The second result reports a cache hit.
func (tc *TemplateCache) Load(path string) (*docx.Package, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, NewDocumentError("stat", path, err)
	}

	if pkg, ok := tc.get(path, info); ok {
		return pkg.Clone(), true, nil
	}

	pkg, err := docx.Open(path)
	if err != nil {
		return nil, false, NewDocumentError("open", path, err)
	}
	tc.set(path, pkg, info)
	return pkg.Clone(), false, nil
}

func (tc *TemplateCache) get(path string, info os.FileInfo) (*docx.Package, bool) {
	if tc.maxSize == 0 {
		return nil, false
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, exists := tc.cache[path]
	if !exists {
		return nil, false
	}
	if !entry.modTime.Equal(info.ModTime()) || entry.size != info.Size() {
		tc.removeLocked(entry)
		return nil, false
	}
	tc.lru.MoveToFront(entry.element)
	return entry.pkg, true
}

func (tc *TemplateCache) set(path string, pkg *docx.Package, info os.FileInfo) {
	if tc.maxSize == 0 {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	if existing, exists := tc.cache[path]; exists {
		existing.pkg = pkg
		existing.modTime = info.ModTime()
		existing.size = info.Size()
		tc.lru.MoveToFront(existing.element)
		return
	}

	if tc.lru.Len() >= tc.maxSize {
		if oldest := tc.lru.Back(); oldest != nil {
			tc.removeLocked(oldest.Value.(*cacheEntry))
		}
	}

	entry := &cacheEntry{
		path:    path,
		pkg:     pkg,
		modTime: info.ModTime(),
		size:    info.Size(),
	}
	entry.element = tc.lru.PushFront(entry)
	tc.cache[path] = entry
}

func (tc *TemplateCache) removeLocked(entry *cacheEntry) {
	delete(tc.cache, entry.path)
	tc.lru.Remove(entry.element)
}

// Remove drops the entry for path
func (tc *TemplateCache) Remove(path string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if entry, exists := tc.cache[path]; exists {
		tc.removeLocked(entry)
	}
}

// Clear removes all entries
func (tc *TemplateCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.cache = make(map[string]*cacheEntry)
	tc.lru = list.New()
}

// Size returns the current number of cached packages
func (tc *TemplateCache) Size() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.cache)
}
