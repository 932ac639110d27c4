package ignoretree

import (
	"io/fs"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// fingerprint is the filesystem identity of an ignore file at load time.
// Equality is all-or-nothing: any single differing field forces a
// reload, so a fast delete-and-recreate that happens to land on the
// same mtime is still caught by the inode.
type fingerprint struct {
	mtimeSec  int64
	mtimeNsec int64
	size      int64
	mode      fs.FileMode
	inode     uint64
	uid       uint32
	gid       uint32
}

func newFingerprint(info fs.FileInfo) fingerprint {
	fp := fingerprint{
		mtimeSec:  info.ModTime().Unix(),
		mtimeNsec: int64(info.ModTime().Nanosecond()),
		size:      info.Size(),
		mode:      info.Mode(),
	}
	fp.inode, fp.uid, fp.gid = statIdentity(info)
	return fp
}

type cacheEntry struct {
	rules *RuleSet
	fp    fingerprint
}

// Cache maps ignore-file paths to their parsed rule sets, keyed by
// filesystem identity. The table is unbounded: staleness is detected by
// fingerprint comparison and entries are replaced, never proactively
// evicted. One Cache is typically shared process-wide across resolvers.
type Cache struct {
	mu      sync.Mutex
	fsys    afero.Fs
	logger  *log.Logger
	entries map[string]cacheEntry
}

// NewCache creates a cache reading through fsys. Parse diagnostics go
// to logger.
func NewCache(fsys afero.Fs, logger *log.Logger) *Cache {
	return &Cache{
		fsys:    fsys,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
}

// Load returns the rule set for path, reusing the cached parse when the
// file's identity fingerprint is unchanged. It returns nil when the
// file is missing or unreadable; either way any stale entry is dropped
// first. A reload always reparses the whole file.
//
// The check-then-reload sequence runs under one critical section so two
// callers never race a reload of the same file.
func (c *Cache) Load(path string) *RuleSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := c.fsys.Stat(path)
	if err != nil {
		delete(c.entries, path)
		return nil
	}

	fp := newFingerprint(info)
	if e, ok := c.entries[path]; ok {
		if e.fp == fp {
			return e.rules
		}
		delete(c.entries, path)
	}

	content, err := afero.ReadFile(c.fsys, path)
	if err != nil {
		c.logger.Warn("ignore file became unreadable", "path", path, "err", err)
		return nil
	}
	rs := parseRuleSet(path, content, c.logger)

	// Fingerprint again after the read: a write racing the load would
	// otherwise be cached under the pre-read identity and never noticed.
	info, err = c.fsys.Stat(path)
	if err != nil {
		return rs
	}
	c.entries[path] = cacheEntry{rules: rs, fp: newFingerprint(info)}
	return rs
}

// Invalidate drops the cached entry for path, if any. The next Load
// re-derives it from disk.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len reports the number of cached ignore files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
