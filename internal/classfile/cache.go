package classfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"jsema/internal/project"
)

// Current schema version - increment when the cached Class layout changes.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores decoded class descriptors keyed by digest. Thread-safe.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type diskPayload struct {
	Schema uint16 `msgpack:"schema"`
	Class  *Class `msgpack:"class"`
}

// OpenDiskCache opens the cache under dir, or under the user cache
// directory when dir is empty.
func OpenDiskCache(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	return c.dir
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := key.Hex()
	// два уровня, чтобы не класть десятки тысяч файлов в один каталог
	return filepath.Join(c.dir, "classes", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a descriptor.
func (c *DiskCache) Put(key project.Digest, class *Class) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err = enc.Encode(&diskPayload{Schema: diskCacheSchemaVersion, Class: class}); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads a descriptor. Entries written by another schema are treated as
// missing.
func (c *DiskCache) Get(key project.Digest) (*Class, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()
	var payload diskPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	if payload.Schema != diskCacheSchemaVersion || payload.Class == nil {
		return nil, false, nil
	}
	return payload.Class, true, nil
}

// DropAll invalidates the cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// CachedIndex serves descriptors of an inner index through a DiskCache.
// Concurrent lookups of one class share a single decode.
type CachedIndex struct {
	inner Index
	cache *DiskCache
	salt  project.Digest
	group singleflight.Group

	hits   int
	misses int
	mu     sync.Mutex
}

// NewCachedIndex wraps inner. salt must change whenever the inner index's
// contents change; StampDigest derives one from a classpath entry.
func NewCachedIndex(inner Index, cache *DiskCache, salt project.Digest) *CachedIndex {
	return &CachedIndex{inner: inner, cache: cache, salt: salt}
}

func (c *CachedIndex) Has(name string) bool {
	return c.inner.Has(name)
}

func (c *CachedIndex) Find(name string) (*Class, error) {
	v, err, _ := c.group.Do(name, func() (any, error) {
		key := project.Combine(c.salt, project.DigestString(name))
		if cls, ok, err := c.cache.Get(key); err == nil && ok {
			c.count(true)
			return cls, nil
		}
		c.count(false)
		cls, err := c.inner.Find(name)
		if err != nil {
			return nil, err
		}
		// a failed write only costs a re-decode next run
		_ = c.cache.Put(key, cls)
		return cls, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Class), nil
}

func (c *CachedIndex) count(hit bool) {
	c.mu.Lock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
}

// Stats returns cache hits and misses so far.
func (c *CachedIndex) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *CachedIndex) HasPackage(pkg string) bool {
	if p, ok := c.inner.(PackageIndex); ok {
		return p.HasPackage(pkg)
	}
	return false
}

func (c *CachedIndex) Names() []string {
	if l, ok := c.inner.(Lister); ok {
		return l.Names()
	}
	return nil
}

// StampDigest identifies a classpath entry by path, size and modification
// time.
func StampDigest(path string) (project.Digest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return project.Digest{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	stamp := fmt.Sprintf("%s|%d|%d|%d", abs, info.Size(), info.ModTime().UnixNano(), diskCacheSchemaVersion)
	return project.DigestString(stamp), nil
}
