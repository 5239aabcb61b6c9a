// Package cache is a prefix-scoped, key-addressed blob store on disk plus the
// memoizing wrapper that derives keys from call arguments.
//
// Layout: <root>/cache/<prefix>/<key>, one file per value. Values are gob
// encoded and snappy compressed. Entries never expire; Put never overwrites.
package cache

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/golang/snappy"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"f1stats/internal/shared/errs"
	"f1stats/internal/shared/logger"
)

const dirName = "cache"

var safePrefix = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Cache stores values under one prefix directory.
// No locking: concurrent identical writes produce identical bytes.
type Cache struct {
	prefix string
	dir    string
	log    zerolog.Logger
}

// New validates prefix before touching the filesystem.
func New(root, prefix string) (*Cache, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	return &Cache{
		prefix: prefix,
		dir:    filepath.Join(root, dirName, prefix),
		log:    logger.WithComponent("Cache"),
	}, nil
}

// ValidatePrefix accepts a single path segment of letters, digits, '-' and '_'.
func ValidatePrefix(prefix string) error {
	if !safePrefix.MatchString(prefix) {
		return &errs.ConfigurationError{
			Field:  "prefix",
			Reason: "must be a non-empty [A-Za-z0-9_-] path segment, got " + strconv.Quote(prefix),
			Err:    errs.ErrInvalidPrefix,
		}
	}
	return nil
}

// Prefix returns the namespace of the cache.
func (c *Cache) Prefix() string { return c.prefix }

// Dir returns the directory holding the entries.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key)
}

// Put stores value under key. It returns false without writing if key already has a value.
func (c *Cache) Put(key string, value any) (bool, error) {
	// MkdirAll treats an existing directory as success, which covers racing writers.
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return false, eris.Wrapf(err, "cache %s: create directory", c.prefix)
	}
	if c.Has(key) {
		return false, nil
	}
	if err := c.write(key, value); err != nil {
		return false, err
	}
	c.log.Debug().Str("prefix", c.prefix).Str("key", key).Msg("Entry stored.")
	return true, nil
}

// Get decodes the value stored under key into out, which must be a pointer.
// ok is false when there is no entry.
func (c *Cache) Get(key string, out any) (ok bool, err error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, eris.Wrapf(err, "cache %s: read %s", c.prefix, key)
	}
	if err := decode(data, out); err != nil {
		return false, eris.Wrapf(err, "cache %s: decode %s", c.prefix, key)
	}
	return true, nil
}

// Has reports whether key has a stored value.
func (c *Cache) Has(key string) bool {
	info, err := os.Stat(c.path(key))
	return err == nil && info.Mode().IsRegular()
}

// Update overwrites an existing entry. It returns false if key is absent.
func (c *Cache) Update(key string, value any) (bool, error) {
	if !c.Has(key) {
		return false, nil
	}
	if err := c.write(key, value); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes one entry.
func (c *Cache) Delete(key string) bool {
	return os.Remove(c.path(key)) == nil
}

// Flush removes the whole prefix directory. It returns false if there was nothing to remove.
func (c *Cache) Flush() bool {
	if _, err := os.Stat(c.dir); err != nil {
		return false
	}
	if err := os.RemoveAll(c.dir); err != nil {
		c.log.Warn().Err(err).Str("dir", c.dir).Msg("Failed to flush cache.")
		return false
	}
	return true
}

func (c *Cache) write(key string, value any) error {
	data, err := encode(value)
	if err != nil {
		return eris.Wrapf(err, "cache %s: encode %s", c.prefix, key)
	}
	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		return eris.Wrapf(err, "cache %s: write %s", c.prefix, key)
	}
	return nil
}

func encode(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return nil, err
	}
	return snappy.Encode(nil, buf.Bytes()), nil
}

func decode(data []byte, out any) error {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(raw)).Decode(out)
}
