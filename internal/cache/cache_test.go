package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1stats/internal/shared/errs"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(t.TempDir(), "test")
	require.NoError(t, err)
	return c
}

func countEntries(t *testing.T, c *Cache) int {
	t.Helper()
	entries, err := os.ReadDir(c.Dir())
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

func TestNew_InvalidPrefix(t *testing.T) {
	root := t.TempDir()
	for _, prefix := range []string{"", "../x", "/x", "x/", "a b", "x/../y", ".."} {
		t.Run(prefix, func(t *testing.T) {
			c, err := New(root, prefix)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, errs.ErrInvalidPrefix))

			var ce *errs.ConfigurationError
			assert.True(t, errors.As(err, &ce))
		})
	}

	// nothing was created under the root
	_, err := os.Stat(filepath.Join(root, "cache"))
	assert.True(t, os.IsNotExist(err))
}

func TestNew_LayoutUnderRoot(t *testing.T) {
	root := t.TempDir()
	c, err := New(root, "scraped_data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "cache", "scraped_data"), c.Dir())
	assert.Equal(t, "scraped_data", c.Prefix())
}

func TestPutGet_RoundTrip(t *testing.T) {
	c := newTestCache(t)

	t.Run("string", func(t *testing.T) {
		ok, err := c.Put("s", "<html>привет</html>")
		require.NoError(t, err)
		assert.True(t, ok)

		var got string
		hit, err := c.Get("s", &got)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, "<html>привет</html>", got)
	})

	t.Run("int", func(t *testing.T) {
		_, err := c.Put("i", 42)
		require.NoError(t, err)
		var got int
		_, err = c.Get("i", &got)
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("float", func(t *testing.T) {
		_, err := c.Put("f", 1.25)
		require.NoError(t, err)
		var got float64
		_, err = c.Get("f", &got)
		require.NoError(t, err)
		assert.Equal(t, 1.25, got)
	})

	t.Run("list", func(t *testing.T) {
		_, err := c.Put("l", []int{3, 1, 2})
		require.NoError(t, err)
		var got []int
		_, err = c.Get("l", &got)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, got)
	})

	t.Run("tuple", func(t *testing.T) {
		_, err := c.Put("t", [3]string{"a", "b", "c"})
		require.NoError(t, err)
		var got [3]string
		_, err = c.Get("t", &got)
		require.NoError(t, err)
		assert.Equal(t, [3]string{"a", "b", "c"}, got)
	})

	t.Run("dict", func(t *testing.T) {
		_, err := c.Put("d", map[string]int{"test1": 1, "test2": 2})
		require.NoError(t, err)
		var got map[string]int
		_, err = c.Get("d", &got)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"test1": 1, "test2": 2}, got)
	})

	t.Run("set", func(t *testing.T) {
		_, err := c.Put("set", map[string]bool{"a": true, "b": true})
		require.NoError(t, err)
		var got map[string]bool
		_, err = c.Get("set", &got)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"a": true, "b": true}, got)
	})
}

func TestGet_Absent(t *testing.T) {
	c := newTestCache(t)
	var got string
	hit, err := c.Get("missing", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, c.Has("missing"))
}

func TestPut_DoesNotOverwrite(t *testing.T) {
	c := newTestCache(t)

	ok, err := c.Put("k", "first")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Put("k", "second")
	require.NoError(t, err)
	assert.False(t, ok)

	var got string
	_, err = c.Get("k", &got)
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestPut_ExistingDirectoryIsNotAnError(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, os.MkdirAll(c.Dir(), 0755))

	ok, err := c.Put("k", "v")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdate(t *testing.T) {
	c := newTestCache(t)

	ok, err := c.Update("k", "v")
	require.NoError(t, err)
	assert.False(t, ok, "update must not create entries")
	assert.False(t, c.Has("k"))

	_, err = c.Put("k", "v1")
	require.NoError(t, err)
	ok, err = c.Update("k", "v2")
	require.NoError(t, err)
	assert.True(t, ok)

	var got string
	_, err = c.Get("k", &got)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestDeleteAndFlush(t *testing.T) {
	c := newTestCache(t)

	assert.False(t, c.Delete("k"))
	assert.False(t, c.Flush())

	_, err := c.Put("k", "v")
	require.NoError(t, err)
	_, err = c.Put("k2", "v")
	require.NoError(t, err)
	assert.Equal(t, 2, countEntries(t, c))

	assert.True(t, c.Delete("k"))
	assert.False(t, c.Has("k"))
	assert.Equal(t, 1, countEntries(t, c))

	assert.True(t, c.Flush())
	_, err = os.Stat(c.Dir())
	assert.True(t, os.IsNotExist(err))
	assert.False(t, c.Flush())
}

func TestGet_CorruptEntry(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, os.MkdirAll(c.Dir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "bad"), []byte("not snappy"), 0644))

	var got string
	hit, err := c.Get("bad", &got)
	assert.Error(t, err)
	assert.False(t, hit)
}
