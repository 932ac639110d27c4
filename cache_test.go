package ignoretree

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openCountFs counts reads so tests can assert that cache hits perform
// no I/O beyond the identity check.
type openCountFs struct {
	afero.Fs
	opens int
}

func (c *openCountFs) Open(name string) (afero.File, error) {
	c.opens++
	return c.Fs.Open(name)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestCache(t *testing.T) (*Cache, *openCountFs) {
	t.Helper()
	fsys := &openCountFs{Fs: afero.NewMemMapFs()}
	return NewCache(fsys, log.New(io.Discard)), fsys
}

func TestCache_HitAvoidsReread(t *testing.T) {
	c, fsys := newTestCache(t)
	require.NoError(t, afero.WriteFile(fsys, "/repo/.aiignore", []byte("*.log\n"), 0o644))

	rs1 := c.Load("/repo/.aiignore")
	require.NotNil(t, rs1)
	require.Len(t, rs1.Rules, 1)

	rs2 := c.Load("/repo/.aiignore")
	assert.Same(t, rs1, rs2, "unchanged file should return the cached rule set")
	assert.Equal(t, 1, fsys.opens, "cache hit must not re-read the file")
}

func TestCache_ContentChangeForcesReload(t *testing.T) {
	c, fsys := newTestCache(t)
	require.NoError(t, afero.WriteFile(fsys, "/repo/.aiignore", []byte("*.log\n"), 0o644))

	rs1 := c.Load("/repo/.aiignore")
	require.NotNil(t, rs1)

	require.NoError(t, afero.WriteFile(fsys, "/repo/.aiignore", []byte("*.log\nbuild/\n"), 0o644))

	rs2 := c.Load("/repo/.aiignore")
	require.NotNil(t, rs2)
	assert.NotSame(t, rs1, rs2)
	assert.Len(t, rs2.Rules, 2, "reload must observe the new content")
}

func TestCache_MtimeChangeForcesReload(t *testing.T) {
	c, fsys := newTestCache(t)
	require.NoError(t, afero.WriteFile(fsys, "/repo/.aiignore", []byte("*.log\n"), 0o644))

	rs1 := c.Load("/repo/.aiignore")
	require.NotNil(t, rs1)

	require.NoError(t, fsys.Chtimes("/repo/.aiignore", time.Now(), time.Now().Add(time.Hour)))

	rs2 := c.Load("/repo/.aiignore")
	require.NotNil(t, rs2)
	assert.NotSame(t, rs1, rs2, "a single changed fingerprint field forces a reload")
	assert.Equal(t, 2, fsys.opens)
}

func TestCache_ModeChangeForcesReload(t *testing.T) {
	c, fsys := newTestCache(t)
	require.NoError(t, afero.WriteFile(fsys, "/repo/.aiignore", []byte("*.log\n"), 0o644))

	rs1 := c.Load("/repo/.aiignore")
	require.NotNil(t, rs1)

	require.NoError(t, fsys.Chmod("/repo/.aiignore", 0o600))

	rs2 := c.Load("/repo/.aiignore")
	require.NotNil(t, rs2)
	assert.NotSame(t, rs1, rs2)
}

func TestCache_MissingFile(t *testing.T) {
	c, _ := newTestCache(t)
	assert.Nil(t, c.Load("/repo/.aiignore"))
	assert.Equal(t, 0, c.Len())
}

func TestCache_VanishedFileInvalidates(t *testing.T) {
	c, fsys := newTestCache(t)
	require.NoError(t, afero.WriteFile(fsys, "/repo/.aiignore", []byte("*.log\n"), 0o644))

	require.NotNil(t, c.Load("/repo/.aiignore"))
	assert.Equal(t, 1, c.Len())

	require.NoError(t, fsys.Remove("/repo/.aiignore"))

	assert.Nil(t, c.Load("/repo/.aiignore"))
	assert.Equal(t, 0, c.Len(), "entry for a vanished file must be dropped")
}

func TestCache_Invalidate(t *testing.T) {
	c, fsys := newTestCache(t)
	require.NoError(t, afero.WriteFile(fsys, "/repo/.aiignore", []byte("*.log\n"), 0o644))

	rs1 := c.Load("/repo/.aiignore")
	require.NotNil(t, rs1)

	c.Invalidate("/repo/.aiignore")
	assert.Equal(t, 0, c.Len())

	rs2 := c.Load("/repo/.aiignore")
	require.NotNil(t, rs2)
	assert.NotSame(t, rs1, rs2)
}

func TestCache_BadLinesAreSkippedNotFatal(t *testing.T) {
	c, fsys := newTestCache(t)
	require.NoError(t, afero.WriteFile(fsys, "/repo/.aiignore", []byte("good.log\na[b\nother.log\n"), 0o644))

	rs := c.Load("/repo/.aiignore")
	require.NotNil(t, rs)
	require.Len(t, rs.Rules, 2, "the malformed line is dropped, the rest of the file loads")
	assert.Equal(t, 1, rs.Rules[0].Line)
	assert.Equal(t, 3, rs.Rules[1].Line)
}
