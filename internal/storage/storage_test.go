package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	p, err := store.Put(ctx, "workspace1/workflow2/task3/Report.PDF", []byte("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "workspace1/workflow2/task3/"))
	assert.True(t, strings.HasSuffix(p, ".pdf"))
	assert.NotContains(t, p, "Report")

	data, err := store.Get(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, store.Delete(ctx, p))
	_, err = store.Get(ctx, p)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, p), "deleting twice is fine")
}

func TestLocal_PutGeneratesDistinctNames(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	a, err := store.Put(ctx, "x.txt", []byte("a"))
	require.NoError(t, err)
	b, err := store.Put(ctx, "x.txt", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestLocal_PutKeepsHintInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)

	p, err := store.Put(context.Background(), "../../etc/passwd.txt", []byte("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(p)))
	assert.NoError(t, err)
	assert.False(t, strings.HasPrefix(p, ".."))
}

func TestLocal_RejectsEscapingPaths(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "../secret")
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.ErrorIs(t, store.Delete(context.Background(), "/abs/path"), ErrInvalidPath)
}
