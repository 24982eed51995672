package objectstore_test

import (
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	dagaudit "github.com/ipld/go-dagaudit"
	"github.com/ipld/go-dagaudit/objectstore"
	"github.com/ipld/go-dagaudit/testutil"
)

func TestFSStore(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	testutil.PutObject(t, fsys, "raw/bafyroot/2.car", []byte("two"))
	testutil.PutObject(t, fsys, "raw/bafyroot/1.car", []byte("one"))
	testutil.PutObject(t, fsys, "raw/bafyroot/sub/3.car", []byte("three"))
	testutil.PutObject(t, fsys, "raw/bafyrootother/1.car", []byte("other"))
	testutil.PutObject(t, fsys, "complete/bafyroot.car", []byte("all"))
	require.NoError(t, fsys.MkdirAll("/complete/bafydir.car", 0o755))
	store := objectstore.NewFSStoreFromFs(fsys)

	t.Run("list", func(t *testing.T) {
		keys, err := store.List(ctx, "raw/bafyroot/")
		require.NoError(t, err)
		require.Equal(t, []string{"raw/bafyroot/1.car", "raw/bafyroot/2.car", "raw/bafyroot/sub/3.car"}, keys)

		keys, err = store.List(ctx, "raw/bafyroot")
		require.NoError(t, err)
		require.Len(t, keys, 4)

		keys, err = store.List(ctx, "raw/nothing/")
		require.NoError(t, err)
		require.Empty(t, keys)

		keys, err = store.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, keys, 5)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := store.Exists(ctx, "complete/bafyroot.car")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Exists(ctx, "complete/bafynothing.car")
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = store.Exists(ctx, "complete/bafydir.car")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("open", func(t *testing.T) {
		rc, err := store.Open(ctx, "raw/bafyroot/sub/3.car")
		require.NoError(t, err)
		byts, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		require.Equal(t, "three", string(byts))

		_, err = store.Open(ctx, "raw/bafyroot/4.car")
		require.ErrorIs(t, err, dagaudit.ErrRemoteRead)
		var rre *dagaudit.RemoteReadError
		require.ErrorAs(t, err, &rre)
		require.Equal(t, "open", rre.Op)
		require.Equal(t, "raw/bafyroot/4.car", rre.Key)
	})
}

func TestFSStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	store := objectstore.NewFSStore(dir)
	testutil.PutObject(t, afero.NewBasePathFs(afero.NewOsFs(), dir), "raw/bafyroot/1.car", []byte("one"))

	keys, err := store.List(context.Background(), "raw/bafyroot/")
	require.NoError(t, err)
	require.Equal(t, []string{"raw/bafyroot/1.car"}, keys)
}
