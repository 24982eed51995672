package testutil

import (
	"bytes"
	"io"
	"path"
	"testing"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	car "github.com/ipld/go-car"
	"github.com/ipld/go-car/util"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// WriteCar writes a CARv1 with the given roots and blocks, in order, to w.
func WriteCar(t testing.TB, w io.Writer, roots []cid.Cid, blks []blocks.Block) {
	if len(roots) == 0 && len(blks) > 0 {
		roots = []cid.Cid{blks[0].Cid()}
	}
	err := car.WriteHeader(&car.CarHeader{Roots: roots, Version: 1}, w)
	require.NoError(t, err)
	for _, blk := range blks {
		require.NoError(t, util.LdWrite(w, blk.Cid().Bytes(), blk.RawData()))
	}
}

// CarBytes returns a CARv1 holding blks, declaring the first block as its root.
func CarBytes(t testing.TB, blks ...blocks.Block) []byte {
	var buf bytes.Buffer
	WriteCar(t, &buf, nil, blks)
	return buf.Bytes()
}

// PutObject writes an object to fsys at the path an objectstore.FSStore uses
// for key.
func PutObject(t testing.TB, fsys afero.Fs, key string, data []byte) {
	require.NoError(t, fsys.MkdirAll(path.Dir("/"+key), 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/"+key, data, 0o644))
}

// PutCar writes a CARv1 holding blks to fsys under key.
func PutCar(t testing.TB, fsys afero.Fs, key string, blks ...blocks.Block) {
	PutObject(t, fsys, key, CarBytes(t, blks...))
}
