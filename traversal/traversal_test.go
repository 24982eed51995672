package traversal_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	unixfs "github.com/ipfs/go-unixfsnode/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	dagaudit "github.com/ipld/go-dagaudit"
	"github.com/ipld/go-dagaudit/blockstore"
	"github.com/ipld/go-dagaudit/testutil"
	"github.com/ipld/go-dagaudit/traversal"
)

// scenario builds A -> [B, C], C -> [D] where A and C are dag-pb and B and D
// are raw.
func scenario(t *testing.T) (src *testutil.Source, a, b, c, d cid.Cid) {
	src = testutil.NewSource()
	b = src.Raw(t, []byte("B"))
	d = src.Raw(t, []byte("D"))
	c = src.Node(t, nil, d)
	a = src.Node(t, nil, b, c)
	return src, a, b, c, d
}

func storeOf(blks ...[]blocks.Block) *blockstore.Blockstore {
	bs := blockstore.New()
	for _, bb := range blks {
		for _, blk := range bb {
			bs.Put(blk.Cid(), blk.RawData())
		}
	}
	return bs
}

func TestWalkComplete(t *testing.T) {
	src, a, b, c, d := scenario(t)

	shard1 := src.Blocks(t, a, c)
	shard2 := src.Blocks(t, b, d)
	for name, bs := range map[string]*blockstore.Blockstore{
		"shard1 then shard2": storeOf(shard1, shard2),
		"shard2 then shard1": storeOf(shard2, shard1),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := traversal.Config{Root: a}.Walk(context.Background(), bs)
			require.NoError(t, err)
			require.Equal(t, uint64(4), res.Blocks)
		})
	}
}

func TestWalkMissingLeaf(t *testing.T) {
	src, a, b, c, d := scenario(t)
	bs := storeOf(src.Blocks(t, a, b, c))

	res, err := traversal.Config{Root: a}.Walk(context.Background(), bs)
	require.Equal(t, traversal.Result{}, res)
	var mbe *dagaudit.MissingBlockError
	require.ErrorAs(t, err, &mbe)
	require.Equal(t, d, mbe.Cid)
	require.Equal(t, c, mbe.Parent)
}

func TestWalkMissingRoot(t *testing.T) {
	_, a, _, _, _ := scenario(t)
	_, err := traversal.Config{Root: a}.Walk(context.Background(), blockstore.New())
	var mbe *dagaudit.MissingBlockError
	require.ErrorAs(t, err, &mbe)
	require.Equal(t, a, mbe.Cid)
	require.False(t, mbe.Parent.Defined())
}

func TestWalkMissingEachBlock(t *testing.T) {
	src := testutil.NewSource()
	chain := testutil.SetupChain(t, src, 64, 8)
	all := append(append([]cid.Cid{}, chain.Links...), chain.Payloads...)

	res, err := traversal.Config{Root: chain.Root()}.Walk(context.Background(), storeOf(chain.AllBlocks(t)))
	require.NoError(t, err)
	require.Equal(t, uint64(len(all)), res.Blocks)

	for _, drop := range all {
		bs := blockstore.New()
		for _, blk := range chain.AllBlocks(t) {
			if blk.Cid() != drop {
				bs.Put(blk.Cid(), blk.RawData())
			}
		}
		_, err := traversal.Config{Root: chain.Root()}.Walk(context.Background(), bs)
		var mbe *dagaudit.MissingBlockError
		require.ErrorAs(t, err, &mbe)
		require.Equal(t, drop, mbe.Cid)
	}
}

func TestWalkRawLeaf(t *testing.T) {
	for _, payload := range [][]byte{
		{},
		[]byte("not a protobuf"),
		testutil.RandomBytes(1024),
	} {
		src := testutil.NewSource()
		root := src.Raw(t, payload)
		res, err := traversal.Config{Root: root}.Walk(context.Background(), src.Blockstore)
		require.NoError(t, err)
		require.Equal(t, uint64(1), res.Blocks)
		require.Equal(t, uint64(len(payload)), res.Bytes)
	}
}

func TestWalkUnsupportedCodec(t *testing.T) {
	for _, codec := range []uint64{cid.DagCBOR, cid.DagJSON, cid.GitRaw} {
		for _, payload := range [][]byte{{0xa0}, []byte("{}"), []byte("garbage")} {
			src := testutil.NewSource()
			leaf := src.WithCodec(t, codec, payload)
			root := src.Node(t, nil, leaf)

			_, err := traversal.Config{Root: root}.Walk(context.Background(), src.Blockstore)
			var uce *dagaudit.UnsupportedCodecError
			require.ErrorAs(t, err, &uce)
			require.Equal(t, leaf, uce.Cid)
			require.Equal(t, codec, uce.Codec)
		}
	}
}

func TestWalkDecodeError(t *testing.T) {
	src := testutil.NewSource()
	bad := src.WithCodec(t, cid.DagProtobuf, []byte("not a protobuf"))
	root := src.Node(t, nil, bad)

	_, err := traversal.Config{Root: root}.Walk(context.Background(), src.Blockstore)
	var de *dagaudit.DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, bad, de.Cid)
	require.ErrorIs(t, err, dagaudit.ErrDecode)
}

func TestWalkOrder(t *testing.T) {
	// root -> [x, y], x -> [x1]; x1 and y missing
	src := testutil.NewSource()
	x1 := src.Raw(t, []byte("x1"))
	y := src.Raw(t, []byte("y"))
	x := src.Node(t, []byte("x"), x1)
	root := src.Node(t, []byte("root"), x, y)
	bs := storeOf(src.Blocks(t, root, x))

	for _, tc := range []struct {
		order   dagaudit.WalkOrder
		missing cid.Cid
	}{
		{"", x1},
		{dagaudit.WalkOrderDFS, x1},
		{dagaudit.WalkOrderBFS, y},
	} {
		t.Run(tc.order.String(), func(t *testing.T) {
			_, err := traversal.Config{Root: root, Order: tc.order}.Walk(context.Background(), bs)
			var mbe *dagaudit.MissingBlockError
			require.ErrorAs(t, err, &mbe)
			require.Equal(t, tc.missing, mbe.Cid)
		})
	}
}

func TestWalkExhaustive(t *testing.T) {
	src := testutil.NewSource()
	x1 := src.Raw(t, []byte("x1"))
	y := src.Raw(t, []byte("y"))
	bad := src.WithCodec(t, cid.DagProtobuf, []byte("not a protobuf"))
	cbor := src.WithCodec(t, cid.DagCBOR, []byte{0xa0})
	x := src.Node(t, []byte("x"), x1, bad)
	root := src.Node(t, []byte("root"), x, y, cbor)
	bs := storeOf(src.Blocks(t, root, x, bad, cbor))

	_, err := traversal.Config{Root: root}.Walk(context.Background(), bs)
	require.Len(t, multierr.Errors(err), 1)

	_, err = traversal.Config{Root: root, Exhaustive: true}.Walk(context.Background(), bs)
	errs := multierr.Errors(err)
	require.Len(t, errs, 4)

	var missing []cid.Cid
	for _, e := range errs {
		var mbe *dagaudit.MissingBlockError
		if errors.As(e, &mbe) {
			missing = append(missing, mbe.Cid)
		}
	}
	require.Equal(t, []cid.Cid{x1, y}, missing)
	require.ErrorIs(t, err, dagaudit.ErrDecode)
	require.ErrorIs(t, err, dagaudit.ErrUnsupportedCodec)
}

func TestWalkSharedSubgraph(t *testing.T) {
	src := testutil.NewSource()
	leaf := src.Raw(t, []byte("shared"))
	s := src.Node(t, []byte("s"), leaf)
	u := src.Node(t, []byte("u"), leaf, s)
	root := src.Node(t, nil, s, u, s)

	res, err := traversal.Config{Root: root}.Walk(context.Background(), src.Blockstore)
	require.NoError(t, err)
	require.Equal(t, uint64(4), res.Blocks)
}

func TestWalkIdentity(t *testing.T) {
	src := testutil.NewSource()
	inline := testutil.Identity(t, cid.Raw, []byte("inlined leaf"))
	root := src.Node(t, nil, inline)
	res, err := traversal.Config{Root: root}.Walk(context.Background(), storeOf(src.Blocks(t, root)))
	require.NoError(t, err)
	require.Equal(t, uint64(2), res.Blocks)

	// an inlined dag-pb node still has its links checked
	missing := src.Raw(t, []byte("behind identity"))
	inlineNode := testutil.Identity(t, cid.DagProtobuf, testutil.EncodeNode(t, nil, missing))
	root = src.Node(t, nil, inlineNode)
	_, err = traversal.Config{Root: root}.Walk(context.Background(), storeOf(src.Blocks(t, root)))
	var mbe *dagaudit.MissingBlockError
	require.ErrorAs(t, err, &mbe)
	require.Equal(t, missing, mbe.Cid)
	require.Equal(t, inlineNode, mbe.Parent)
}

func TestWalkCidV0Links(t *testing.T) {
	src := testutil.NewSource()
	leaf := src.Raw(t, []byte("leaf"))
	v0 := src.NodeV0(t, []byte("v0"), leaf)
	require.Equal(t, uint64(0), v0.Version())
	root := src.Node(t, nil, v0)

	// the shard holds the v0 node framed under its CIDv1
	bs := storeOf(src.Blocks(t, root, leaf))
	data, ok := src.Get(v0)
	require.True(t, ok)
	bs.Put(cid.NewCidV1(cid.DagProtobuf, v0.Hash()), data)

	res, err := traversal.Config{Root: root}.Walk(context.Background(), bs)
	require.NoError(t, err)
	require.Equal(t, uint64(3), res.Blocks)
}

func TestWalkUnixFSFile(t *testing.T) {
	src := testutil.NewSource()
	rnd := rand.New(rand.NewSource(1))
	file := testutil.GenerateNoDupes(func() unixfs.DirEntry {
		return unixfs.GenerateFile(t, &src.LinkSystem, rnd, 1<<20)
	})
	all := testutil.EntryCids(file)
	require.Greater(t, len(all), 2)

	res, err := traversal.Config{Root: file.Root}.Walk(context.Background(), storeOf(testutil.EntryBlocks(t, src, file)))
	require.NoError(t, err)
	require.Equal(t, uint64(len(all)), res.Blocks)

	drop := all[len(all)-1]
	bs := blockstore.New()
	for _, blk := range testutil.EntryBlocks(t, src, file) {
		if blk.Cid() != drop {
			bs.Put(blk.Cid(), blk.RawData())
		}
	}
	_, err = traversal.Config{Root: file.Root}.Walk(context.Background(), bs)
	var mbe *dagaudit.MissingBlockError
	require.ErrorAs(t, err, &mbe)
	require.Equal(t, drop, mbe.Cid)
}

func TestWalkCancelled(t *testing.T) {
	src, a, _, _, _ := scenario(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := traversal.Config{Root: a}.Walk(ctx, src.Blockstore)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	src := testutil.NewSource()
	leaf := src.Raw(t, []byte("leaf"))
	other := src.Raw(t, []byte("other"))
	node := src.Node(t, []byte("data"), leaf, other)
	nodeData, _ := src.Get(node)

	n, err := traversal.Classify(leaf, []byte("anything"))
	require.NoError(t, err)
	require.Equal(t, traversal.Leaf{}, n)

	n, err = traversal.Classify(node, nodeData)
	require.NoError(t, err)
	require.Equal(t, traversal.LinkedNode{Links: []cid.Cid{leaf, other}}, n)

	cbor := src.WithCodec(t, cid.DagCBOR, []byte{0xa0})
	n, err = traversal.Classify(cbor, []byte{0xa0})
	require.NoError(t, err)
	require.Equal(t, traversal.Unsupported{Codec: cid.DagCBOR}, n)

	bad := src.WithCodec(t, cid.DagProtobuf, []byte("not a protobuf"))
	_, err = traversal.Classify(bad, []byte("not a protobuf"))
	require.ErrorIs(t, err, dagaudit.ErrDecode)
}
