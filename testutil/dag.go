// Package testutil builds DAGs and CAR shards for tests.
package testutil

import (
	"testing"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	dagpb "github.com/ipld/go-codec-dagpb"
	ipld "github.com/ipld/go-ipld-prime"
	_ "github.com/ipld/go-ipld-prime/codec/raw"
	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/fluent/qp"
	"github.com/ipld/go-ipld-prime/linking"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipld/go-ipld-prime/node/basicnode"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/ipld/go-dagaudit/blockstore"
)

var (
	pblp = cidlink.LinkPrototype{Prefix: cid.Prefix{
		Version:  1,
		Codec:    cid.DagProtobuf,
		MhType:   multihash.SHA2_256,
		MhLength: 32,
	}}
	pbv0lp = cidlink.LinkPrototype{Prefix: cid.Prefix{
		Version:  0,
		Codec:    cid.DagProtobuf,
		MhType:   multihash.SHA2_256,
		MhLength: 32,
	}}
	rawlp = cidlink.LinkPrototype{Prefix: cid.Prefix{
		Version:  1,
		Codec:    cid.Raw,
		MhType:   multihash.SHA2_256,
		MhLength: 32,
	}}
)

// Source is a blockstore that DAGs are built into before being split into
// shards.
type Source struct {
	*blockstore.Blockstore
	LinkSystem linking.LinkSystem
}

func NewSource() *Source {
	bs := blockstore.New()
	lsys := cidlink.DefaultLinkSystem()
	lsys.SetReadStorage(bs.Storage())
	lsys.SetWriteStorage(bs.Storage())
	return &Source{Blockstore: bs, LinkSystem: lsys}
}

// Raw stores data as a raw block.
func (s *Source) Raw(t testing.TB, data []byte) cid.Cid {
	return s.store(t, rawlp, basicnode.NewBytes(data))
}

// Node stores a dag-pb node with the given data and links, as a CIDv1.
func (s *Source) Node(t testing.TB, data []byte, links ...cid.Cid) cid.Cid {
	return s.store(t, pblp, pbNode(t, data, links))
}

// NodeV0 is Node, but returns a CIDv0.
func (s *Source) NodeV0(t testing.TB, data []byte, links ...cid.Cid) cid.Cid {
	return s.store(t, pbv0lp, pbNode(t, data, links))
}

// WithCodec stores data as-is under a CIDv1 of the given codec, whether or not
// data is valid for that codec.
func (s *Source) WithCodec(t testing.TB, codec uint64, data []byte) cid.Cid {
	c, err := cid.NewPrefixV1(codec, multihash.SHA2_256).Sum(data)
	require.NoError(t, err)
	s.Put(c, data)
	return c
}

// Blocks returns the blocks for cids. Identity CIDs are returned with their
// inlined data.
func (s *Source) Blocks(t testing.TB, cids ...cid.Cid) []blocks.Block {
	blks := make([]blocks.Block, 0, len(cids))
	for _, c := range cids {
		data, ok := s.Get(c)
		require.True(t, ok, "block %s not in source", c)
		blk, err := blocks.NewBlockWithCid(data, c)
		require.NoError(t, err)
		blks = append(blks, blk)
	}
	return blks
}

func (s *Source) store(t testing.TB, lp cidlink.LinkPrototype, n datamodel.Node) cid.Cid {
	l, err := s.LinkSystem.Store(linking.LinkContext{}, lp, n)
	require.NoError(t, err)
	return l.(cidlink.Link).Cid
}

// Identity returns a CIDv1 of the given codec with data inlined in an
// identity multihash.
func Identity(t testing.TB, codec uint64, data []byte) cid.Cid {
	mh, err := multihash.Sum(data, multihash.IDENTITY, len(data))
	require.NoError(t, err)
	return cid.NewCidV1(codec, mh)
}

// EncodeNode encodes a dag-pb node with the given data and links.
func EncodeNode(t testing.TB, data []byte, links ...cid.Cid) []byte {
	b, err := ipld.Encode(pbNode(t, data, links), dagpb.Encode)
	require.NoError(t, err)
	return b
}

func pbNode(t testing.TB, data []byte, links []cid.Cid) datamodel.Node {
	n, err := qp.BuildMap(dagpb.Type.PBNode, 2, func(ma datamodel.MapAssembler) {
		qp.MapEntry(ma, "Links", qp.List(int64(len(links)), func(la datamodel.ListAssembler) {
			for _, l := range links {
				qp.ListEntry(la, qp.Map(1, func(ma datamodel.MapAssembler) {
					qp.MapEntry(ma, "Hash", qp.Link(cidlink.Link{Cid: l}))
				}))
			}
		}))
		if data != nil {
			qp.MapEntry(ma, "Data", qp.Bytes(data))
		}
	})
	require.NoError(t, err)
	return n
}
