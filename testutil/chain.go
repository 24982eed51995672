package testutil

import (
	"bytes"
	"testing"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	"github.com/jbenet/go-random"
)

// TestChain is a linear DAG resembling a blockchain: every dag-pb node links
// to its parent and to a raw block of payload. The genesis node has no parent.
type TestChain struct {
	// Links from the tip, which is the root of the DAG, back to genesis.
	Links []cid.Cid
	// Payloads[i] is the raw block linked from Links[i].
	Payloads []cid.Cid
	src      *Source
}

// SetupChain builds a chain of the given length into src, with payload
// blocks of size bytes.
func SetupChain(t testing.TB, src *Source, size int64, length int) *TestChain {
	links := make([]cid.Cid, length)
	payloads := make([]cid.Cid, length)
	var parent cid.Cid
	for height := 0; height < length; height++ {
		payload := src.Raw(t, RandomBytes(size))
		var node cid.Cid
		if parent.Defined() {
			node = src.Node(t, nil, parent, payload)
		} else {
			node = src.Node(t, nil, payload)
		}
		links[length-1-height] = node
		payloads[length-1-height] = payload
		parent = node
	}
	return &TestChain{Links: links, Payloads: payloads, src: src}
}

// Root is the tip of the chain.
func (tc *TestChain) Root() cid.Cid {
	return tc.Links[0]
}

// Blocks returns the node and payload blocks for the given range, indexed
// from the tip.
func (tc *TestChain) Blocks(t testing.TB, from int, to int) []blocks.Block {
	var cids []cid.Cid
	for i := from; i < to; i++ {
		cids = append(cids, tc.Links[i], tc.Payloads[i])
	}
	return tc.src.Blocks(t, cids...)
}

// AllBlocks returns every block of the chain.
func (tc *TestChain) AllBlocks(t testing.TB) []blocks.Block {
	return tc.Blocks(t, 0, len(tc.Links))
}

var seedSeq int64

// RandomBytes returns a byte array of the given size with random values.
func RandomBytes(n int64) []byte {
	data := new(bytes.Buffer)
	_ = random.WritePseudoRandomBytes(n, data, seedSeq)
	seedSeq++
	return data.Bytes()
}
