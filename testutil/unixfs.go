package testutil

import (
	"testing"

	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	unixfs "github.com/ipfs/go-unixfsnode/testutil"
)

// GenerateNoDupes runs the unixfsnode/testutil generator function repeatedly
// until it produces a DAG with strictly no duplicate CIDs.
func GenerateNoDupes(gen func() unixfs.DirEntry) unixfs.DirEntry {
	for {
		gend := gen()
		seen := make(map[cid.Cid]struct{})
		dupe := false
		for _, c := range EntryCids(gend) {
			if _, ok := seen[c]; ok {
				dupe = true
				break
			}
			seen[c] = struct{}{}
		}
		if !dupe {
			return gend
		}
	}
}

// EntryCids returns every CID of a generated UnixFS entry and its children.
func EntryCids(e unixfs.DirEntry) []cid.Cid {
	cids := append([]cid.Cid{}, e.SelfCids...)
	for _, c := range e.Children {
		cids = append(cids, EntryCids(c)...)
	}
	return cids
}

// EntryBlocks returns the blocks of a generated UnixFS entry from src.
func EntryBlocks(t testing.TB, src *Source, e unixfs.DirEntry) []blocks.Block {
	return src.Blocks(t, EntryCids(e)...)
}
