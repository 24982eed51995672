// Package blockstore provides the in-memory block accumulator used for a
// single audit. Blocks are written during ingestion and read during traversal.
package blockstore

import (
	"context"
	"sync"

	"github.com/ipfs/go-cid"
	format "github.com/ipfs/go-ipld-format"
	"github.com/ipld/go-ipld-prime/storage"
	"github.com/multiformats/go-multihash"
)

// Blockstore maps blocks to their bytes. It is keyed by multihash, so a block
// written under one CID can be read back under any other CID with the same
// digest (such as the CIDv0 and CIDv1 forms of a dag-pb block).
//
// Writes are idempotent.
type Blockstore struct {
	mu     sync.RWMutex
	blocks map[string][]byte
	bytes  uint64
}

func New() *Blockstore {
	return &Blockstore{blocks: make(map[string][]byte)}
}

// Put stores data under c, returning true if no block with the same multihash
// was present. Identity CIDs are never stored.
func (bs *Blockstore) Put(c cid.Cid, data []byte) bool {
	if c.Prefix().MhType == multihash.IDENTITY {
		return false
	}
	k := string(c.Hash())
	bs.mu.Lock()
	defer bs.mu.Unlock()
	old, ok := bs.blocks[k]
	if ok {
		bs.bytes -= uint64(len(old))
	}
	bs.blocks[k] = data
	bs.bytes += uint64(len(data))
	return !ok
}

// Get returns the bytes for c. Identity CIDs are always present and resolve to
// their inlined digest.
func (bs *Blockstore) Get(c cid.Cid) ([]byte, bool) {
	if digest, ok := identityDigest(c.Hash()); ok {
		return digest, true
	}
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	data, ok := bs.blocks[string(c.Hash())]
	return data, ok
}

func (bs *Blockstore) Has(c cid.Cid) bool {
	_, ok := bs.Get(c)
	return ok
}

// Len is the number of distinct blocks stored.
func (bs *Blockstore) Len() int {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return len(bs.blocks)
}

// Size is the total number of payload bytes stored.
func (bs *Blockstore) Size() uint64 {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.bytes
}

func identityDigest(mh multihash.Multihash) ([]byte, bool) {
	dmh, err := multihash.Decode(mh)
	if err != nil || dmh.Code != multihash.IDENTITY {
		return nil, false
	}
	return dmh.Digest, true
}

// Storage adapts a Blockstore to the go-ipld-prime storage interfaces so that
// it can back a linking.LinkSystem. Keys are binary CIDs.
type Storage struct {
	bs *Blockstore
}

var (
	_ storage.ReadableStorage = (*Storage)(nil)
	_ storage.WritableStorage = (*Storage)(nil)
)

// Storage returns a go-ipld-prime storage view of the Blockstore.
func (bs *Blockstore) Storage() *Storage {
	return &Storage{bs: bs}
}

func (s *Storage) Has(ctx context.Context, key string) (bool, error) {
	c, err := cid.Cast([]byte(key))
	if err != nil {
		return false, err
	}
	return s.bs.Has(c), nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	c, err := cid.Cast([]byte(key))
	if err != nil {
		return nil, err
	}
	data, ok := s.bs.Get(c)
	if !ok {
		return nil, format.ErrNotFound{Cid: c}
	}
	return data, nil
}

func (s *Storage) Put(ctx context.Context, key string, content []byte) error {
	c, err := cid.Cast([]byte(key))
	if err != nil {
		return err
	}
	s.bs.Put(c, content)
	return nil
}
