// Package ingest streams CAR shards from an object store into a blockstore.
package ingest

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	blocks "github.com/ipfs/go-block-format"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/ipld/go-car/v2"
	"golang.org/x/sync/errgroup"

	dagaudit "github.com/ipld/go-dagaudit"
	"github.com/ipld/go-dagaudit/objectstore"
)

var log = logging.Logger("dagaudit/ingest")

// BlockPutter is the write side of a blockstore.
type BlockPutter interface {
	Put(c cid.Cid, data []byte) bool
}

type Config struct {
	Concurrency            int  // Shards read at once by IngestAll; values below 1 mean 1
	VerifyHashes           bool // Check every block's bytes against its CID while reading
	ZeroLengthSectionAsEOF bool // Treat a zero length section as the end of the CAR (padded CARs)
}

// Stats counts what was read from one or more shards. Bytes is block payload,
// not CAR framing.
type Stats struct {
	Blocks uint64
	New    uint64
	Bytes  uint64
}

func (s *Stats) add(o Stats) {
	s.Blocks += o.Blocks
	s.New += o.New
	s.Bytes += o.Bytes
}

type Ingester struct {
	store objectstore.Store
	cfg   Config
}

func New(store objectstore.Store, cfg Config) *Ingester {
	return &Ingester{store: store, cfg: cfg}
}

// Ingest reads the CAR at path and puts every block it holds into bs. The
// roots declared in the CAR header are ignored.
//
// Decoding is streamed: only one block is held outside of bs at a time.
// Failures to read from the store are returned as *dagaudit.RemoteReadError
// and malformed or truncated CARs as *dagaudit.IngestError.
func (ing *Ingester) Ingest(ctx context.Context, path string, bs BlockPutter) (Stats, error) {
	rc, err := ing.store.Open(ctx, path)
	if err != nil {
		return Stats{}, err
	}
	defer rc.Close()

	var st Stats
	ecr := newErrorCapturingReader(rc)
	decodeErr := func(index int, err error) error {
		if ecr.Error != nil {
			return &dagaudit.RemoteReadError{Op: "read", Key: path, Err: ecr.Error}
		}
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &dagaudit.IngestError{Path: path, Block: index, Err: err}
	}

	cbr, err := car.NewBlockReader(ecr,
		car.WithTrustedCAR(!ing.cfg.VerifyHashes),
		car.ZeroLengthSectionAsEOF(ing.cfg.ZeroLengthSectionAsEOF),
	)
	if err != nil {
		return Stats{}, decodeErr(-1, err)
	}
	log.Debugw("reading CAR", "path", path, "version", cbr.Version, "roots", cbr.Roots)

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		var blk blocks.Block
		blk, err = cbr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) && ecr.Error == nil {
				break
			}
			return Stats{}, decodeErr(i, err)
		}
		st.Blocks++
		st.Bytes += uint64(len(blk.RawData()))
		if bs.Put(blk.Cid(), blk.RawData()) {
			st.New++
		}
	}

	log.Infow("ingested shard", "path", path, "blocks", st.Blocks, "new", st.New, "size", humanize.IBytes(st.Bytes))
	return st, nil
}

// IngestAll ingests every path into bs, reading up to Config.Concurrency
// shards at once. The order in which shards are read does not affect the
// contents of bs. The first failure stops the remaining reads and is
// returned.
func (ing *Ingester) IngestAll(ctx context.Context, paths []string, bs BlockPutter) (Stats, error) {
	var (
		mu    sync.Mutex
		total Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(ing.cfg.Concurrency, 1))
	for _, path := range paths {
		g.Go(func() error {
			st, err := ing.Ingest(gctx, path, bs)
			if err != nil {
				return err
			}
			mu.Lock()
			total.add(st)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return total, nil
}
