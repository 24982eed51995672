package traversal

import (
	"context"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/multierr"

	dagaudit "github.com/ipld/go-dagaudit"
)

var log = logging.Logger("dagaudit/traversal")

// BlockGetter is the read side of a blockstore.
type BlockGetter interface {
	Get(c cid.Cid) ([]byte, bool)
}

type Config struct {
	Root       cid.Cid            // The block the walk starts from
	Order      dagaudit.WalkOrder // Queue order for discovered links, "dfs" when empty
	Exhaustive bool               // Keep walking past failures and report them all
}

// Result provides the totals of a successful walk. Blocks linked more than
// once are counted once.
type Result struct {
	Blocks uint64
	Bytes  uint64
}

type queued struct {
	cid    cid.Cid
	parent cid.Cid
}

// Walk checks that every block reachable from the Config's Root is present in
// bs and decodes under its codec.
//
// A block that is absent fails the walk with a *dagaudit.MissingBlockError, a
// dag-pb block that does not decode with a *dagaudit.DecodeError, and a block
// under any codec other than raw or dag-pb with a
// *dagaudit.UnsupportedCodecError. By default the first failure is returned
// immediately. With Exhaustive set, the walk carries on with the rest of the
// queue (the subgraph below a failed block cannot be explored) and returns all
// failures combined; use multierr.Errors to split them.
//
// A Result is only returned when the walk found no failures.
func (cfg Config) Walk(ctx context.Context, bs BlockGetter) (Result, error) {
	var (
		res   Result
		errs  error
		queue = []queued{{cid: cfg.Root}}
		seen  = make(map[cid.Cid]struct{})
	)

	fail := func(err error) bool {
		errs = multierr.Append(errs, err)
		return !cfg.Exhaustive
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		next := queue[0]
		queue = queue[1:]
		if _, ok := seen[next.cid]; ok {
			continue
		}
		seen[next.cid] = struct{}{}

		data, ok := bs.Get(next.cid)
		if !ok {
			log.Debugw("missing block", "cid", next.cid, "parent", next.parent)
			if fail(&dagaudit.MissingBlockError{Cid: next.cid, Parent: next.parent}) {
				return Result{}, errs
			}
			continue
		}

		node, err := Classify(next.cid, data)
		if err != nil {
			if fail(err) {
				return Result{}, errs
			}
			continue
		}

		var links []cid.Cid
		switch n := node.(type) {
		case Leaf:
		case LinkedNode:
			links = n.Links
		case Unsupported:
			if fail(&dagaudit.UnsupportedCodecError{Cid: next.cid, Codec: n.Codec}) {
				return Result{}, errs
			}
			continue
		}

		res.Blocks++
		res.Bytes += uint64(len(data))

		children := make([]queued, 0, len(links))
		for _, l := range links {
			children = append(children, queued{cid: l, parent: next.cid})
		}
		if cfg.Order == dagaudit.WalkOrderBFS {
			queue = append(queue, children...)
		} else {
			queue = append(children, queue...)
		}
	}

	if errs != nil {
		return Result{}, errs
	}
	return res, nil
}
