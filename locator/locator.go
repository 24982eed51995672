// Package locator resolves a root CID to the CAR shards that should hold its
// blocks.
package locator

import (
	"context"
	"strings"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"

	dagaudit "github.com/ipld/go-dagaudit"
	"github.com/ipld/go-dagaudit/objectstore"
)

var log = logging.Logger("dagaudit/locator")

type Locator struct {
	store  objectstore.Store
	layout dagaudit.Layout
}

func New(store objectstore.Store, layout dagaudit.Layout) *Locator {
	return &Locator{store: store, layout: layout}
}

// Locate returns the shard paths for root: every object under the root's
// sharded directory, followed by the consolidated object if it exists. It
// fails with a *dagaudit.NotFoundError when there are neither.
func (l *Locator) Locate(ctx context.Context, root cid.Cid) ([]string, error) {
	dir := l.layout.ShardDir(root)
	keys, err := l.store.List(ctx, dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, k := range keys {
		// directory placeholder objects
		if strings.HasSuffix(k, "/") {
			continue
		}
		paths = append(paths, k)
	}
	log.Debugw("sharded objects", "root", root, "prefix", dir, "count", len(paths))

	complete := l.layout.CompleteKey(root)
	ok, err := l.store.Exists(ctx, complete)
	if err != nil {
		return nil, err
	}
	if ok {
		paths = append(paths, complete)
	}

	if len(paths) == 0 {
		return nil, &dagaudit.NotFoundError{Root: root, Prefix: dir, Consolidated: complete}
	}
	log.Infow("located shards", "root", root, "shards", len(paths), "consolidated", ok)
	return paths, nil
}
