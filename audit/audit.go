// Package audit runs a complete audit of one root: locate its shards, ingest
// them into a fresh blockstore, and walk the DAG over that blockstore.
package audit

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dagaudit "github.com/ipld/go-dagaudit"
	"github.com/ipld/go-dagaudit/blockstore"
	"github.com/ipld/go-dagaudit/ingest"
	"github.com/ipld/go-dagaudit/locator"
	"github.com/ipld/go-dagaudit/objectstore"
	"github.com/ipld/go-dagaudit/traversal"
)

var (
	log    = logging.Logger("dagaudit/audit")
	tracer = otel.Tracer("github.com/ipld/go-dagaudit/audit")
)

type Config struct {
	Layout     dagaudit.Layout
	Ingest     ingest.Config
	Order      dagaudit.WalkOrder
	Exhaustive bool
}

// Report describes a successful audit.
type Report struct {
	Root   cid.Cid
	Shards []string
	Ingest ingest.Stats
	Stored int // distinct blocks held across all shards
	Walk   traversal.Result
}

type Auditor struct {
	cfg      Config
	locator  *locator.Locator
	ingester *ingest.Ingester
}

func New(store objectstore.Store, cfg Config) *Auditor {
	return &Auditor{
		cfg:      cfg,
		locator:  locator.New(store, cfg.Layout),
		ingester: ingest.New(store, cfg.Ingest),
	}
}

// Locate returns the shard paths for root without reading them.
func (a *Auditor) Locate(ctx context.Context, root cid.Cid) ([]string, error) {
	ctx, span := tracer.Start(ctx, "locate", trace.WithAttributes(attribute.String("root", root.String())))
	defer span.End()
	paths, err := a.locator.Locate(ctx, root)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("shards", len(paths)))
	return paths, nil
}

// Audit checks that the DAG under root is complete in the store. Any error
// means it is not, or that completeness could not be determined; the error
// types in the dagaudit package say which.
func (a *Auditor) Audit(ctx context.Context, root cid.Cid) (Report, error) {
	ctx, span := tracer.Start(ctx, "audit", trace.WithAttributes(attribute.String("root", root.String())))
	defer span.End()

	report, err := a.audit(ctx, root)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}
	return report, nil
}

func (a *Auditor) audit(ctx context.Context, root cid.Cid) (Report, error) {
	paths, err := a.Locate(ctx, root)
	if err != nil {
		return Report{}, err
	}

	bs := blockstore.New()

	ictx, ispan := tracer.Start(ctx, "ingest", trace.WithAttributes(attribute.Int("shards", len(paths))))
	stats, err := a.ingester.IngestAll(ictx, paths, bs)
	ispan.End()
	if err != nil {
		return Report{}, err
	}
	log.Infow("ingested shards", "root", root, "shards", len(paths), "blocks", bs.Len())

	wctx, wspan := tracer.Start(ctx, "walk")
	res, err := traversal.Config{
		Root:       root,
		Order:      a.cfg.Order,
		Exhaustive: a.cfg.Exhaustive,
	}.Walk(wctx, bs)
	wspan.End()
	if err != nil {
		return Report{}, fmt.Errorf("walking %s: %w", root, err)
	}

	return Report{
		Root:   root,
		Shards: paths,
		Ingest: stats,
		Stored: bs.Len(),
		Walk:   res,
	}, nil
}
