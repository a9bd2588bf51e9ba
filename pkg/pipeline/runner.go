// Package pipeline ties the engine together for callers: it runs layout
// requests with caching, keeps results ordered per logical search, and
// refreshes render models after label edits without moving nodes.
package pipeline

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/panon-btc/txlineage/pkg/cache"
	"github.com/panon-btc/txlineage/pkg/graphio"
	"github.com/panon-btc/txlineage/pkg/layout"
	"github.com/panon-btc/txlineage/pkg/layout/solver"
	"github.com/panon-btc/txlineage/pkg/observability"
	"github.com/panon-btc/txlineage/pkg/render/model"
	"github.com/panon-btc/txlineage/pkg/render/text"
	"github.com/panon-btc/txlineage/pkg/txgraph"
)

// Runner executes layout requests with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it does not
// retain layout results. Multiple goroutines can safely share one Runner.
type Runner struct {
	Engine     *layout.Engine
	SolverOpts solver.Options
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger
}

// NewRunner creates a runner. Nil arguments select defaults: the shared
// Graphviz solver with the default measurer and constants, a NullCache
// (caching disabled), the default keyer, and the default logger.
func NewRunner(engine *layout.Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if engine == nil {
		engine = layout.NewEngine(solver.Default(), text.Default(), model.DefaultConstants())
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Engine:     engine,
		SolverOpts: solver.DefaultOptions(),
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
	}
}

// LayoutWithCacheInfo lays out the graph's active subset with caching and
// reports whether the result came from cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *txgraph.GraphModel, active map[string]bool) (*layout.Layout, bool, error) {
	key, haveKey := r.layoutKey(g, active)

	if haveKey {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := graphio.UnmarshalLayout(data); err == nil {
				r.Logger.Debug("layout cache hit", "nodes", len(cached.Nodes))
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// Unreadable entries fall through to recompute.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	observability.Layout().OnSolveStart(ctx, len(g.Nodes), len(g.Edges))
	lay, err := r.Engine.Compute(ctx, g, active)
	observability.Layout().OnSolveComplete(ctx, len(g.Nodes), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.Logger.Info("computed layout",
		"nodes", len(lay.Nodes),
		"edges", len(lay.Edges),
		"duration", time.Since(start))

	if haveKey {
		if data, err := graphio.MarshalLayout(lay); err == nil {
			_ = r.Cache.Set(ctx, key, data, cache.TTLLayout)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return lay, false, nil
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *txgraph.GraphModel, active map[string]bool) (*layout.Layout, error) {
	lay, _, err := r.LayoutWithCacheInfo(ctx, g, active)
	return lay, err
}

// RefreshLabels rebuilds render models against an updated graph while
// keeping every node exactly where it is. See the package function of the
// same name.
func (r *Runner) RefreshLabels(g *txgraph.GraphModel, prev *layout.Layout) (*layout.Layout, []string) {
	next, changed := RefreshLabels(g, prev, r.Engine.Measurer, r.Engine.Consts)
	observability.Layout().OnRefresh(context.Background(), len(next.Nodes), len(changed))
	return next, changed
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// layoutKey derives the cache key for one layout request. Marshaling the
// graph is the content hash; a marshal failure just disables caching for
// the call.
func (r *Runner) layoutKey(g *txgraph.GraphModel, active map[string]bool) (string, bool) {
	data, err := graphio.MarshalGraph(g)
	if err != nil {
		return "", false
	}
	opts := cache.LayoutKeyOpts{
		ActiveHash:       activeHash(active),
		ExactSearchLimit: r.Engine.Crossmin.ExactSearchLimit,
		MinGap:           r.Engine.Crossmin.MinGap,
		RankSep:          r.SolverOpts.RankSep,
		NodeSep:          r.SolverOpts.NodeSep,
	}
	return r.Keyer.LayoutKey(cache.Hash(data), opts), true
}

// activeHash canonicalizes the active set. Nil (everything active) and
// any concrete set hash differently.
func activeHash(active map[string]bool) string {
	if active == nil {
		return "all"
	}
	ids := make([]string, 0, len(active))
	for id, on := range active {
		if on {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "none"
	}
	// Sorted join keeps the hash independent of map order.
	slices.Sort(ids)
	return cache.Hash([]byte(strings.Join(ids, "\n")))
}
