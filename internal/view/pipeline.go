package view

import (
	"time"

	"capdash/internal/flow"
	"capdash/internal/hypergraph"
	"capdash/internal/logging"
	"capdash/internal/search"
)

// Options controls one derivation run.
type Options struct {
	// Query filters the bucketed capabilities; empty keeps everything.
	Query string
	// Now anchors recency bucketing; the zero value means time.Now().
	Now time.Time
	// Buckets overrides the recency partition; nil uses DefaultBuckets.
	Buckets []BucketDef
}

// Stats summarizes one derived snapshot, pre-filter.
type Stats struct {
	Capabilities     int `json:"capabilities"`
	MetaCapabilities int `json:"metaCapabilities"`
	TopLevel         int `json:"topLevel"`
	Tools            int `json:"tools"`
	Servers          int `json:"servers"`
	Edges            int `json:"edges"`
}

// View is everything the rendering layer consumes for one poll.
type View struct {
	// Buckets holds the search-filtered capabilities grouped by recency.
	Buckets []Bucket `json:"buckets"`
	// Layers maps capability id to the flow structure of its latest run.
	Layers map[string][]flow.Layer `json:"layers"`
	// ToolColors maps tool id to its server's display color.
	ToolColors map[string]string `json:"toolColors"`
	// FreshIDs lists capabilities that appeared since the previous poll.
	// Empty on the first poll by construction.
	FreshIDs []string `json:"freshIds"`
	// Servers lists discovered servers in first-seen order.
	Servers []string `json:"servers"`
	Stats   Stats    `json:"stats"`
}

// Derive runs the full derivation pipeline over one raw snapshot. It is
// pure with respect to the payload: the same payload, state history, and
// clock produce identical views. The session state is the only thing
// mutated, and only through its own methods.
func Derive(payload *hypergraph.RawPayload, state *SessionState, opts Options, logger *logging.Logger) *View {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	defs := opts.Buckets
	if defs == nil {
		defs = DefaultBuckets()
	}

	g := hypergraph.Ingest(payload, logger)

	parents := hypergraph.ResolveHierarchy(g.CapabilityIDs(), payloadEdges(payload))
	hypergraph.BreakCycles(parents, logger)
	hypergraph.ApplyHierarchy(g.Capabilities, parents)

	// Fresh-id detection runs on the whole snapshot, not the filtered
	// subset: a search box must not suppress or replay freshness.
	ids := make([]string, 0, len(g.Capabilities))
	for _, c := range g.Capabilities {
		ids = append(ids, c.ID)
	}
	fresh := state.ObserveSnapshot(ids)

	filtered := search.FilterCapabilities(g.Capabilities, opts.Query)

	layers := make(map[string][]flow.Layer, len(filtered))
	for _, c := range filtered {
		layers[c.ID] = flow.BuildLayers(c.Tools, c.Traces)
	}

	// Colors are assigned in discovery order so repeated polls over the
	// same evolving graph keep servers stable.
	toolColors := make(map[string]string, len(g.ToolOrder))
	for _, id := range g.ToolOrder {
		toolColors[id] = state.ToolColor(g.Tools[id])
	}

	v := &View{
		Buckets:    BucketizeWith(defs, filtered, now),
		Layers:     layers,
		ToolColors: toolColors,
		FreshIDs:   fresh,
		Servers:    g.Servers,
		Stats:      statsOf(g, payload),
	}

	logger.Debug("derived view", logging.Fields{
		"buckets": len(v.Buckets),
		"fresh":   len(v.FreshIDs),
	})
	return v
}

func payloadEdges(payload *hypergraph.RawPayload) []hypergraph.RawEdge {
	if payload == nil {
		return nil
	}
	return payload.Edges
}

func statsOf(g *hypergraph.Graph, payload *hypergraph.RawPayload) Stats {
	s := Stats{
		Capabilities: len(g.Capabilities),
		Tools:        len(g.Tools),
		Servers:      len(g.Servers),
	}
	if payload != nil {
		s.Edges = len(payload.Edges)
	}
	for _, c := range g.Capabilities {
		if c.IsMeta() {
			s.MetaCapabilities++
		}
		if c.ParentID == "" {
			s.TopLevel++
		}
	}
	return s
}
