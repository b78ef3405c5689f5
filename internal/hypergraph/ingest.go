package hypergraph

import (
	"capdash/internal/logging"
)

// Graph is the typed result of ingesting one raw snapshot. ToolOrder
// preserves payload order so derived output is identical across runs on
// the same payload.
type Graph struct {
	Tools     map[string]*Tool
	ToolOrder []string
	// Capabilities holds only capabilities with nonzero usage, in payload order.
	Capabilities []*Capability
	// Servers lists every discovered server in first-seen order.
	Servers []string
}

// Ingest converts a raw snapshot into typed records. It never fails:
// nodes missing their id or type discriminator are dropped (a data-quality
// event, logged at warn), missing optional fields default, orphan tools and
// zero-usage capabilities are excluded.
func Ingest(payload *RawPayload, logger *logging.Logger) *Graph {
	g := &Graph{Tools: make(map[string]*Tool)}
	if payload == nil {
		return g
	}

	seenServers := make(map[string]bool)

	// Pass 1: tools. A tool must reference at least one parent capability;
	// orphans are not displayed and are skipped outright.
	for _, n := range payload.Nodes {
		d := n.Data
		if d.ID == "" || d.Type == "" {
			logger.Warn("dropping node without id or type", logging.Fields{
				"id":   d.ID,
				"type": d.Type,
			})
			continue
		}
		if d.Type != NodeTypeTool {
			continue
		}

		parents := d.Parents
		if len(parents) == 0 {
			parents = d.Parent
		}
		if len(parents) == 0 {
			continue
		}

		tool := &Tool{
			ID:                  d.ID,
			Name:                toolName(d),
			Server:              resolveServer(d),
			ParentCapabilityIDs: parents,
		}
		if _, dup := g.Tools[tool.ID]; !dup {
			g.ToolOrder = append(g.ToolOrder, tool.ID)
		}
		g.Tools[tool.ID] = tool

		if !seenServers[tool.Server] {
			seenServers[tool.Server] = true
			g.Servers = append(g.Servers, tool.Server)
		}
	}

	// Pass 2: capabilities with nonzero usage.
	for _, n := range payload.Nodes {
		d := n.Data
		if d.ID == "" || d.Type != NodeTypeCapability {
			continue
		}
		if d.UsageCount <= 0 {
			continue
		}

		c := &Capability{
			ID:             d.ID,
			Name:           capabilityName(d),
			Description:    capabilityDescription(d),
			FQDN:           d.FQDN,
			SuccessRate:    d.SuccessRate,
			UsageCount:     d.UsageCount,
			LastUsedAt:     d.LastUsed.Time,
			HierarchyLevel: d.HierarchyLevel,
			CommunityID:    string(d.CommunityID),
			PageRank:       d.PageRank,
			CodeSnippet:    d.CodeSnippet,
			Traces:         convertTraces(d.Traces),
		}

		// The explicit last-used field can be absent while traces still
		// record when the capability last ran.
		if c.LastUsedAt.IsZero() && len(c.Traces) > 0 {
			c.LastUsedAt = c.Traces[0].ExecutedAt
		}

		c.Tools = g.toolsOf(c.ID)
		g.Capabilities = append(g.Capabilities, c)
	}

	logger.Debug("ingested snapshot", logging.Fields{
		"tools":        len(g.Tools),
		"capabilities": len(g.Capabilities),
		"servers":      len(g.Servers),
	})

	return g
}

// toolsOf collects, in payload order, every tool claiming the capability as
// a parent. Linear scan per capability is fine at observed scale.
func (g *Graph) toolsOf(capID string) []*Tool {
	tools := make([]*Tool, 0, 4)
	for _, id := range g.ToolOrder {
		t := g.Tools[id]
		for _, pid := range t.ParentCapabilityIDs {
			if pid == capID {
				tools = append(tools, t)
				break
			}
		}
	}
	return tools
}

// CapabilityIDs returns the id set of all materialized capabilities.
func (g *Graph) CapabilityIDs() map[string]bool {
	ids := make(map[string]bool, len(g.Capabilities))
	for _, c := range g.Capabilities {
		ids[c.ID] = true
	}
	return ids
}

func toolName(d RawNodeData) string {
	if d.Label != "" {
		return d.Label
	}
	return d.ID
}

func capabilityName(d RawNodeData) string {
	if d.Label != "" {
		return d.Label
	}
	return d.ID
}

func capabilityDescription(d RawNodeData) string {
	if d.Description != "" {
		return d.Description
	}
	return d.Intent
}

// resolveServer derives a tool's server identity. The generic built-in
// marker is replaced by the tool's module identifier when one is present;
// an empty server maps to the unknown sentinel.
func resolveServer(d RawNodeData) string {
	server := d.Server
	if server == ServerBuiltin && d.Module != "" {
		server = d.Module
	}
	if server == "" {
		return ServerUnknown
	}
	return server
}

func convertTraces(raw []RawTrace) []Trace {
	if len(raw) == 0 {
		return nil
	}
	traces := make([]Trace, 0, len(raw))
	for _, rt := range raw {
		traces = append(traces, Trace{
			ID:           rt.ID,
			ExecutedAt:   rt.ExecutedAt.Time,
			Success:      rt.Success,
			DurationMs:   rt.DurationMs,
			ErrorMessage: rt.ErrorMessage,
			Priority:     rt.Priority,
			TaskResults:  convertTaskResults(rt.TaskResults),
		})
	}
	return traces
}

func convertTaskResults(raw []RawTaskResult) []TaskResult {
	if len(raw) == 0 {
		return nil
	}
	results := make([]TaskResult, 0, len(raw))
	for _, rr := range raw {
		results = append(results, TaskResult{
			TaskID:        rr.TaskID,
			Tool:          rr.Tool,
			Args:          rr.Args,
			Result:        rr.Result,
			Success:       rr.Success,
			DurationMs:    rr.DurationMs,
			LayerIndex:    rr.LayerIndex,
			LoopID:        rr.LoopID,
			LoopType:      rr.LoopType,
			LoopCondition: rr.LoopCondition,
			LoopBodyTools: rr.LoopBodyTools,
		})
	}
	return results
}
