package hypergraph

import (
	"sort"

	"capdash/internal/logging"
)

// maxHierarchyDepth bounds parent-chain walks. The learned hierarchy is
// shallow in practice; anything deeper indicates malformed upstream data.
const maxHierarchyDepth = 64

// ResolveHierarchy derives the child -> parent capability map from
// containment edges. Only edges whose source and target are both
// materialized capabilities count, so zero-usage intermediaries can never
// appear in the forest. If two edges claim the same child, the last one
// wins; upstream is not expected to produce that, this is a tie-break.
func ResolveHierarchy(capIDs map[string]bool, edges []RawEdge) map[string]string {
	parents := make(map[string]string)
	for _, e := range edges {
		d := e.Data
		if d.Kind() != EdgeKindContains {
			continue
		}
		if !capIDs[d.Source] || !capIDs[d.Target] {
			continue
		}
		parents[d.Target] = d.Source
	}
	return parents
}

// BreakCycles removes parent links that close a cycle, so the hierarchy is
// always a forest. Children are visited in sorted order, making which link
// gets dropped deterministic. Each removal is logged as a data-quality event.
func BreakCycles(parents map[string]string, logger *logging.Logger) {
	children := make([]string, 0, len(parents))
	for child := range parents {
		children = append(children, child)
	}
	sort.Strings(children)

	for _, child := range children {
		visited := map[string]bool{child: true}
		node := child
		for depth := 0; depth < maxHierarchyDepth; depth++ {
			parent, ok := parents[node]
			if !ok {
				break
			}
			if visited[parent] {
				logger.Warn("dropping containment edge that closes a cycle", logging.Fields{
					"child":  node,
					"parent": parent,
				})
				delete(parents, node)
				break
			}
			visited[parent] = true
			node = parent
		}
	}
}

// ApplyHierarchy stamps each capability with its resolved parent id.
func ApplyHierarchy(capabilities []*Capability, parents map[string]string) {
	for _, c := range capabilities {
		c.ParentID = parents[c.ID]
	}
}

// ParentChain walks from id to the root of its tree, id excluded. The walk
// is bounded and cycle-safe even if callers skipped BreakCycles.
func ParentChain(id string, parents map[string]string) []string {
	var chain []string
	visited := map[string]bool{id: true}
	node := id
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		parent, ok := parents[node]
		if !ok || visited[parent] {
			break
		}
		chain = append(chain, parent)
		visited[parent] = true
		node = parent
	}
	return chain
}
