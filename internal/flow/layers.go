// Package flow reconstructs the layered (parallel-batch) structure of a
// capability's most recent run from its flat per-task execution log. Two
// tasks sharing a layer index ran concurrently; that structure is what the
// rendering layer needs for a flow diagram and it cannot be recovered from
// the static tool-membership list.
package flow

import (
	"sort"
	"strings"

	"capdash/internal/hypergraph"
)

// toolRefSeparator splits qualified tool references of the form
// "server:tool_name".
const toolRefSeparator = ":"

// ToolRef is one tool slot in a layer. Known is false for descriptors
// synthesized from an unresolvable task reference, so the rendering layer
// can visually distinguish them.
type ToolRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Server string `json:"server"`
	Known  bool   `json:"known"`
}

// Layer is one parallel execution batch.
type Layer struct {
	Index int       `json:"index"`
	Tools []ToolRef `json:"tools"`
}

// BuildLayers derives the layer structure of the most recent trace. Older
// traces are never merged in; the structure reflects the latest run only.
// With no usable trace, every known tool lands once in a single layer 0.
func BuildLayers(tools []*hypergraph.Tool, traces []hypergraph.Trace) []Layer {
	if len(traces) == 0 || len(traces[0].TaskResults) == 0 {
		return fallbackLayer(tools)
	}

	byIndex := make(map[int][]ToolRef)
	seen := make(map[int]map[string]bool)

	for _, task := range traces[0].TaskResults {
		idx := task.Layer()
		ref := resolveTask(task.Tool, tools)

		if seen[idx] == nil {
			seen[idx] = make(map[string]bool)
		}
		if seen[idx][ref.Name] {
			continue
		}
		seen[idx][ref.Name] = true
		byIndex[idx] = append(byIndex[idx], ref)
	}

	indexes := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	layers := make([]Layer, 0, len(indexes))
	for _, idx := range indexes {
		layers = append(layers, Layer{Index: idx, Tools: byIndex[idx]})
	}
	return layers
}

// fallbackLayer presents every known tool once when no trace structure
// exists.
func fallbackLayer(tools []*hypergraph.Tool) []Layer {
	if len(tools) == 0 {
		return nil
	}
	refs := make([]ToolRef, 0, len(tools))
	seen := make(map[string]bool, len(tools))
	for _, t := range tools {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		refs = append(refs, ToolRef{ID: t.ID, Name: t.Name, Server: t.Server, Known: true})
	}
	return []Layer{{Index: 0, Tools: refs}}
}

// resolveTask maps a task's tool reference to a known tool, trying the full
// reference first and then the short name after the last separator. An
// unresolvable reference synthesizes a placeholder descriptor instead of
// being dropped.
func resolveTask(ref string, tools []*hypergraph.Tool) ToolRef {
	if t := findByName(ref, tools); t != nil {
		return ToolRef{ID: t.ID, Name: t.Name, Server: t.Server, Known: true}
	}
	if i := strings.LastIndex(ref, toolRefSeparator); i >= 0 {
		short := ref[i+len(toolRefSeparator):]
		if t := findByName(short, tools); t != nil {
			return ToolRef{ID: t.ID, Name: t.Name, Server: t.Server, Known: true}
		}
	}
	return synthesize(ref)
}

func findByName(name string, tools []*hypergraph.Tool) *hypergraph.Tool {
	for _, t := range tools {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// synthesize builds a placeholder descriptor from a qualified reference,
// splitting on the first separator into {server, name}.
func synthesize(ref string) ToolRef {
	server := hypergraph.ServerUnknown
	name := ref
	if i := strings.Index(ref, toolRefSeparator); i >= 0 {
		server = ref[:i]
		name = ref[i+len(toolRefSeparator):]
	}
	return ToolRef{ID: ref, Name: name, Server: server, Known: false}
}
