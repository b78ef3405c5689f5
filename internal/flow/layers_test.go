package flow

import (
	"testing"

	"capdash/internal/hypergraph"
)

func knownTools() []*hypergraph.Tool {
	return []*hypergraph.Tool{
		{ID: "tool:read", Name: "read_file", Server: "filesystem"},
		{ID: "tool:write", Name: "write_file", Server: "filesystem"},
		{ID: "tool:fetch", Name: "fetch_url", Server: "web"},
	}
}

func intp(n int) *int { return &n }

func traceWith(tasks ...hypergraph.TaskResult) []hypergraph.Trace {
	return []hypergraph.Trace{{ID: "t1", TaskResults: tasks}}
}

func TestBuildLayersFallbackWithoutTraces(t *testing.T) {
	layers := BuildLayers(knownTools(), nil)

	if len(layers) != 1 || layers[0].Index != 0 {
		t.Fatalf("expected single layer 0, got %+v", layers)
	}
	if len(layers[0].Tools) != 3 {
		t.Errorf("fallback layer should contain every known tool, got %d", len(layers[0].Tools))
	}
	for _, ref := range layers[0].Tools {
		if !ref.Known {
			t.Errorf("fallback tool %q should be marked known", ref.Name)
		}
	}
}

func TestBuildLayersFallbackWithEmptyTaskResults(t *testing.T) {
	layers := BuildLayers(knownTools(), []hypergraph.Trace{{ID: "t1"}})
	if len(layers) != 1 || len(layers[0].Tools) != 3 {
		t.Errorf("empty task results should fall back to single full layer, got %+v", layers)
	}
}

func TestBuildLayersUsesOnlyLatestTrace(t *testing.T) {
	traces := []hypergraph.Trace{
		{ID: "newest", TaskResults: []hypergraph.TaskResult{{Tool: "read_file"}}},
		{ID: "older", TaskResults: []hypergraph.TaskResult{{Tool: "write_file"}, {Tool: "fetch_url"}}},
	}

	layers := BuildLayers(knownTools(), traces)
	if len(layers) != 1 || len(layers[0].Tools) != 1 {
		t.Fatalf("expected just the newest trace's single tool, got %+v", layers)
	}
	if layers[0].Tools[0].Name != "read_file" {
		t.Errorf("tool = %q, want read_file", layers[0].Tools[0].Name)
	}
}

func TestBuildLayersDedupsWithinLayer(t *testing.T) {
	traces := traceWith(
		hypergraph.TaskResult{Tool: "read_file", LayerIndex: intp(0)},
		hypergraph.TaskResult{Tool: "read_file", LayerIndex: intp(0)},
	)

	layers := BuildLayers(knownTools(), traces)
	if len(layers) != 1 {
		t.Fatalf("expected 1 layer, got %d", len(layers))
	}
	if len(layers[0].Tools) != 1 {
		t.Errorf("same tool twice in one layer should appear once, got %d entries", len(layers[0].Tools))
	}
}

func TestBuildLayersAllowsSameToolAcrossLayers(t *testing.T) {
	traces := traceWith(
		hypergraph.TaskResult{Tool: "read_file", LayerIndex: intp(0)},
		hypergraph.TaskResult{Tool: "read_file", LayerIndex: intp(1)},
	)

	layers := BuildLayers(knownTools(), traces)
	if len(layers) != 2 {
		t.Fatalf("expected 2 layers, got %+v", layers)
	}
}

func TestBuildLayersOrderedByIndex(t *testing.T) {
	traces := traceWith(
		hypergraph.TaskResult{Tool: "fetch_url", LayerIndex: intp(2)},
		hypergraph.TaskResult{Tool: "read_file", LayerIndex: intp(0)},
		hypergraph.TaskResult{Tool: "write_file", LayerIndex: intp(1)},
	)

	layers := BuildLayers(knownTools(), traces)
	for i, l := range layers {
		if l.Index != i {
			t.Errorf("layers[%d].Index = %d, want %d", i, l.Index, i)
		}
	}
}

func TestResolveShortName(t *testing.T) {
	traces := traceWith(hypergraph.TaskResult{Tool: "filesystem:read_file"})

	layers := BuildLayers(knownTools(), traces)
	ref := layers[0].Tools[0]
	if !ref.Known || ref.ID != "tool:read" {
		t.Errorf("qualified reference should resolve via short name, got %+v", ref)
	}
}

func TestSynthesizeUnknownQualifiedTool(t *testing.T) {
	traces := traceWith(hypergraph.TaskResult{Tool: "exotic:do_thing"})

	layers := BuildLayers(knownTools(), traces)
	ref := layers[0].Tools[0]
	if ref.Known {
		t.Error("unresolvable reference must be synthesized, not marked known")
	}
	if ref.Server != "exotic" || ref.Name != "do_thing" {
		t.Errorf("synthesized ref = %+v, want server=exotic name=do_thing", ref)
	}
}

func TestSynthesizeUnknownBareTool(t *testing.T) {
	traces := traceWith(hypergraph.TaskResult{Tool: "mystery_tool"})

	layers := BuildLayers(knownTools(), traces)
	ref := layers[0].Tools[0]
	if ref.Server != hypergraph.ServerUnknown || ref.Name != "mystery_tool" {
		t.Errorf("bare unknown ref = %+v, want unknown server", ref)
	}
}

func TestBuildLayersNoToolsNoTraces(t *testing.T) {
	if layers := BuildLayers(nil, nil); layers != nil {
		t.Errorf("nothing to show should yield nil, got %+v", layers)
	}
}
