package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"capdash/internal/config"
	"capdash/internal/flow"
	"capdash/internal/hypergraph"
	"capdash/internal/view"
)

func TestBucketDefsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	defs := bucketDefsFromConfig(cfg)

	if len(defs) != 3 {
		t.Fatalf("expected 3 bucket defs, got %d", len(defs))
	}
	if defs[0].MaxAge != 24*time.Hour {
		t.Errorf("today threshold = %v", defs[0].MaxAge)
	}
	if defs[2].Label != "this month" {
		t.Errorf("last bounded bucket = %q", defs[2].Label)
	}
}

func TestReadPayloadMissingFile(t *testing.T) {
	if _, err := readPayload(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing payload file")
	}
}

func TestReadPayloadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(`{"nodes":[],"edges":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	data, err := readPayload(path)
	if err != nil {
		t.Fatalf("readPayload: %v", err)
	}
	if _, err := parsePayload(data); err != nil {
		t.Errorf("parsePayload: %v", err)
	}
}

func TestParsePayloadMalformed(t *testing.T) {
	if _, err := parsePayload([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestRenderViewHuman(t *testing.T) {
	v := &view.View{
		Buckets: []view.Bucket{
			{
				Label: "today",
				Capabilities: []*hypergraph.Capability{
					{ID: "cap:a", Name: "sync_files", UsageCount: 4, SuccessRate: 0.75, HierarchyLevel: 1},
				},
			},
		},
		Layers: map[string][]flow.Layer{
			"cap:a": {
				{Index: 0, Tools: []flow.ToolRef{
					{Name: "read_file", Known: true},
					{Name: "probe", Known: false},
				}},
			},
		},
		FreshIDs: []string{"cap:a"},
	}

	var buf bytes.Buffer
	renderViewHuman(&buf, v, true, false)
	out := buf.String()

	for _, want := range []string{"today", "sync_files", "[meta]", "used 4", "75%", "layer 0:", "read_file", "probe?", "new since last poll: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("human output missing %q:\n%s", want, out)
		}
	}
}
