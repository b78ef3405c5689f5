package hypergraph

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestStringListAcceptsBothForms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want StringList
	}{
		{"single string", `"cap:a"`, StringList{"cap:a"}},
		{"array", `["cap:a", "cap:b"]`, StringList{"cap:a", "cap:b"}},
		{"null", `null`, nil},
		{"empty string", `""`, nil},
		{"empty array", `[]`, StringList{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestFlexTimeFormats(t *testing.T) {
	ref := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2026-08-25T10:30:00Z"`, ref},
		{"no zone", `"2026-08-25T10:30:00"`, ref},
		{"epoch seconds", `1787999400`, time.Unix(1787999400, 0).UTC()},
		{"epoch millis", `1787999400000`, time.UnixMilli(1787999400000).UTC()},
		{"null", `null`, time.Time{}},
		{"garbage string", `"yesterday"`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexTime
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.in, err)
			}
			if !got.Time.Equal(tt.want) {
				t.Errorf("got %v, want %v", got.Time, tt.want)
			}
		})
	}
}

func TestFlexStringAcceptsNumbers(t *testing.T) {
	var got FlexString
	if err := json.Unmarshal([]byte(`7`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != "7" {
		t.Errorf("got %q, want %q", got, "7")
	}
}

func TestEdgeKindFallback(t *testing.T) {
	var e RawEdge
	if err := json.Unmarshal([]byte(`{"data": {"source": "a", "target": "b", "edgeType": "contains"}}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Data.Kind() != EdgeKindContains {
		t.Errorf("Kind() = %q, want %q", e.Data.Kind(), EdgeKindContains)
	}
}

func TestTaskResultLayerDefaults(t *testing.T) {
	zero := 0
	two := 2
	neg := -1

	tests := []struct {
		name string
		idx  *int
		want int
	}{
		{"absent", nil, 0},
		{"zero", &zero, 0},
		{"positive", &two, 2},
		{"negative clamped", &neg, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := TaskResult{LayerIndex: tt.idx}
			if got := tr.Layer(); got != tt.want {
				t.Errorf("Layer() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParsePayloadRejectsInvalidJSON(t *testing.T) {
	if _, err := ParsePayload([]byte(`{nodes: [}`)); err == nil {
		t.Error("expected error for invalid JSON envelope")
	}
}
