package hypergraph

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// RawPayload is the wire shape of one full graph snapshot.
type RawPayload struct {
	Nodes []RawNode `json:"nodes"`
	Edges []RawEdge `json:"edges"`
}

// RawNode wraps the upstream's cytoscape-style element envelope.
type RawNode struct {
	Data RawNodeData `json:"data"`
}

// RawNodeData is the union of tool and capability fields. Which fields are
// meaningful depends on Type; the union never travels past ingestion.
type RawNodeData struct {
	ID             string     `json:"id"`
	Type           string     `json:"type"`
	Label          string     `json:"label"`
	Server         string     `json:"server"`
	Module         string     `json:"module"`
	Parent         StringList `json:"parent"`
	Parents        StringList `json:"parents"`
	UsageCount     int        `json:"usage_count"`
	SuccessRate    float64    `json:"success_rate"`
	LastUsed       FlexTime   `json:"last_used"`
	CommunityID    FlexString `json:"community_id"`
	PageRank       float64    `json:"pagerank"`
	FQDN           string     `json:"fqdn"`
	CodeSnippet    string     `json:"code_snippet"`
	HierarchyLevel int        `json:"hierarchy_level"`
	Description    string     `json:"description"`
	Intent         string     `json:"intent"`
	Traces         []RawTrace `json:"traces"`
}

// RawEdge wraps one edge element.
type RawEdge struct {
	Data RawEdgeData `json:"data"`
}

// RawEdgeData carries an edge; the upstream emits the kind under either
// edge_type or edgeType depending on the producing code path.
type RawEdgeData struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	EdgeType     string `json:"edge_type"`
	EdgeTypeCaps string `json:"edgeType"`
}

// Kind returns the edge kind regardless of which key carried it.
func (e RawEdgeData) Kind() string {
	if e.EdgeType != "" {
		return e.EdgeType
	}
	return e.EdgeTypeCaps
}

// RawTrace is the wire shape of one execution record.
type RawTrace struct {
	ID           string          `json:"id"`
	ExecutedAt   FlexTime        `json:"executed_at"`
	Success      bool            `json:"success"`
	DurationMs   float64         `json:"duration_ms"`
	ErrorMessage string          `json:"error_message"`
	Priority     float64         `json:"priority"`
	TaskResults  []RawTaskResult `json:"task_results"`
}

// RawTaskResult is the wire shape of one task outcome inside a trace.
type RawTaskResult struct {
	TaskID     string          `json:"task_id"`
	Tool       string          `json:"tool"`
	Args       json.RawMessage `json:"args"`
	Result     json.RawMessage `json:"result"`
	Success    bool            `json:"success"`
	DurationMs float64         `json:"duration_ms"`
	LayerIndex *int            `json:"layer_index"`

	LoopID        string     `json:"loop_id"`
	LoopType      string     `json:"loop_type"`
	LoopCondition string     `json:"loop_condition"`
	LoopBodyTools StringList `json:"loop_body_tools"`
}

// ParsePayload decodes a raw snapshot. Decoding fails only if the envelope
// itself is not JSON; malformed individual records are handled downstream.
func ParsePayload(data []byte) (*RawPayload, error) {
	var p RawPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// StringList accepts a JSON string, an array of strings, or null.
// The upstream emits the singular and plural parent forms interchangeably.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*s = nil
		return nil
	}
	*s = []string{single}
	return nil
}

// FlexTime accepts an RFC3339 string, a numeric epoch (seconds or
// milliseconds), or null. The zero value means "absent".
type FlexTime struct {
	time.Time
}

// epoch values above this are treated as milliseconds rather than seconds.
const millisCutoff = int64(1e12)

// UnmarshalJSON implements json.Unmarshaler.
func (ft *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		ft.Time = time.Time{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			ft.Time = time.Time{}
			return nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			// Tolerate a missing zone designator.
			t, err = time.Parse("2006-01-02T15:04:05", s)
			if err != nil {
				ft.Time = time.Time{}
				return nil
			}
		}
		ft.Time = t.UTC()
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		ft.Time = time.Time{}
		return nil
	}
	i := int64(n)
	if i >= millisCutoff {
		ft.Time = time.UnixMilli(i).UTC()
	} else {
		ft.Time = time.Unix(i, 0).UTC()
	}
	return nil
}

// FlexString accepts a JSON string or number and stores it as a string.
// Community ids arrive as integers from some producers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (fs *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*fs = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*fs = FlexString(s)
		return nil
	}
	*fs = FlexString(data)
	return nil
}
