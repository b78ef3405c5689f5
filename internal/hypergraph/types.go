// Package hypergraph reconstructs the typed capability graph from the raw
// node/edge snapshot produced by the upstream learning system. The raw
// payload is denormalized and never guaranteed complete, so everything in
// here defaults rather than fails.
package hypergraph

import (
	"encoding/json"
	"time"
)

// Node type discriminators in the raw payload.
const (
	NodeTypeTool       = "tool"
	NodeTypeCapability = "capability"
)

// EdgeKindContains marks a parent-capability -> child-capability edge.
const EdgeKindContains = "contains"

// ServerBuiltin is the generic marker the upstream emits for tools that run
// in-process; it is replaced by the tool's module identifier when one exists.
const ServerBuiltin = "builtin"

// ServerUnknown is the sentinel for tools whose origin could not be resolved.
const ServerUnknown = "unknown"

// Tool is a single executable tool known to the graph. A tool with no parent
// capability is an orphan and never materializes as a Tool.
type Tool struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Server              string   `json:"server"`
	ParentCapabilityIDs []string `json:"parentCapabilityIds"`
}

// Capability is a learned composite action built from one or more tools.
// Capabilities with a usage count of zero are unexercised and are never
// materialized. Traces are ordered most-recent first.
type Capability struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	FQDN           string    `json:"fqdn,omitempty"`
	SuccessRate    float64   `json:"successRate"`
	UsageCount     int       `json:"usageCount"`
	LastUsedAt     time.Time `json:"lastUsedAt,omitzero"`
	ParentID       string    `json:"parentId,omitempty"`
	HierarchyLevel int       `json:"hierarchyLevel"`
	CommunityID    string    `json:"communityId,omitempty"`
	PageRank       float64   `json:"pagerank,omitempty"`
	CodeSnippet    string    `json:"codeSnippet,omitempty"`
	Tools          []*Tool   `json:"tools"`
	Traces         []Trace   `json:"traces,omitempty"`
}

// Trace is one recorded execution of a capability.
type Trace struct {
	ID           string       `json:"id"`
	ExecutedAt   time.Time    `json:"executedAt,omitzero"`
	Success      bool         `json:"success"`
	DurationMs   float64      `json:"durationMs"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
	Priority     float64      `json:"priority"`
	TaskResults  []TaskResult `json:"taskResults"`
}

// TaskResult is one task execution within a trace. LayerIndex groups tasks
// that ran concurrently; nil means layer 0. The loop fields are carried
// through opaquely for the rendering layer and are not interpreted here.
type TaskResult struct {
	TaskID     string          `json:"taskId"`
	Tool       string          `json:"tool"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Success    bool            `json:"success"`
	DurationMs float64         `json:"durationMs"`
	LayerIndex *int            `json:"layerIndex,omitempty"`

	LoopID        string   `json:"loopId,omitempty"`
	LoopType      string   `json:"loopType,omitempty"`
	LoopCondition string   `json:"loopCondition,omitempty"`
	LoopBodyTools []string `json:"loopBodyTools,omitempty"`
}

// Layer returns the task's layer index, defaulting to 0 when absent or
// negative.
func (t TaskResult) Layer() int {
	if t.LayerIndex == nil || *t.LayerIndex < 0 {
		return 0
	}
	return *t.LayerIndex
}

// IsMeta reports whether the capability is composed of other capabilities.
func (c *Capability) IsMeta() bool {
	return c.HierarchyLevel > 0
}

// LatestTrace returns the most recent trace, or nil if none exist. Traces
// arrive newest-first from the upstream source.
func (c *Capability) LatestTrace() *Trace {
	if len(c.Traces) == 0 {
		return nil
	}
	return &c.Traces[0]
}
