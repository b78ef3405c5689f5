// Package view derives the presentation-ready structures the dashboard
// renders: recency buckets, per-capability flow layers, server colors, and
// the transient set of freshly-observed capabilities. All cross-poll state
// lives in an explicit SessionState instead of hidden globals, so the
// whole pipeline is a pure function of (payload, state, now).
package view

import "capdash/internal/hypergraph"

// DefaultPalette is the rotation of display colors assigned to servers in
// first-seen order.
var DefaultPalette = []string{
	"#4f8ef7", "#34c38f", "#f1b44c", "#f46a6a",
	"#9b7ef7", "#50c8e8", "#f78fb3", "#8fd14f",
}

// SessionState carries the only state that survives across polls: the
// capability ids already seen and the server color assignments. It lives
// for one viewing session and is never persisted.
type SessionState struct {
	seenIDs      map[string]bool
	primed       bool
	serverColors map[string]string
	palette      []string
	next         int
}

// NewSessionState creates session state using the given palette, or
// DefaultPalette when nil.
func NewSessionState(palette []string) *SessionState {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &SessionState{
		seenIDs:      make(map[string]bool),
		serverColors: make(map[string]string),
		palette:      palette,
	}
}

// ServerColor returns the display color for a server, assigning the next
// palette color on first sight. Assignment order is the order servers are
// first asked about, so a deterministic caller gets deterministic colors.
func (s *SessionState) ServerColor(server string) string {
	if c, ok := s.serverColors[server]; ok {
		return c
	}
	c := s.palette[s.next%len(s.palette)]
	s.next++
	s.serverColors[server] = c
	return c
}

// ToolColor resolves a tool's display color through its server.
func (s *SessionState) ToolColor(t *hypergraph.Tool) string {
	return s.ServerColor(t.Server)
}
