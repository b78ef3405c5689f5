package view

import (
	"time"

	"capdash/internal/hypergraph"
)

// BucketDef is one recency bucket: capabilities younger than MaxAge land
// here unless an earlier bucket claimed them first.
type BucketDef struct {
	Label  string
	MaxAge time.Duration
}

// DefaultBuckets returns the standard recency partition. The final "older"
// bucket is unbounded and always present as a catch-all.
func DefaultBuckets() []BucketDef {
	return []BucketDef{
		{Label: "today", MaxAge: 24 * time.Hour},
		{Label: "this week", MaxAge: 7 * 24 * time.Hour},
		{Label: "this month", MaxAge: 30 * 24 * time.Hour},
	}
}

// bucketOlderLabel names the unbounded catch-all bucket.
const bucketOlderLabel = "older"

// Bucket groups capabilities whose recency falls inside one definition.
type Bucket struct {
	Label        string                   `json:"label"`
	Capabilities []*hypergraph.Capability `json:"capabilities"`
}

// Bucketize partitions capabilities into ordered recency buckets using the
// default definitions. Empty buckets are omitted. A capability that never
// ran (zero LastUsedAt) is maximally stale and lands in "older".
func Bucketize(capabilities []*hypergraph.Capability, now time.Time) []Bucket {
	return BucketizeWith(DefaultBuckets(), capabilities, now)
}

// BucketizeWith is Bucketize with caller-supplied bucket definitions,
// checked in order; each capability joins exactly the first bucket whose
// threshold it satisfies.
func BucketizeWith(defs []BucketDef, capabilities []*hypergraph.Capability, now time.Time) []Bucket {
	grouped := make([][]*hypergraph.Capability, len(defs)+1)

	for _, c := range capabilities {
		idx := len(defs) // catch-all by default
		if !c.LastUsedAt.IsZero() {
			age := now.Sub(c.LastUsedAt)
			for i, def := range defs {
				if age < def.MaxAge {
					idx = i
					break
				}
			}
		}
		grouped[idx] = append(grouped[idx], c)
	}

	buckets := make([]Bucket, 0, len(defs)+1)
	for i, def := range defs {
		if len(grouped[i]) == 0 {
			continue
		}
		buckets = append(buckets, Bucket{Label: def.Label, Capabilities: grouped[i]})
	}
	if len(grouped[len(defs)]) > 0 {
		buckets = append(buckets, Bucket{Label: bucketOlderLabel, Capabilities: grouped[len(defs)]})
	}
	return buckets
}
