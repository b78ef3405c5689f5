package view

import (
	"testing"
	"time"

	"capdash/internal/hypergraph"
)

func capUsedAt(id string, at time.Time) *hypergraph.Capability {
	return &hypergraph.Capability{ID: id, Name: id, UsageCount: 1, LastUsedAt: at}
}

func TestBucketizePlacement(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{"two hours ago is today", 2 * time.Hour, "today"},
		{"just under a day is today", 23 * time.Hour, "today"},
		{"two days ago is this week", 48 * time.Hour, "this week"},
		{"ten days ago is this month", 10 * 24 * time.Hour, "this month"},
		{"forty days ago is older", 40 * 24 * time.Hour, "older"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := capUsedAt("c", now.Add(-tt.age))
			buckets := Bucketize([]*hypergraph.Capability{c}, now)
			if len(buckets) != 1 {
				t.Fatalf("expected exactly 1 non-empty bucket, got %d", len(buckets))
			}
			if buckets[0].Label != tt.want {
				t.Errorf("bucket = %q, want %q", buckets[0].Label, tt.want)
			}
		})
	}
}

func TestBucketizeNeverUsedIsOlder(t *testing.T) {
	now := time.Now()
	c := &hypergraph.Capability{ID: "never", UsageCount: 1}

	buckets := Bucketize([]*hypergraph.Capability{c}, now)
	if len(buckets) != 1 || buckets[0].Label != "older" {
		t.Errorf("capability with no lastUsedAt should land in older, got %+v", buckets)
	}
}

func TestBucketizeOmitsEmptyBucketsAndKeepsOrder(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	caps := []*hypergraph.Capability{
		capUsedAt("old", now.Add(-90*24*time.Hour)),
		capUsedAt("fresh", now.Add(-time.Hour)),
	}

	buckets := Bucketize(caps, now)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Label != "today" || buckets[1].Label != "older" {
		t.Errorf("bucket order = [%s %s], want [today older]", buckets[0].Label, buckets[1].Label)
	}
}

func TestBucketizePreservesCapabilityOrderWithinBucket(t *testing.T) {
	now := time.Now()
	caps := []*hypergraph.Capability{
		capUsedAt("a", now.Add(-time.Hour)),
		capUsedAt("b", now.Add(-2*time.Hour)),
	}

	buckets := Bucketize(caps, now)
	got := buckets[0].Capabilities
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("within-bucket order changed: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestBucketizeWithCustomThresholds(t *testing.T) {
	now := time.Now()
	defs := []BucketDef{{Label: "recent", MaxAge: time.Minute}}
	caps := []*hypergraph.Capability{
		capUsedAt("hot", now.Add(-time.Second)),
		capUsedAt("cold", now.Add(-time.Hour)),
	}

	buckets := BucketizeWith(defs, caps, now)
	if len(buckets) != 2 || buckets[0].Label != "recent" || buckets[1].Label != "older" {
		t.Errorf("custom thresholds not honored: %+v", buckets)
	}
}
