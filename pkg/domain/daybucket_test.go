package domain

import (
	"reflect"
	"testing"
	"time"
)

type record struct {
	ts    int64
	label string
}

func TestGroupByDay_Completeness(t *testing.T) {
	day1 := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)

	// Deliberately out of order across two days.
	records := []record{
		{ts: day2.Add(9 * time.Hour).Unix(), label: "d2-morning"},
		{ts: day1.Add(18 * time.Hour).Unix(), label: "d1-evening"},
		{ts: day1.Add(6 * time.Hour).Unix(), label: "d1-morning"},
		{ts: day2.Add(21 * time.Hour).Unix(), label: "d2-evening"},
		{ts: day1.Add(12 * time.Hour).Unix(), label: "d1-noon"},
	}

	buckets := GroupByDay(records, func(r record) int64 { return r.ts })

	var total int
	seen := map[string]bool{}
	for _, bucket := range buckets {
		total += len(bucket.AllEntries)
		if seen[bucket.Date] {
			t.Errorf("date %s appears in more than one bucket", bucket.Date)
		}
		seen[bucket.Date] = true
	}
	if total != len(records) {
		t.Errorf("bucketed records = %d, want %d", total, len(records))
	}

	if len(buckets) != 2 || buckets[0].Date != "2024-04-01" || buckets[1].Date != "2024-04-02" {
		t.Fatalf("buckets = %+v, want ascending 2024-04-01, 2024-04-02", buckets)
	}
}

func TestGroupByDay_IntraBucketOrdering(t *testing.T) {
	day1 := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	noon := day1.Add(12 * time.Hour).Unix()

	records := []record{
		{ts: noon, label: "noon-first"},
		{ts: day1.Add(6 * time.Hour).Unix(), label: "morning"},
		{ts: noon, label: "noon-second"},
		{ts: day1.Add(18 * time.Hour).Unix(), label: "evening"},
	}

	buckets := GroupByDay(records, func(r record) int64 { return r.ts })
	if len(buckets) != 1 {
		t.Fatalf("buckets = %d, want 1", len(buckets))
	}

	// Chronological within the bucket; equal timestamps keep input order.
	want := []record{
		{ts: records[1].ts, label: "morning"},
		{ts: noon, label: "noon-first"},
		{ts: noon, label: "noon-second"},
		{ts: records[3].ts, label: "evening"},
	}
	if !reflect.DeepEqual(buckets[0].AllEntries, want) {
		t.Errorf("entries = %+v, want %+v", buckets[0].AllEntries, want)
	}
	if !reflect.DeepEqual(buckets[0].LastEntry, buckets[0].AllEntries[len(buckets[0].AllEntries)-1]) {
		t.Errorf("lastEntry = %+v, want the final entry of the bucket", buckets[0].LastEntry)
	}
}

func TestGroupByDay_ZeroTimestampFallsBackToGenesis(t *testing.T) {
	records := []record{
		{ts: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC).Unix(), label: "dated"},
		{ts: 0, label: "undated"},
	}

	buckets := GroupByDay(records, func(r record) int64 { return r.ts })
	if len(buckets) != 2 {
		t.Fatalf("buckets = %d, want 2 (undated record kept, not dropped)", len(buckets))
	}
	if buckets[0].Date != DayKey(GenesisTimestamp) {
		t.Errorf("first bucket date = %s, want genesis day %s", buckets[0].Date, DayKey(GenesisTimestamp))
	}
	if buckets[0].LastEntry.label != "undated" {
		t.Errorf("genesis bucket holds %q, want the undated record", buckets[0].LastEntry.label)
	}
}
