package domain

import (
	"sort"
	"time"
)

// GenesisTimestamp is assigned to records whose feed entry carried no close
// time, so they sort before everything else instead of being dropped.
// It is the close time of the first exchange deployment.
var GenesisTimestamp = time.Date(2024, 3, 11, 16, 23, 45, 0, time.UTC).Unix()

// DayBucket groups the records of one UTC calendar day. AllEntries is the
// full chronological list; LastEntry is its last element, used as the
// point-in-time state "as of that day".
type DayBucket[T any] struct {
	Date       string `json:"date"`
	LastEntry  T      `json:"lastEntry"`
	AllEntries []T    `json:"allEntries"`
}

// DayKey formats a unix-seconds timestamp as its UTC calendar day.
func DayKey(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format("2006-01-02")
}

// GroupByDay partitions records into calendar-day buckets keyed by the UTC
// day of their timestamp. Records reporting a zero timestamp are assigned
// GenesisTimestamp rather than excluded. The sort is stable: records with
// equal timestamps keep their relative order. Buckets are returned in
// ascending date order.
func GroupByDay[T any](records []T, timestamp func(T) int64) []DayBucket[T] {
	type stamped struct {
		ts     int64
		record T
	}

	all := make([]stamped, len(records))
	for i, r := range records {
		ts := timestamp(r)
		if ts == 0 {
			ts = GenesisTimestamp
		}
		all[i] = stamped{ts: ts, record: r}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].ts < all[j].ts })

	var buckets []DayBucket[T]
	for _, s := range all {
		key := DayKey(s.ts)
		if n := len(buckets); n > 0 && buckets[n-1].Date == key {
			buckets[n-1].AllEntries = append(buckets[n-1].AllEntries, s.record)
			buckets[n-1].LastEntry = s.record
			continue
		}
		buckets = append(buckets, DayBucket[T]{
			Date:       key,
			LastEntry:  s.record,
			AllEntries: []T{s.record},
		})
	}
	return buckets
}
