package event

import "time"

// Result contains the next snapshot and what the pass did to produce it
type Result struct {
	Records    []Record
	Fetched    int // len(incoming)
	New        int
	Refreshed  int
	Duplicates int // repeated URLs within incoming, dropped
	Expired    int
}

// Reconcile merges an incoming batch into the existing snapshot and returns the next snapshot.
//
// Existing records keep their position and fields; those whose URL appears in
// incoming get LastUpdated set to now. Unseen URLs are appended in incoming
// order. A URL repeated within incoming is taken at its first occurrence.
// Status is recomputed for every record against today (YYYY-MM-DD); a record
// whose date does not parse keeps the status it had.
// Neither input slice is modified.
func Reconcile(existing, incoming []Record, now time.Time, today string) *Result {
	stamp := FormatTimestamp(now)

	result := &Result{
		Records: make([]Record, len(existing), len(existing)+len(incoming)),
		Fetched: len(incoming),
	}
	copy(result.Records, existing)

	// URL -> position in result.Records
	index := make(map[string]int, len(existing)+len(incoming))
	for i, rec := range result.Records {
		index[rec.URL] = i
	}

	batch := make(map[string]bool, len(incoming))
	for _, rec := range incoming {
		if batch[rec.URL] {
			result.Duplicates++
			continue
		}
		batch[rec.URL] = true

		if i, exists := index[rec.URL]; exists {
			// The stored copy is authoritative; only freshness is tracked
			if result.Records[i].LastUpdated < stamp {
				result.Records[i].LastUpdated = stamp
			}
			result.Refreshed++
			continue
		}

		rec.LastUpdated = stamp
		index[rec.URL] = len(result.Records)
		result.Records = append(result.Records, rec)
		result.New++
	}

	for i := range result.Records {
		result.Records[i].Status = result.Records[i].NextStatus(today)
		if result.Records[i].Status == StatusExpired {
			result.Expired++
		}
	}

	return result
}
