package service

import (
	"time"

	"briefbox/backend/internal/channel"
	"briefbox/backend/internal/model"
)

// firstFetchWindow bounds how far back the very first fetch of a channel
// reaches.
const firstFetchWindow = 7 * 24 * time.Hour

// SelectNew decides which fetched items are genuinely new. Provider publish
// timestamps are not trustworthy near ingestion time, so:
//
//   - With no last known update (first fetch), items published within the last
//     7 days are kept, boundary inclusive. Future publish dates are kept too,
//     tolerating provider clock skew.
//   - Otherwise only items published strictly after the last known update's
//     Inserted time are kept. Comparing against Inserted rather than Published
//     avoids missing items a provider back-dates after the fact; strict
//     inequality means an item published at exactly that instant counts as
//     already seen.
//
// Known gap, kept on purpose: a source publishing two items within one polling
// interval, both back-dated to the same past instant, can lose the second.
func SelectNew(fetched []channel.RawUpdate, lastKnown *model.Update, now time.Time) []channel.RawUpdate {
	var selected []channel.RawUpdate

	if lastKnown == nil {
		cutoff := now.Add(-firstFetchWindow)
		for _, item := range fetched {
			if !item.Published.Before(cutoff) {
				selected = append(selected, item)
			}
		}
		return selected
	}

	for _, item := range fetched {
		if item.Published.After(lastKnown.Inserted) {
			selected = append(selected, item)
		}
	}
	return selected
}
