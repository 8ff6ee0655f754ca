package runner

import (
	"github.com/example/campsched/internal/adapter"
	"github.com/example/campsched/internal/jobs"
)

// PickSlot chooses the slot to book from the candidates a search produced.
// Pure function: filter by capacity >= criteria.guests (default 1), prefer
// the first candidate whose zone is in criteria.preferred_zones, otherwise
// take the first filtered candidate in the order the adapter returned them.
// Adapters are expected to rank candidates already; there is deliberately no
// scoring here.
func PickSlot(slots []adapter.SlotResult, job jobs.Job) (adapter.SlotResult, bool) {
	guests := job.Criteria.Int("guests", 1)

	var candidates []adapter.SlotResult
	for _, s := range slots {
		if s.Capacity >= guests {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return adapter.SlotResult{}, false
	}

	if preferred := job.Criteria.StringList("preferred_zones"); len(preferred) > 0 {
		for _, s := range candidates {
			if zoneIn(preferred, s.Zone) {
				return s, true
			}
		}
	}
	return candidates[0], true
}

func zoneIn(zones []string, zone string) bool {
	for _, z := range zones {
		if z == zone {
			return true
		}
	}
	return false
}
