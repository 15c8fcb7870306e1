package models

// MergeConsecutive collapses runs of adjacent hops that resolve to the same
// place. Two hops are the same place when they share an equal facility or
// identical coordinates. The input slice is not modified.
func MergeConsecutive(hops []Hop) []Hop {
	merged := make([]Hop, 0, len(hops))

	for i := 0; i < len(hops); {
		head := cloneHop(hops[i])

		j := i + 1
		for ; j < len(hops) && samePlace(head, hops[j]); j++ {
			next := hops[j]
			head.IPs = append(head.IPs, next.IPs...)

			// the merged hop departs wherever the last member departs
			if next.ExitCable != nil {
				ref := *next.ExitCable
				head.ExitCable = &ref
			}
			if next.DistanceFrom > head.DistanceFrom {
				head.DistanceFrom = next.DistanceFrom
			}
		}

		merged = append(merged, head)
		i = j
	}

	return merged
}

func samePlace(a, b Hop) bool {
	if b.Facility != nil && a.Facility != nil && *a.Facility == *b.Facility {
		return true
	}
	return a.Latitude == b.Latitude && a.Longitude == b.Longitude
}

func cloneHop(h Hop) Hop {
	out := h
	out.IPs = append([]string(nil), h.IPs...)
	if h.Facility != nil {
		fac := *h.Facility
		out.Facility = &fac
	}
	if h.ExitCable != nil {
		ref := *h.ExitCable
		out.ExitCable = &ref
	}
	if h.EntryCable != nil {
		ref := *h.EntryCable
		out.EntryCable = &ref
	}
	return out
}
