package playbyplay

import "sort"

// InferTeamIDs guesses (away, home) from the actions' location markers.
// It needs exactly two distinct positive team ids. When the markers are tied
// the ids come back in ascending order, which is only a best guess.
func InferTeamIDs(actions []Action) (away, home int, ok bool) {
	type counts struct{ home, visitor int }
	seen := make(map[int]*counts)
	for _, a := range actions {
		if a.TeamID <= 0 {
			continue
		}
		c, found := seen[a.TeamID]
		if !found {
			c = &counts{}
			seen[a.TeamID] = c
		}
		switch a.Location {
		case "h":
			c.home++
		case "v":
			c.visitor++
		}
	}
	if len(seen) != 2 {
		return 0, 0, false
	}
	ids := make([]int, 0, 2)
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	a, b := ids[0], ids[1]
	ca, cb := seen[a], seen[b]

	switch {
	case ca.home > cb.home:
		return b, a, true
	case cb.home > ca.home:
		return a, b, true
	case ca.visitor > cb.visitor:
		return a, b, true
	case cb.visitor > ca.visitor:
		return b, a, true
	}
	return a, b, true
}
