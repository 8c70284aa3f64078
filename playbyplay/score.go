package playbyplay

// ScoreTimeline emits a point every time the away or home score changes.
// Both sides are checked independently, so one action can emit two points.
// Actions without an away score are ignored.
func ScoreTimeline(actions []Action) []ScorePoint {
	timeline := []ScorePoint{}
	away, home := "0", "0"
	for _, a := range actions {
		if a.ScoreAway == "" {
			continue
		}
		if a.ScoreAway != away {
			timeline = append(timeline, ScorePoint{Away: a.ScoreAway, Home: a.ScoreHome, Clock: a.Clock, Period: a.Period})
			away = a.ScoreAway
		}
		if a.ScoreHome != home {
			timeline = append(timeline, ScorePoint{Away: a.ScoreAway, Home: a.ScoreHome, Clock: a.Clock, Period: a.Period})
			home = a.ScoreHome
		}
	}
	return timeline
}
