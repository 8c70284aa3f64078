package playbyplay

type playtime struct {
	intervals []Interval
	on        bool
}

func (p *playtime) last() *Interval {
	if len(p.intervals) == 0 {
		return nil
	}
	return &p.intervals[len(p.intervals)-1]
}

// enter opens a new interval. A still-open interval is closed at the same clock first.
func (p *playtime) enter(clock string, period int) {
	if p.on {
		if l := p.last(); l != nil {
			l.End = clock
		}
	}
	p.intervals = append(p.intervals, Interval{Start: clock, Period: period})
	p.on = true
}

// leave closes the current interval. A player leaving without a recorded
// entry is assumed to have started the period.
func (p *playtime) leave(clock string, period int) {
	if !p.on {
		p.intervals = append(p.intervals, Interval{Start: PeriodStartClock(period), Period: period})
	}
	p.last().End = clock
	p.on = false
}

// seen extends the current interval to clock, or opens one from the period start.
func (p *playtime) seen(clock string, period int) {
	if p.on {
		if l := p.last(); l != nil {
			l.End = clock
			return
		}
	}
	p.intervals = append(p.intervals, Interval{Start: PeriodStartClock(period), End: clock, Period: period})
	p.on = true
}

func (p *playtime) close(clock string) {
	if p.on {
		if l := p.last(); l != nil {
			l.End = clock
		}
	}
	p.on = false
}

// teamPlaytime tracks on-floor intervals for one team's players.
type teamPlaytime struct {
	names   []string
	players map[string]*playtime
}

func newTeamPlaytime(players *Group[Action]) *teamPlaytime {
	t := &teamPlaytime{players: make(map[string]*playtime)}
	if players != nil {
		for _, name := range players.Names() {
			t.player(name)
		}
	}
	return t
}

func (t *teamPlaytime) player(name string) *playtime {
	p, ok := t.players[name]
	if !ok {
		p = &playtime{}
		t.players[name] = p
		t.names = append(t.names, name)
	}
	return p
}

func (t *teamPlaytime) apply(a Action) {
	switch a.ActionType {
	case "Substitution":
		if incoming, ok := incomingSubstitute(a); ok {
			t.player(incoming).enter(a.Clock, a.Period)
		}
		if p, ok := t.players[DisplayName(a)]; ok {
			p.leave(a.Clock, a.Period)
		}
	case "substitution":
		name, in, out := legacySubstitute(a)
		if name == "" {
			return
		}
		switch {
		case out:
			t.player(name).leave(a.Clock, a.Period)
		case in:
			t.player(name).enter(a.Clock, a.Period)
		}
	default:
		if p, ok := t.players[DisplayName(a)]; ok {
			p.seen(a.Clock, a.Period)
		}
	}
}

// periodEnd closes every open interval at the end of the period.
func (t *teamPlaytime) periodEnd() {
	for _, p := range t.players {
		p.close(PeriodEndClock)
	}
}

func (t *teamPlaytime) finish(clock string) *Group[Interval] {
	if clock == "" {
		clock = PeriodEndClock
	}
	out := NewGroup[Interval]()
	for _, name := range t.names {
		p := t.players[name]
		p.close(clock)
		out.Ensure(name)
		for _, iv := range p.intervals {
			out.Add(name, iv)
		}
	}
	return out
}
