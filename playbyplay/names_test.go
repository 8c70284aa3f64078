package playbyplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		action   Action
		expected string
	}{
		{
			name:     "plain name",
			action:   Action{PlayerName: "Vassell", Description: "Vassell 12' Jump Shot (2 PTS)"},
			expected: "Vassell",
		},
		{
			name:     "abbreviated prefix pulled in",
			action:   Action{PlayerName: "Antetokounmpo", Description: "G. Antetokounmpo 2' Layup (2 PTS)"},
			expected: "G. Antetokounmpo",
		},
		{
			name:     "prefix after earlier words",
			action:   Action{PlayerName: "Williams", Description: "MISS J. Williams 3PT Jump Shot"},
			expected: "J. Williams",
		},
		{
			name:     "name at position one is left alone",
			action:   Action{PlayerName: "Ball", Description: "xBall"},
			expected: "Ball",
		},
		{
			name:     "name missing from description",
			action:   Action{PlayerName: "Smith", Description: "Jump Ball"},
			expected: "Smith",
		},
		{
			name:     "empty name",
			action:   Action{Description: "Period Start"},
			expected: "",
		},
		{
			name:     "Jokic corrected",
			action:   Action{PlayerName: "Jokic", TeamTricode: "DEN", Description: "Jokic 2' Hook Shot"},
			expected: "Jokić",
		},
		{
			name:     "Porter corrected for CLE",
			action:   Action{PlayerName: "Porter", TeamTricode: "CLE", Description: "Porter 3PT"},
			expected: "Porter Jr.",
		},
		{
			name:     "Porter kept elsewhere",
			action:   Action{PlayerName: "Porter", TeamTricode: "DEN", Description: "Porter 3PT"},
			expected: "Porter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DisplayName(tt.action))
		})
	}
}

func TestIncomingSubstitute(t *testing.T) {
	name, ok := incomingSubstitute(Action{Description: "SUB: Alvarado FOR Murphy III"})
	assert.True(t, ok)
	assert.Equal(t, "Alvarado", name)

	name, ok = incomingSubstitute(Action{Description: "SUB: Jokic FOR Braun", TeamTricode: "DEN"})
	assert.True(t, ok)
	assert.Equal(t, "Jokić", name)

	_, ok = incomingSubstitute(Action{Description: "Alvarado enters"})
	assert.False(t, ok)

	_, ok = incomingSubstitute(Action{Description: "SUB: FOR Smith"})
	assert.False(t, ok)
}

func TestAssistCredit(t *testing.T) {
	tests := []struct {
		desc string
		name string
		text string
		ok   bool
	}{
		{"Murphy III 25' 3PT Jump Shot (3 PTS) (Jones 1 AST)", "Jones", "Jones 1 AST", true},
		{"Smith Layup (2 PTS) (Gilgeous-Alexander 10 AST)", "Gilgeous-Alexander", "Gilgeous-Alexander 10 AST", true},
		{"Smith Layup (2 PTS) (Porter Jr. 3 AST)", "Porter Jr.", "Porter Jr. 3 AST", true},
		{"Dunk (AST)", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			name, text, ok := assistCredit(Action{Description: tt.desc})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestLegacySubstitute(t *testing.T) {
	name, in, out := legacySubstitute(Action{Description: "in: Yang"})
	assert.Equal(t, "Hansen", name)
	assert.True(t, in)
	assert.False(t, out)

	name, in, out = legacySubstitute(Action{Description: "out: Johnson"})
	assert.Equal(t, "Johnson", name)
	assert.False(t, in)
	assert.True(t, out)
}

func TestClockSeconds(t *testing.T) {
	tests := []struct {
		clock    string
		expected float64
	}{
		{"PT11M42.50S", 702.5},
		{"PT00M05.00S", 5},
		{"PT12M00.00S", 720},
		{"PT05M00.00S", 300},
		{"11:42", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ClockSeconds(tt.clock), 1e-9)
		})
	}
}

func TestPeriodStartClock(t *testing.T) {
	assert.Equal(t, RegulationStartClock, PeriodStartClock(1))
	assert.Equal(t, RegulationStartClock, PeriodStartClock(4))
	assert.Equal(t, OvertimeStartClock, PeriodStartClock(5))
}

func TestInferTeamIDs(t *testing.T) {
	tests := []struct {
		name     string
		actions  []Action
		away     int
		home     int
		ok       bool
	}{
		{
			name: "home markers decide",
			actions: []Action{
				{TeamID: 20, Location: "h"},
				{TeamID: 10, Location: "v"},
				{TeamID: 20, Location: "h"},
			},
			away: 10, home: 20, ok: true,
		},
		{
			name: "lower id at home",
			actions: []Action{
				{TeamID: 10, Location: "h"},
				{TeamID: 20},
			},
			away: 20, home: 10, ok: true,
		},
		{
			name: "visitor markers decide when home tied",
			actions: []Action{
				{TeamID: 10},
				{TeamID: 20, Location: "v"},
			},
			away: 20, home: 10, ok: true,
		},
		{
			name: "tie falls back to ascending",
			actions: []Action{
				{TeamID: 20},
				{TeamID: 10},
			},
			away: 10, home: 20, ok: true,
		},
		{
			name:    "one team",
			actions: []Action{{TeamID: 10, Location: "h"}, {TeamID: 0}},
		},
		{
			name:    "three teams",
			actions: []Action{{TeamID: 10}, {TeamID: 20}, {TeamID: 30}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			away, home, ok := InferTeamIDs(tt.actions)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.away, away)
			assert.Equal(t, tt.home, home)
		})
	}
}

func TestInferTeamIDs_Fixture(t *testing.T) {
	away, home, ok := InferTeamIDs(loadActions(t, "game_end.json"))
	assert.True(t, ok)
	assert.Equal(t, 1610612740, away)
	assert.Equal(t, 1610612759, home)
}
