package poller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalStatus(t *testing.T) {
	for _, s := range []string{"Final", "final/OT", " FINAL ", "PPD", "Postponed", "Cancelled", "Canceled"} {
		assert.True(t, IsTerminalStatus(s), s)
	}
	for _, s := range []string{"", "Q3 08:45", "Halftime", "7:30 pm ET", "End of 4th"} {
		assert.False(t, IsTerminalStatus(s), s)
	}
}

func TestStatusIndicatesLive(t *testing.T) {
	tests := []struct {
		status string
		clock  string
		live   bool
	}{
		{"Q3 08:45", "", true},
		{"q1", "", true},
		{"Halftime", "", true},
		{"End of 3rd Qtr", "", true},
		{"In Progress", "", true},
		{"OT", "", true},
		{"2OT", "", true},
		{"Q4 OT", "", true},
		{"Overtime", "", true},
		{"Final", "PT00M00.00S", false},
		{"PPD", "", false},
		{"", "PT05M00.00S", false},
		{"Scheduled", "PT12M00.00S", false},
		{"Pregame", "", false},
		{"TBD", "", false},
		{"7:30 pm ET", "", false},
		{"7:30 pm ET", "PT12M00.00S", false},
		{"10:00PM", "", false},
		{"Delayed", "PT04M10.00S", true},
		{"Delayed", "", false},
		{"Qualifier", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.clock, func(t *testing.T) {
			assert.Equal(t, tt.live, StatusIndicatesLive(tt.status, tt.clock))
		})
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2024, 1, 15, 20, 0, 0, 0, Eastern())

	tests := []struct {
		name     string
		status   string
		clock    string
		start    string
		expected Lifecycle
	}{
		{"final", "Final", "", "2024-01-15T19:00:00Z", LifecycleTerminal},
		{"postponed before start", "PPD", "", "2024-01-15T21:00:00Z", LifecycleTerminal},
		{"live by status", "Q3 08:45", "", "2024-01-15T21:00:00Z", LifecycleLive},
		{"live by start time", "7:30 pm ET", "", "2024-01-15T19:30:00Z", LifecycleLive},
		{"starts exactly now", "8:00 pm ET", "", "2024-01-15T20:00:00Z", LifecycleLive},
		{"pregame", "9:00 pm ET", "", "2024-01-15T21:00:00Z", LifecyclePregame},
		{"unparseable start", "TBD", "", "later", LifecyclePregame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.status, tt.clock, tt.start, now))
		})
	}
}

func TestHasGameStarted(t *testing.T) {
	now := time.Date(2024, 1, 15, 20, 0, 0, 0, Eastern())
	assert.True(t, HasGameStarted(GameRecord{Status: "Halftime"}, now))
	assert.True(t, HasGameStarted(GameRecord{Status: "7:00 pm ET", StartTime: "2024-01-15T19:00:00Z"}, now))
	assert.False(t, HasGameStarted(GameRecord{Status: "Final", StartTime: "2024-01-15T19:00:00Z"}, now))
	assert.False(t, HasGameStarted(GameRecord{Status: "10:00 pm ET", StartTime: "2024-01-15T22:00:00Z"}, now))
}

func TestLifecycleString(t *testing.T) {
	assert.Equal(t, "pregame", LifecyclePregame.String())
	assert.Equal(t, "live", LifecycleLive.String())
	assert.Equal(t, "terminal", LifecycleTerminal.String())
	assert.Equal(t, "unknown", Lifecycle(9).String())
}
