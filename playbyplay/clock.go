package playbyplay

import (
	"regexp"
	"strconv"
)

const (
	RegulationStartClock = "PT12M00.00S"
	OvertimeStartClock   = "PT05M00.00S"
	PeriodEndClock       = "PT00M00.00S"

	regulationPeriods = 4
)

var clockPattern = regexp.MustCompile(`^PT(\d+)M(\d+)\.(\d+)S`)

// ClockSeconds converts a game clock such as "PT11M42.50S" into seconds
// remaining in the period. Anything unparseable counts as zero.
func ClockSeconds(clock string) float64 {
	m := clockPattern.FindStringSubmatch(clock)
	if m == nil {
		return 0
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.Atoi(m[2])
	hundredths, _ := strconv.Atoi(m[3])
	return float64(minutes*60+seconds) + float64(hundredths)/100
}

// PeriodStartClock is the clock a period starts at: 12:00 in regulation, 5:00 in overtime.
func PeriodStartClock(period int) string {
	if period <= regulationPeriods {
		return RegulationStartClock
	}
	return OvertimeStartClock
}
