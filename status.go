package poller

import (
	"strings"
	"time"
	"unicode"
)

// Lifecycle is the coarse state of a game as seen by the poller.
type Lifecycle int

const (
	LifecyclePregame Lifecycle = iota
	LifecycleLive
	LifecycleTerminal
)

func (l Lifecycle) String() string {
	switch l {
	case LifecyclePregame:
		return "pregame"
	case LifecycleLive:
		return "live"
	case LifecycleTerminal:
		return "terminal"
	}
	return "unknown"
}

var terminalPrefixes = []string{"final", "postponed", "cancelled", "canceled", "ppd"}

var pregamePrefixes = []string{"scheduled", "pre", "tbd"}

var inPlayTokens = []string{"qtr", "quarter", "half", "halftime", "in progress", "end of"}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	return s != "" && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}

// IsTerminalStatus reports whether the game is over or will not be played today.
func IsTerminalStatus(status string) bool {
	return hasAnyPrefix(normalizeStatus(status), terminalPrefixes)
}

// liveRule is one row of the status table. Rules are evaluated in order and
// the first match decides.
type liveRule struct {
	name  string
	match func(status, clock string) bool
	live  bool
}

var liveRules = []liveRule{
	{"empty", func(s, _ string) bool { return s == "" }, false},
	{"terminal", func(s, _ string) bool { return hasAnyPrefix(s, terminalPrefixes) }, false},
	{"pregame", func(s, _ string) bool { return hasAnyPrefix(s, pregamePrefixes) || strings.Contains(s, "tbd") }, false},
	{"quarter", func(s, _ string) bool { return strings.HasPrefix(s, "q") && strings.ContainsFunc(s, unicode.IsDigit) }, true},
	{"tipoff time", func(s, _ string) bool {
		return strings.Contains(s, ":") && (strings.Contains(s, " am") || strings.Contains(s, " pm") ||
			strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") || strings.Contains(s, " et"))
	}, false},
	{"running clock", func(_, clock string) bool { return clock != "" }, true},
	{"in play", func(s, _ string) bool { return containsAny(s, inPlayTokens) }, true},
	{"overtime", func(s, _ string) bool {
		return strings.Contains(s, "overtime") || s == "ot" || strings.Contains(s, " ot") ||
			(strings.HasSuffix(s, "ot") && isDigits(strings.TrimSuffix(s, "ot")))
	}, true},
}

// StatusIndicatesLive reports whether the status text (and clock) describe a game in progress.
func StatusIndicatesLive(status, clock string) bool {
	s := normalizeStatus(status)
	clock = strings.TrimSpace(clock)
	for _, rule := range liveRules {
		if rule.match(s, clock) {
			return rule.live
		}
	}
	return false
}

// Classify places a game in its lifecycle. A game counts as live once its
// status says so or its start time has passed.
func Classify(status, clock, startTime string, now time.Time) Lifecycle {
	if IsTerminalStatus(status) {
		return LifecycleTerminal
	}
	if StatusIndicatesLive(status, clock) {
		return LifecycleLive
	}
	if start, ok := ParseStartTime(startTime); ok && !now.Before(start) {
		return LifecycleLive
	}
	return LifecyclePregame
}

// HasGameStarted reports whether the record's game should be polled now.
func HasGameStarted(rec GameRecord, now time.Time) bool {
	return Classify(rec.Status, rec.Clock, rec.StartTime, now) == LifecycleLive
}
