package playbyplay

import "strings"

type nameCorrection struct {
	name        string
	tricode     string // empty matches every team
	replacement string
}

// Corrections for names the feed spells differently in descriptions than in playerName.
var nameCorrections = []nameCorrection{
	{name: "Porter", tricode: "CLE", replacement: "Porter Jr."},
	{name: "Jokic", replacement: "Jokić"},
}

// Legacy lowercase "substitution" actions used a different spelling for a few players.
var legacyNameCorrections = []nameCorrection{
	{name: "Yang", replacement: "Hansen"},
}

func correct(table []nameCorrection, name, tricode string) string {
	for _, c := range table {
		if c.name == name && (c.tricode == "" || c.tricode == tricode) {
			return c.replacement
		}
	}
	return name
}

// CorrectName applies the name correction table.
func CorrectName(name, tricode string) string {
	return correct(nameCorrections, name, tricode)
}

// DisplayName returns the player name used to key an action. When the
// description shows an abbreviated prefix right before the name (e.g. "G. Antetokounmpo"),
// the prefix is pulled in.
func DisplayName(a Action) string {
	name := a.PlayerName
	if name == "" {
		return ""
	}
	desc := a.Description
	if loc := strings.Index(desc, name); loc >= 2 && desc[loc-2] == '.' {
		prefix := desc[:loc-2]
		start := strings.LastIndex(prefix, " ") + 1
		name = desc[start : loc+len(name)]
	}
	return CorrectName(name, a.TeamTricode)
}

// incomingSubstitute extracts X from "SUB: X FOR Y".
func incomingSubstitute(a Action) (string, bool) {
	desc := a.Description
	i := strings.Index(desc, "SUB:")
	if i < 0 {
		return "", false
	}
	start := i + len("SUB: ")
	if start > len(desc) {
		return "", false
	}
	end := strings.Index(desc[start:], "FOR")
	if end < 1 {
		return "", false
	}
	name := strings.TrimSpace(desc[start : start+end])
	if name == "" {
		return "", false
	}
	return CorrectName(name, a.TeamTricode), true
}

// legacySubstitute parses the lowercase "in: X" / "out: X" substitution form.
func legacySubstitute(a Action) (name string, in, out bool) {
	desc := a.Description
	i := strings.Index(desc, ":")
	if i < 0 || i+2 > len(desc) {
		return "", false, false
	}
	name = correct(legacyNameCorrections, strings.TrimSpace(desc[i+2:]), a.TeamTricode)
	return name, strings.Contains(desc, "in:"), strings.Contains(desc, "out:")
}

// assistCredit extracts the assisting player and the credit text from a
// description ending in "(Jones 1 AST)".
func assistCredit(a Action) (name, text string, ok bool) {
	desc := a.Description
	start := strings.LastIndex(desc, "(") + 1
	lastSpace := strings.LastIndex(desc, " ")
	if lastSpace <= start {
		return "", "", false
	}
	segment := desc[start:lastSpace]
	if sp := strings.LastIndex(segment, " "); sp > 0 {
		name = segment[:sp]
	} else {
		name = segment
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	if len(desc) > start {
		text = desc[start : len(desc)-1]
	}
	return CorrectName(name, a.TeamTricode), text, true
}
