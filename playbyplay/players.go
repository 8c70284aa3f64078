package playbyplay

import "strings"

// GroupActions splits the action log into per-player groups for each team.
// A nil team id matches nothing.
func GroupActions(actions []Action, awayID, homeID *int) (away, home *Group[Action]) {
	away, home = NewGroup[Action](), NewGroup[Action]()
	for _, a := range actions {
		var players *Group[Action]
		switch {
		case awayID != nil && a.TeamID == *awayID:
			players = away
		case homeID != nil && a.TeamID == *homeID:
			players = home
		default:
			continue
		}
		addPlayerAction(players, a)
	}
	return away, home
}

func addPlayerAction(players *Group[Action], a Action) {
	name := DisplayName(a)
	if name == "" {
		return
	}
	players.Add(name, a)

	if strings.Contains(a.Description, "AST") {
		if assist, credited, ok := synthesizeAssist(players, a); ok {
			players.Add(credited, assist)
		}
	}
	if a.ActionType == "Substitution" {
		if incoming, ok := incomingSubstitute(a); ok {
			players.Ensure(incoming)
		}
	}
}

// synthesizeAssist builds an "Assist" action for the player credited in a's description.
// Identity fields come from that player's first recorded action, if any.
func synthesizeAssist(players *Group[Action], a Action) (Action, string, bool) {
	name, text, ok := assistCredit(a)
	if !ok {
		return Action{}, "", false
	}
	players.Ensure(name)

	assist := Action{
		ActionType:  "Assist",
		Clock:       a.Clock,
		Description: text,
		TeamID:      a.TeamID,
		TeamTricode: a.TeamTricode,
		ScoreHome:   a.ScoreHome,
		ScoreAway:   a.ScoreAway,
		Period:      a.Period,
	}
	if a.ActionNumber != "" {
		assist.ActionNumber = a.ActionNumber + "a"
	}
	if base := a.ActionID; base != "" {
		assist.ActionID = base + "a"
	} else if a.ActionNumber != "" {
		assist.ActionID = a.ActionNumber + "a"
	}
	if prior := players.Get(name); len(prior) > 0 {
		first := prior[0]
		assist.PersonID = first.PersonID
		assist.PlayerName = first.PlayerName
		assist.PlayerNameI = first.PlayerNameI
	}
	return assist, name, true
}
