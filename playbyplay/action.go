package playbyplay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ActionNumber identifies an action in the feed. The feed sends integers,
// synthesized assist actions carry a suffixed id such as "11a".
type ActionNumber string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (n *ActionNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = ActionNumber(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("invalid action number %s: %w", b, err)
	}
	*n = ActionNumber(b)
	return nil
}

// MarshalJSON writes integer ids back as numbers and everything else as strings.
func (n ActionNumber) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return []byte(n), nil
	}
	return json.Marshal(string(n))
}

// Action is one entry of the play-by-play action log.
type Action struct {
	ActionNumber    ActionNumber `json:"actionNumber"`
	ActionID        ActionNumber `json:"actionId,omitempty"`
	Clock           string       `json:"clock"`
	TimeActual      string       `json:"timeActual,omitempty"`
	Period          int          `json:"period"`
	PeriodType      string       `json:"periodType,omitempty"`
	TeamID          int          `json:"teamId,omitempty"`
	TeamTricode     string       `json:"teamTricode,omitempty"`
	ActionType      string       `json:"actionType"`
	SubType         string       `json:"subType,omitempty"`
	Descriptor      string       `json:"descriptor,omitempty"`
	Qualifiers      []string     `json:"qualifiers,omitempty"`
	PersonID        int          `json:"personId,omitempty"`
	X               *float64     `json:"x,omitempty"`
	Y               *float64     `json:"y,omitempty"`
	Possession      int          `json:"possession,omitempty"`
	ScoreHome       string       `json:"scoreHome,omitempty"`
	ScoreAway       string       `json:"scoreAway,omitempty"`
	OrderNumber     int          `json:"orderNumber,omitempty"`
	IsFieldGoal     int          `json:"isFieldGoal,omitempty"`
	ShotResult      string       `json:"shotResult,omitempty"`
	ShotDistance    *float64     `json:"shotDistance,omitempty"`
	Area            string       `json:"area,omitempty"`
	AreaDetail      string       `json:"areaDetail,omitempty"`
	Side            string       `json:"side,omitempty"`
	Description     string       `json:"description"`
	PersonIDsFilter []int        `json:"personIdsFilter,omitempty"`
	PlayerName      string       `json:"playerName,omitempty"`
	PlayerNameI     string       `json:"playerNameI,omitempty"`
	Location        string       `json:"location,omitempty"`

	// Extra holds feed members not modelled above. They are written back
	// unchanged when the action is encoded.
	Extra map[string]json.RawMessage `json:"-"`
}

// actionFields has Action's layout without its JSON methods.
type actionFields Action

var knownActionKeys = func() map[string]bool {
	keys := make(map[string]bool)
	t := reflect.TypeFor[actionFields]()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}()

func (a *Action) UnmarshalJSON(b []byte) error {
	var fields actionFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k := range all {
		if knownActionKeys[k] {
			delete(all, k)
		}
	}
	fields.Extra = nil
	if len(all) > 0 {
		fields.Extra = all
	}
	*a = Action(fields)
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(actionFields(a))
	if err != nil || len(a.Extra) == 0 {
		return b, err
	}

	keys := make([]string, 0, len(a.Extra))
	for k := range a.Extra {
		if !knownActionKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(b[:len(b)-1])
	for _, k := range keys {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(a.Extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Interval is a stretch of time a player spent on the floor within one period.
// End is empty while the interval is still open during reconstruction.
type Interval struct {
	Start  string `json:"start"`
	End    string `json:"end,omitempty"`
	Period int    `json:"period"`
}

// ScorePoint is emitted whenever either side's score changes.
type ScorePoint struct {
	Away   string `json:"away"`
	Home   string `json:"home"`
	Clock  string `json:"clock"`
	Period int    `json:"period"`
}
