// Command reprocess rebuilds a processed play-by-play payload from a raw
// action log saved on disk.
package main

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	poller "nba-game-poller"
	"nba-game-poller/feed"
	"nba-game-poller/playbyplay"
)

type input struct {
	gameID     string
	awayTeamID int
	homeTeamID int
	actions    []playbyplay.Action
}

// decodeInput accepts either a bare JSON array of actions or the live feed
// document shape {"game":{"gameId":...,"actions":[...]}}.
func decodeInput(data []byte) (input, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return input{}, errors.New("empty input")
	}
	if trimmed[0] == '[' {
		var actions []playbyplay.Action
		if err := json.Unmarshal(trimmed, &actions); err != nil {
			return input{}, fmt.Errorf("decode action array: %w", err)
		}
		return input{actions: actions}, nil
	}
	var doc feed.PlayByPlay
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return input{}, fmt.Errorf("decode play-by-play document: %w", err)
	}
	return input{gameID: doc.GameID, awayTeamID: doc.AwayTeamID, homeTeamID: doc.HomeTeamID, actions: doc.Actions}, nil
}

type options struct {
	gameID     string
	awayTeamID int
	homeTeamID int
	raw        bool
	all        bool
	indent     bool
}

func reprocess(data []byte, opts options, w io.Writer) error {
	in, err := decodeInput(data)
	if err != nil {
		return err
	}
	if opts.gameID != "" {
		in.gameID = opts.gameID
	}
	if opts.awayTeamID != 0 {
		in.awayTeamID = opts.awayTeamID
	}
	if opts.homeTeamID != 0 {
		in.homeTeamID = opts.homeTeamID
	}
	if in.awayTeamID == 0 || in.homeTeamID == 0 {
		if away, home, ok := playbyplay.InferTeamIDs(in.actions); ok {
			in.awayTeamID = cmp.Or(in.awayTeamID, away)
			in.homeTeamID = cmp.Or(in.homeTeamID, home)
		}
	}
	if in.awayTeamID == 0 || in.homeTeamID == 0 {
		return poller.ErrNoTeamIDs
	}

	payload := playbyplay.Reconstruct(in.actions, playbyplay.Options{
		GameID:            in.gameID,
		AwayTeamID:        strconv.Itoa(in.awayTeamID),
		HomeTeamID:        strconv.Itoa(in.homeTeamID),
		IncludeActions:    opts.raw,
		IncludeAllActions: opts.all,
	})

	enc := json.NewEncoder(w)
	if opts.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(payload)
}

func main() {
	var opts options
	in := flag.String("in", "", "raw play-by-play file (JSON array or live feed document)")
	out := flag.String("out", "", "output file; stdout when empty")
	flag.StringVar(&opts.gameID, "game", "", "game id, overriding the document's")
	flag.IntVar(&opts.awayTeamID, "away", 0, "away team id; inferred when unset")
	flag.IntVar(&opts.homeTeamID, "home", 0, "home team id; inferred when unset")
	flag.BoolVar(&opts.raw, "raw", false, "embed the raw action log")
	flag.BoolVar(&opts.all, "all", false, "embed the flattened player actions")
	flag.BoolVar(&opts.indent, "indent", false, "indent the output")
	flag.Parse()

	logger := poller.NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	slog.SetDefault(logger)

	if *in == "" {
		logger.Error("-in is required")
		os.Exit(2)
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		logger.Error("Unable to read input", "path", *in, "err", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("Unable to create output", "path", *out, "err", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := reprocess(data, opts, w); err != nil {
		logger.Error("Unable to reprocess play-by-play", "path", *in, "err", err)
		os.Exit(1)
	}
}
