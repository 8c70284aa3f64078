package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	poller "nba-game-poller"
)

var finished = poller.GameRecord{ID: "0022300001", AwayTeam: "NOP", AwayScore: 111, HomeTeam: "SAS", HomeScore: 97, Status: "Final"}

func TestFinalMessage(t *testing.T) {
	assert.Equal(t, "Final: NOP 111 - SAS 97", FinalMessage(finished))
}

func TestSlackNotifier_PostsWebhook(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewSlackNotifier(srv.URL).NotifyFinal(context.Background(), finished))
	assert.Equal(t, "Final: NOP 111 - SAS 97", body["text"])
}

func TestSlackNotifier_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	assert.Error(t, NewSlackNotifier(srv.URL).NotifyFinal(context.Background(), finished))
}

func TestNew(t *testing.T) {
	assert.IsType(t, Nop{}, New(""))
	assert.IsType(t, &SlackNotifier{}, New("https://hooks.slack.com/services/x"))
	assert.NoError(t, Nop{}.NotifyFinal(context.Background(), finished))
}
