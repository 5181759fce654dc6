package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongnhan/livesignal/internal/coordinator"
	"github.com/hongnhan/livesignal/internal/model"
)

type nopSender struct{}

func (nopSender) Send(string, []byte) {}
func (nopSender) Broadcast([]byte)    {}
func (nopSender) Terminate(string)    {}

func newTestServer(t *testing.T) (*coordinator.Coordinator, *httptest.Server) {
	t.Helper()

	coord := coordinator.New(nopSender{}, nil, nil, zerolog.Nop())
	router := mux.NewRouter()
	NewHTTPHandler(coord).SetupRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return coord, srv
}

func TestStreamStatusEndpoint(t *testing.T) {
	coord, srv := newTestServer(t)
	coord.Register("admin")
	coord.GoingLive("admin", "r1")

	resp, err := http.Get(srv.URL + "/api/stream/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(model.StatusLive), body["status"])
	assert.Equal(t, "admin", body["broadcaster_id"])
	assert.Equal(t, float64(1), body["viewers"])
}

func TestChatMessagesEndpoint(t *testing.T) {
	coord, srv := newTestServer(t)
	coord.Register("a")
	coord.PostChat("a", "ann", "hello", "guest")

	resp, err := http.Get(srv.URL + "/api/chat/messages")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msgs []model.ChatMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "ann", msgs[0].Username)
	assert.Equal(t, "hello", msgs[0].Message)
}

func TestChatClearEndpoint(t *testing.T) {
	coord, srv := newTestServer(t)
	coord.Register("a")
	coord.PostChat("a", "ann", "hello", "guest")

	resp, err := http.Post(srv.URL+"/api/chat/clear", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Empty(t, coord.Messages())
}

func TestChatClearRequiresPost(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/chat/clear")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
