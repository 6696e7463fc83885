package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/game"
	"github.com/DoyleJ11/battleship-backend/internal/registry"
	"github.com/DoyleJ11/battleship-backend/internal/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reg := registry.New(ctx, registry.Config{}, nil, nil, zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(reg, time.Minute, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createSoloGame(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/games", createRequest{PlayerID: "p1", SinglePlayer: true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[createResponse](t, resp)
	require.NotEmpty(t, created.SessionID)
	assert.Empty(t, created.JoinCode, "single-player games take no join code")
	assert.Equal(t, "p1", created.PlayerID, "client-supplied id echoed back")
	return created.SessionID
}

// A create without a player id gets one minted, and that id must actually be
// seated: commands issued as it succeed.
func TestCreateWithoutPlayerIDMintsSeatedHost(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/games", createRequest{SinglePlayer: true})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[createResponse](t, resp)
	require.NotEmpty(t, created.PlayerID, "server should mint a host id")

	resp = postJSON(t, srv.URL+"/games/"+created.SessionID+"/ships", placeRequest{
		PlayerID:    created.PlayerID,
		ShipKind:    string(game.Destroyer),
		Orientation: string(game.Horizontal),
		X:           0,
		Y:           0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[session.Snapshot](t, resp)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, created.PlayerID, snap.Players[0].ID)
	assert.Len(t, snap.Players[0].Ships, 1, "minted host's placement must stick")
}

func placeFleet(t *testing.T, srv *httptest.Server, id string) *session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	row := 0
	for _, kind := range game.FleetOrder {
		resp := postJSON(t, srv.URL+"/games/"+id+"/ships", placeRequest{
			PlayerID:    "p1",
			ShipKind:    string(kind),
			Orientation: string(game.Horizontal),
			X:           0,
			Y:           row,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		snap = decode[session.Snapshot](t, resp)
		row++
	}
	return &snap
}

func TestCreatePlaceAndFire(t *testing.T) {
	srv := newTestServer(t)
	id := createSoloGame(t, srv)

	snap := placeFleet(t, srv, id)
	assert.Equal(t, game.PhasePlaying, snap.Phase, "completing the fleet starts a solo match")
	assert.Equal(t, "p1", snap.CurrentTurn)

	resp := postJSON(t, srv.URL+"/games/"+id+"/shots", fireRequest{PlayerID: "p1", X: 0, Y: 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snapAfter := decode[session.Snapshot](t, resp)
	assert.NotEqual(t, "p1", snapAfter.CurrentTurn, "turn passes to the AI")

	// Same cell again: either it's not our turn yet, or the cell is spent.
	// Both are conflicts, never state changes.
	resp = postJSON(t, srv.URL+"/games/"+id+"/shots", fireRequest{PlayerID: "p1", X: 0, Y: 0})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestGetGameRedactsOpponent(t *testing.T) {
	srv := newTestServer(t)
	id := createSoloGame(t, srv)
	placeFleet(t, srv, id)

	resp, err := http.Get(srv.URL + "/games/" + id + "?player_id=p1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[session.Snapshot](t, resp)

	require.Len(t, snap.Players, 2)
	assert.Len(t, snap.Players[0].Ships, 5, "own fleet visible")
	assert.Empty(t, snap.Players[1].Ships, "opponent fleet hidden")
}

func TestInvalidPlacementIsBadRequest(t *testing.T) {
	srv := newTestServer(t)
	id := createSoloGame(t, srv)

	resp := postJSON(t, srv.URL+"/games/"+id+"/ships", placeRequest{
		PlayerID:    "p1",
		ShipKind:    string(game.Carrier),
		Orientation: string(game.Horizontal),
		X:           8, // runs off the board
		Y:           0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestListGames(t *testing.T) {
	srv := newTestServer(t)
	id := createSoloGame(t, srv)

	resp, err := http.Get(srv.URL + "/games")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sums := decode[[]registry.Summary](t, resp)

	require.Len(t, sums, 1)
	assert.Equal(t, id, sums[0].ID)
	assert.Equal(t, 2, sums[0].Occupancy, "host plus AI")
}

func TestUnknownSessionIs404(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/games/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/games/nope/shots", fireRequest{PlayerID: "p1", X: 0, Y: 0})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
