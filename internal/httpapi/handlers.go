package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DoyleJ11/battleship-backend/internal/ai"
	"github.com/DoyleJ11/battleship-backend/internal/game"
	"github.com/DoyleJ11/battleship-backend/internal/registry"
	"github.com/DoyleJ11/battleship-backend/internal/session"
)

type createRequest struct {
	PlayerID     string `json:"player_id"`
	SinglePlayer bool   `json:"single_player"`
	Difficulty   string `json:"difficulty"`
}

type createResponse struct {
	SessionID string `json:"session_id"`
	JoinCode  string `json:"join_code,omitempty"`
	PlayerID  string `json:"player_id"`
}

func CreateGame(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		reply := make(chan registry.Created, 1)
		reg.Inbox() <- registry.Create{
			SinglePlayer: req.SinglePlayer,
			PlayerID:     req.PlayerID,
			Difficulty:   ai.Difficulty(req.Difficulty),
			Reply:        reply,
		}
		created := <-reply
		if created.Session == nil {
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}
		// Echo the host id: the client needs it for every later command, and
		// it may have been minted server-side.
		writeJSON(w, http.StatusCreated, createResponse{
			SessionID: created.Session.ID(),
			JoinCode:  created.Session.JoinCode(),
			PlayerID:  created.Host.ID,
		})
	}
}

func ListGames(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []registry.Summary, 1)
		reg.Inbox() <- registry.List{Reply: reply}
		writeJSON(w, http.StatusOK, <-reply)
	}
}

func GetGame(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := lookup(reg, chi.URLParam(r, "id"))
		if sess == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		reply := make(chan *session.Snapshot, 1)
		snap, ok := await(sess, session.GetSnapshot{ViewerID: r.URL.Query().Get("player_id"), Reply: reply}, reply)
		if !ok {
			http.Error(w, "session closed", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

type placeRequest struct {
	PlayerID    string `json:"player_id"`
	ShipKind    string `json:"ship_kind"`
	Orientation string `json:"orientation"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
}

func PlaceShip(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req placeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		o := game.Horizontal
		if req.Orientation == string(game.Vertical) {
			o = game.Vertical
		}
		runCommand(w, reg, chi.URLParam(r, "id"), game.Command{
			Type:        game.CmdPlaceShip,
			PlayerID:    req.PlayerID,
			Kind:        game.ShipKind(req.ShipKind),
			Origin:      game.Coordinate{X: req.X, Y: req.Y},
			Orientation: o,
		})
	}
}

type fireRequest struct {
	PlayerID string `json:"player_id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

func FireShot(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fireRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		runCommand(w, reg, chi.URLParam(r, "id"), game.Command{
			Type:     game.CmdFireShot,
			PlayerID: req.PlayerID,
			Target:   game.Coordinate{X: req.X, Y: req.Y},
		})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// runCommand applies one command synchronously and maps the rejection
// taxonomy onto status codes. Every rejection is a 4xx: the session state is
// untouched and only this caller hears about it.
func runCommand(w http.ResponseWriter, reg *registry.Registry, sessionID string, cmd game.Command) {
	sess := lookup(reg, sessionID)
	if sess == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	reply := make(chan error, 1)
	err, ok := await(sess, session.Do{Cmd: cmd, Reply: reply}, reply)
	if !ok {
		http.Error(w, "session closed", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	snapReply := make(chan *session.Snapshot, 1)
	snap, ok := await(sess, session.GetSnapshot{ViewerID: cmd.PlayerID, Reply: snapReply}, snapReply)
	if !ok {
		http.Error(w, "session closed", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// await runs one request/reply round trip against a session without hanging
// on a room that shut down between the lookup and the reply.
func await[T any](sess *session.Session, msg session.Msg, reply <-chan T) (T, bool) {
	var zero T
	if !sess.Send(msg) {
		return zero, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-sess.Done():
		select {
		case v := <-reply:
			return v, true
		default:
			return zero, false
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrAlreadyFired),
		errors.Is(err, game.ErrWrongPhase), errors.Is(err, game.ErrMatchCompleted):
		return http.StatusConflict
	case errors.Is(err, game.ErrSessionFull):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

func lookup(reg *registry.Registry, id string) *session.Session {
	reply := make(chan *session.Session, 1)
	reg.Inbox() <- registry.Get{ID: id, Reply: reply}
	return <-reply
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
