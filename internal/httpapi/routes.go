package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/registry"
	"github.com/DoyleJ11/battleship-backend/internal/ws"
)

func SetupRoutes(reg *registry.Registry, lobbyRefresh time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/games", CreateGame(reg))
	r.Get("/games", ListGames(reg))
	r.Get("/games/{id}", GetGame(reg))
	r.Post("/games/{id}/ships", PlaceShip(reg))
	r.Post("/games/{id}/shots", FireShot(reg))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(reg, lobbyRefresh, logger))
	return r
}
