package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/manv6/trumps-dashboard/internal/config"
	"github.com/manv6/trumps-dashboard/internal/handlers"
	"github.com/manv6/trumps-dashboard/internal/services"
	"github.com/manv6/trumps-dashboard/internal/store"
	_ "github.com/manv6/trumps-dashboard/migrations"
)

func main() {
	pb := pocketbase.New()
	cfg := config.Load()

	metrics := services.NewMetrics()
	hub := services.NewHub(metrics)

	pb.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// The store is wired only when persistence is enabled; the
		// registry is fully functional without it.
		var gameStore services.Store
		if cfg.PersistGames {
			gameStore = store.New(se.App)
		}

		registry := services.NewRegistry(gameStore)
		router := services.NewRouter(registry, hub)
		hub.SetHandler(router)
		go hub.Run()

		sessions := handlers.NewSessionHandlers(registry, hub, gameStore)
		ws := handlers.NewWSHandler(hub, cfg.AllowedOrigins)
		metricsHandler := handlers.NewMetricsHandler(metrics)

		se.Router.POST("/api/guest", sessions.GuestIdentity)
		se.Router.POST("/api/games", sessions.CreateSession)
		se.Router.GET("/api/games", sessions.ListSessions)
		se.Router.GET("/api/games/history", sessions.History)
		se.Router.GET("/api/games/{code}", sessions.GetSession)
		se.Router.POST("/api/games/{code}/join", sessions.JoinSession)
		se.Router.POST("/api/games/{code}/complete", sessions.CompleteSession)
		se.Router.GET("/api/users/current-game", sessions.CurrentGame)
		se.Router.GET("/api/metrics", metricsHandler.HandleMetrics)
		se.Router.GET("/ws", ws.HandleWebSocket)

		return se.Next()
	})

	if err := pb.Start(); err != nil {
		log.Fatal(err)
	}
}
