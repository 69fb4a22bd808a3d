// Package main is the entry point for the arena web server.
// It only handles dependency injection and server initialization.
// NO tournament logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/mbarrial/pd-arena/internal/domain/game"
	"github.com/mbarrial/pd-arena/internal/infra/storage"
	"github.com/mbarrial/pd-arena/internal/media"
	"github.com/mbarrial/pd-arena/internal/network"
	"github.com/mbarrial/pd-arena/internal/platform/config"
	"github.com/mbarrial/pd-arena/internal/platform/logger"
	"github.com/mbarrial/pd-arena/internal/platform/metrics"
	"github.com/mbarrial/pd-arena/internal/strategy"
	"github.com/mbarrial/pd-arena/internal/tournament"
)

type runRequest struct {
	Rounds       int           `json:"rounds"`
	Continuation float64       `json:"continuation"`
	Noise        float64       `json:"noise"`
	Repeats      int           `json:"repeats"`
	Seed         *int64        `json:"seed"`
	Payoffs      *game.Payoffs `json:"payoffs"`
	Strategies   []string      `json:"strategies"`
	Exclude      []string      `json:"exclude"`
	// Media is a preset name or a YAML/JSON object text. Empty means the
	// server's configured default preset.
	Media *string `json:"media"`
}

type server struct {
	cfg     config.Server
	logger  *logger.Logger
	hub     *network.Hub
	runRepo *storage.RunRepository
}

func main() {
	log.Println("[ARENA-SERVER] Initializing tournament arena server...")

	var cfg config.Server
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appLogger := logger.NewLogger()

	srv := &server{cfg: cfg, logger: appLogger}

	if cfg.DBPath != "" {
		appLogger.Info("Initializing SQLite database '" + cfg.DBPath + "'...")
		db, err := storage.InitSQLite(cfg.DBPath)
		if err != nil {
			appLogger.Error("Failed to initialize SQLite: " + err.Error())
			os.Exit(1)
		}
		defer db.Close()
		srv.runRepo = storage.NewRunRepository(db)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	srv.hub = network.NewHub(appLogger)
	go srv.hub.Run(ctx)

	http.HandleFunc("/api/strategies", srv.handleStrategies)
	http.HandleFunc("/api/run", srv.handleRun)
	http.HandleFunc("/api/runs", srv.handleRuns)
	http.HandleFunc("/metrics", metrics.Handler())
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		srv.serveWs(w, r)
	})

	go func() {
		log.Printf("[ARENA-SERVER] HTTP API & WS Server listening on %s", cfg.Addr)
		if err := http.ListenAndServe(cfg.Addr, nil); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[ARENA-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[ARENA-SERVER] Shutting down...")
}

func (s *server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, strategy.All())
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	mediaSpec := s.cfg.MediaPreset
	if req.Media != nil {
		mediaSpec = *req.Media
	}
	mediaCfg, err := media.ResolveConfig(mediaSpec)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := tournament.Params{
		Rounds:       req.Rounds,
		Continuation: req.Continuation,
		Noise:        req.Noise,
		Repeats:      req.Repeats,
		Seed:         req.Seed,
		Only:         req.Strategies,
		Exclude:      req.Exclude,
		Media:        mediaCfg,
		OnMatch: func(outcome *game.MatchOutcome) {
			metrics.Get().RecordMatch(outcome.Rounds)
			s.hub.BroadcastEvent(network.FeedEvent{Type: "match", Payload: outcome})
		},
		OnDelivery: func(entry media.DeliveryEntry) {
			metrics.Get().RecordDelivery(entry.Accurate)
			s.hub.BroadcastEvent(network.FeedEvent{Type: "delivery", Payload: entry})
		},
	}
	if req.Payoffs != nil {
		params.Payoffs = *req.Payoffs
	}

	metrics.Get().RecordRunStart()
	s.hub.BroadcastEvent(network.FeedEvent{Type: "run_start", Payload: map[string]any{
		"repeats": req.Repeats,
	}})

	result, err := tournament.Run(params, s.logger)
	metrics.Get().RecordRunEnd(err)
	if err != nil {
		s.hub.BroadcastEvent(network.FeedEvent{Type: "run_end", Payload: map[string]any{"error": err.Error()}})
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.hub.BroadcastEvent(network.FeedEvent{Type: "run_end", Payload: result.Standings})

	if s.runRepo != nil {
		if runID, err := s.runRepo.SaveResult(r.Context(), result); err != nil {
			s.logger.Error("Failed to persist run: " + err.Error())
		} else {
			s.logger.Event("RUN_SAVED", "storage", "run persisted with id "+strconv.FormatInt(runID, 10))
		}
	}

	writeJSON(w, result)
}

func (s *server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.runRepo == nil {
		http.Error(w, "Persistence disabled", http.StatusNotFound)
		return
	}
	runs, err := s.runRepo.ListRuns(r.Context(), 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if s.cfg.AllowAllOrigins {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade WebSocket connection: " + err.Error())
		return
	}

	client := network.NewClient(s.hub, conn)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[ARENA-SERVER] Failed to write response: %v", err)
	}
}
