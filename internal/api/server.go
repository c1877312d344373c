// Package api provides the HTTP surface for the simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/outpost-sim/outpost/internal/agents"
	"github.com/outpost-sim/outpost/internal/economy"
	"github.com/outpost-sim/outpost/internal/engine"
	"github.com/outpost-sim/outpost/internal/persistence"
	"github.com/outpost-sim/outpost/internal/world"
)

// Server serves the colony state over HTTP.
type Server struct {
	World    *engine.WorldState
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	cmdLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentDetail)
	mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	mux.HandleFunc("/api/v1/news", s.handleNews)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/effects", s.handleEffects)

	// Control plane.
	mux.HandleFunc("/api/v1/command", s.adminOnly(Limit(cmdLimiter, s.handleCommand)))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/save", s.adminOnly(s.handleSave))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// OUTPOST_CORS_ORIGINS to a comma-separated list; localhost dev servers are
// always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("OUTPOST_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "control endpoints disabled (no OUTPOST_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ws := s.World
	ws.RLock()
	defer ws.RUnlock()

	status := map[string]any{
		"name":       "Outpost",
		"tick":       ws.Tick,
		"sim_time":   ws.Time,
		"speed":      s.Eng.Speed,
		"population": ws.CivilianCount(),
		"capacity":   ws.Capacity(),
		"resources":  ws.Resources,
		"weather": map[string]any{
			"condition": engine.WeatherName(ws.Weather.Condition),
			"intensity": ws.Weather.Intensity,
		},
		"auto_sell": ws.AutoSell,
		"research":  researchList(ws),
		"events":    ws.Events,
	}
	writeJSON(w, status)
}

func researchList(ws *engine.WorldState) []string {
	out := make([]string, 0, len(ws.Research))
	for tech := range ws.Research {
		out = append(out, tech)
	}
	return out
}

// handleMap returns the grid. Unexplored tiles are reduced to their fog
// flag so the payload stays honest about what the player has seen.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type tileEntry struct {
		Index    int   `json:"index"`
		Biome    uint8 `json:"biome"`
		Building uint8 `json:"building,omitempty"`
		Foliage  uint8 `json:"foliage,omitempty"`
		Pending  bool  `json:"under_construction,omitempty"`
		Water    bool  `json:"water,omitempty"`
		Explored bool  `json:"explored"`
	}

	ws := s.World
	ws.RLock()
	defer ws.RUnlock()

	tiles := make([]tileEntry, 0, len(ws.Grid.Tiles))
	for i := range ws.Grid.Tiles {
		t := &ws.Grid.Tiles[i]
		entry := tileEntry{Index: t.Index, Explored: t.Explored}
		if t.Explored {
			entry.Biome = uint8(t.Biome)
			entry.Building = uint8(t.Building)
			entry.Foliage = uint8(t.Foliage)
			entry.Pending = t.UnderConstruction
			entry.Water = t.WaterConnected
		}
		tiles = append(tiles, entry)
	}

	writeJSON(w, map[string]any{
		"width":  ws.Grid.Width,
		"height": ws.Grid.Height,
		"tiles":  tiles,
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	type agentEntry struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Role  string  `json:"role"`
		State string  `json:"state"`
		X     float64 `json:"x"`
		Z     float64 `json:"z"`
	}

	ws := s.World
	ws.RLock()
	defer ws.RUnlock()

	out := make([]agentEntry, 0, len(ws.Agents))
	for _, a := range ws.Agents {
		out = append(out, agentEntry{
			ID:    a.ID,
			Name:  a.Name,
			Role:  agents.RoleName(a.Role),
			State: agents.StateName(a.State),
			X:     a.X,
			Z:     a.Z,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/agent/")

	ws := s.World
	ws.RLock()
	defer ws.RUnlock()

	a := ws.AgentByID(id)
	if a == nil {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	writeJSON(w, a)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	ws := s.World
	ws.RLock()
	defer ws.RUnlock()
	writeJSON(w, ws.Registry.Jobs())
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	ws := s.World
	ws.RLock()
	defer ws.RUnlock()
	writeJSON(w, ws.News.Recent(limit))
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	ws := s.World
	ws.RLock()
	defer ws.RUnlock()
	writeJSON(w, map[string]any{
		"minerals": ws.Market.Entry(economy.CommodityMinerals),
		"gems":     ws.Market.Entry(economy.CommodityGems),
	})
}

// handleEffects drains the pending presentation effects. Intended for a
// single polling frontend; effects are delivered once.
func (s *Server) handleEffects(w http.ResponseWriter, r *http.Request) {
	ws := s.World
	ws.Lock()
	batch := ws.Effects.Drain()
	ws.Unlock()
	writeJSON(w, batch)
}

// commandRequest is the wire form of a player command.
type commandRequest struct {
	Type     string  `json:"type"`
	Tile     int     `json:"tile"`
	Building uint8   `json:"building"`
	AgentID  string  `json:"agent_id"`
	Tech     string  `json:"tech"`
	Resource string  `json:"resource"`
	Amount   float64 `json:"amount"`
	Goal     string  `json:"goal"`
	Reward   float64 `json:"reward"`
	Enabled  bool    `json:"enabled"`
}

func (req commandRequest) decode() (engine.Command, error) {
	switch req.Type {
	case "place_building":
		return engine.PlaceBuilding{Tile: req.Tile, Building: world.Building(req.Building)}, nil
	case "bulldoze":
		return engine.Bulldoze{Tile: req.Tile}, nil
	case "command_agent":
		return engine.CommandAgent{AgentID: req.AgentID, Tile: req.Tile}, nil
	case "unlock_tech":
		return engine.UnlockTech{Tech: req.Tech}, nil
	case "sell_resource":
		return engine.SellResource{Resource: req.Resource, Amount: req.Amount}, nil
	case "claim_goal":
		return engine.ClaimGoal{Goal: req.Goal, Reward: req.Reward}, nil
	case "toggle_auto_sell":
		return engine.ToggleAutoSell{Enabled: req.Enabled}, nil
	case "toggle_cheats":
		return engine.ToggleCheats{Enabled: req.Enabled}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", req.Type)
	}
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}
	cmd, err := req.decode()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws := s.World
	ws.Lock()
	err = ws.Apply(cmd)
	ws.Unlock()

	if err != nil {
		writeJSON(w, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, map[string]any{"speed": s.Eng.Speed})
		return
	}

	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 10 {
		http.Error(w, "speed must be in [0, 10]", http.StatusBadRequest)
		return
	}
	s.Eng.Speed = req.Speed
	writeJSON(w, map[string]any{"speed": req.Speed})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}

	ws := s.World
	ws.RLock()
	snap := ws.Capture()
	payloadErr := s.DB.SaveSnapshot(snap)
	newsErr := s.DB.AppendNews(ws.News.Items())
	ws.RUnlock()

	if payloadErr != nil {
		http.Error(w, payloadErr.Error(), http.StatusInternalServerError)
		return
	}
	if newsErr != nil {
		slog.Warn("news log write failed", "error", newsErr)
	}
	writeJSON(w, map[string]any{"ok": true, "tick": snap.Tick})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}
