package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"voxelmech.ai/internal/sim/world"
	"voxelmech.ai/internal/transport/observer"
)

type app struct {
	w       *world.World
	worldID string
	log     *log.Logger
	idx     runtimeIndex
	obs     *observer.Server
}

type actRequest struct {
	Actor string `json:"actor"`
	world.Action
}

func (a *app) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", a.handleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/v1/world", a.handleWorld).Methods(http.MethodGet)
	r.HandleFunc("/v1/cell/{x:-?[0-9]+}/{y:-?[0-9]+}/{z:-?[0-9]+}", a.handleCell).Methods(http.MethodGet)
	r.HandleFunc("/v1/act", a.handleAct).Methods(http.MethodPost)
	if a.idx != nil {
		r.HandleFunc("/v1/moves/{x:-?[0-9]+}/{y:-?[0-9]+}/{z:-?[0-9]+}", a.handleMoves).Methods(http.MethodGet)
	}
	if a.obs != nil {
		r.HandleFunc("/v1/observer/bootstrap", a.obs.BootstrapHandler()).Methods(http.MethodGet)
		r.HandleFunc("/v1/observer/ws", a.obs.WSHandler())
	}
	return r
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func posVars(r *http.Request) ([3]int, error) {
	vars := mux.Vars(r)
	var p [3]int
	for i, k := range []string{"x", "y", "z"} {
		n, err := strconv.Atoi(vars[k])
		if err != nil {
			return p, fmt.Errorf("bad %s: %w", k, err)
		}
		p[i] = n
	}
	return p, nil
}

func (a *app) handleHealth(rw http.ResponseWriter, r *http.Request) {
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write([]byte("ok"))
}

func (a *app) handleWorld(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	s, err := a.w.QuerySummary(ctx)
	if err != nil {
		writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(rw, http.StatusOK, s)
}

func (a *app) handleCell(rw http.ResponseWriter, r *http.Request) {
	p, err := posVars(r)
	if err != nil {
		writeJSON(rw, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	cv, err := a.w.QueryCell(ctx, world.Vec3i{X: p[0], Y: p[1], Z: p[2]})
	if err != nil {
		writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(rw, http.StatusOK, cv)
}

func (a *app) handleMoves(rw http.ResponseWriter, r *http.Request) {
	p, err := posVars(r)
	if err != nil {
		writeJSON(rw, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	moves, err := a.idx.MovesAt(r.Context(), p, limit)
	if err != nil {
		writeJSON(rw, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"pos": p, "moves": moves})
}

// handleAct queues one action and waits for the tick that applies it.
func (a *app) handleAct(rw http.ResponseWriter, r *http.Request) {
	var req actRequest
	dec := json.NewDecoder(http.MaxBytesReader(rw, r.Body, 64*1024))
	if err := dec.Decode(&req); err != nil {
		writeJSON(rw, http.StatusBadRequest, world.ActionResult{Code: world.ErrBadRequest, Message: err.Error()})
		return
	}
	if req.Actor == "" {
		req.Actor = "http"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res := make(chan world.ActionResult, 1)
	select {
	case a.w.Inbox() <- world.ActionEnvelope{Actor: req.Actor, Act: req.Action, Result: res}:
	case <-ctx.Done():
		writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"error": "world busy"})
		return
	}
	select {
	case out := <-res:
		status := http.StatusOK
		if !out.OK {
			status = http.StatusConflict
		}
		writeJSON(rw, status, out)
	case <-ctx.Done():
		writeJSON(rw, http.StatusGatewayTimeout, map[string]any{"error": "timed out waiting for tick"})
	}
}

// handleMetrics writes a minimal Prometheus exposition.
func (a *app) handleMetrics(rw http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	s, err := a.w.QuerySummary(ctx)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusServiceUnavailable)
		return
	}
	rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

	gauge := func(name, help string, v any) {
		fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
		fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
		fmt.Fprintf(rw, "%s{world=%q} %v\n", name, a.worldID, v)
	}
	counter := func(name, help string, v uint64) {
		fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
		fmt.Fprintf(rw, "# TYPE %s counter\n", name)
		fmt.Fprintf(rw, "%s{world=%q} %d\n", name, a.worldID, v)
	}
	gauge("voxelmech_world_tick", "Current world tick.", s.Tick)
	gauge("voxelmech_world_loaded_chunks", "Loaded chunk count.", s.Chunks)
	gauge("voxelmech_world_moving", "Cells currently animating.", s.Moving)
	gauge("voxelmech_world_pending_block_events", "Queued block events.", s.PendingEvents)
	gauge("voxelmech_world_scheduled", "Pending scheduled updates.", s.Scheduled)
	gauge("voxelmech_world_drops", "Item drops in the world.", s.Drops)
	gauge("voxelmech_world_observers", "Connected observers.", s.Observers)
	counter("voxelmech_piston_moves_total", "Completed piston moves.", s.Moves)
	counter("voxelmech_piston_move_failed_total", "Piston moves rejected at validation.", s.MoveFailed)
	if a.idx != nil {
		counter("voxelmech_index_dropped_total", "Index writes dropped under backpressure.", a.idx.Dropped())
	}
}
