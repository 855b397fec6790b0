package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/ksuid"

	"voxelmech.ai/internal/sim/world"
)

// Server streams world frames to read-only observers over websocket. Each session first
// receives a HELLO frame and then one TICK frame per world tick.
type Server struct {
	world *world.World
	log   *log.Logger

	// AllowRemote admits non-loopback clients.
	AllowRemote bool

	upgrader websocket.Upgrader
}

type BootstrapResponse struct {
	WorldID    string `json:"world_id"`
	Tick       uint64 `json:"tick"`
	TickRateHz int    `json:"tick_rate_hz"`
	ChunkSize  [3]int `json:"chunk_size"`
	Height     int    `json:"height"`
	Seed       int64  `json:"seed"`
	BoundaryR  int    `json:"boundary_r"`
	PushLimit  int    `json:"push_limit"`
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) allowed(r *http.Request) bool {
	return s.AllowRemote || isLoopbackRemote(r.RemoteAddr)
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		cfg := s.world.Config()
		resp := BootstrapResponse{
			WorldID:    cfg.ID,
			Tick:       s.world.CurrentTick(),
			TickRateHz: cfg.TickRateHz,
			ChunkSize:  [3]int{16, 16, cfg.Height},
			Height:     cfg.Height,
			Seed:       cfg.Seed,
			BoundaryR:  cfg.BoundaryR,
			PushLimit:  cfg.PushLimit,
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// WSHandler upgrades the request and attaches the connection to the world loop.
// The optional max_chunks query parameter caps the HELLO chunk list.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !s.allowed(r) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		maxChunks, _ := strconv.Atoi(r.URL.Query().Get("max_chunks"))
		if maxChunks <= 0 || maxChunks > 16384 {
			maxChunks = 1024
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sid := "O" + ksuid.New().String()
		out := make(chan []byte, 64)
		joinReq := world.ObserverJoinRequest{
			SessionID: sid,
			Out:       out,
			MaxChunks: maxChunks,
		}
		select {
		case s.world.ObserverJoin() <- joinReq:
		case <-time.After(2 * time.Second):
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server busy"), time.Now().Add(time.Second))
			return
		}
		s.log.Printf("observer %s joined from %s", sid, r.RemoteAddr)
		defer func() {
			select {
			case s.world.ObserverLeave() <- sid:
			case <-time.After(time.Second):
				// World loop is stopping; nothing else to do.
			}
			s.log.Printf("observer %s left", sid)
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						cancel()
						return
					}
				}
			}
		}()

		// Observers are read-only; the reader only detects disconnects.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
