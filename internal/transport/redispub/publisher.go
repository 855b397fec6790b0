// Package redispub fans tick summaries out to a Redis pub/sub channel so that
// dashboards can follow piston activity without holding a websocket to the server.
package redispub

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"

	"voxelmech.ai/internal/sim/world"
)

// Client is the subset of *redis.Client the publisher uses.
type Client interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Publisher struct {
	rdb     Client
	channel string
	log     *log.Logger

	// OnlyActive skips ticks that applied no action and moved nothing.
	OnlyActive bool
}

// TickMessage is the JSON payload published per tick.
type TickMessage struct {
	WorldID string             `json:"world_id"`
	Tick    uint64             `json:"tick"`
	Digest  string             `json:"digest"`
	Actions int                `json:"actions"`
	Moves   []world.MoveRecord `json:"moves,omitempty"`
}

func New(rdb Client, channel string, logger *log.Logger) *Publisher {
	if channel == "" {
		channel = "voxelmech.ticks"
	}
	return &Publisher{rdb: rdb, channel: channel, log: logger, OnlyActive: true}
}

// Dial opens a client for a redis:// URL.
func Dial(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func (p *Publisher) encode(worldID string, e world.TickLogEntry) ([]byte, bool) {
	if p.OnlyActive && len(e.Actions) == 0 && len(e.Moves) == 0 {
		return nil, false
	}
	b, err := json.Marshal(TickMessage{
		WorldID: worldID,
		Tick:    e.Tick,
		Digest:  e.Digest,
		Actions: len(e.Actions),
		Moves:   e.Moves,
	})
	if err != nil {
		return nil, false
	}
	return b, true
}

// Run publishes entries from in until ctx is done or in is closed. Publish failures are
// logged and do not stop the loop.
func (p *Publisher) Run(ctx context.Context, worldID string, in <-chan world.TickLogEntry) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-in:
			if !ok {
				return nil
			}
			b, ok := p.encode(worldID, e)
			if !ok {
				continue
			}
			if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil && p.log != nil {
				p.log.Printf("redis publish tick %d: %v", e.Tick, err)
			}
		}
	}
}
