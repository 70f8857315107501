// Package sweeper runs the two background GC loops spec §4.4 calls for:
// idle-room eviction every 10 minutes, and expired rate-limit bucket
// collection every 5 minutes. Grounded on the teacher's
// internal/game/tickers.go ticker-goroutine shape, generalized from its
// matchmaking/ping tickers to room and rate-limit sweeps.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pranavnigade123/drawzzl-backend/internal/model"
)

const (
	roomSweepInterval  = 10 * time.Minute
	idleRoomThreshold  = time.Hour
	emptyRoomThreshold = 5 * time.Minute

	bucketSweepInterval = 5 * time.Minute
)

// RoomStore is the subset of store.Store the room sweep needs.
type RoomStore interface {
	ForEach(ctx context.Context, fn func(*model.Room) bool) error
	Delete(ctx context.Context, roomID string) error
}

// RoomStopper tears down engine timers/flags for a deleted room.
type RoomStopper interface {
	StopRoom(roomID string)
}

// BucketSweeper garbage-collects rate-limit buckets for sockets no longer
// live.
type BucketSweeper interface {
	Sweep(liveSockets map[string]struct{})
}

// LiveSocketLister reports every socket currently registered at the
// gateway, for the rate-limit sweep.
type LiveSocketLister interface {
	LiveSocketIDs() map[string]struct{}
}

// Run starts both sweeps as background goroutines and returns immediately;
// they stop when ctx is cancelled.
func Run(ctx context.Context, rooms RoomStore, engine RoomStopper, limiter BucketSweeper, sockets LiveSocketLister) {
	go runRoomSweep(ctx, rooms, engine)
	go runBucketSweep(ctx, limiter, sockets)
}

func runRoomSweep(ctx context.Context, rooms RoomStore, engine RoomStopper) {
	ticker := time.NewTicker(roomSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepRooms(ctx, rooms, engine)
		}
	}
}

func sweepRooms(ctx context.Context, rooms RoomStore, engine RoomStopper) {
	now := time.Now()
	var expired []string
	err := rooms.ForEach(ctx, func(r *model.Room) bool {
		idle := now.Sub(r.LastActivity)
		if idle > idleRoomThreshold || (r.ConnectedCount() == 0 && idle > emptyRoomThreshold) {
			expired = append(expired, r.RoomID)
		}
		return true
	})
	if err != nil {
		log.Warn().Err(err).Msg("sweeper: room scan failed")
		return
	}
	for _, roomID := range expired {
		if err := rooms.Delete(ctx, roomID); err != nil {
			log.Warn().Err(err).Str("roomId", roomID).Msg("sweeper: deleting idle room failed")
			continue
		}
		engine.StopRoom(roomID)
		log.Info().Str("roomId", roomID).Msg("sweeper: deleted idle room")
	}
}

func runBucketSweep(ctx context.Context, limiter BucketSweeper, sockets LiveSocketLister) {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep(sockets.LiveSocketIDs())
		}
	}
}
