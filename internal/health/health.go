// Package health implements the GET /health surface (spec §6): liveness,
// database connectivity, room counts, and memory stats. Grounded on the
// teacher's runtime.MemStats logging pattern in auth/handlers.go.
package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// RoomCounter reports room totals for the health payload.
type RoomCounter interface {
	CountRooms(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

// ActiveRoomCounter reports how many rooms currently have a live socket.
type ActiveRoomCounter interface {
	ActiveRoomCount() int
}

type memoryInfo struct {
	AllocMB uint64 `json:"allocMb"`
	SysMB   uint64 `json:"sysMb"`
}

type roomCounts struct {
	Total  int64 `json:"total"`
	Active int   `json:"active"`
}

type response struct {
	Status    string     `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Uptime    string     `json:"uptime"`
	Database  string     `json:"database"`
	Rooms     roomCounts `json:"rooms"`
	Memory    memoryInfo `json:"memory"`
}

// Handler returns a gin.HandlerFunc for GET /health, closing over the
// process start time for uptime reporting.
func Handler(rooms RoomCounter, activeRooms ActiveRoomCounter, startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "ok"
		status := http.StatusOK
		if err := rooms.Ping(ctx); err != nil {
			dbStatus = "unreachable"
			status = http.StatusInternalServerError
		}

		total, err := rooms.CountRooms(ctx)
		if err != nil {
			total = -1
			status = http.StatusInternalServerError
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		resp := response{
			Status:    statusString(status),
			Timestamp: time.Now(),
			Uptime:    time.Since(startedAt).String(),
			Database:  dbStatus,
			Rooms:     roomCounts{Total: total, Active: activeRooms.ActiveRoomCount()},
			Memory:    memoryInfo{AllocMB: mem.Alloc / 1024 / 1024, SysMB: mem.Sys / 1024 / 1024},
		}
		c.JSON(status, resp)
	}
}

func statusString(code int) string {
	if code == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}
