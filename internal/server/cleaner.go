package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/ArkMaster123/arkagentic/internal/store"
)

// Cleaner sweeps stale presence sessions on a cron cadence. A redis
// lock keeps multiple backend replicas from sweeping at once.
type Cleaner struct {
	Store    *store.Store
	Rdb      *redis.Client
	CronSpec string
	MaxAge   int // days a session may idle before removal
	Stop     chan struct{}
	Logger   *log.Logger

	lastRun time.Time
}

func (cl *Cleaner) Start() {
	if cl.Logger == nil {
		cl.Logger = log.New(log.Writer(), "[CLEANER] ", log.LstdFlags)
	}
	if cl.MaxAge <= 0 {
		cl.MaxAge = 1
	}
	ticker := time.NewTicker(time.Minute)
	go func() {
		for {
			select {
			case <-cl.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				cl.tick()
			}
		}
	}()
}

func (cl *Cleaner) tick() {
	if !cl.due(time.Now()) {
		return
	}
	ctx := context.Background()

	if cl.Rdb != nil {
		ok, err := cl.Rdb.SetNX(ctx, "cleaner:lock", "1", 2*time.Minute).Result()
		if err != nil {
			cl.Logger.Printf("lock check failed: %v", err)
		}
		if !ok {
			return
		}
		defer cl.Rdb.Del(ctx, "cleaner:lock")
	}

	removed, err := cl.Store.CleanupStaleSessions(ctx, cl.MaxAge)
	if err != nil {
		cl.Logger.Printf("cleanup failed: %v", err)
		return
	}
	cl.lastRun = time.Now()
	if removed > 0 {
		cl.Logger.Printf("removed %d stale presence sessions", removed)
	}
}

// due reports whether the cron cadence has elapsed since the last run.
// An unparseable spec degrades to hourly rather than never running.
func (cl *Cleaner) due(now time.Time) bool {
	if cl.lastRun.IsZero() {
		return true
	}
	expr, err := cronexpr.Parse(cl.CronSpec)
	if err != nil {
		return now.Sub(cl.lastRun) >= time.Hour
	}
	return !expr.Next(cl.lastRun).After(now)
}
