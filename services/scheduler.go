package services

import (
	"log"
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartRecomputeScheduler rebuilds every active leaderboard on a fixed
// interval (LEADERBOARD_RECOMPUTE_INTERVAL, default 15m).
func (s *LeaderboardService) StartRecomputeScheduler() {
	interval := 15 * time.Minute
	if raw := os.Getenv("LEADERBOARD_RECOMPUTE_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("[Scheduler] invalid LEADERBOARD_RECOMPUTE_INTERVAL %q, using %s", raw, interval)
		} else {
			interval = parsed
		}
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			updated, err := s.RecomputeAll()
			if err != nil {
				log.Printf("[Scheduler] leaderboard recompute failed: %v", err)
				return
			}
			log.Printf("[Scheduler] recomputed %d leaderboard(s)", updated)
		}),
	)

	log.Printf("[Scheduler] leaderboard recompute every %s", interval)
}
