package jobs

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"pk10/services"
)

// Clock is injected so period transitions can be driven deterministically in
// tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Scheduler is the single active instance that ticks period transitions:
// open the next round, close due rounds (draw + settle), and run the
// reconciliation sweep on a slower cadence. Deploying multiple processes
// requires external leader election; within one process Start/Stop bound its
// lifecycle.
type Scheduler struct {
	clock          Clock
	periodInterval time.Duration
	tickEvery      time.Duration
	reconcileEvery time.Duration
	reconcileGrace time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = systemClock{}
	}
	return &Scheduler{
		clock:          clock,
		periodInterval: envDuration("PERIOD_INTERVAL_SECONDS", 300),
		tickEvery:      10 * time.Second,
		reconcileEvery: 2 * time.Minute,
		reconcileGrace: envDuration("RECONCILE_GRACE_SECONDS", 60),
		stop:           make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	tickerPeriod := time.NewTicker(s.tickEvery)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer tickerPeriod.Stop()
		for {
			select {
			case <-tickerPeriod.C:
				s.Tick()
			case <-s.stop:
				return
			}
		}
	}()

	tickerReconcile := time.NewTicker(s.reconcileEvery)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer tickerReconcile.Stop()
		for {
			select {
			case <-tickerReconcile.C:
				services.ReconcilePeriods(s.reconcileGrace)
			case <-s.stop:
				return
			}
		}
	}()

	log.Println("✅ Period scheduler started")
}

// Tick runs one scheduling pass. Exposed so tests can drive the state machine
// with a fake clock instead of waiting on tickers.
func (s *Scheduler) Tick() {
	now := s.clock.Now()
	if _, err := services.EnsureOpenPeriod(now, s.periodInterval); err != nil {
		log.Printf("❌ failed to open period: %v", err)
	}
	services.CloseDuePeriods(now)
}

func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	log.Println("✅ Period scheduler stopped")
}

func envDuration(key string, defSeconds int) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(defSeconds) * time.Second
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		log.Printf("⚠️  Invalid value for %s: %s\n", key, raw)
		return time.Duration(defSeconds) * time.Second
	}
	return time.Duration(seconds) * time.Second
}
