// pkg/pool/monitor.go
package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-armada/pkg/config"
	"github.com/opd-ai/go-armada/pkg/logging"
)

// UtilizationFunc samples one arena's live fraction
type UtilizationFunc func() float64

// Monitor watches process resources and arena utilization during long
// simulation runs. High arena utilization means projectiles are being fired
// faster than their lifetimes release them; the monitor logs it before the
// arena starts refusing acquisitions.
type Monitor struct {
	maxMemoryMB   int64
	maxGoroutines int
	checkInterval time.Duration

	memoryUsageMB  int64
	goroutineCount int64

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
	running bool
	logger  *logging.Logger

	arenas map[string]UtilizationFunc
}

// NewMonitor creates a monitor with limits from the environment config
func NewMonitor(cfg *config.EnvironmentConfig) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		maxMemoryMB:   cfg.MaxMemoryMB,
		maxGoroutines: cfg.MaxGoroutines,
		checkInterval: cfg.ResourceCheckInterval,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		logger:        logging.NewLogger(),
		arenas:        make(map[string]UtilizationFunc),
	}
}

// Watch registers an arena utilization sampler under a name
func (m *Monitor) Watch(name string, fn UtilizationFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.arenas[name] = fn
}

// Start begins the monitoring loop
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("monitor already running")
	}
	m.running = true
	m.mu.Unlock()

	go m.loop()

	m.logger.Info(m.ctx, "pool monitor started",
		"max_memory_mb", m.maxMemoryMB,
		"check_interval", m.checkInterval,
	)
	return nil
}

func (m *Monitor) loop() {
	defer close(m.done)
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.check()
		}
	}
}

func (m *Monitor) check() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	currentMB := int64(stats.Alloc / 1024 / 1024)
	atomic.StoreInt64(&m.memoryUsageMB, currentMB)

	if currentMB > m.maxMemoryMB {
		m.logger.Warn(m.ctx, "memory usage over limit",
			"usage_mb", currentMB,
			"limit_mb", m.maxMemoryMB,
		)
	}

	goroutines := runtime.NumGoroutine()
	atomic.StoreInt64(&m.goroutineCount, int64(goroutines))
	if m.maxGoroutines > 0 && goroutines > m.maxGoroutines {
		m.logger.Warn(m.ctx, "goroutine count over limit",
			"count", goroutines,
			"limit", m.maxGoroutines,
		)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for name, fn := range m.arenas {
		if util := fn(); util > 0.9 {
			m.logger.Warn(m.ctx, "arena nearly exhausted",
				"arena", name,
				"utilization", util,
			)
		}
	}
}

// MemoryUsageMB returns the last sampled heap usage
func (m *Monitor) MemoryUsageMB() int64 {
	return atomic.LoadInt64(&m.memoryUsageMB)
}

// GoroutineCount returns the last sampled goroutine count
func (m *Monitor) GoroutineCount() int {
	return int(atomic.LoadInt64(&m.goroutineCount))
}

// Shutdown stops the monitoring loop, waiting up to the context deadline
func (m *Monitor) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	m.mu.Unlock()

	m.cancel()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pool monitor did not stop: %w", ctx.Err())
	}
}
