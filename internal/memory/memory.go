package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"image-browser/internal/logging"
	"image-browser/internal/metrics"
)

// Pressure levels reported by the monitor.
const (
	PressureNormal   = 0
	PressureHigh     = 1
	PressureCritical = 2
)

// Config holds monitor thresholds.
type Config struct {
	// MemoryLimitBytes is the limit usage is measured against. 0 uses
	// GOMEMLIMIT.
	MemoryLimitBytes int64

	// HighWaterMark is the usage ratio reported as high pressure.
	HighWaterMark float64

	// CriticalWaterMark is the usage ratio that triggers a preview trim.
	CriticalWaterMark float64

	// CheckInterval is how often usage is sampled.
	CheckInterval time.Duration
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// PreviewTrimmer is the part of the resource manager the monitor needs.
type PreviewTrimmer interface {
	TrimPreviews(n int) int
	PreviewCapacity() int
}

// Monitor samples heap usage and sheds preview locators under pressure.
type Monitor struct {
	config   Config
	limit    int64
	trimmer  PreviewTrimmer
	stopChan chan struct{}
	stopOnce sync.Once

	// readAlloc returns the current heap allocation. Replaced in tests.
	readAlloc func() uint64

	mu       sync.RWMutex
	current  uint64
	pressure int
	trims    int
}

// NewMonitor creates a monitor that trims trimmer's previews.
func NewMonitor(config Config, trimmer PreviewTrimmer) *Monitor {
	limit := config.MemoryLimitBytes
	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < math.MaxInt64 {
			limit = goMemLimit
			logging.Info("Memory monitor using GOMEMLIMIT: %s", FormatBytes(limit))
		}
	}
	if limit == 0 {
		logging.Warn("Memory monitor: no memory limit configured, preview trimming disabled")
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		trimmer:   trimmer,
		stopChan:  make(chan struct{}),
		readAlloc: heapAlloc,
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Start begins sampling. It does nothing without a limit.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.monitorLoop()
}

// Stop stops sampling. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkMemory()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Monitor) checkMemory() {
	alloc := m.readAlloc()
	if m.limit <= 0 {
		return
	}
	usage := float64(alloc) / float64(m.limit)

	level := PressureNormal
	switch {
	case usage >= m.config.CriticalWaterMark:
		level = PressureCritical
	case usage >= m.config.HighWaterMark:
		level = PressureHigh
	}

	m.mu.Lock()
	m.current = alloc
	previous := m.pressure
	m.pressure = level
	m.mu.Unlock()

	metrics.MemoryUsageRatio.Set(usage)
	metrics.MemoryPressure.Set(float64(level))

	if level != previous {
		logging.Debug("Memory pressure changed: %d -> %d, alloc=%s", previous, level, FormatBytes(int64(alloc)))
	}

	// Trim once per entry into the critical state.
	if level == PressureCritical && previous != PressureCritical {
		m.trim(usage)
	} else if level == PressureNormal && previous != PressureNormal {
		logging.Info("Memory recovered (%.1f%% of limit)", usage*100)
	}
}

func (m *Monitor) trim(usage float64) {
	if m.trimmer == nil {
		return
	}
	target := m.trimmer.PreviewCapacity() / 2
	n := m.trimmer.TrimPreviews(target)

	m.mu.Lock()
	m.trims++
	m.mu.Unlock()

	metrics.MemoryTrimsTotal.Inc()
	logging.Warn("Memory critical (%.1f%% of limit), trimmed %d previews to %d", usage*100, n, target)
	go runtime.GC()
}

// Pressure returns the last sampled pressure level.
func (m *Monitor) Pressure() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pressure
}

// Trims returns how many times previews were trimmed.
func (m *Monitor) Trims() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trims
}

// GetUsage returns the last sampled usage as a ratio of the limit, 0
// without a limit.
func (m *Monitor) GetUsage() float64 {
	if m.limit == 0 {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) / float64(m.limit)
}

// GetStats returns the last sampled allocation, the limit and their ratio.
func (m *Monitor) GetStats() (current, limit int64, usage float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current > math.MaxInt64 {
		current = math.MaxInt64
	} else {
		current = int64(m.current)
	}
	if m.limit > 0 {
		usage = float64(m.current) / float64(m.limit)
	}
	return current, m.limit, usage
}
