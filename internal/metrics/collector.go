package metrics

import (
	"time"

	"image-browser/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current statistics
type Stats struct {
	TotalImages      int
	TotalAlbums      int
	PreviewResident  int
	LightboxResident int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	CollectionImages.Set(float64(stats.TotalImages))
	CollectionAlbums.Set(float64(stats.TotalAlbums))
	CacheResidentEntries.WithLabelValues("preview").Set(float64(stats.PreviewResident))
	CacheResidentEntries.WithLabelValues("lightbox").Set(float64(stats.LightboxResident))

	logging.Debug("Metrics collected: images=%d, albums=%d, previews=%d, lightbox=%d",
		stats.TotalImages, stats.TotalAlbums, stats.PreviewResident, stats.LightboxResident)
}
