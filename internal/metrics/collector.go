package metrics

import (
	"context"
	"time"

	"storyhub/internal/logging"
)

// Stats holds the aggregate counts published as gauges.
type Stats struct {
	Users  int
	Books  int
	Albums int
	Visits int
}

// StatsProvider supplies the counts for each collection pass.
type StatsProvider interface {
	CollectStats(ctx context.Context) (Stats, error)
}

// Collector periodically refreshes the content gauges.
type Collector struct {
	provider StatsProvider
	interval time.Duration
	stopChan chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		provider: provider,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the collection loop in the background.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop ends the collection loop.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
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
	if c.provider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := c.provider.CollectStats(ctx)
	if err != nil {
		logging.Warn("metrics collection failed: %v", err)
		return
	}

	ContentTotal.WithLabelValues("users").Set(float64(stats.Users))
	ContentTotal.WithLabelValues("books").Set(float64(stats.Books))
	ContentTotal.WithLabelValues("albums").Set(float64(stats.Albums))
	ContentTotal.WithLabelValues("visits").Set(float64(stats.Visits))

	logging.Debug("Metrics collected: users=%d, books=%d, albums=%d, visits=%d",
		stats.Users, stats.Books, stats.Albums, stats.Visits)
}
