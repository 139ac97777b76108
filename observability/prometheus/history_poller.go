package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/openacq/go-acq-scheduler/core"
)

// HistoryProvider provides run-history snapshots. *core.RunHistory
// satisfies it.
type HistoryProvider interface {
	Recent(limit int) []core.RunRecord
	Len() int
}

// HistoryPoller periodically exports run-history snapshots into Prometheus
// gauges: how many runs are retained and the shape of the most recent one.
type HistoryPoller struct {
	interval time.Duration

	historyMu sync.RWMutex
	history   HistoryProvider

	runsRetained    prom.Gauge
	lastRunDuration prom.Gauge
	lastRunResults  prom.Gauge

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewHistoryPoller creates a history poller and registers its collectors.
func NewHistoryPoller(namespace string, reg prom.Registerer, interval time.Duration) (*HistoryPoller, error) {
	if namespace == "" {
		namespace = "acqsched"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	runsRetained := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "history_runs_retained",
		Help:      "Number of finished runs currently retained in the history.",
	})
	lastRunDuration := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "history_last_run_duration_seconds",
		Help:      "Wall-clock duration of the most recent finished run.",
	})
	lastRunResults := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "history_last_run_results",
		Help:      "Number of data arrays delivered by the most recent finished run.",
	})

	var err error
	if runsRetained, err = registerCollector(reg, runsRetained); err != nil {
		return nil, err
	}
	if lastRunDuration, err = registerCollector(reg, lastRunDuration); err != nil {
		return nil, err
	}
	if lastRunResults, err = registerCollector(reg, lastRunResults); err != nil {
		return nil, err
	}

	return &HistoryPoller{
		interval:        interval,
		runsRetained:    runsRetained,
		lastRunDuration: lastRunDuration,
		lastRunResults:  lastRunResults,
	}, nil
}

// SetHistory attaches or replaces the polled history.
func (p *HistoryPoller) SetHistory(history HistoryProvider) {
	if p == nil {
		return
	}
	p.historyMu.Lock()
	p.history = history
	p.historyMu.Unlock()
}

// PollOnce exports one snapshot immediately.
func (p *HistoryPoller) PollOnce() {
	if p == nil {
		return
	}
	p.historyMu.RLock()
	history := p.history
	p.historyMu.RUnlock()
	if history == nil {
		return
	}

	p.runsRetained.Set(float64(history.Len()))
	recent := history.Recent(1)
	if len(recent) == 0 {
		return
	}
	last := recent[len(recent)-1]
	p.lastRunDuration.Set(last.Duration.Seconds())
	p.lastRunResults.Set(float64(last.Results))
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *HistoryPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *HistoryPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.running = false
	p.stateMu.Unlock()

	cancel()
	<-done
}

func (p *HistoryPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce()
		}
	}
}
