package telemetry

import (
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ArkMaster123/arkagentic/config"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arkagentic_queries_total",
		Help: "Queries processed, by agent and status.",
	}, []string{"agent", "status"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arkagentic_query_duration_seconds",
		Help:    "Query processing time by agent.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"agent"})

	tokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arkagentic_llm_tokens_total",
		Help: "LLM tokens consumed, by model and direction.",
	}, []string{"model", "direction"})

	costTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arkagentic_llm_cost_dollars_total",
		Help: "Estimated LLM spend in dollars, by model.",
	}, []string{"model"})

	handoffsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arkagentic_swarm_handoffs_total",
		Help: "Agent-to-agent handoffs during swarm runs.",
	})

	toolInvocations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arkagentic_tool_invocations_total",
		Help: "Tool invocations, by tool and outcome.",
	}, []string{"tool", "outcome"})
)

// Telemetry records query metrics and tracks LLM spend.
type Telemetry struct {
	config config.TelemetryConfig
	logger *log.Logger

	mu          sync.RWMutex
	totalCost   float64
	totalTokens int64
	modelCosts  map[string]float64
	agentRuns   map[string]int64
}

// QueryEvent represents one completed query.
type QueryEvent struct {
	Agent        string
	Model        string
	Duration     time.Duration
	Success      bool
	Cost         float64
	InputTokens  int64
	OutputTokens int64
	Handoffs     int
}

// NewTelemetry creates a telemetry instance.
func NewTelemetry(cfg config.TelemetryConfig) *Telemetry {
	return &Telemetry{
		config:     cfg,
		logger:     log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		modelCosts: make(map[string]float64),
		agentRuns:  make(map[string]int64),
	}
}

// RecordQuery records a completed query event.
func (t *Telemetry) RecordQuery(event QueryEvent) {
	if !t.config.Enabled {
		return
	}

	status := "completed"
	if !event.Success {
		status = "error"
	}
	queriesTotal.WithLabelValues(event.Agent, status).Inc()
	queryDuration.WithLabelValues(event.Agent).Observe(event.Duration.Seconds())
	tokensTotal.WithLabelValues(event.Model, "input").Add(float64(event.InputTokens))
	tokensTotal.WithLabelValues(event.Model, "output").Add(float64(event.OutputTokens))
	if event.Handoffs > 0 {
		handoffsTotal.Add(float64(event.Handoffs))
	}

	t.mu.Lock()
	t.agentRuns[event.Agent]++
	if t.config.CostTracking {
		costTotal.WithLabelValues(event.Model).Add(event.Cost)
		t.totalCost += event.Cost
		t.totalTokens += event.InputTokens + event.OutputTokens
		t.modelCosts[event.Model] += event.Cost
	}
	t.mu.Unlock()

	t.logger.Printf("Query: agent=%s model=%s success=%t duration=%v cost=$%.4f tokens=%d",
		event.Agent, event.Model, event.Success, event.Duration, event.Cost,
		event.InputTokens+event.OutputTokens)
}

// RecordTool records one tool invocation.
func (t *Telemetry) RecordTool(tool string, err error) {
	if !t.config.Enabled {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	toolInvocations.WithLabelValues(tool, outcome).Inc()
}

// TotalCost returns the accumulated LLM spend.
func (t *Telemetry) TotalCost() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalCost
}

// TotalTokens returns the accumulated token count.
func (t *Telemetry) TotalTokens() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalTokens
}

// CostByModel returns a copy of the per-model spend table.
func (t *Telemetry) CostByModel() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]float64, len(t.modelCosts))
	for m, c := range t.modelCosts {
		out[m] = c
	}
	return out
}

// RunsByAgent returns a copy of the per-agent query counts.
func (t *Telemetry) RunsByAgent() map[string]int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]int64, len(t.agentRuns))
	for a, n := range t.agentRuns {
		out[a] = n
	}
	return out
}
