// Package engine fans per-meter analysis jobs out to a worker pool. The
// statistical core is synchronous and stateless; the engine is the embedding
// layer for services that analyze many meters concurrently.
package engine

import (
	"errors"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"water-meter-analytics/anomaly"
	"water-meter-analytics/forecast"
	"water-meter-analytics/models"
)

const (
	workersEnv  = "METER_ANALYTICS_WORKERS"
	minWorkers  = 4
	maxWorkers  = 16
	queueLength = 1024
)

// Job is one meter's series plus the options to analyze it with.
type Job struct {
	MeterID      string
	Series       []models.Observation
	ForecastOpts models.ForecastOptions
	AnomalyOpts  models.AnomalyOptions
}

// Result is the outcome of one job. Err is set when either the forecast or
// the detection failed; partial output is never delivered.
type Result struct {
	MeterID   string
	Forecast  models.ForecastResult
	Anomalies []models.Anomaly
	Err       error
}

// ResultHandler receives each completed job. Handlers are called from worker
// goroutines and must be safe for concurrent use.
type ResultHandler func(Result)

// Engine runs analysis jobs on a fixed pool of workers.
type Engine struct {
	jobs    chan Job
	handler ResultHandler
	log     zerolog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts the worker pool. The worker count comes from
// METER_ANALYTICS_WORKERS when set, otherwise twice the CPU count, clamped to
// [4, 16].
func New(log zerolog.Logger, handler ResultHandler) *Engine {
	return newEngine(log, handler, queueLength, workerCount())
}

func newEngine(log zerolog.Logger, handler ResultHandler, queue, workers int) *Engine {
	e := &Engine{
		jobs:    make(chan Job, queue),
		handler: handler,
		log:     log.With().Str("component", "engine").Logger(),
	}

	e.log.Info().Int("workers", workers).Msg("starting analytics workers")
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.run()
	}
	return e
}

func workerCount() int {
	workers := runtime.NumCPU() * 2
	if env := os.Getenv(workersEnv); env != "" {
		if w, err := strconv.Atoi(env); err == nil && w > 0 {
			workers = w
		}
	}

	if workers < minWorkers {
		workers = minWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return workers
}

// Process enqueues a job without blocking. When the queue is full or the
// engine is closed the job is dropped, counted and logged, and Process
// returns false.
func (e *Engine) Process(job Job) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		jobsDroppedTotal.Inc()
		e.log.Warn().Str("meter_id", job.MeterID).Msg("engine closed, dropping analysis job")
		return false
	}

	select {
	case e.jobs <- job:
		return true
	default:
		jobsDroppedTotal.Inc()
		e.log.Warn().Str("meter_id", job.MeterID).Msg("job queue full, dropping analysis job")
		return false
	}
}

// Close stops accepting jobs, drains the queue and waits for the workers to
// finish. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.jobs)
	}
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Engine) run() {
	defer e.wg.Done()
	for job := range e.jobs {
		e.analyze(job)
	}
}

func (e *Engine) analyze(job Job) {
	start := time.Now()
	result := Result{MeterID: job.MeterID}

	fc, fcErr := forecast.Generate(job.Series, job.ForecastOpts)
	anomalies, anErr := anomaly.Detect(job.Series, job.AnomalyOpts)

	if err := errors.Join(fcErr, anErr); err != nil {
		result.Err = err
		e.log.Error().Err(err).Str("meter_id", job.MeterID).Msg("analysis failed")
	} else {
		result.Forecast = fc
		result.Anomalies = anomalies
		if len(anomalies) > 0 {
			anomaliesDetectedTotal.WithLabelValues(job.MeterID).Add(float64(len(anomalies)))
			e.log.Warn().
				Str("meter_id", job.MeterID).
				Int("anomalies", len(anomalies)).
				Str("selected_model", fc.Models.Selected).
				Msg("anomalous consumption detected")
		}
	}

	jobsProcessedTotal.Inc()
	analysisDurationSeconds.Observe(time.Since(start).Seconds())

	if e.handler != nil {
		e.handler(result)
	}
}
