// Package indicators provides technical indicator calculations with
// parallel processing.
package indicators

import (
	"context"
	"fmt"
	"sync"

	"kline-chart/internal/models"
)

// Indicator defines the interface for single-value price indicators.
type Indicator interface {
	Name() string
	Calculate(candles []models.Candle) ([]float64, error)
	Period() int
}

// MultiValueIndicator defines the interface for indicators that return
// multiple aligned series.
type MultiValueIndicator interface {
	Name() string
	Calculate(candles []models.Candle) (map[string][]float64, error)
	Period() int
}

// VolumeIndicator defines the interface for indicators that additionally
// read the volume series.
type VolumeIndicator interface {
	Name() string
	Calculate(candles []models.Candle, volumes []float64) ([]float64, error)
	Period() int
}

// Engine provides parallel indicator calculation using a worker pool.
// A registered indicator whose calculation fails (invalid parameters or
// not enough history) is simply absent from the results; no failure can
// block the others.
type Engine struct {
	workers     int
	indicators  map[string]Indicator
	multiIndics map[string]MultiValueIndicator
	volIndics   map[string]VolumeIndicator
	mu          sync.RWMutex
}

// NewEngine creates a new indicator engine with the specified number of
// workers.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = 4
	}
	return &Engine{
		workers:     workers,
		indicators:  make(map[string]Indicator),
		multiIndics: make(map[string]MultiValueIndicator),
		volIndics:   make(map[string]VolumeIndicator),
	}
}

// RegisterIndicator registers a single-value indicator.
func (e *Engine) RegisterIndicator(ind Indicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indicators[ind.Name()] = ind
}

// RegisterMultiIndicator registers a multi-value indicator.
func (e *Engine) RegisterMultiIndicator(ind MultiValueIndicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.multiIndics[ind.Name()] = ind
}

// RegisterVolumeIndicator registers a volume-based indicator.
func (e *Engine) RegisterVolumeIndicator(ind VolumeIndicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volIndics[ind.Name()] = ind
}

// Unregister removes an indicator by name from all registries.
func (e *Engine) Unregister(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.indicators, name)
	delete(e.multiIndics, name)
	delete(e.volIndics, name)
}

// Result holds every computed series from a CalculateAll pass.
type Result struct {
	Single map[string][]float64
	Multi  map[string]map[string][]float64
}

// CalculateAll calculates all registered indicators in parallel over a
// snapshot of the candle and volume series.
func (e *Engine) CalculateAll(ctx context.Context, candles []models.Candle, volumes []float64) (*Result, error) {
	e.mu.RLock()
	singles := make([]Indicator, 0, len(e.indicators))
	for _, ind := range e.indicators {
		singles = append(singles, ind)
	}
	multis := make([]MultiValueIndicator, 0, len(e.multiIndics))
	for _, ind := range e.multiIndics {
		multis = append(multis, ind)
	}
	vols := make([]VolumeIndicator, 0, len(e.volIndics))
	for _, ind := range e.volIndics {
		vols = append(vols, ind)
	}
	e.mu.RUnlock()

	res := &Result{
		Single: make(map[string][]float64),
		Multi:  make(map[string]map[string][]float64),
	}
	var mu sync.Mutex
	var wg sync.WaitGroup

	type job func()
	work := make(chan job, len(singles)+len(multis)+len(vols))

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fn := range work {
				select {
				case <-ctx.Done():
					return
				default:
					fn()
				}
			}
		}()
	}

	for _, ind := range singles {
		ind := ind
		work <- func() {
			if values, err := ind.Calculate(candles); err == nil {
				mu.Lock()
				res.Single[ind.Name()] = values
				mu.Unlock()
			}
		}
	}
	for _, ind := range multis {
		ind := ind
		work <- func() {
			if values, err := ind.Calculate(candles); err == nil {
				mu.Lock()
				res.Multi[ind.Name()] = values
				mu.Unlock()
			}
		}
	}
	for _, ind := range vols {
		ind := ind
		work <- func() {
			if values, err := ind.Calculate(candles, volumes); err == nil {
				mu.Lock()
				res.Single[ind.Name()] = values
				mu.Unlock()
			}
		}
	}
	close(work)

	wg.Wait()

	return res, nil
}

// Calculate calculates a specific single-value indicator by name.
func (e *Engine) Calculate(ctx context.Context, name string, candles []models.Candle) ([]float64, error) {
	e.mu.RLock()
	ind, ok := e.indicators[name]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("indicator %s not found", name)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return ind.Calculate(candles)
	}
}

// CalculateMulti calculates a specific multi-value indicator by name.
func (e *Engine) CalculateMulti(ctx context.Context, name string, candles []models.Candle) (map[string][]float64, error) {
	e.mu.RLock()
	ind, ok := e.multiIndics[name]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("multi-value indicator %s not found", name)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return ind.Calculate(candles)
	}
}

// ListIndicators returns the names of all registered indicators.
func (e *Engine) ListIndicators() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.indicators)+len(e.multiIndics)+len(e.volIndics))
	for name := range e.indicators {
		names = append(names, name)
	}
	for name := range e.multiIndics {
		names = append(names, name)
	}
	for name := range e.volIndics {
		names = append(names, name)
	}
	return names
}
