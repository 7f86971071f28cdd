// Package scanner abstracts the barcode scanning capability behind a
// narrow start/stop/detect interface so the concrete engine is
// swappable and mockable. The capability is a singleton resource: the
// Engine allows at most one active scanner process-wide, and every
// exit path of the intake flow must release it.
package scanner

import (
	"errors"
	"sync"
)

// ErrScannerBusy is returned when a scanner is already active.
var ErrScannerBusy = errors.New("scanner already in use")

// DetectFunc receives each detected barcode.
type DetectFunc func(code string)

// Scanner is the opaque scanning capability.
type Scanner interface {
	Start(onDetect DetectFunc) error
	Stop() error
}

// Factory builds a fresh scanner instance per acquisition.
type Factory func() (Scanner, error)

// Engine guards the singleton scanner resource.
type Engine struct {
	mu      sync.Mutex
	factory Factory
	active  Scanner
}

// NewEngine creates an engine over a scanner factory.
func NewEngine(factory Factory) *Engine {
	return &Engine{factory: factory}
}

// Start acquires and starts a scanner. It fails with ErrScannerBusy
// while another scanner is active.
func (e *Engine) Start(onDetect DetectFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return ErrScannerBusy
	}

	s, err := e.factory()
	if err != nil {
		return err
	}
	if err := s.Start(onDetect); err != nil {
		return err
	}

	e.active = s
	return nil
}

// Stop stops and releases the active scanner. Calling Stop with no
// active scanner is a no-op, so every exit path can call it safely.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return nil
	}

	err := e.active.Stop()
	e.active = nil
	return err
}

// Running reports whether a scanner is currently active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil
}
