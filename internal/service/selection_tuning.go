package service

import (
	"sync/atomic"

	"skilljumper_backend/internal/config"
)

// SelectionTuning carries a service's live selection parameters. A config
// reload publishes a fresh snapshot through Tune while in-flight calls keep
// reading the one they started with, so a reload never tears a parameter set
// mid-pipeline.
type SelectionTuning struct {
	ptr atomic.Pointer[config.SelectionConfig]
}

// Tune publishes a new parameter set.
func (t *SelectionTuning) Tune(cfg config.SelectionConfig) {
	t.ptr.Store(&cfg)
}

// Selection returns the current parameter set.
func (t *SelectionTuning) Selection() config.SelectionConfig {
	return *t.ptr.Load()
}
