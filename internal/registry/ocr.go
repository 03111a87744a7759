package registry

import (
	"context"
	"sync"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// OcrBackend is the contract an OCR engine plugin satisfies (spec §6).
type OcrBackend interface {
	Plugin
	ProcessImage(ctx context.Context, imageBytes []byte, cfg model.OCRConfig) (model.ExtractionResult, error)
	SupportsLanguage(lang string) bool
	BackendType() string
}

// OcrRegistry maps name -> backend (spec §4.2).
type OcrRegistry struct {
	mu       sync.RWMutex
	backends map[string]OcrBackend
	order    []string // insertion order, used by GetForLanguage scan
}

// NewOcrRegistry constructs an empty OCR backend registry.
func NewOcrRegistry() *OcrRegistry {
	return &OcrRegistry{backends: make(map[string]OcrBackend)}
}

// Register adds a backend under its own name, calling Initialize() once.
func (r *OcrRegistry) Register(b OcrBackend) error {
	if err := ValidateName(b.Name()); err != nil {
		return err
	}
	if err := b.Initialize(); err != nil {
		return kerrors.New(kerrors.Plugin, "ocr_registry.register", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[b.Name()]; !exists {
		r.order = append(r.order, b.Name())
	}
	r.backends[b.Name()] = b
	return nil
}

// Get returns the backend registered under name.
func (r *OcrRegistry) Get(name string) (OcrBackend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// GetForLanguage returns the first backend (in registration order) whose
// SupportsLanguage(lang) is true.
func (r *OcrRegistry) GetForLanguage(lang string) (OcrBackend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		b := r.backends[name]
		if b.SupportsLanguage(lang) {
			return b, true
		}
	}
	return nil, false
}

// Remove unregisters a backend and shuts it down exactly once.
func (r *OcrRegistry) Remove(name string) error {
	r.mu.Lock()
	b, ok := r.backends[name]
	if ok {
		delete(r.backends, name)
		for i, n := range r.order {
			if n == name {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()
	if !ok {
		return kerrors.Newf(kerrors.Validation, "ocr_registry.remove", "no backend named %q", name)
	}
	return b.Shutdown()
}

// Count returns the number of registered backends.
func (r *OcrRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.backends)
}

// Names returns registered backend names in registration order.
func (r *OcrRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

var (
	globalOcrRegistry     *OcrRegistry
	globalOcrRegistryOnce sync.Once
)

// GlobalOcrBackends returns the process-wide lazily constructed OCR
// backend registry singleton.
func GlobalOcrBackends() *OcrRegistry {
	globalOcrRegistryOnce.Do(func() { globalOcrRegistry = NewOcrRegistry() })
	return globalOcrRegistry
}
