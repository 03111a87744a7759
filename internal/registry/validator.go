package registry

import (
	"sync"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// Validator is the contract a result-validation plugin satisfies (spec §6).
type Validator interface {
	Plugin
	Priority() int
	ShouldValidate(result *model.ExtractionResult, cfg model.ExtractionConfig) bool
	Validate(result *model.ExtractionResult, cfg model.ExtractionConfig) error
}

type validatorEntry struct {
	validator Validator
	seq       int
}

// ValidatorRegistry is priority-ordered (spec §4.2).
type ValidatorRegistry struct {
	mu      sync.RWMutex
	entries []validatorEntry
	nextSeq int
}

// NewValidatorRegistry constructs an empty registry.
func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{}
}

// Register adds v, calling Initialize() once.
func (r *ValidatorRegistry) Register(v Validator) error {
	if err := ValidateName(v.Name()); err != nil {
		return err
	}
	if err := v.Initialize(); err != nil {
		return kerrors.New(kerrors.Plugin, "validator_registry.register", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, validatorEntry{validator: v, seq: r.nextSeq})
	r.nextSeq++
	sortValidatorsDesc(r.entries)
	return nil
}

// Remove unregisters v by name and shuts it down once.
func (r *ValidatorRegistry) Remove(name string) error {
	r.mu.Lock()
	var found Validator
	kept := r.entries[:0:0]
	for _, e := range r.entries {
		if e.validator.Name() == name {
			found = e.validator
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	r.mu.Unlock()
	if found == nil {
		return kerrors.Newf(kerrors.Validation, "validator_registry.remove", "no validator named %q", name)
	}
	return found.Shutdown()
}

// GetAll returns a snapshot of all validators in descending-priority order
// with stable insertion order within a priority.
func (r *ValidatorRegistry) GetAll() []Validator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Validator, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.validator
	}
	return out
}

// Count returns the number of registered validators.
func (r *ValidatorRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Names returns all registered validator names.
func (r *ValidatorRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.validator.Name()
	}
	return names
}

func sortValidatorsDesc(list []validatorEntry) {
	for i := 1; i < len(list); i++ {
		j := i
		for j > 0 {
			pi, pj := list[j].validator.Priority(), list[j-1].validator.Priority()
			if pi > pj || (pi == pj && list[j].seq < list[j-1].seq) {
				list[j], list[j-1] = list[j-1], list[j]
				j--
				continue
			}
			break
		}
	}
}

var (
	globalValidatorRegistry     *ValidatorRegistry
	globalValidatorRegistryOnce sync.Once
)

// GlobalValidators returns the process-wide lazily constructed validator
// registry singleton.
func GlobalValidators() *ValidatorRegistry {
	globalValidatorRegistryOnce.Do(func() { globalValidatorRegistry = NewValidatorRegistry() })
	return globalValidatorRegistry
}
