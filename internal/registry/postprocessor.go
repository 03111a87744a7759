package registry

import (
	"sync"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// Stage is one of the three post-processor tiers (spec §4.4).
type Stage int

const (
	Early Stage = iota
	Middle
	Late
)

// Stages lists the three stages in execution order.
var Stages = [...]Stage{Early, Middle, Late}

func (s Stage) String() string {
	switch s {
	case Early:
		return "early"
	case Middle:
		return "middle"
	case Late:
		return "late"
	default:
		return "unknown"
	}
}

// PostProcessor is the contract a post-processing plugin satisfies (spec §6).
type PostProcessor interface {
	Plugin
	ProcessingStage() Stage
	ShouldProcess(result *model.ExtractionResult, cfg model.ExtractionConfig) bool
	Process(result *model.ExtractionResult, cfg model.ExtractionConfig) error
}

type postProcessorEntry struct {
	processor PostProcessor
	priority  int
	seq       int // insertion sequence, for FIFO tie-breaking
}

// PostProcessorRegistry is organized as stage -> priority -> [processor]
// (spec §4.2).
type PostProcessorRegistry struct {
	mu      sync.RWMutex
	byStage map[Stage][]postProcessorEntry
	nextSeq int
}

// NewPostProcessorRegistry constructs an empty registry.
func NewPostProcessorRegistry() *PostProcessorRegistry {
	return &PostProcessorRegistry{byStage: make(map[Stage][]postProcessorEntry)}
}

// Register adds p under its ProcessingStage() with a caller-supplied
// priority (higher runs first within a stage).
func (r *PostProcessorRegistry) Register(p PostProcessor, priority int) error {
	if err := ValidateName(p.Name()); err != nil {
		return err
	}
	if err := p.Initialize(); err != nil {
		return kerrors.New(kerrors.Plugin, "postprocessor_registry.register", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stage := p.ProcessingStage()
	entry := postProcessorEntry{processor: p, priority: priority, seq: r.nextSeq}
	r.nextSeq++
	list := append(r.byStage[stage], entry)
	stableSortByPriorityDesc(list)
	r.byStage[stage] = list
	return nil
}

// Remove unregisters p by name across all stages and shuts it down once.
func (r *PostProcessorRegistry) Remove(name string) error {
	r.mu.Lock()
	var found PostProcessor
	for stage, list := range r.byStage {
		kept := list[:0:0]
		for _, e := range list {
			if e.processor.Name() == name {
				found = e.processor
				continue
			}
			kept = append(kept, e)
		}
		r.byStage[stage] = kept
	}
	r.mu.Unlock()
	if found == nil {
		return kerrors.Newf(kerrors.Validation, "postprocessor_registry.remove", "no processor named %q", name)
	}
	return found.Shutdown()
}

// GetForStage returns a snapshot of the processors registered for stage,
// in descending-priority order, FIFO within equal priority. Returning a
// snapshot (copy) is what makes the pipeline's "a processor list is
// captured once per stage" guarantee (spec §5) hold: later registrations
// never affect an in-flight pipeline.
func (r *PostProcessorRegistry) GetForStage(stage Stage) []PostProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.byStage[stage]
	out := make([]PostProcessor, len(list))
	for i, e := range list {
		out[i] = e.processor
	}
	return out
}

// Count returns the total number of registered processors across all stages.
func (r *PostProcessorRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, list := range r.byStage {
		n += len(list)
	}
	return n
}

// Names returns all registered processor names.
func (r *PostProcessorRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for _, list := range r.byStage {
		for _, e := range list {
			names = append(names, e.processor.Name())
		}
	}
	return names
}

func stableSortByPriorityDesc(list []postProcessorEntry) {
	for i := 1; i < len(list); i++ {
		j := i
		for j > 0 && (list[j].priority > list[j-1].priority ||
			(list[j].priority == list[j-1].priority && list[j].seq < list[j-1].seq)) {
			list[j], list[j-1] = list[j-1], list[j]
			j--
		}
	}
}

var (
	globalPostProcessorRegistry     *PostProcessorRegistry
	globalPostProcessorRegistryOnce sync.Once
)

// GlobalPostProcessors returns the process-wide lazily constructed
// post-processor registry singleton.
func GlobalPostProcessors() *PostProcessorRegistry {
	globalPostProcessorRegistryOnce.Do(func() { globalPostProcessorRegistry = NewPostProcessorRegistry() })
	return globalPostProcessorRegistry
}
