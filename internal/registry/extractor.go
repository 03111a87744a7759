package registry

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
	"github.com/kreuzberg-go/kreuzberg/internal/model"
)

// DocumentExtractor is the contract a format-specific plugin satisfies
// (spec §6). ExtractFile has a default-shaped implementation (read + call
// ExtractBytes) provided by DefaultExtractFile for plugins that embed it.
type DocumentExtractor interface {
	Plugin
	SupportedMimeTypes() []string
	Priority() int
	CanHandle(path, mime string) bool
	ExtractBytes(ctx context.Context, data []byte, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error)
	ExtractFile(ctx context.Context, path, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error)
}

// DefaultExtractFile implements the "read file, delegate to ExtractBytes"
// default behavior named in spec §6 for extractors that have no
// file-specific optimization.
func DefaultExtractFile(ctx context.Context, e DocumentExtractor, path, mime string, cfg model.ExtractionConfig) (model.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ExtractionResult{}, kerrors.New(kerrors.Io, "extractor.extract_file", err)
	}
	return e.ExtractBytes(ctx, data, mime, cfg)
}

type extractorEntry struct {
	extractor DocumentExtractor
	priority  int
}

// ExtractorRegistry maps mime -> priority -> extractor (spec §4.2).
type ExtractorRegistry struct {
	mu      sync.RWMutex
	byMime  map[string][]extractorEntry // sorted descending by priority
}

// NewExtractorRegistry constructs an empty registry.
func NewExtractorRegistry() *ExtractorRegistry {
	return &ExtractorRegistry{byMime: make(map[string][]extractorEntry)}
}

// Register indexes e under every MIME in its SupportedMimeTypes() list at
// its Priority(). Initialize() is invoked once; failure aborts registration.
func (r *ExtractorRegistry) Register(e DocumentExtractor) error {
	if err := ValidateName(e.Name()); err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return kerrors.New(kerrors.Plugin, "extractor_registry.register", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry := extractorEntry{extractor: e, priority: e.Priority()}
	for _, mime := range e.SupportedMimeTypes() {
		list := r.byMime[mime]
		list = append(list, entry)
		sortByPriorityDesc(list)
		r.byMime[mime] = list
	}
	return nil
}

// Remove unregisters every entry whose extractor is named name and calls
// Shutdown() exactly once.
func (r *ExtractorRegistry) Remove(name string) error {
	r.mu.Lock()
	var found DocumentExtractor
	for mime, list := range r.byMime {
		kept := list[:0]
		for _, entry := range list {
			if entry.extractor.Name() == name {
				found = entry.extractor
				continue
			}
			kept = append(kept, entry)
		}
		r.byMime[mime] = kept
	}
	r.mu.Unlock()

	if found == nil {
		return kerrors.Newf(kerrors.Validation, "extractor_registry.remove", "no extractor named %q", name)
	}
	return found.Shutdown()
}

// Lookup resolves a MIME to the highest-priority extractor: exact match
// first, then `type/*` prefix patterns among registered MIMEs sharing the
// query's `type/` prefix, otherwise UnsupportedFormat (spec §4.2).
func (r *ExtractorRegistry) Lookup(mime string) (DocumentExtractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if list, ok := r.byMime[mime]; ok && len(list) > 0 {
		return list[0].extractor, nil
	}

	typePrefix, _, ok := strings.Cut(mime, "/")
	if !ok {
		return nil, kerrors.Newf(kerrors.UnsupportedFormat, "extractor_registry.lookup", "unsupported format: %s", mime)
	}
	var best *extractorEntry
	for registered, list := range r.byMime {
		if !strings.HasSuffix(registered, "/*") {
			continue
		}
		if strings.TrimSuffix(registered, "/*") != typePrefix {
			continue
		}
		if len(list) == 0 {
			continue
		}
		candidate := list[0]
		if best == nil || candidate.priority > best.priority {
			best = &candidate
		}
	}
	if best != nil {
		return best.extractor, nil
	}
	return nil, kerrors.Newf(kerrors.UnsupportedFormat, "extractor_registry.lookup", "unsupported format: %s", mime)
}

// Count returns the number of distinct extractors registered.
func (r *ExtractorRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, list := range r.byMime {
		for _, e := range list {
			seen[e.extractor.Name()] = struct{}{}
		}
	}
	return len(seen)
}

// Names returns the distinct registered extractor names.
func (r *ExtractorRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	var names []string
	for _, list := range r.byMime {
		for _, e := range list {
			if _, ok := seen[e.extractor.Name()]; !ok {
				seen[e.extractor.Name()] = struct{}{}
				names = append(names, e.extractor.Name())
			}
		}
	}
	return names
}

// ShutdownAll calls Shutdown() on every distinct registered extractor
// exactly once.
func (r *ExtractorRegistry) ShutdownAll() error {
	r.mu.Lock()
	seen := make(map[string]DocumentExtractor)
	for _, list := range r.byMime {
		for _, e := range list {
			seen[e.extractor.Name()] = e.extractor
		}
	}
	r.byMime = make(map[string][]extractorEntry)
	r.mu.Unlock()

	var firstErr error
	for _, e := range seen {
		if err := e.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func sortByPriorityDesc(list []extractorEntry) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].priority > list[j-1].priority; j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}

var (
	globalExtractorRegistry     *ExtractorRegistry
	globalExtractorRegistryOnce sync.Once
)

// GlobalExtractors returns the process-wide lazily constructed extractor
// registry singleton (spec §3 "global process-wide singletons exist and
// are lazily constructed").
func GlobalExtractors() *ExtractorRegistry {
	globalExtractorRegistryOnce.Do(func() { globalExtractorRegistry = NewExtractorRegistry() })
	return globalExtractorRegistry
}
