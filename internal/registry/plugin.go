// Package registry implements the four plugin registries (C4): Extractor,
// OCR backend, PostProcessor, and Validator. All four share the same
// reader/writer concurrency discipline and name-validation rules.
package registry

import (
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kerrors"
)

// Plugin is the identity contract every registered plugin satisfies.
type Plugin interface {
	Name() string
	Version() string
	Initialize() error
	Shutdown() error
}

// ValidateName enforces spec §3's plugin-identity invariant: non-empty,
// no whitespace.
func ValidateName(name string) error {
	if name == "" {
		return kerrors.Newf(kerrors.Validation, "registry.validate_name", "plugin name must not be empty")
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return kerrors.Newf(kerrors.Validation, "registry.validate_name", "plugin name %q must not contain whitespace", name)
	}
	return nil
}
