// Package flags provides feature flags that switch editing heuristics on and off.
// Flags are read-only after initialization and unknown flags read as disabled.
package flags

import (
	"maps"

	"github.com/zjrosen/richinput/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagWordReplaceDetection lets the rich text processor treat edits that
	// rewrite characters before the caret (autocorrect, predictive text) as a
	// word replacement instead of a plain insert or delete.
	FlagWordReplaceDetection = "word-replace-detection"

	// FlagStrictBindingPool makes binding registration fail once the private
	// use code point pool is exhausted. When off, overflow only logs a warning.
	FlagStrictBindingPool = "strict-binding-pool"

	// FlagDiffRepair lets the processor reconcile its regions with the edited
	// text through a diff whenever edit classification missed a change.
	FlagDiffRepair = "diff-repair"
)

// Defaults returns the flag values used when the config does not mention a flag.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagWordReplaceDetection: true,
		FlagStrictBindingPool:    false,
		FlagDiffRepair:           true,
	}
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map.
// If flags is nil, an empty registry is created (all flags disabled).
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(flags))}
	maps.Copy(r.flags, flags)
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "flags", r.All())
	return r
}

// WithDefaults creates a Registry from Defaults overlaid with flags.
func WithDefaults(flags map[string]bool) *Registry {
	merged := Defaults()
	maps.Copy(merged, flags)
	return New(merged)
}

// Enabled returns true if the named flag is enabled.
// Unknown flags and a nil registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags (for debugging/logging).
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}
