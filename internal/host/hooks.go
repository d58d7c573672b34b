package host

import "fmt"

// Hooks is an ordered after-step hook list. A host embeds it and calls Run
// once per step.
type Hooks struct {
	hooks []Hook
}

// AfterStep appends h.
func (hs *Hooks) AfterStep(h Hook) {
	hs.hooks = append(hs.hooks, h)
}

// Len returns the number of registered hooks.
func (hs *Hooks) Len() int {
	return len(hs.hooks)
}

// Run calls every hook in registration order and stops at the first error.
func (hs *Hooks) Run() error {
	for i, h := range hs.hooks {
		if err := h(); err != nil {
			return fmt.Errorf("after-step hook %d: %w", i, err)
		}
	}
	return nil
}
