// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package sequence

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrUnknownSequence is returned when a definition ID is not registered.
	ErrUnknownSequence = errors.New("unknown sequence")
	// ErrPresetConflict is returned when a custom definition reuses a preset ID.
	ErrPresetConflict = errors.New("sequence id is reserved by a preset")
)

// Catalog is a registry of built-in presets plus custom definitions.
// It is safe for concurrent use; Lookup always returns a copy.
type Catalog struct {
	mu      sync.RWMutex
	presets map[string]Definition
	order   []string
	custom  map[string]Definition
}

// NewCatalog returns a catalog holding the built-in presets.
func NewCatalog() *Catalog {
	c := &Catalog{
		presets: make(map[string]Definition),
		custom:  make(map[string]Definition),
	}
	for _, def := range Presets() {
		c.presets[def.ID] = def
		c.order = append(c.order, def.ID)
	}
	return c
}

// Lookup returns the definition registered under id.
func (c *Catalog) Lookup(id string) (Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if def, ok := c.presets[id]; ok {
		return def.Clone(), nil
	}
	if def, ok := c.custom[id]; ok {
		return def.Clone(), nil
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownSequence, id)
}

// List returns presets in display order followed by custom definitions sorted by ID.
func (c *Catalog) List() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Definition, 0, len(c.presets)+len(c.custom))
	for _, id := range c.order {
		out = append(out, c.presets[id].Clone())
	}
	ids := make([]string, 0, len(c.custom))
	for id := range c.custom {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, c.custom[id].Clone())
	}
	return out
}

// IsPreset reports whether id names a built-in definition.
func (c *Catalog) IsPreset(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.presets[id]
	return ok
}

// Register validates and adds (or replaces) one custom definition.
func (c *Catalog) Register(def Definition) error {
	if err := Validate(def); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.presets[def.ID]; ok {
		return fmt.Errorf("%w: %q", ErrPresetConflict, def.ID)
	}
	c.custom[def.ID] = def.Clone()
	return nil
}

// ReplaceCustom swaps the whole custom set. Either every definition is valid
// and the swap happens, or the catalog is left untouched.
func (c *Catalog) ReplaceCustom(defs []Definition) error {
	next := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if err := Validate(def); err != nil {
			return err
		}
		if _, dup := next[def.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidDefinition, def.ID)
		}
		next[def.ID] = def.Clone()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range next {
		if _, ok := c.presets[id]; ok {
			return fmt.Errorf("%w: %q", ErrPresetConflict, id)
		}
	}
	c.custom = next
	return nil
}

// Custom returns the custom definitions sorted by ID.
func (c *Catalog) Custom() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Definition, 0, len(c.custom))
	for _, def := range c.custom {
		out = append(out, def.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
