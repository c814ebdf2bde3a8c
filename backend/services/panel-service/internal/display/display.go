package display

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Slot names as addressed by the panel page. "co2" carries the ozone
// reading; the identifier is part of the page contract.
const (
	SlotTemperature = "temperatura"
	SlotOzone       = "co2"
)

// Slots lists every slot the poller writes, in display order.
var Slots = []string{SlotTemperature, SlotOzone}

// Display receives slot text from the poller.
type Display interface {
	SetSlot(ctx context.Context, slot, text string) error
}

// Snapshotter exposes the current text of every known slot.
type Snapshotter interface {
	Snapshot() map[string]string
}

// Memory is an in-process Display holding the latest text per slot.
type Memory struct {
	mu    sync.RWMutex
	slots map[string]string
}

// NewMemory returns empty display; unwritten slots are absent from snapshots.
func NewMemory() *Memory {
	return &Memory{slots: make(map[string]string)}
}

// SetSlot stores text for slot.
func (m *Memory) SetSlot(_ context.Context, slot, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = text
	return nil
}

// Slot returns the text for slot and whether it was ever written.
func (m *Memory) Slot(slot string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.slots[slot]
	return text, ok
}

// Snapshot returns a copy of all written slots.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.slots))
	for k, v := range m.slots {
		out[k] = v
	}
	return out
}

// Fanout writes every slot to all displays, in order. A failing display
// does not stop the others; the failures are joined into the result.
type Fanout []Display

// SetSlot implements Display.
func (f Fanout) SetSlot(ctx context.Context, slot, text string) error {
	var errs []error
	for _, d := range f {
		if d == nil {
			continue
		}
		if err := d.SetSlot(ctx, slot, text); err != nil {
			errs = append(errs, fmt.Errorf("display %T: %w", d, err))
		}
	}
	return errors.Join(errs...)
}
