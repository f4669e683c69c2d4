// Package tray implements the system tray: menu building, tray state, the
// controller state machine, and the indicator backends that talk to the
// platform tray APIs.
package tray

import (
	"errors"
	"fmt"
)

// ItemKind is the menu entry kind as it appears on the wire.
type ItemKind string

// Menu entry kinds.
const (
	KindNormal    ItemKind = "normal"
	KindCheckbox  ItemKind = "checkbox"
	KindSeparator ItemKind = "separator"
)

// MenuItemDescriptor describes one context menu entry. Descriptors arrive
// from the host on every setContextMenu call; ids only need to be unique
// within a single snapshot.
type MenuItemDescriptor struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     ItemKind `json:"type"`
	Disabled bool     `json:"disabled"`
	Checked  bool     `json:"checked"`
}

// ErrInvalidDescriptor is returned by BuildMenu when a descriptor list cannot
// produce a menu.
var ErrInvalidDescriptor = errors.New("invalid menu item descriptor")

// MenuModel is a validated menu snapshot ready to hand to an indicator. It is
// immutable once built; a new model replaces the old one wholesale.
type MenuModel struct {
	Items []MenuItemDescriptor
}

// BuildMenu validates descriptors, in order, into a menu model. Separators
// carry no id/label; every other entry needs both, and ids must not repeat
// within the snapshot. An empty Kind is treated as a normal entry.
func BuildMenu(items []MenuItemDescriptor) (*MenuModel, error) {
	model := &MenuModel{Items: make([]MenuItemDescriptor, 0, len(items))}
	seen := make(map[string]struct{}, len(items))

	for i, item := range items {
		if item.Kind == "" {
			item.Kind = KindNormal
		}
		switch item.Kind {
		case KindSeparator:
			// Separators ignore id, label, checked.
			model.Items = append(model.Items, MenuItemDescriptor{Kind: KindSeparator, Disabled: item.Disabled})
			continue
		case KindNormal, KindCheckbox:
		default:
			return nil, fmt.Errorf("%w: item %d has unknown type %q", ErrInvalidDescriptor, i, item.Kind)
		}

		if item.ID == "" {
			return nil, fmt.Errorf("%w: item %d has empty id", ErrInvalidDescriptor, i)
		}
		if item.Label == "" {
			return nil, fmt.Errorf("%w: item %q has empty label", ErrInvalidDescriptor, item.ID)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidDescriptor, item.ID)
		}
		seen[item.ID] = struct{}{}

		model.Items = append(model.Items, item)
	}

	return model, nil
}

// Entries returns the actionable (non-separator) items in menu order.
func (m *MenuModel) Entries() []MenuItemDescriptor {
	entries := make([]MenuItemDescriptor, 0, len(m.Items))
	for _, item := range m.Items {
		if item.Kind != KindSeparator {
			entries = append(entries, item)
		}
	}
	return entries
}

// Lookup returns the descriptor with the given id.
func (m *MenuModel) Lookup(id string) (MenuItemDescriptor, bool) {
	for _, item := range m.Items {
		if item.Kind != KindSeparator && item.ID == id {
			return item, true
		}
	}
	return MenuItemDescriptor{}, false
}
