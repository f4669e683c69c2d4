package tray

import (
	"errors"
	"testing"
)

func TestBuildMenuRejectsInvalidDescriptors(t *testing.T) {
	tests := []struct {
		name  string
		items []MenuItemDescriptor
	}{
		{
			name:  "empty id",
			items: []MenuItemDescriptor{{Label: "Open"}},
		},
		{
			name:  "empty label",
			items: []MenuItemDescriptor{{ID: "open"}},
		},
		{
			name: "unknown type",
			items: []MenuItemDescriptor{
				{ID: "open", Label: "Open", Kind: "radio"},
			},
		},
		{
			name: "duplicate id",
			items: []MenuItemDescriptor{
				{ID: "open", Label: "Open"},
				{ID: "open", Label: "Open Again"},
			},
		},
		{
			name: "duplicate id across kinds",
			items: []MenuItemDescriptor{
				{ID: "x", Label: "Plain"},
				{ID: "x", Label: "Checked", Kind: KindCheckbox},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMenu(tt.items)
			if err == nil {
				t.Fatal("BuildMenu() succeeded, want error")
			}
			if !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("BuildMenu() error = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}

func TestBuildMenuPreservesOrder(t *testing.T) {
	items := []MenuItemDescriptor{
		{ID: "show", Label: "Show Window"},
		{Kind: KindSeparator},
		{ID: "debug", Label: "Debug Mode", Kind: KindCheckbox, Checked: true},
		{ID: "quit", Label: "Quit", Disabled: true},
	}

	model, err := BuildMenu(items)
	if err != nil {
		t.Fatalf("BuildMenu() error = %v", err)
	}

	if got := len(model.Items); got != 4 {
		t.Fatalf("len(Items) = %d, want 4", got)
	}
	entries := model.Entries()
	if got := len(entries); got != 3 {
		t.Fatalf("len(Entries()) = %d, want 3", got)
	}
	wantIDs := []string{"show", "debug", "quit"}
	for i, id := range wantIDs {
		if entries[i].ID != id {
			t.Errorf("Entries()[%d].ID = %q, want %q", i, entries[i].ID, id)
		}
	}
	if !entries[1].Checked {
		t.Error("checkbox entry lost its checked state")
	}
	if !entries[2].Disabled {
		t.Error("disabled entry lost its disabled state")
	}
}

func TestBuildMenuDefaultsEmptyKindToNormal(t *testing.T) {
	model, err := BuildMenu([]MenuItemDescriptor{{ID: "a", Label: "A"}})
	if err != nil {
		t.Fatalf("BuildMenu() error = %v", err)
	}
	if model.Items[0].Kind != KindNormal {
		t.Errorf("Kind = %q, want %q", model.Items[0].Kind, KindNormal)
	}
}

func TestBuildMenuSeparatorIgnoresIDAndLabel(t *testing.T) {
	model, err := BuildMenu([]MenuItemDescriptor{
		{ID: "ignored", Label: "ignored", Kind: KindSeparator, Checked: true},
	})
	if err != nil {
		t.Fatalf("BuildMenu() error = %v", err)
	}
	sep := model.Items[0]
	if sep.ID != "" || sep.Label != "" || sep.Checked {
		t.Errorf("separator kept id/label/checked: %+v", sep)
	}
}

func TestBuildMenuAllowsEmptyMenu(t *testing.T) {
	model, err := BuildMenu(nil)
	if err != nil {
		t.Fatalf("BuildMenu(nil) error = %v", err)
	}
	if len(model.Items) != 0 {
		t.Errorf("len(Items) = %d, want 0", len(model.Items))
	}
}

func TestLookup(t *testing.T) {
	model, err := BuildMenu([]MenuItemDescriptor{
		{ID: "one", Label: "One"},
		{Kind: KindSeparator},
		{ID: "two", Label: "Two"},
	})
	if err != nil {
		t.Fatalf("BuildMenu() error = %v", err)
	}

	item, ok := model.Lookup("two")
	if !ok || item.Label != "Two" {
		t.Errorf("Lookup(two) = %+v, %v", item, ok)
	}
	if _, ok := model.Lookup("missing"); ok {
		t.Error("Lookup(missing) found an item")
	}
}
