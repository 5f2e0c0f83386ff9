// Package sampledata loads a sample ultralight kit into the gear inventory.
package sampledata

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/ulpack/internal/model"
	"github.com/dukerupert/ulpack/internal/store"
)

//go:embed gear.yaml
var gearYAML []byte

type catalog struct {
	Items []catalogItem `yaml:"items"`
}

type catalogItem struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	WeightGrams int    `yaml:"weight_grams"`
	Quantity    int    `yaml:"quantity"`
	Kind        string `yaml:"kind"`
	Notes       string `yaml:"notes"`
}

// Items returns the bundled sample gear, validated and normalized.
func Items() ([]model.GearItemInput, error) {
	return parse(gearYAML)
}

func parse(data []byte) ([]model.GearItemInput, error) {
	var c catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode sample gear: %w", err)
	}

	inputs := make([]model.GearItemInput, 0, len(c.Items))
	for i, it := range c.Items {
		in := model.GearItemInput{
			Name:        it.Name,
			Category:    it.Category,
			WeightGrams: it.WeightGrams,
			Quantity:    it.Quantity,
			Kind:        it.Kind,
			Notes:       it.Notes,
		}.Normalize()
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("sample gear item %d (%q): %w", i, it.Name, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Seed appends every sample item whose name is not already in the gear
// inventory list, creating that list if needed. Running it again adds
// nothing and existing items are left untouched. It returns the number of
// items added.
func Seed(ctx context.Context, lists *store.PackingListStore, items *store.GearItemStore, logger *slog.Logger) (int, error) {
	inputs, err := Items()
	if err != nil {
		return 0, err
	}

	inventory, err := lists.ResolveInventory(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve inventory: %w", err)
	}

	existing, err := items.ListByList(ctx, inventory.ID)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, it := range existing {
		have[it.Name] = true
	}

	added := 0
	for _, in := range inputs {
		if have[in.Name] {
			continue
		}
		item, err := items.Create(ctx, in.Item(inventory.ID))
		if err != nil {
			return added, fmt.Errorf("seed %q: %w", in.Name, err)
		}
		if item == nil {
			return added, fmt.Errorf("seed %q: inventory list disappeared", in.Name)
		}
		have[in.Name] = true
		added++
	}

	logger.Info("sample gear seeded", "list_id", inventory.ID, "added", added, "skipped", len(inputs)-added)
	return added, nil
}
