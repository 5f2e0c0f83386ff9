package handler

import (
	"context"

	"github.com/dukerupert/ulpack/internal/model"
	"github.com/dukerupert/ulpack/internal/store"
	"github.com/dukerupert/ulpack/internal/weight"
)

// ListDetail is a packing list with its ordered items and weight summary.
type ListDetail struct {
	model.PackingList
	Items   []model.GearItem `json:"items"`
	Summary weight.Summary   `json:"summary"`
}

// SharedList is the public projection served behind a share token. It omits
// the token itself and the sharing flags.
type SharedList struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Unit        model.Unit       `json:"unit"`
	Items       []model.GearItem `json:"items"`
	Summary     weight.Summary   `json:"summary"`
}

func (d ListDetail) Shared() SharedList {
	return SharedList{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Unit:        d.Unit,
		Items:       d.Items,
		Summary:     d.Summary,
	}
}

func loadDetail(ctx context.Context, items *store.GearItemStore, list *model.PackingList) (*ListDetail, error) {
	gear, err := items.ListByList(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return &ListDetail{
		PackingList: *list,
		Items:       gear,
		Summary:     weight.Summarize(gear),
	}, nil
}

// loadDetailByID returns nil, nil when the list does not exist.
func loadDetailByID(ctx context.Context, lists *store.PackingListStore, items *store.GearItemStore, id string) (*ListDetail, error) {
	list, err := lists.GetByID(ctx, id)
	if err != nil || list == nil {
		return nil, err
	}
	return loadDetail(ctx, items, list)
}
