package api

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/iiorcrop/mandi/internal/db"
	"github.com/iiorcrop/mandi/internal/models"
	"github.com/iiorcrop/mandi/internal/ordering"
)

// fakeStore is an in-memory Store used by handler tests
type fakeStore struct {
	details map[string]*models.StaffDetail
	inputs  map[string]*models.StaffInput
	prices  []models.PricePoint
	batches map[string]*models.PriceBatch
	seq     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		details: make(map[string]*models.StaffDetail),
		inputs:  make(map[string]*models.StaffInput),
		batches: make(map[string]*models.PriceBatch),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) CreateStaffDetail(_ context.Context, userID string, data types.JSONText) (*models.StaffDetail, error) {
	detail := &models.StaffDetail{
		ID:            f.nextID("sd"),
		UserID:        userID,
		Data:          data,
		SchemaVersion: 1,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	f.details[detail.ID] = detail
	return detail, nil
}

func (f *fakeStore) GetStaffDetailByUser(_ context.Context, userID string) (*models.StaffDetail, error) {
	for _, d := range f.details {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) ListStaffDetails(_ context.Context) ([]models.StaffDetail, error) {
	out := make([]models.StaffDetail, 0, len(f.details))
	for _, d := range f.details {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateStaffDetailData(_ context.Context, id string, data types.JSONText) (*models.StaffDetail, error) {
	detail, ok := f.details[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	detail.Data = data
	detail.UpdatedAt = time.Now()
	return detail, nil
}

func (f *fakeStore) DeleteStaffDetail(_ context.Context, id string) error {
	if _, ok := f.details[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.details, id)
	return nil
}

func (f *fakeStore) ReorderStaffDetails(_ context.Context, placements []ordering.Placement) (ordering.Result, error) {
	result := ordering.Result{Matched: []string{}, Missing: []string{}}
	for _, p := range placements {
		detail, ok := f.details[p.ID]
		if !ok {
			result.Missing = append(result.Missing, p.ID)
			continue
		}
		detail.Position = p.Position
		detail.Subposition = p.Subposition
		result.Matched = append(result.Matched, p.ID)
	}
	return result, nil
}

func (f *fakeStore) CreateStaffInput(_ context.Context, input *models.StaffInput) (*models.StaffInput, error) {
	created := *input
	created.ID = f.nextID("si")
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.inputs[created.ID] = &created
	return &created, nil
}

func (f *fakeStore) ListStaffInputs(_ context.Context) ([]models.StaffInput, error) {
	out := make([]models.StaffInput, 0, len(f.inputs))
	for _, in := range f.inputs {
		out = append(out, *in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) UpdateStaffInput(_ context.Context, id string, input *models.StaffInput) (*models.StaffInput, error) {
	existing, ok := f.inputs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	existing.Title = input.Title
	existing.InputType = input.InputType
	existing.Options = input.Options
	existing.Required = input.Required
	existing.UpdatedAt = time.Now()
	return existing, nil
}

func (f *fakeStore) DeleteStaffInput(_ context.Context, id string) error {
	if _, ok := f.inputs[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.inputs, id)
	return nil
}

func (f *fakeStore) UpdateInputPositions(_ context.Context, placements []ordering.Placement) (ordering.Result, error) {
	result := ordering.Result{Matched: []string{}, Missing: []string{}}
	for _, p := range placements {
		input, ok := f.inputs[p.ID]
		if !ok {
			result.Missing = append(result.Missing, p.ID)
			continue
		}
		input.Position = p.Position
		result.Matched = append(result.Matched, p.ID)
	}
	return result, nil
}

func (f *fakeStore) ListPrices(_ context.Context, filter db.PriceFilter) ([]models.PricePoint, error) {
	out := make([]models.PricePoint, 0, len(f.prices))
	for _, p := range f.prices {
		if filter.State != "" && p.State != filter.State {
			continue
		}
		if filter.Market != "" && p.Market != filter.Market {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) GetBatch(_ context.Context, batchID string) (*models.PriceBatch, error) {
	batch, ok := f.batches[batchID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return batch, nil
}

func (f *fakeStore) Ping(_ context.Context) error {
	return nil
}
