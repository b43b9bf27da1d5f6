package api

import (
	"context"

	"github.com/jmoiron/sqlx/types"

	"github.com/iiorcrop/mandi/internal/db"
	"github.com/iiorcrop/mandi/internal/models"
	"github.com/iiorcrop/mandi/internal/ordering"
)

// Store is the persistence surface the handlers depend on. *db.Database
// implements it; tests substitute an in-memory fake.
type Store interface {
	CreateStaffDetail(ctx context.Context, userID string, data types.JSONText) (*models.StaffDetail, error)
	GetStaffDetailByUser(ctx context.Context, userID string) (*models.StaffDetail, error)
	ListStaffDetails(ctx context.Context) ([]models.StaffDetail, error)
	UpdateStaffDetailData(ctx context.Context, id string, data types.JSONText) (*models.StaffDetail, error)
	DeleteStaffDetail(ctx context.Context, id string) error
	ReorderStaffDetails(ctx context.Context, placements []ordering.Placement) (ordering.Result, error)

	CreateStaffInput(ctx context.Context, input *models.StaffInput) (*models.StaffInput, error)
	ListStaffInputs(ctx context.Context) ([]models.StaffInput, error)
	UpdateStaffInput(ctx context.Context, id string, input *models.StaffInput) (*models.StaffInput, error)
	DeleteStaffInput(ctx context.Context, id string) error
	UpdateInputPositions(ctx context.Context, placements []ordering.Placement) (ordering.Result, error)

	ListPrices(ctx context.Context, filter db.PriceFilter) ([]models.PricePoint, error)
	GetBatch(ctx context.Context, batchID string) (*models.PriceBatch, error)

	Ping(ctx context.Context) error
}
