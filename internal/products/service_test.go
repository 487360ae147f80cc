package products

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/pagination"
)

type stubStore struct {
	byID    map[uuid.UUID]*models.Product
	listed  []models.Product
	total   int64
	lastFil ListFilter
}

func newStubStore() *stubStore {
	return &stubStore{byID: map[uuid.UUID]*models.Product{}}
}

func (s *stubStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.byID[p.ID] = p
	return p, nil
}

func (s *stubStore) Save(ctx context.Context, p *models.Product) (*models.Product, error) {
	s.byID[p.ID] = p
	return p, nil
}

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *stubStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *stubStore) List(ctx context.Context, filter ListFilter) ([]models.Product, int64, error) {
	s.lastFil = filter
	return s.listed, s.total, nil
}

func newTestService(t *testing.T, store Store) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Store:  store,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := newTestService(t, store)

	dto, err := svc.Create(ctx, CreateInput{Name: "  Mug  ", Price: 12.5, Stock: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Name != "Mug" {
		t.Errorf("expected trimmed name, got %q", dto.Name)
	}
	if dto.Status != "active" || !dto.TrackQuantity || dto.LowStockThreshold != 5 {
		t.Errorf("unexpected defaults %+v", dto)
	}
	if dto.Images == nil || dto.Tags == nil {
		t.Error("expected empty slices, not nil")
	}

	cases := []CreateInput{
		{Name: "", Price: 1},
		{Name: "x", Price: -1},
		{Name: "x", Price: 1, Stock: -2},
	}
	for _, input := range cases {
		_, err := svc.Create(ctx, input)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Errorf("input %+v: expected validation error, got %v", input, err)
		}
	}
}

func TestCreateRejectsInvalidTierAndStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newStubStore())

	badTier := enums.ShippingTier("T99")
	if _, err := svc.Create(ctx, CreateInput{Name: "x", Price: 1, ShippingTier: &badTier}); pkgerrors.As(err) == nil {
		t.Error("expected invalid tier to be rejected")
	}

	badStatus := "hidden"
	if _, err := svc.Create(ctx, CreateInput{Name: "x", Price: 1, Status: &badStatus}); pkgerrors.As(err) == nil {
		t.Error("expected invalid status to be rejected")
	}
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := newTestService(t, store)

	created, err := svc.Create(ctx, CreateInput{Name: "Mug", Price: 10, Stock: 5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	price := 15.0
	dto, err := svc.Update(ctx, created.ID, UpdateInput{Price: &price})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if dto.Price != 15 {
		t.Errorf("price = %v, want 15", dto.Price)
	}
	if dto.Name != "Mug" || dto.Stock != 5 {
		t.Errorf("untouched fields changed: %+v", dto)
	}
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := newTestService(t, newStubStore())
	name := "x"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Name: &name})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateMetaOnlyTouchesMeta(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := newTestService(t, store)

	created, err := svc.Create(ctx, CreateInput{Name: "Mug", Price: 10})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	featured := true
	status := "draft"
	dto, err := svc.UpdateMeta(ctx, created.ID, MetaInput{Status: &status, IsFeatured: &featured})
	if err != nil {
		t.Fatalf("UpdateMeta: %v", err)
	}
	if dto.Status != "draft" || !dto.IsFeatured {
		t.Errorf("meta not applied: %+v", dto)
	}
	if dto.Price != 10 || dto.Name != "Mug" {
		t.Errorf("non-meta fields changed: %+v", dto)
	}
}

func TestListMapsRowsAndMeta(t *testing.T) {
	store := newStubStore()
	store.listed = []models.Product{
		{ID: uuid.New(), Name: "A", Price: 5, TrackQuantity: true, Stock: 1, LowStockThreshold: 5},
		{ID: uuid.New(), Name: "B", Price: 9},
	}
	store.total = 12
	svc := newTestService(t, store)

	result, err := svc.List(context.Background(), ListFilter{Pagination: pagination.Params{Page: 2, Limit: 5}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(result.Products))
	}
	if !result.Products[0].LowStock {
		t.Error("expected low-stock flag on tracked product at threshold")
	}
	if result.Meta.Total != 12 || result.Meta.Page != 2 || result.Meta.TotalPages != 3 {
		t.Errorf("unexpected meta %+v", result.Meta)
	}
}
