package invoices

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

type stubStore struct {
	invoices map[uuid.UUID]*models.ManualInvoice
	numbers  map[string]bool
}

func newStubStore() *stubStore {
	return &stubStore{
		invoices: map[uuid.UUID]*models.ManualInvoice{},
		numbers:  map[string]bool{},
	}
}

func (s *stubStore) Create(_ context.Context, invoice *models.ManualInvoice) (*models.ManualInvoice, error) {
	if s.numbers[invoice.InvoiceNumber] {
		return nil, fmt.Errorf("duplicate key value violates unique constraint")
	}
	invoice.ID = uuid.New()
	s.numbers[invoice.InvoiceNumber] = true
	clone := *invoice
	s.invoices[invoice.ID] = &clone
	return invoice, nil
}

func (s *stubStore) Save(_ context.Context, invoice *models.ManualInvoice) (*models.ManualInvoice, error) {
	clone := *invoice
	s.invoices[invoice.ID] = &clone
	return invoice, nil
}

func (s *stubStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.invoices[id]; !ok {
		return ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

func (s *stubStore) FindByID(_ context.Context, id uuid.UUID) (*models.ManualInvoice, error) {
	invoice, ok := s.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *invoice
	return &clone, nil
}

func (s *stubStore) List(_ context.Context, filter ListFilter) ([]models.ManualInvoice, int64, error) {
	out := make([]models.ManualInvoice, 0, len(s.invoices))
	for _, invoice := range s.invoices {
		if filter.Status != "" && invoice.Status.String() != filter.Status {
			continue
		}
		out = append(out, *invoice)
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) NextInvoiceNumber(_ context.Context, year int) (string, error) {
	return formatInvoiceNumber(year, int64(len(s.numbers)+1)), nil
}

type stubPDF struct {
	fail    bool
	renders int
}

func (s *stubPDF) RenderManualInvoice(_ context.Context, invoice *models.ManualInvoice) (string, error) {
	if s.fail {
		return "", fmt.Errorf("pdf backend unavailable")
	}
	s.renders++
	return "/uploads/invoices/manual/" + invoice.ID.String() + ".pdf", nil
}

func (s *stubPDF) ManualInvoiceAbsPath(invoiceID uuid.UUID) (string, error) {
	return "/data/invoices/manual/" + invoiceID.String() + ".pdf", nil
}

func newTestService(t *testing.T, store *stubStore, pdf *stubPDF) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "invoices-test", Level: logger.ParseLevel("error"), Output: io.Discard})
	svc, err := NewService(ServiceParams{Store: store, Renderer: pdf, Logger: logg})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validInput() CreateInput {
	return CreateInput{
		Customer: types.InvoiceCustomer{Name: "Grace Hopper"},
		Items: []types.InvoiceLine{
			{Description: "Consulting", Quantity: 3, Price: 120},
			{Description: "Travel", Quantity: 1, Price: 80},
		},
	}
}

func TestCreateComputesTotalAndNumber(t *testing.T) {
	store := newStubStore()
	svc := newTestService(t, store, &stubPDF{})

	invoice, err := svc.Create(context.Background(), uuid.New(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if invoice.Total != 440 {
		t.Fatalf("total = %f, want 440", invoice.Total)
	}
	if !strings.HasPrefix(invoice.InvoiceNumber, "INV-") {
		t.Fatalf("invoice number = %q", invoice.InvoiceNumber)
	}
	if invoice.Status != enums.InvoiceStatusDraft {
		t.Fatalf("status = %s, want draft", invoice.Status)
	}
	if invoice.InvoiceURL == nil {
		t.Fatal("expected invoice url after successful render")
	}
}

func TestCreateSurvivesRenderFailure(t *testing.T) {
	store := newStubStore()
	svc := newTestService(t, store, &stubPDF{fail: true})

	invoice, err := svc.Create(context.Background(), uuid.New(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if invoice.InvoiceURL != nil {
		t.Fatal("invoice url should be empty after failed render")
	}
	if _, ok := store.invoices[invoice.ID]; !ok {
		t.Fatal("invoice was not persisted")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, newStubStore(), &stubPDF{})
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing customer name", CreateInput{Items: validInput().Items}},
		{"no lines", CreateInput{Customer: types.InvoiceCustomer{Name: "X"}}},
		{"zero quantity", CreateInput{
			Customer: types.InvoiceCustomer{Name: "X"},
			Items:    []types.InvoiceLine{{Description: "Y", Quantity: 0, Price: 1}},
		}},
		{"negative price", CreateInput{
			Customer: types.InvoiceCustomer{Name: "X"},
			Items:    []types.InvoiceLine{{Description: "Y", Quantity: 1, Price: -1}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, uuid.New(), tc.input)
			if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestUpdateRecomputesTotalAndStampsPaidAt(t *testing.T) {
	store := newStubStore()
	svc := newTestService(t, store, &stubPDF{})
	ctx := context.Background()

	invoice, err := svc.Create(ctx, uuid.New(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newItems := []types.InvoiceLine{{Description: "Consulting", Quantity: 1, Price: 100}}
	paid := enums.InvoiceStatusPaid
	updated, err := svc.Update(ctx, invoice.ID, UpdateInput{Items: &newItems, Status: &paid})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Total != 100 {
		t.Fatalf("total = %f, want 100", updated.Total)
	}
	if updated.PaidAt == nil {
		t.Fatal("expected PaidAt stamp when marked paid")
	}

	bogus := enums.InvoiceStatus("archived")
	_, err = svc.Update(ctx, invoice.ID, UpdateInput{Status: &bogus})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("bogus status: got %v, want validation error", err)
	}
}

func TestRenderFailureIsFatal(t *testing.T) {
	store := newStubStore()
	pdf := &stubPDF{}
	svc := newTestService(t, store, pdf)
	ctx := context.Background()

	invoice, err := svc.Create(ctx, uuid.New(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	pdf.fail = true
	_, err = svc.Render(ctx, invoice.ID)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("got %v, want dependency error", err)
	}
}

func TestDeleteMissingInvoice(t *testing.T) {
	svc := newTestService(t, newStubStore(), &stubPDF{})

	err := svc.Delete(context.Background(), uuid.New())
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("got %v, want not found", err)
	}
}
