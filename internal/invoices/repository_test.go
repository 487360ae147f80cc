package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/boutique2v/commerce-backend/pkg/db"
	"github.com/boutique2v/commerce-backend/pkg/db/models"
	"github.com/boutique2v/commerce-backend/pkg/enums"
	"github.com/boutique2v/commerce-backend/pkg/types"
)

func seedInvoice(t *testing.T, repo *Repository, number string, status enums.InvoiceStatus) *models.ManualInvoice {
	t.Helper()
	invoice, err := repo.Create(context.Background(), &models.ManualInvoice{
		InvoiceNumber: number,
		Customer:      types.InvoiceCustomer{Name: "Grace Hopper"},
		Items: []types.InvoiceLine{
			{Description: "Consulting", Quantity: 1, Price: 100},
		},
		Total:     100,
		Status:    status,
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	return invoice
}

func TestRepositoryCreateFindDelete(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	created := seedInvoice(t, repo, "INV-2026-00001", enums.InvoiceStatusDraft)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "INV-2026-00001", found.InvoiceNumber)
	require.Equal(t, "Grace Hopper", found.Customer.Name)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.FindByID(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, created.ID), ErrNotFound)
}

func TestRepositoryRejectsDuplicateNumbers(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	seedInvoice(t, repo, "INV-2026-00001", enums.InvoiceStatusDraft)
	_, err := repo.Create(context.Background(), &models.ManualInvoice{
		InvoiceNumber: "INV-2026-00001",
		CreatedBy:     uuid.New(),
	})
	require.Error(t, err)
	require.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryListByStatus(t *testing.T) {
	repo := NewRepository(openTestDB(t))

	seedInvoice(t, repo, "INV-2026-00001", enums.InvoiceStatusDraft)
	seedInvoice(t, repo, "INV-2026-00002", enums.InvoiceStatusPaid)
	seedInvoice(t, repo, "INV-2026-00003", enums.InvoiceStatusPaid)

	rows, total, err := repo.List(context.Background(), ListFilter{Status: "paid"})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
}

func TestRepositoryNextInvoiceNumber(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()
	year := time.Now().Year()

	first, err := repo.NextInvoiceNumber(ctx, year)
	require.NoError(t, err)
	require.Equal(t, formatInvoiceNumber(year, 1), first)

	seedInvoice(t, repo, first, enums.InvoiceStatusDraft)

	second, err := repo.NextInvoiceNumber(ctx, year)
	require.NoError(t, err)
	require.Equal(t, formatInvoiceNumber(year, 2), second)
}
