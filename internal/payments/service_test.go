package payments

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amplio-agency/amplio/internal/lifecycle"
)

type memoryRepo struct {
	payments map[int64]Payment
	invoices map[int64]Invoice
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{payments: make(map[int64]Payment), invoices: make(map[int64]Invoice)}
}

func (r *memoryRepo) Create(_ context.Context, payment Payment) (Payment, error) {
	r.nextID++
	payment.ID = r.nextID
	r.payments[payment.ID] = payment
	return payment, nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (Payment, error) {
	payment, ok := r.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return payment, nil
}

func (r *memoryRepo) List(_ context.Context) ([]Payment, error) {
	out := make([]Payment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) InsertInvoice(_ context.Context, invoice Invoice) (Invoice, bool, error) {
	if existing, ok := r.invoices[invoice.PaymentID]; ok {
		return existing, false, nil
	}
	invoice.ID = int64(len(r.invoices) + 1)
	r.invoices[invoice.PaymentID] = invoice
	return invoice, true, nil
}

func (r *memoryRepo) GetInvoiceByPayment(_ context.Context, paymentID int64) (Invoice, error) {
	invoice, ok := r.invoices[paymentID]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	return invoice, nil
}

func TestCreateValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), nil, slog.Default())

	_, err := svc.Create(ctx, 0, 100, "USD")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, 1, 0, "USD")
	require.ErrorIs(t, err, ErrValidation)

	p, err := svc.Create(ctx, 1, 150000, "eur")
	require.NoError(t, err)
	require.Equal(t, "EUR", p.Currency)
	require.Equal(t, lifecycle.PaymentPending, p.Status)
}

func TestGenerateInvoiceRequiresPaid(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, slog.Default())

	p, err := svc.Create(ctx, 1, 150000, "USD")
	require.NoError(t, err)

	require.ErrorIs(t, svc.GenerateInvoice(ctx, p.ID), ErrNotPaid)
	require.ErrorIs(t, svc.GenerateInvoice(ctx, 999), ErrNotFound)
}

func TestGenerateInvoiceIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, slog.Default())

	p, err := svc.Create(ctx, 1, 1234567, "USD")
	require.NoError(t, err)
	p.Status = lifecycle.PaymentPaid
	repo.payments[p.ID] = p

	require.NoError(t, svc.GenerateInvoice(ctx, p.ID))
	first, err := svc.InvoiceForPayment(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(first.Number, "INV-"))
	require.Len(t, first.Number, 12)
	require.Equal(t, "USD 12,345.67", first.AmountLabel)

	// Redelivered job: same invoice, no duplicate.
	require.NoError(t, svc.GenerateInvoice(ctx, p.ID))
	second, err := svc.InvoiceForPayment(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, first.Number, second.Number)
	require.Len(t, repo.invoices, 1)
}
