package payments

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const paymentColumns = `id, assignment_id, amount_cents, currency, status, created_at, updated_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	var status string
	err := row.Scan(&p.ID, &p.AssignmentID, &p.AmountCents, &p.Currency, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Payment{}, err
	}
	p.Status = lifecycle.State(status)
	return p, nil
}

// Create inserts the payment.
func (r *Repository) Create(ctx context.Context, payment Payment) (Payment, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO payments (assignment_id, amount_cents, currency, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		payment.AssignmentID, payment.AmountCents, payment.Currency, string(payment.Status)).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

// Get returns one payment by id.
func (r *Repository) Get(ctx context.Context, id int64) (Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

// List returns all payments newest-first.
func (r *Repository) List(ctx context.Context) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSnapshot returns the workflow view of the payment.
func (r *Repository) GetSnapshot(ctx context.Context, id int64) (lifecycle.Snapshot, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM payments WHERE id=$1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lifecycle.Snapshot{}, workflow.ErrNotFound
		}
		return lifecycle.Snapshot{}, err
	}
	return lifecycle.Snapshot{State: lifecycle.State(status)}, nil
}

// CompareAndSetState writes the status only when the expected one still holds.
func (r *Repository) CompareAndSetState(ctx context.Context, id int64, expected, next lifecycle.State, _ workflow.Companion) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`,
		string(next), id, string(expected))
	if err != nil {
		return workflow.MapCASError(err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.StaleOrMissing(ctx, r.pool, `SELECT true FROM payments WHERE id=$1`, id)
	}
	return nil
}

// InsertInvoice writes the invoice once per payment. The second return value
// is false when an invoice for the payment already existed.
func (r *Repository) InsertInvoice(ctx context.Context, invoice Invoice) (Invoice, bool, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO invoices (payment_id, number, amount_label, issued_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (payment_id) DO NOTHING
RETURNING id, issued_at`,
		invoice.PaymentID, invoice.Number, invoice.AmountLabel).
		Scan(&invoice.ID, &invoice.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, getErr := r.GetInvoiceByPayment(ctx, invoice.PaymentID)
			if getErr != nil {
				return Invoice{}, false, getErr
			}
			return existing, false, nil
		}
		return Invoice{}, false, err
	}
	return invoice, true, nil
}

// GetInvoiceByPayment returns the invoice for a payment.
func (r *Repository) GetInvoiceByPayment(ctx context.Context, paymentID int64) (Invoice, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `SELECT id, payment_id, number, amount_label, issued_at FROM invoices WHERE payment_id=$1`, paymentID).
		Scan(&inv.ID, &inv.PaymentID, &inv.Number, &inv.AmountLabel, &inv.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	return inv, nil
}
