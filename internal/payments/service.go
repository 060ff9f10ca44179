package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/amplio-agency/amplio/internal/lifecycle"
	"github.com/amplio-agency/amplio/internal/policy"
	"github.com/amplio-agency/amplio/internal/workflow"
)

// RepositoryPort describes payment persistence used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, payment Payment) (Payment, error)
	Get(ctx context.Context, id int64) (Payment, error)
	List(ctx context.Context) ([]Payment, error)
	InsertInvoice(ctx context.Context, invoice Invoice) (Invoice, bool, error)
	GetInvoiceByPayment(ctx context.Context, paymentID int64) (Invoice, error)
}

// Service handles payment business logic.
type Service struct {
	repo    RepositoryPort
	wf      *workflow.Service
	logger  *slog.Logger
	printer *message.Printer
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, wf *workflow.Service, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		wf:      wf,
		logger:  logger,
		printer: message.NewPrinter(language.English),
	}
}

// Create inserts a new payment in PENDING.
func (s *Service) Create(ctx context.Context, assignmentID, amountCents int64, currency string) (Payment, error) {
	if assignmentID == 0 {
		return Payment{}, fmt.Errorf("%w: assignment required", ErrValidation)
	}
	if amountCents <= 0 {
		return Payment{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if currency == "" {
		currency = "USD"
	}
	return s.repo.Create(ctx, Payment{
		AssignmentID: assignmentID,
		AmountCents:  amountCents,
		Currency:     strings.ToUpper(currency),
		Status:       lifecycle.PaymentPending,
	})
}

// Get returns one payment.
func (s *Service) Get(ctx context.Context, id int64) (Payment, error) {
	return s.repo.Get(ctx, id)
}

// List returns all payments.
func (s *Service) List(ctx context.Context) ([]Payment, error) {
	return s.repo.List(ctx)
}

// SetStatus moves the payment through its lifecycle. Reaching PAID queues
// invoice generation as a side effect of the transition.
func (s *Service) SetStatus(ctx context.Context, actor policy.Actor, id int64, status string) (Payment, error) {
	target := lifecycle.State(strings.ToUpper(strings.TrimSpace(status)))
	if _, err := s.wf.Apply(ctx, workflow.Request{
		Actor:  actor,
		Type:   workflow.TypePayment,
		ID:     id,
		Action: lifecycle.ActionEdit,
		Target: target,
	}); err != nil {
		return Payment{}, err
	}
	return s.repo.Get(ctx, id)
}

// GenerateInvoice writes the settlement document for a PAID payment. Safe to
// call more than once for the same payment; only the first call inserts.
func (s *Service) GenerateInvoice(ctx context.Context, paymentID int64) error {
	payment, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.Status != lifecycle.PaymentPaid {
		return fmt.Errorf("%w: payment %d is %s", ErrNotPaid, paymentID, payment.Status)
	}
	ref := uuid.NewString()
	invoice := Invoice{
		PaymentID:   paymentID,
		Number:      "INV-" + strings.ToUpper(ref[:8]),
		AmountLabel: s.printer.Sprintf("%s %.2f", payment.Currency, float64(payment.AmountCents)/100),
	}
	stored, inserted, err := s.repo.InsertInvoice(ctx, invoice)
	if err != nil {
		return err
	}
	if !inserted {
		s.logger.Info("invoice already exists", slog.Int64("payment_id", paymentID))
		return nil
	}
	s.logger.Info("invoice generated",
		slog.Int64("payment_id", paymentID),
		slog.String("number", stored.Number),
		slog.String("amount", stored.AmountLabel))
	return nil
}

// InvoiceForPayment returns the invoice generated for a payment.
func (s *Service) InvoiceForPayment(ctx context.Context, paymentID int64) (Invoice, error) {
	return s.repo.GetInvoiceByPayment(ctx, paymentID)
}
