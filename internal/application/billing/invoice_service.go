package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"go.uber.org/zap"
)

// numberRetries bounds how often invoice issuing retries after losing a
// race on the invoice number's unique index.
const numberRetries = 3

// defaultDueDays is how long after issuing an invoice falls due
const defaultDueDays = 14

// InvoiceService handles invoice issuing and lifecycle
type InvoiceService struct {
	uow         billing.UnitOfWork
	invoiceRepo billing.InvoiceRepository
	clientRepo  subscriber.ClientRepository
	metrics     ActivityRecorder
	logger      *zap.Logger
	dueDays     int
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(uow billing.UnitOfWork, invoiceRepo billing.InvoiceRepository, clientRepo subscriber.ClientRepository, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		uow:         uow,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		logger:      logger,
		dueDays:     defaultDueDays,
	}
}

// SetDueDays overrides how many days after issuing an invoice falls due
func (s *InvoiceService) SetDueDays(days int) {
	if days > 0 {
		s.dueDays = days
	}
}

// SetMetrics attaches an activity recorder; nil records nothing
func (s *InvoiceService) SetMetrics(m ActivityRecorder) {
	s.metrics = m
}

// Issue creates an invoice with the next sequential number for today.
// The number is computed and the invoice saved in one transaction; a
// concurrent issuer losing the race on the unique index triggers a
// retry with a freshly read sequence.
func (s *InvoiceService) Issue(ctx context.Context, req IssueInvoiceRequest) (*InvoiceResponse, error) {
	return s.issueAt(ctx, req, time.Now())
}

func (s *InvoiceService) issueAt(ctx context.Context, req IssueInvoiceRequest, now time.Time) (*InvoiceResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	amount := req.Amount
	if amount.IsZero() {
		amount = client.MonthlyFee
	}
	due := now.AddDate(0, 0, s.dueDays)
	if req.DueDate != nil {
		due = *req.DueDate
	}

	var issued *billing.Invoice
	prefix := billing.DayPrefix(now)

	for attempt := 1; attempt <= numberRetries; attempt++ {
		err = s.uow.Execute(ctx, func(repos billing.TxRepositories) error {
			inv, err := billing.NewInvoice(client.ID, amount, due)
			if err != nil {
				return err
			}
			seq, err := repos.Invoices().LastSequenceForDay(ctx, prefix)
			if err != nil {
				return err
			}
			if err := inv.AssignNumber(billing.FormatInvoiceNumber(now, seq+1)); err != nil {
				return err
			}
			if err := repos.Invoices().Save(ctx, inv); err != nil {
				return err
			}
			issued = inv
			return nil
		})
		if err == nil {
			break
		}
		if err != shared.ErrDuplicateInvoiceNo {
			return nil, err
		}
		s.logger.Warn("invoice number collision, retrying",
			zap.String("prefix", prefix),
			zap.Int("attempt", attempt))
	}
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceIssued(ctx, issued.Amount)
	}
	s.logger.Info("invoice issued",
		zap.String("invoice_number", issued.InvoiceNumber),
		zap.String("client_id", client.ID.String()))

	response := ToInvoiceResponse(issued)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter shared.Filter) ([]InvoiceResponse, int64, error) {
	invoices, total, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		responses = append(responses, ToInvoiceResponse(inv))
	}
	return responses, total, nil
}

// ListByClient retrieves a client's invoices
func (s *InvoiceService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		responses = append(responses, ToInvoiceResponse(inv))
	}
	return responses, nil
}

// Send marks a draft invoice as sent
func (s *InvoiceService) Send(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.MarkSent(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Cancel voids an unpaid invoice
func (s *InvoiceService) Cancel(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancel(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GenerateMonthly issues a monthly-fee invoice for every active client
// due on or before the given date, charging the fee to each balance.
// It returns the number of invoices issued.
func (s *InvoiceService) GenerateMonthly(ctx context.Context, asOf time.Time) (int, error) {
	clients, err := s.clientRepo.FindDueForPayment(ctx, asOf)
	if err != nil {
		return 0, err
	}

	issued := 0
	for i := range clients {
		c := &clients[i]
		if c.MonthlyFee.IsZero() {
			continue
		}

		if _, err := s.issueAt(ctx, IssueInvoiceRequest{ClientID: c.ID, Amount: c.MonthlyFee}, asOf); err != nil {
			s.logger.Error("monthly invoice failed",
				zap.String("client_id", c.ID.String()),
				zap.Error(err))
			continue
		}

		c.ChargeMonthlyFee()
		if err := s.clientRepo.SaveWithLock(ctx, c); err != nil {
			s.logger.Error("monthly fee charge failed",
				zap.String("client_id", c.ID.String()),
				zap.Error(err))
			continue
		}
		issued++
	}

	s.logger.Info("monthly invoice run finished", zap.Int("issued", issued))
	return issued, nil
}

// MarkOverdue flags every unpaid invoice past its due date. It returns
// the number of invoices flagged.
func (s *InvoiceService) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	invoices, err := s.invoiceRepo.FindOverdue(ctx, asOf)
	if err != nil {
		return 0, err
	}

	flagged := 0
	for _, inv := range invoices {
		if err := inv.MarkOverdue(); err != nil {
			continue
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return flagged, err
		}
		flagged++
	}
	return flagged, nil
}
