package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/notify"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService records payments and reconciles them against client
// balances and invoices
type PaymentService struct {
	uow         billing.UnitOfWork
	paymentRepo billing.PaymentRepository
	idempotency billing.IdempotencyStore
	mpesa       billing.MobileMoneyGateway
	sms         notify.SMSSender
	metrics     ActivityRecorder
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(uow billing.UnitOfWork, paymentRepo billing.PaymentRepository, idempotency billing.IdempotencyStore, mpesa billing.MobileMoneyGateway, sms notify.SMSSender, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		uow:         uow,
		paymentRepo: paymentRepo,
		idempotency: idempotency,
		mpesa:       mpesa,
		sms:         sms,
		logger:      logger,
	}
}

// SetMetrics attaches an activity recorder; nil records nothing
func (s *PaymentService) SetMetrics(m ActivityRecorder) {
	s.metrics = m
}

// Record posts a payment. The payment row, the client balance update and
// the invoice settlement happen in one transaction: either all of them
// land or none do. A transaction ID seen before is replayed idempotently
// and returns the original payment with Duplicate set.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	if req.TransactionID != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, req.TransactionID)
		if err != nil {
			// The store is advisory; the database lookup below still
			// catches replays when it is down.
			s.logger.Warn("idempotency store unavailable", zap.Error(err))
		} else if !fresh {
			return s.replay(ctx, req.TransactionID)
		}

		existing, err := s.paymentRepo.FindByTransactionID(ctx, req.TransactionID)
		if err != nil && err != shared.ErrNotFound {
			return nil, err
		}
		if existing != nil {
			return s.resultFromExisting(ctx, existing)
		}
	}

	at := time.Now()
	if req.PaymentDate != nil {
		at = *req.PaymentDate
	}

	var result *RecordPaymentResult
	err := s.uow.Execute(ctx, func(repos billing.TxRepositories) error {
		client, err := repos.Clients().FindByID(ctx, req.ClientID)
		if err != nil {
			return err
		}

		payment, err := billing.NewPayment(client.ID, req.InvoiceID, req.Amount, billing.PaymentMethod(req.Method), req.TransactionID, req.Notes, at)
		if err != nil {
			return err
		}

		if err := client.ApplyPayment(req.Amount, at); err != nil {
			return err
		}

		settled, err := s.settleInvoice(ctx, repos, client.ID, req.InvoiceID, req.Amount, at)
		if err != nil {
			return err
		}
		if settled != nil {
			id := settled.ID
			payment.InvoiceID = &id
		}

		if err := repos.Payments().Save(ctx, payment); err != nil {
			return err
		}
		if err := repos.Clients().SaveWithLock(ctx, client); err != nil {
			return err
		}

		result = &RecordPaymentResult{
			Payment:       ToPaymentResponse(payment),
			NewBalance:    client.Balance,
			BalanceStatus: string(client.BalanceStatus()),
		}
		if settled != nil {
			result.SettledInvoice = settled.InvoiceNumber
		}
		return nil
	})
	if err != nil {
		if req.TransactionID != "" {
			if relErr := s.idempotency.Release(ctx, req.TransactionID); relErr != nil {
				s.logger.Warn("idempotency release failed", zap.Error(relErr))
			}
		}
		if s.metrics != nil {
			s.metrics.RecordPayment(ctx, req.Method, req.Amount, false)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPayment(ctx, req.Method, req.Amount, true)
	}
	s.logger.Info("payment recorded",
		zap.String("payment_id", result.Payment.ID.String()),
		zap.String("client_id", req.ClientID.String()),
		zap.String("method", req.Method))

	s.sendReceipt(ctx, req.ClientID, req.Amount, result)

	return result, nil
}

// settleInvoice marks the targeted invoice paid, or when none was named,
// the oldest outstanding invoice the amount covers
func (s *PaymentService) settleInvoice(ctx context.Context, repos billing.TxRepositories, clientID uuid.UUID, invoiceID *uuid.UUID, amount decimal.Decimal, at time.Time) (*billing.Invoice, error) {
	var target *billing.Invoice

	if invoiceID != nil {
		inv, err := repos.Invoices().FindByID(ctx, *invoiceID)
		if err != nil {
			return nil, err
		}
		if inv.ClientID != clientID {
			return nil, shared.NewDomainError("INVOICE_MISMATCH", "Invoice belongs to a different client")
		}
		target = inv
	} else {
		outstanding, err := repos.Invoices().FindOutstandingByClient(ctx, clientID)
		if err != nil {
			return nil, err
		}
		for _, inv := range outstanding {
			if amount.GreaterThanOrEqual(inv.Amount) {
				target = inv
				break
			}
		}
	}

	if target == nil || !target.IsOutstanding() {
		return nil, nil
	}
	if err := target.MarkPaid(at); err != nil {
		return nil, err
	}
	if err := repos.Invoices().Save(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *PaymentService) replay(ctx context.Context, transactionID string) (*RecordPaymentResult, error) {
	existing, err := s.paymentRepo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return s.resultFromExisting(ctx, existing)
}

func (s *PaymentService) resultFromExisting(ctx context.Context, payment *billing.Payment) (*RecordPaymentResult, error) {
	s.logger.Info("duplicate payment replayed",
		zap.String("transaction_id", payment.TransactionID))
	return &RecordPaymentResult{
		Payment:   ToPaymentResponse(payment),
		Duplicate: true,
	}, nil
}

// sendReceipt sends a confirmation SMS after the transaction committed.
// Delivery failure never affects the recorded payment.
func (s *PaymentService) sendReceipt(ctx context.Context, clientID uuid.UUID, amount decimal.Decimal, result *RecordPaymentResult) {
	var phone string
	err := s.uow.Execute(ctx, func(repos billing.TxRepositories) error {
		client, err := repos.Clients().FindByID(ctx, clientID)
		if err != nil {
			return err
		}
		phone = client.Phone
		return nil
	})
	if err != nil || phone == "" {
		return
	}

	message := fmt.Sprintf("Payment of KES %s received. New balance: KES %s. Thank you.",
		amount.StringFixed(2), result.NewBalance.StringFixed(2))
	if _, err := s.sms.SendSMS(ctx, phone, message); err != nil {
		s.logger.Warn("receipt sms failed",
			zap.String("client_id", clientID.String()),
			zap.Error(err))
	}
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, filter shared.Filter) ([]PaymentResponse, int64, error) {
	payments, total, err := s.paymentRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, ToPaymentResponse(p))
	}
	return responses, total, nil
}

// ListByClient retrieves a client's payment history
func (s *PaymentService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, ToPaymentResponse(p))
	}
	return responses, nil
}

// InitiateMpesa asks the gateway to prompt the client's phone for the
// given amount. The completed payment arrives through the webhook.
func (s *PaymentService) InitiateMpesa(ctx context.Context, clientID uuid.UUID, amount decimal.Decimal) (*billing.STKPushResponse, error) {
	var phone, account string
	err := s.uow.Execute(ctx, func(repos billing.TxRepositories) error {
		client, err := repos.Clients().FindByID(ctx, clientID)
		if err != nil {
			return err
		}
		phone = client.Phone
		account = client.Username
		return nil
	})
	if err != nil {
		return nil, err
	}

	if amount.IsZero() || amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	resp, err := s.mpesa.InitiateSTKPush(ctx, billing.STKPushRequest{
		Phone:            phone,
		Amount:           amount,
		AccountReference: account,
		Description:      "Internet subscription",
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stk push initiated",
		zap.String("client_id", clientID.String()),
		zap.String("checkout_request_id", resp.CheckoutRequestID))
	return resp, nil
}
