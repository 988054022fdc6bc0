package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"time"

	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var kes = currency.MustParseISO("KES")

// ExportService renders billing data as CSV downloads
type ExportService struct {
	paymentRepo billing.PaymentRepository
	clientRepo  subscriber.ClientRepository
	printer     *message.Printer
}

// NewExportService creates a new ExportService
func NewExportService(paymentRepo billing.PaymentRepository, clientRepo subscriber.ClientRepository) *ExportService {
	return &ExportService{
		paymentRepo: paymentRepo,
		clientRepo:  clientRepo,
		printer:     message.NewPrinter(language.English),
	}
}

func (s *ExportService) formatAmount(amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return s.printer.Sprint(currency.Symbol(kes.Amount(f)))
}

// ExportPayments renders all payments in a date range as CSV
func (s *ExportService) ExportPayments(ctx context.Context, from, to time.Time) ([]byte, error) {
	payments, err := s.paymentRepo.FindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Payment ID", "Client ID", "Amount", "Method", "Transaction ID", "Payment Date", "Notes"}); err != nil {
		return nil, err
	}
	for _, p := range payments {
		record := []string{
			p.ID.String(),
			p.ClientID.String(),
			s.formatAmount(p.Amount),
			string(p.Method),
			p.TransactionID,
			p.PaymentDate.Format("2006-01-02 15:04"),
			p.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportClients renders the full client roster as CSV
func (s *ExportService) ExportClients(ctx context.Context) ([]byte, error) {
	clients, _, err := s.clientRepo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 100000})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Name", "Phone", "Username", "Connection Type", "Monthly Fee", "Balance", "Balance Status", "Status", "Next Payment"}); err != nil {
		return nil, err
	}
	for i := range clients {
		c := &clients[i]
		next := ""
		if c.NextPaymentDate != nil {
			next = c.NextPaymentDate.Format("2006-01-02")
		}
		record := []string{
			c.Name,
			c.Phone,
			c.Username,
			string(c.ConnectionType),
			s.formatAmount(c.MonthlyFee),
			s.formatAmount(c.Balance),
			string(c.BalanceStatus()),
			string(c.Status),
			next,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
