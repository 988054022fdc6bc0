package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BillingMetrics tracks invoice, payment, and notification activity plus
// point-in-time subscriber health gauges.
type BillingMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	invoiceIssuedTotal *Counter
	invoiceAmountTotal *Counter
	paymentTotal       *Counter
	paymentAmount      *Histogram
	notificationTotal  *Counter

	activeClients   *Gauge
	overdueInvoices *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	provider BillingMetricsProvider
}

// BillingMetricsProvider supplies gauge data for periodic collection.
// The interface keeps the telemetry layer free of a direct dependency on
// the persistence layer.
type BillingMetricsProvider interface {
	CountActiveClients(ctx context.Context) (int64, error)
	CountOverdueInvoices(ctx context.Context) (int64, error)
}

// BillingMetricsConfig holds configuration for billing metrics.
type BillingMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	Provider        BillingMetricsProvider
}

// NewBillingMetrics creates a new BillingMetrics instance.
func NewBillingMetrics(cfg BillingMetricsConfig) (*BillingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BillingMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		stopChan: make(chan struct{}),
		provider: cfg.Provider,
	}

	var err error

	bm.invoiceIssuedTotal, err = NewCounter(
		cfg.Meter,
		"netbill_invoice_issued_total",
		"Total number of invoices issued",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceAmountTotal, err = NewCounter(
		cfg.Meter,
		"netbill_invoice_amount_total",
		"Total invoiced amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"netbill_payment_total",
		"Total number of payment transactions",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentAmount, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "netbill_payment_amount",
		Description: "Distribution of settled payment amounts in KES",
		Unit:        "{shillings}",
		Boundaries:  []float64{500, 1000, 2000, 3000, 5000, 10000, 25000, 50000},
	})
	if err != nil {
		return nil, err
	}

	bm.notificationTotal, err = NewCounter(
		cfg.Meter,
		"netbill_notification_total",
		"Total number of notification send attempts",
		"{messages}",
	)
	if err != nil {
		return nil, err
	}

	bm.activeClients, err = NewGauge(
		cfg.Meter,
		"netbill_active_clients",
		"Number of active subscriber accounts",
		"{clients}",
	)
	if err != nil {
		return nil, err
	}

	bm.overdueInvoices, err = NewGauge(
		cfg.Meter,
		"netbill_overdue_invoices",
		"Number of invoices currently overdue",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// PaymentStatus represents the outcome of a payment for metrics labeling.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// RecordInvoiceIssued records an invoice creation with its amount.
// The amount is converted to cents for the counter.
func (bm *BillingMetrics) RecordInvoiceIssued(ctx context.Context, amount decimal.Decimal) {
	bm.invoiceIssuedTotal.Inc(ctx)
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.invoiceAmountTotal.Add(ctx, cents)
}

// RecordPayment records a payment transaction outcome. The amount lands
// in the distribution histogram only for settled payments.
func (bm *BillingMetrics) RecordPayment(ctx context.Context, method string, amount decimal.Decimal, status PaymentStatus) {
	bm.paymentTotal.Inc(ctx,
		AttrPaymentMethod.String(method),
		AttrPaymentStatus.String(string(status)),
	)
	if status == PaymentStatusSuccess {
		amt, _ := amount.Float64()
		bm.paymentAmount.Record(ctx, amt, AttrPaymentMethod.String(method))
	}
}

// RecordNotification records a notification send attempt on a channel.
func (bm *BillingMetrics) RecordNotification(ctx context.Context, channel string, delivered bool) {
	status := "sent"
	if !delivered {
		status = "failed"
	}
	bm.notificationTotal.Inc(ctx,
		AttrChannel.String(channel),
		AttrPaymentStatus.String(status),
	)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// Non-blocking; use Stop to stop collection.
func (bm *BillingMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BillingMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectGauges(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic billing metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectGauges(ctx)
		}
	}
}

func (bm *BillingMetrics) collectGauges(ctx context.Context) {
	if bm.provider == nil {
		return
	}

	if active, err := bm.provider.CountActiveClients(ctx); err != nil {
		bm.logger.Warn("Failed to count active clients for metrics", zap.Error(err))
	} else {
		bm.activeClients.Record(ctx, active)
	}

	if overdue, err := bm.provider.CountOverdueInvoices(ctx); err != nil {
		bm.logger.Warn("Failed to count overdue invoices for metrics", zap.Error(err))
	} else {
		bm.overdueInvoices.Record(ctx, overdue)
	}
}

// Stop stops the periodic collection.
func (bm *BillingMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBillingMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
