package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/billing"
	"github.com/netbill/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its assigned number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", number).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll finds invoices matching the filter and returns the unpaged total
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*billing.Invoice, int64, error) {
	var invoices []*billing.Invoice
	query := r.db.WithContext(ctx).Model(&billing.Invoice{})

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Search != "" {
		query = query.Where("invoice_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// FindByClient finds all invoices for a client, newest first
func (r *GormInvoiceRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*billing.Invoice, error) {
	var invoices []*billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOutstandingByClient finds a client's unpaid invoices, oldest first,
// so payments settle the oldest debt
func (r *GormInvoiceRepository) FindOutstandingByClient(ctx context.Context, clientID uuid.UUID) ([]*billing.Invoice, error) {
	var invoices []*billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND status IN ?", clientID, []billing.InvoiceStatus{
			billing.InvoiceStatusDraft,
			billing.InvoiceStatusSent,
			billing.InvoiceStatusOverdue,
		}).
		Order("due_date ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOverdue finds unpaid invoices past their due date
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]*billing.Invoice, error) {
	var invoices []*billing.Invoice
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ?", []billing.InvoiceStatus{
			billing.InvoiceStatusDraft,
			billing.InvoiceStatusSent,
		}, asOf).
		Order("due_date ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// LastSequenceForDay returns the highest sequence already issued for a day
// prefix, 0 when the day has no invoices yet. Concurrent issuers may both
// read the same value; the unique index on invoice_number catches the loser.
func (r *GormInvoiceRepository) LastSequenceForDay(ctx context.Context, prefix string) (int, error) {
	var number string
	err := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Select("invoice_number").
		Where("invoice_number LIKE ?", prefix+"-%").
		Order("invoice_number DESC").
		Limit(1).
		Scan(&number).Error
	if err != nil {
		return 0, err
	}
	if number == "" {
		return 0, nil
	}

	_, seq, err := billing.ParseInvoiceNumber(number)
	if err != nil {
		return 0, fmt.Errorf("malformed invoice number %q in store: %w", number, err)
	}
	return seq, nil
}

// Save persists the invoice, translating a unique index collision on the
// invoice number into shared.ErrDuplicateInvoiceNo
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	if err := r.db.WithContext(ctx).Save(invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicateInvoiceNo
		}
		return err
	}
	return nil
}

// Delete removes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&billing.Invoice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the total number of invoices
func (r *GormInvoiceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&billing.Invoice{}).Count(&count).Error
	return count, err
}
