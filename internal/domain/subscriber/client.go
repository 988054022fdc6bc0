package subscriber

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClientStatus represents the service status of a client
type ClientStatus string

const (
	ClientStatusActive    ClientStatus = "active"
	ClientStatusSuspended ClientStatus = "suspended" // Suspended for non-payment
	ClientStatusInactive  ClientStatus = "inactive"
)

// ConnectionType mirrors the router provisioning type of the client
type ConnectionType string

const (
	ConnectionTypePPPoE    ConnectionType = "pppoe"
	ConnectionTypeHotspot  ConnectionType = "hotspot"
	ConnectionTypeBusiness ConnectionType = "business"
)

// BalanceStatus classifies a client's account standing from its balance.
// Balance is signed: negative means credit, positive means owed.
type BalanceStatus string

const (
	BalanceStatusPaid    BalanceStatus = "paid"
	BalanceStatusPending BalanceStatus = "pending"
	BalanceStatusOverdue BalanceStatus = "overdue"
)

// BillingCycleDays is the fixed billing interval advanced on every payment.
const BillingCycleDays = 30

// Client represents a subscriber account. It is the aggregate root for
// registration, status and billing-state operations. Invoices, payments and
// usage records are owned by the client and cascade on delete.
type Client struct {
	shared.BaseAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	Email    string `gorm:"type:varchar(200);index"`
	Phone    string `gorm:"type:varchar(20);not null"`
	IDNumber string `gorm:"type:varchar(20)"` // National ID
	Address  string `gorm:"type:text"`

	ConnectionType ConnectionType `gorm:"type:varchar(20);not null;default:'pppoe'"`
	ServicePlanID  *uuid.UUID     `gorm:"type:uuid;index"`
	Username       string         `gorm:"type:varchar(100);not null;uniqueIndex"`
	Password       string         `gorm:"type:varchar(100);not null"` // Router credential, not an operator login

	MonthlyFee      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Balance         decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"` // Positive = owed, negative = credit
	LastPaymentDate *time.Time      `gorm:"type:date"`
	NextPaymentDate *time.Time      `gorm:"type:date"`

	Status   ClientStatus `gorm:"type:varchar(20);not null;default:'active'"`
	IsActive bool         `gorm:"not null;default:true"`

	Latitude  *decimal.Decimal `gorm:"type:decimal(9,6)"`
	Longitude *decimal.Decimal `gorm:"type:decimal(9,6)"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new client. When monthlyFee is zero and a plan price is
// given, the fee defaults from the plan price. The first billing date is one
// cycle after registration.
func NewClient(name, phone, username, password string, connType ConnectionType, planID *uuid.UUID, monthlyFee, planPrice decimal.Decimal) (*Client, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if strings.TrimSpace(username) == "" {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Client username cannot be empty")
	}
	if err := validateConnectionType(connType); err != nil {
		return nil, err
	}

	if monthlyFee.IsZero() && planID != nil {
		monthlyFee = planPrice
	}

	next := time.Now().AddDate(0, 0, BillingCycleDays)

	client := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Phone:             phone,
		Username:          username,
		Password:          password,
		ConnectionType:    connType,
		ServicePlanID:     planID,
		MonthlyFee:        monthlyFee,
		Balance:           decimal.Zero,
		NextPaymentDate:   &next,
		Status:            ClientStatusActive,
		IsActive:          true,
	}

	client.AddDomainEvent(NewClientRegisteredEvent(client))

	return client, nil
}

// ApplyPayment records the balance effect of a payment: the balance drops by
// the paid amount and the billing cycle advances by a fixed 30 days from the
// payment time. Over- and underpayment are both accepted; the balance simply
// goes negative (credit) or stays positive (owed).
func (c *Client) ApplyPayment(amount decimal.Decimal, at time.Time) error {
	if amount.IsNegative() || amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	before := c.Balance
	c.Balance = c.Balance.Sub(amount)
	paid := at
	next := at.AddDate(0, 0, BillingCycleDays)
	c.LastPaymentDate = &paid
	c.NextPaymentDate = &next
	c.AddDomainEvent(NewClientBalanceChangedEvent(c, before))
	return nil
}

// ChargeMonthlyFee adds one billing cycle's fee to the outstanding balance
func (c *Client) ChargeMonthlyFee() {
	before := c.Balance
	c.Balance = c.Balance.Add(c.MonthlyFee)
	c.AddDomainEvent(NewClientBalanceChangedEvent(c, before))
}

// Suspend marks the client suspended for non-payment
func (c *Client) Suspend() error {
	if c.Status == ClientStatusInactive {
		return shared.ErrInvalidState
	}
	c.Status = ClientStatusSuspended
	c.AddDomainEvent(NewClientStatusChangedEvent(c))
	return nil
}

// Reactivate restores a suspended or inactive client to active service
func (c *Client) Reactivate() {
	c.Status = ClientStatusActive
	c.IsActive = true
	c.AddDomainEvent(NewClientStatusChangedEvent(c))
}

// Deactivate soft-deletes the client; records are kept for accounting
func (c *Client) Deactivate() {
	c.Status = ClientStatusInactive
	c.IsActive = false
	c.AddDomainEvent(NewClientStatusChangedEvent(c))
}

// BalanceStatus classifies the account standing: paid when nothing is owed,
// pending while owing at most one monthly fee, overdue beyond that.
func (c *Client) BalanceStatus() BalanceStatus {
	if c.Balance.LessThanOrEqual(decimal.Zero) {
		return BalanceStatusPaid
	}
	if c.Balance.LessThanOrEqual(c.MonthlyFee) {
		return BalanceStatusPending
	}
	return BalanceStatusOverdue
}

// DaysOverdue returns how many days past the next payment date the client is,
// or 0 when not yet due
func (c *Client) DaysOverdue(now time.Time) int {
	if c.NextPaymentDate == nil || !c.NextPaymentDate.Before(now) {
		return 0
	}
	return int(now.Sub(*c.NextPaymentDate).Hours() / 24)
}

func validateConnectionType(t ConnectionType) error {
	switch t {
	case ConnectionTypePPPoE, ConnectionTypeHotspot, ConnectionTypeBusiness:
		return nil
	default:
		return shared.NewDomainError("INVALID_CONNECTION_TYPE", "Connection type must be pppoe, hotspot or business")
	}
}
