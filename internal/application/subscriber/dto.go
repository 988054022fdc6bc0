package subscriber

import (
	"time"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/subscriber"
	"github.com/shopspring/decimal"
)

// RegisterClientRequest contains the data needed to register a client
type RegisterClientRequest struct {
	Name           string           `json:"name" binding:"required"`
	Email          string           `json:"email" binding:"omitempty,email"`
	Phone          string           `json:"phone" binding:"required,kenyanphone"`
	IDNumber       string           `json:"id_number"`
	Address        string           `json:"address"`
	ConnectionType string           `json:"connection_type" binding:"required,oneof=pppoe hotspot business"`
	ServicePlanID  *uuid.UUID       `json:"service_plan_id"`
	Username       string           `json:"username" binding:"required"`
	Password       string           `json:"password" binding:"required"`
	MonthlyFee     decimal.Decimal  `json:"monthly_fee"`
	Latitude       *decimal.Decimal `json:"latitude"`
	Longitude      *decimal.Decimal `json:"longitude"`
}

// UpdateClientRequest contains the updatable fields of a client
type UpdateClientRequest struct {
	Name          string           `json:"name" binding:"required"`
	Email         string           `json:"email" binding:"omitempty,email"`
	Phone         string           `json:"phone" binding:"required,kenyanphone"`
	IDNumber      string           `json:"id_number"`
	Address       string           `json:"address"`
	ServicePlanID *uuid.UUID       `json:"service_plan_id"`
	MonthlyFee    *decimal.Decimal `json:"monthly_fee"`
	Latitude      *decimal.Decimal `json:"latitude"`
	Longitude     *decimal.Decimal `json:"longitude"`
}

// ClientListFilter narrows and pages client listings
type ClientListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Status   string `form:"status"`
}

// ClientResponse is the API representation of a client
type ClientResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	IDNumber        string          `json:"id_number"`
	Address         string          `json:"address"`
	ConnectionType  string          `json:"connection_type"`
	ServicePlanID   *uuid.UUID      `json:"service_plan_id"`
	Username        string          `json:"username"`
	MonthlyFee      decimal.Decimal `json:"monthly_fee"`
	Balance         decimal.Decimal `json:"balance"`
	BalanceStatus   string          `json:"balance_status"`
	LastPaymentDate *time.Time      `json:"last_payment_date"`
	NextPaymentDate *time.Time      `json:"next_payment_date"`
	Status          string          `json:"status"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RegisterClientResult carries the created client plus any provisioning
// warning. Router failures do not fail registration.
type RegisterClientResult struct {
	Client        ClientResponse `json:"client"`
	RouterWarning string         `json:"router_warning,omitempty"`
}

// UsageResponse is the API representation of one day's usage
type UsageResponse struct {
	ClientID      uuid.UUID `json:"client_id"`
	UsageDate     time.Time `json:"usage_date"`
	DownloadBytes int64     `json:"download_bytes"`
	UploadBytes   int64     `json:"upload_bytes"`
	TotalBytes    int64     `json:"total_bytes"`
	Formatted     string    `json:"formatted"`
}

// ToClientResponse converts a domain client to its API representation
func ToClientResponse(c *subscriber.Client) ClientResponse {
	return ClientResponse{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		IDNumber:        c.IDNumber,
		Address:         c.Address,
		ConnectionType:  string(c.ConnectionType),
		ServicePlanID:   c.ServicePlanID,
		Username:        c.Username,
		MonthlyFee:      c.MonthlyFee,
		Balance:         c.Balance,
		BalanceStatus:   string(c.BalanceStatus()),
		LastPaymentDate: c.LastPaymentDate,
		NextPaymentDate: c.NextPaymentDate,
		Status:          string(c.Status),
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// ToUsageResponse converts a usage record to its API representation
func ToUsageResponse(u *subscriber.NetworkUsage) UsageResponse {
	return UsageResponse{
		ClientID:      u.ClientID,
		UsageDate:     u.UsageDate,
		DownloadBytes: u.DownloadBytes,
		UploadBytes:   u.UploadBytes,
		TotalBytes:    u.TotalBytes(),
		Formatted:     u.FormatUsage(),
	}
}
