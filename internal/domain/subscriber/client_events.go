package subscriber

import (
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeClient = "Client"

// Event type constants
const (
	EventTypeClientRegistered     = "ClientRegistered"
	EventTypeClientBalanceChanged = "ClientBalanceChanged"
	EventTypeClientStatusChanged  = "ClientStatusChanged"
)

// ClientRegisteredEvent is published when a new client is registered
type ClientRegisteredEvent struct {
	shared.BaseDomainEvent
	Name           string         `json:"name"`
	Username       string         `json:"username"`
	ConnectionType ConnectionType `json:"connection_type"`
}

// NewClientRegisteredEvent creates a new ClientRegisteredEvent
func NewClientRegisteredEvent(client *Client) *ClientRegisteredEvent {
	return &ClientRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientRegistered, AggregateTypeClient, client.ID),
		Name:            client.Name,
		Username:        client.Username,
		ConnectionType:  client.ConnectionType,
	}
}

// ClientBalanceChangedEvent is published whenever the balance moves
type ClientBalanceChangedEvent struct {
	shared.BaseDomainEvent
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// NewClientBalanceChangedEvent creates a new ClientBalanceChangedEvent
func NewClientBalanceChangedEvent(client *Client, before decimal.Decimal) *ClientBalanceChangedEvent {
	return &ClientBalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientBalanceChanged, AggregateTypeClient, client.ID),
		BalanceBefore:   before,
		BalanceAfter:    client.Balance,
	}
}

// ClientStatusChangedEvent is published on suspend/reactivate/deactivate
type ClientStatusChangedEvent struct {
	shared.BaseDomainEvent
	Status ClientStatus `json:"status"`
}

// NewClientStatusChangedEvent creates a new ClientStatusChangedEvent
func NewClientStatusChangedEvent(client *Client) *ClientStatusChangedEvent {
	return &ClientStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientStatusChanged, AggregateTypeClient, client.ID),
		Status:          client.Status,
	}
}
