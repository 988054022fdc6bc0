package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/netbill/backend/internal/domain/notify"
	"github.com/netbill/backend/internal/domain/shared"
	"github.com/netbill/backend/internal/domain/subscriber"
	"go.uber.org/zap"
)

// Channel selects the delivery transport for a notification
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// ReminderResult summarizes a reminder run
type ReminderResult struct {
	Sent    int              `json:"sent"`
	Failed  int              `json:"failed"`
	Skipped int              `json:"skipped"`
	Details []DeliveryDetail `json:"details"`
}

// DeliveryDetail reports one recipient's outcome
type DeliveryDetail struct {
	ClientID uuid.UUID `json:"client_id"`
	Phone    string    `json:"phone"`
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
}

// DeliveryRecorder receives send outcomes for instrumentation
type DeliveryRecorder interface {
	RecordNotification(ctx context.Context, channel string, delivered bool)
}

// NotificationService sends payment reminders and service notices
type NotificationService struct {
	clientRepo subscriber.ClientRepository
	sms        notify.SMSSender
	whatsapp   notify.WhatsAppSender
	metrics    DeliveryRecorder
	logger     *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(clientRepo subscriber.ClientRepository, sms notify.SMSSender, whatsapp notify.WhatsAppSender, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		clientRepo: clientRepo,
		sms:        sms,
		whatsapp:   whatsapp,
		logger:     logger,
	}
}

// SetMetrics attaches a delivery recorder; nil records nothing
func (s *NotificationService) SetMetrics(m DeliveryRecorder) {
	s.metrics = m
}

// SendReminder sends a personalized payment reminder to one client
func (s *NotificationService) SendReminder(ctx context.Context, clientID uuid.UUID, channel Channel) (*DeliveryDetail, error) {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	detail := s.deliver(ctx, client, channel, reminderMessage(client))
	return &detail, nil
}

// SendBulkReminders sends personalized reminders to every active client
// with an outstanding balance, or only overdue ones when onlyOverdue is
// set. One bad number never stops the run.
func (s *NotificationService) SendBulkReminders(ctx context.Context, channel Channel, onlyOverdue bool) (*ReminderResult, error) {
	clients, err := s.clientRepo.FindByStatus(ctx, subscriber.ClientStatusActive, shared.Filter{Page: 1, PageSize: 10000})
	if err != nil {
		return nil, err
	}

	result := &ReminderResult{}
	for i := range clients {
		client := &clients[i]
		status := client.BalanceStatus()
		if status == subscriber.BalanceStatusPaid {
			result.Skipped++
			continue
		}
		if onlyOverdue && status != subscriber.BalanceStatusOverdue {
			result.Skipped++
			continue
		}

		detail := s.deliver(ctx, client, channel, reminderMessage(client))
		result.Details = append(result.Details, detail)
		if detail.Success {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	s.logger.Info("reminder run finished",
		zap.String("channel", string(channel)),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// SendServiceNotice sends the same message to every active client
func (s *NotificationService) SendServiceNotice(ctx context.Context, channel Channel, message string) (*ReminderResult, error) {
	if message == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Notice message cannot be empty")
	}

	clients, err := s.clientRepo.FindByStatus(ctx, subscriber.ClientStatusActive, shared.Filter{Page: 1, PageSize: 10000})
	if err != nil {
		return nil, err
	}

	result := &ReminderResult{}
	for i := range clients {
		detail := s.deliver(ctx, &clients[i], channel, message)
		result.Details = append(result.Details, detail)
		if detail.Success {
			result.Sent++
		} else {
			result.Failed++
		}
	}
	return result, nil
}

func (s *NotificationService) deliver(ctx context.Context, client *subscriber.Client, channel Channel, message string) DeliveryDetail {
	detail := DeliveryDetail{ClientID: client.ID}

	phone, err := notify.NormalizeKenyanPhone(client.Phone)
	if err != nil {
		detail.Error = err.Error()
		return detail
	}
	detail.Phone = phone

	var sendErr error
	switch channel {
	case ChannelWhatsApp:
		_, sendErr = s.whatsapp.SendWhatsApp(ctx, phone, message)
	default:
		_, sendErr = s.sms.SendSMS(ctx, phone, message)
	}
	if s.metrics != nil {
		s.metrics.RecordNotification(ctx, string(channel), sendErr == nil)
	}
	if sendErr != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("client_id", client.ID.String()),
			zap.String("channel", string(channel)),
			zap.Error(sendErr))
		detail.Error = sendErr.Error()
		return detail
	}

	detail.Success = true
	return detail
}

func reminderMessage(client *subscriber.Client) string {
	due := "soon"
	if client.NextPaymentDate != nil {
		due = client.NextPaymentDate.Format("02 Jan 2006")
	}
	return fmt.Sprintf("Dear %s, your internet subscription of KES %s is due on %s. Outstanding balance: KES %s. Kindly pay to avoid disconnection.",
		client.Name, client.MonthlyFee.StringFixed(2), due, client.Balance.StringFixed(2))
}
