package notification

import (
	"context"
	"fmt"

	"autoserve/models"
	"autoserve/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Service defines methods for pushing booking lifecycle updates to customers.
type Service interface {
	NotifyBookingStatus(ctx context.Context, req *models.ServiceRequest) error
	NotifyPendingReminder(ctx context.Context, req *models.ServiceRequest) error
}

// FCMNotificationService is the production implementation backed by Firebase
// Cloud Messaging. Customers subscribe to their own topic from the app.
type FCMNotificationService struct {
	Client *messaging.Client
	Logger *zap.Logger
}

func NewFCMNotificationService(client *messaging.Client, logger *zap.Logger) (*FCMNotificationService, error) {
	if client == nil {
		return nil, fmt.Errorf("notification service initialization error: FCM client is nil")
	}
	return &FCMNotificationService{Client: client, Logger: logger}, nil
}

// NotifyBookingStatus pushes the current status of a service request to the
// customer's topic. Delivery is best effort; callers treat errors as
// non-fatal.
func (s *FCMNotificationService) NotifyBookingStatus(ctx context.Context, req *models.ServiceRequest) error {
	if req == nil {
		return fmt.Errorf("NotifyBookingStatus: nil service request")
	}

	data := map[string]string{
		"request_id": req.RequestID,
		"status":     string(req.Status),
		"role":       "customer",
	}
	if req.SelectedProblemID != "" {
		data["problem_id"] = req.SelectedProblemID
	}

	msg := &messaging.Message{
		Topic: customerTopic(req.CustomerID),
		Notification: &messaging.Notification{
			Title: "Service request update",
			Body:  statusBody(req.Status),
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "booking_updates",
				Sound:     "default",
			},
		},
	}

	response, err := s.Client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("NotifyBookingStatus: failed to send FCM message for request %s: %w", req.RequestID, err)
	}
	if s.Logger != nil {
		s.Logger.Debug("Sent booking status push", zap.String("requestID", req.RequestID), zap.String("response", response))
	}
	return nil
}

// NotifyPendingReminder nudges a customer whose request is still awaiting
// dealership confirmation.
func (s *FCMNotificationService) NotifyPendingReminder(ctx context.Context, req *models.ServiceRequest) error {
	if req == nil {
		return fmt.Errorf("NotifyPendingReminder: nil service request")
	}

	msg := &messaging.Message{
		Topic: customerTopic(req.CustomerID),
		Notification: &messaging.Notification{
			Title: "Still waiting on your dealership",
			Body:  "Your service request has not been confirmed yet. We have reminded the dealership.",
		},
		Data: map[string]string{
			"request_id": req.RequestID,
			"status":     string(req.Status),
			"role":       "customer",
			"kind":       "pending_reminder",
		},
	}

	if _, err := s.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("NotifyPendingReminder: failed to send FCM message for request %s: %w", req.RequestID, err)
	}
	return nil
}

func customerTopic(customerID string) string {
	return "customer_" + customerID
}

func statusBody(status models.RequestStatus) string {
	switch status {
	case models.StatusRequested:
		return "Your service request has been received."
	case models.StatusApproved:
		return "Your dealership has approved the booking."
	case models.StatusInProgress:
		return "Work on your vehicle has started."
	case models.StatusCompleted:
		return "Your vehicle is ready for pickup."
	default:
		return "Your service request was updated."
	}
}

// NoopNotificationService drops all notifications. Used when Firebase
// credentials are not configured.
type NoopNotificationService struct{}

func (NoopNotificationService) NotifyBookingStatus(context.Context, *models.ServiceRequest) error {
	return nil
}

func (NoopNotificationService) NotifyPendingReminder(context.Context, *models.ServiceRequest) error {
	return nil
}

// FromFirebase returns an FCM-backed service when the global client is
// initialized and a silent no-op otherwise.
func FromFirebase(logger *zap.Logger) Service {
	if utils.FCMClient == nil {
		if logger != nil {
			logger.Info("FCM client not configured; booking notifications disabled")
		}
		return NoopNotificationService{}
	}
	svc, err := NewFCMNotificationService(utils.FCMClient, logger)
	if err != nil {
		return NoopNotificationService{}
	}
	return svc
}
