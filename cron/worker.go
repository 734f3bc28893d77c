package cron

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"autoserve/config"
	requestRepo "autoserve/database/repository/servicerequest"
	"autoserve/models"
	"autoserve/services/notification"
	"autoserve/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitReminderWorker runs the asynq worker in the background. It consumes
// pending-request reminders and nudges customers whose bookings are still
// awaiting dealership confirmation.
func InitReminderWorker(repo requestRepo.Repository, notifSvc notification.Service, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePendingRequestReminder, handleReminderTask(repo, notifSvc, logger))

	go func() {
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("Reminder worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Reminder worker exhausted retries")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// handleReminderTask re-checks the request when the reminder fires. Requests
// that a dealership already moved past "requested" are dropped silently.
func handleReminderTask(repo requestRepo.Repository, notifSvc notification.Service, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.PendingReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return err
		}

		req, err := repo.GetByID(ctx, p.RequestID)
		if err != nil {
			if errors.Is(err, requestRepo.ErrNotFound) {
				return nil
			}
			return err
		}
		if req.Status != models.StatusRequested {
			return nil
		}

		logger.Info("Service request still unconfirmed, nudging customer",
			zap.String("requestID", p.RequestID), zap.String("customerID", p.CustomerID))
		if err := notifSvc.NotifyPendingReminder(ctx, req); err != nil {
			logger.Error("Failed to send pending reminder", zap.String("requestID", p.RequestID), zap.Error(err))
		}
		return nil
	}
}
