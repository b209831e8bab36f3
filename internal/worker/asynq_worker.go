package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/dujiao-next/checkout/internal/logger"
	"github.com/dujiao-next/checkout/internal/provider"
	"github.com/dujiao-next/checkout/internal/queue"
	"github.com/dujiao-next/checkout/internal/service"

	"github.com/hibiken/asynq"
)

type captureReconciler interface {
	Reconcile(ctx context.Context, payload queue.CaptureReconcilePayload) error
}

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	reconciler captureReconciler
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{Container: c}
	if c != nil && c.PaymentService != nil {
		consumer.reconciler = c.PaymentService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCaptureReconcile, c.handleCaptureReconcile)
}

func (c *Consumer) handleCaptureReconcile(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_capture_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCaptureReconcilePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_capture_reconcile_invalid_payload", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if c.reconciler == nil {
		logger.Warnw("worker_capture_reconcile_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}

	taskID, _ := asynq.GetTaskID(ctx)
	log := logger.SW("task_id", taskID, "task_type", task.Type())
	ctx = logger.WithContext(ctx, log)

	if err := c.reconciler.Reconcile(ctx, payload); err != nil {
		if errors.Is(err, service.ErrCaptureUnavailable) {
			log.Errorw("worker_capture_reconcile_client_unavailable", "order_id", payload.OrderID)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		log.Warnw("worker_capture_reconcile_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}
