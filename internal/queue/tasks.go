package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dujiao-next/checkout/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCaptureReconcile 扣款对账任务（轮询超时后延迟重查）
	TaskCaptureReconcile = constants.TaskCaptureReconcile
)

// CaptureReconcilePayload 扣款对账任务载荷
type CaptureReconcilePayload struct {
	OrderID   string `json:"order_id"`
	CartID    string `json:"cart_id"`
	CaptureID string `json:"capture_id"`
	Attempt   int    `json:"attempt"`
}

// NewCaptureReconcileTask 创建扣款对账任务
func NewCaptureReconcileTask(payload CaptureReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCaptureReconcile, body), nil
}

// ParseCaptureReconcilePayload 解析扣款对账任务载荷
func ParseCaptureReconcilePayload(body []byte) (CaptureReconcilePayload, error) {
	var payload CaptureReconcilePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, err
	}
	if strings.TrimSpace(payload.OrderID) == "" || strings.TrimSpace(payload.CaptureID) == "" {
		return payload, fmt.Errorf("capture reconcile payload requires order_id and capture_id")
	}
	return payload, nil
}
