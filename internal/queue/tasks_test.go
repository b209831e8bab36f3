package queue

import (
	"testing"

	"github.com/dujiao-next/checkout/internal/config"
)

func TestCaptureReconcileTaskPayload(t *testing.T) {
	task, err := NewCaptureReconcileTask(CaptureReconcilePayload{OrderID: "order_1", CartID: "cart_1", CaptureID: "cap_1", Attempt: 2})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskCaptureReconcile {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseCaptureReconcilePayload(task.Payload())
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.OrderID != "order_1" || payload.CaptureID != "cap_1" || payload.Attempt != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestParseCaptureReconcilePayloadRequiresIDs(t *testing.T) {
	if _, err := ParseCaptureReconcilePayload([]byte(`{"order_id":"order_1"}`)); err == nil {
		t.Fatalf("expected missing capture id error")
	}
}

func TestDisabledClientRejectsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("expected disabled client")
	}
	if err := client.EnqueueCaptureReconcile(CaptureReconcilePayload{OrderID: "order_1", CaptureID: "cap_1"}, 0); err != ErrQueueDisabled {
		t.Fatalf("expected queue disabled, got %v", err)
	}
}
