package arcpay

import (
	"context"
	"time"

	"github.com/dujiao-next/checkout/internal/logger"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultPollTimeout  = 60 * time.Second
)

// PollOptions 轮询配置，Timeout<=0 表示不轮询。
type PollOptions struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultPollOptions 默认每 2 秒轮询一次，最长 60 秒
func DefaultPollOptions() PollOptions {
	return PollOptions{Interval: defaultPollInterval, Timeout: defaultPollTimeout}
}

// CaptureResult 扣款结果。TimedOut 为 true 时 Capture 是最后一次观察到的非终态结果。
// Interrupted 表示轮询因上下文结束或查询失败提前停止，扣款仍需对账。
type CaptureResult struct {
	Capture     *PaymentCapture
	TimedOut    bool
	Interrupted bool
	Polls       int
}

// Capture 创建扣款并在非终态时轮询直到终态或超时。
func (c *Client) Capture(ctx context.Context, req CaptureRequest, idempotencyKey string, opts PollOptions) (*CaptureResult, error) {
	capture, err := c.CreateCapture(ctx, req, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if capture.IsTerminal() || opts.Timeout <= 0 {
		return &CaptureResult{Capture: capture}, nil
	}
	return c.poll(ctx, capture, opts)
}

// Poll 轮询已存在的扣款。
func (c *Client) Poll(ctx context.Context, captureID string, opts PollOptions) (*CaptureResult, error) {
	capture, err := c.GetCapture(ctx, captureID)
	if err != nil {
		return nil, err
	}
	if capture.IsTerminal() || opts.Timeout <= 0 {
		return &CaptureResult{Capture: capture, Polls: 1}, nil
	}
	result, err := c.poll(ctx, capture, opts)
	if result != nil {
		result.Polls++
	}
	return result, err
}

func (c *Client) poll(ctx context.Context, last *PaymentCapture, opts PollOptions) (*CaptureResult, error) {
	if opts.Interval <= 0 {
		opts.Interval = defaultPollInterval
	}
	deadline := time.Now().Add(opts.Timeout)
	polls := 0

	for {
		wait := opts.Interval
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
		if wait <= 0 {
			logger.Warnw("arcpay_capture_poll_timeout",
				"capture_id", last.ID,
				"status", last.Status,
				"polls", polls,
			)
			return &CaptureResult{Capture: last, TimedOut: true, Polls: polls}, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return interrupted(last, polls, ctx.Err()), nil
		case <-timer.C:
		}

		capture, err := c.GetCapture(ctx, last.ID)
		polls++
		if err != nil {
			return interrupted(last, polls, err), nil
		}
		last = capture
		if last.IsTerminal() {
			return &CaptureResult{Capture: last, Polls: polls}, nil
		}
	}
}

// interrupted 扣款已创建，停止轮询时保留最后一次观察到的状态
func interrupted(last *PaymentCapture, polls int, cause error) *CaptureResult {
	logger.Warnw("arcpay_capture_poll_interrupted",
		"capture_id", last.ID,
		"status", last.Status,
		"polls", polls,
		"error", cause,
	)
	return &CaptureResult{Capture: last, TimedOut: true, Interrupted: true, Polls: polls}
}
