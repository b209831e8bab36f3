package fulfillment

import (
	"time"

	"github.com/dujiao-next/checkout/internal/models"
)

const (
	defaultCutoffHour    = 13
	defaultSendAtHour    = 10
	defaultReceiveAtHour = 18
)

// Window 预计送达区间（含首尾），仅作展示
type Window struct {
	Earliest time.Time
	Latest   time.Time
}

// Estimator 送达时间估算
type Estimator struct {
	Location      *time.Location
	CutoffHour    int
	SendAtHour    int
	ReceiveAtHour int
	Now           func() time.Time
}

// NewEstimator 创建估算器，零值参数使用默认值
func NewEstimator(loc *time.Location, cutoffHour, sendAtHour, receiveAtHour int) *Estimator {
	if loc == nil {
		loc = time.Local
	}
	if cutoffHour <= 0 {
		cutoffHour = defaultCutoffHour
	}
	if sendAtHour <= 0 {
		sendAtHour = defaultSendAtHour
	}
	if receiveAtHour <= 0 {
		receiveAtHour = defaultReceiveAtHour
	}
	return &Estimator{
		Location:      loc,
		CutoffHour:    cutoffHour,
		SendAtHour:    sendAtHour,
		ReceiveAtHour: receiveAtHour,
		Now:           time.Now,
	}
}

// Estimate 计算物流交付的送达区间
func (e *Estimator) Estimate(terms models.ShippingTerms) Window {
	now := e.now()
	ship := ShipDate(now, e.CutoffHour)
	return Window{
		Earliest: atHour(ship.AddDate(0, 0, terms.MinDays), e.SendAtHour),
		Latest:   atHour(ship.AddDate(0, 0, terms.MaxDays), e.ReceiveAtHour),
	}
}

// ShipDate 截单时间之后顺延一天，周六顺延 2 天，周日顺延 1 天
func ShipDate(now time.Time, cutoffHour int) time.Time {
	ship := now
	if now.Hour() > cutoffHour {
		ship = ship.AddDate(0, 0, 1)
	}
	switch ship.Weekday() {
	case time.Saturday:
		ship = ship.AddDate(0, 0, 2)
	case time.Sunday:
		ship = ship.AddDate(0, 0, 1)
	}
	return ship
}

func (e *Estimator) now() time.Time {
	nowFn := e.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}
	return nowFn().In(loc)
}

func atHour(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}
