package service

import "errors"

var (
	ErrCartBusy           = errors.New("cart is being modified by another request")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCaptureUnavailable = errors.New("payment capture client unavailable")
)
