package acp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dujiao-next/checkout/internal/http/response"
	"github.com/dujiao-next/checkout/internal/service"
)

// ResultError 将核心操作结果映射为协议错误，成功结果返回 nil
func ResultError(kind service.ResultKind, rejection *service.Rejection) *response.AppError {
	switch kind {
	case service.KindUpdated, service.KindCompleted, service.KindCancelled:
		return nil
	case service.KindNotFound:
		return response.NotFound("Checkout session not found")
	case service.KindCompletedCannotUpdate:
		return response.NotIdempotent("Checkout session cannot be updated because it has been completed")
	case service.KindCancelledCannotUpdate:
		return response.NotIdempotent("Checkout session cannot be updated because it has been cancelled")
	case service.KindCancelledCannotComplete:
		return response.NotIdempotent("Checkout session cannot be completed because it has been cancelled")
	case service.KindAlreadyCompleted:
		return response.NotIdempotent("Checkout session has already been completed")
	case service.KindCompletedCannotCancel:
		return response.NotIdempotent("Checkout session cannot be cancelled because it has already been completed")
	case service.KindAlreadyCancelled:
		return response.NotIdempotent("Checkout session has already been cancelled")
	case service.KindNotReadyForCompletion:
		return response.InvalidPayload("Checkout session is not ready for completion, please provide the missing information", "$.messages")
	case service.KindInvalidProductID:
		if rejection == nil {
			rejection = &service.Rejection{}
		}
		return response.InvalidPayload(
			fmt.Sprintf("Product '%s' not found", rejection.ID),
			fmt.Sprintf("$.items[%d].id", rejection.ItemIndex),
		)
	case service.KindInvalidFulfillmentChoiceID:
		id := ""
		if rejection != nil {
			id = rejection.ID
		}
		return response.InvalidPayload(fmt.Sprintf("Fulfillment choice '%s' is invalid", id), "$.fulfillment_option_id")
	default:
		return response.Internal(fmt.Errorf("unhandled result kind %q", kind))
	}
}

// ServiceError 将服务层错误映射为协议错误
func ServiceError(err error) *response.AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrCartBusy):
		return &response.AppError{
			Status:  http.StatusConflict,
			Type:    response.TypeInvalidRequest,
			Code:    response.CodeRequestNotIdempotent,
			Message: "Checkout session is being modified by another request",
			Err:     err,
		}
	case errors.Is(err, service.ErrInvalidInput):
		appErr := response.InvalidPayload("items must contain at least 1 item(s)", "$.items")
		appErr.Err = err
		return appErr
	default:
		return response.Internal(err)
	}
}
