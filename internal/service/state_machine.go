package service

import (
	"github.com/dujiao-next/checkout/internal/constants"
	"github.com/dujiao-next/checkout/internal/models"
)

// DeriveStatus 由购物车内容推导状态：有行项目、已选交付方式、有交付地址且无阻断消息时为 checkout
// 终态购物车保持原状态。
func DeriveStatus(cart *models.Cart) string {
	if cart == nil {
		return constants.CartStatusShopping
	}
	if cart.IsTerminal() {
		return cart.Status
	}
	if len(cart.Items) > 0 &&
		cart.FulfillmentOptionID != "" &&
		cart.FulfillmentAddress != nil &&
		!cart.Messages.HasBlocking() {
		return constants.CartStatusCheckout
	}
	return constants.CartStatusShopping
}

// guardUpdate 更新前置检查，通过时返回空
func guardUpdate(cart *models.Cart) ResultKind {
	if cart == nil {
		return KindNotFound
	}
	switch cart.Status {
	case constants.CartStatusCompleted:
		return KindCompletedCannotUpdate
	case constants.CartStatusCancelled:
		return KindCancelledCannotUpdate
	}
	return ""
}

// guardComplete 只有 checkout 状态可以完成
func guardComplete(cart *models.Cart) ResultKind {
	if cart == nil {
		return KindNotFound
	}
	switch cart.Status {
	case constants.CartStatusCancelled:
		return KindCancelledCannotComplete
	case constants.CartStatusCompleted:
		return KindAlreadyCompleted
	case constants.CartStatusCheckout:
		return ""
	default:
		return KindNotReadyForCompletion
	}
}

// guardCancel 取消前置检查
func guardCancel(cart *models.Cart) ResultKind {
	if cart == nil {
		return KindNotFound
	}
	switch cart.Status {
	case constants.CartStatusCompleted:
		return KindCompletedCannotCancel
	case constants.CartStatusCancelled:
		return KindAlreadyCancelled
	}
	return ""
}
