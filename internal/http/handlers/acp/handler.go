package acp

import (
	"strings"

	protocol "github.com/dujiao-next/checkout/internal/acp"
	"github.com/dujiao-next/checkout/internal/http/handlers/shared"
	"github.com/dujiao-next/checkout/internal/http/response"
	"github.com/dujiao-next/checkout/internal/provider"
	"github.com/dujiao-next/checkout/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 结账会话接口处理器
type Handler struct {
	*provider.Container
}

// New 创建结账会话处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// CreateSession 创建结账会话
func (h *Handler) CreateSession(c *gin.Context) {
	var req protocol.CreateRequest
	if appErr := protocol.Bind(c, &req); appErr != nil {
		shared.RespondError(c, appErr)
		return
	}

	result, err := h.CheckoutService.Create(c.Request.Context(), protocol.ToCreateInput(req))
	if err != nil {
		shared.RespondError(c, protocol.ServiceError(err))
		return
	}
	if appErr := protocol.ResultError(result.Kind, result.Rejection); appErr != nil {
		shared.RespondError(c, appErr)
		return
	}
	h.respondSession(c, result.Session, true)
}

// GetSession 查询结账会话
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.CheckoutService.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		shared.RespondError(c, protocol.ServiceError(err))
		return
	}
	if session == nil {
		shared.RespondError(c, protocol.ResultError(service.KindNotFound, nil))
		return
	}
	h.respondSession(c, session, false)
}

// UpdateSession 更新结账会话
func (h *Handler) UpdateSession(c *gin.Context) {
	var req protocol.UpdateRequest
	if appErr := protocol.Bind(c, &req); appErr != nil {
		shared.RespondError(c, appErr)
		return
	}

	result, err := h.CheckoutService.Update(c.Request.Context(), sessionID(c), protocol.ToMutation(req))
	if err != nil {
		shared.RespondError(c, protocol.ServiceError(err))
		return
	}
	if appErr := protocol.ResultError(result.Kind, result.Rejection); appErr != nil {
		shared.RespondError(c, appErr)
		return
	}
	h.respondSession(c, result.Session, false)
}

// CompleteSession 完成结账会话并发起扣款
func (h *Handler) CompleteSession(c *gin.Context) {
	var req protocol.CompleteRequest
	if appErr := protocol.Bind(c, &req); appErr != nil {
		shared.RespondError(c, appErr)
		return
	}

	result, err := h.CheckoutService.Complete(c.Request.Context(), sessionID(c), protocol.ToCompleteInput(req))
	if err != nil {
		shared.RespondError(c, protocol.ServiceError(err))
		return
	}
	if appErr := protocol.ResultError(result.Kind, nil); appErr != nil {
		shared.RespondError(c, appErr)
		return
	}
	body, err := h.Mapper.CompletedSession(result)
	if err != nil {
		shared.RespondError(c, response.Internal(err))
		return
	}
	shared.RequestLog(c).Infow("checkout_session_completed",
		"checkout_session_id", body.ID,
		"payment_outcome", result.Payment.Kind,
	)
	response.Success(c, body)
}

// CancelSession 取消结账会话
func (h *Handler) CancelSession(c *gin.Context) {
	result, err := h.CheckoutService.Cancel(c.Request.Context(), sessionID(c))
	if err != nil {
		shared.RespondError(c, protocol.ServiceError(err))
		return
	}
	if appErr := protocol.ResultError(result.Kind, nil); appErr != nil {
		shared.RespondError(c, appErr)
		return
	}
	h.respondSession(c, result.Session, false)
}

func (h *Handler) respondSession(c *gin.Context, session *service.Session, created bool) {
	body, err := h.Mapper.Session(session)
	if err != nil {
		shared.RespondError(c, response.Internal(err))
		return
	}
	if created {
		response.Created(c, body)
		return
	}
	response.Success(c, body)
}

func sessionID(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}
