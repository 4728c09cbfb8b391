package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gin-clean-starter/internal/handler/dto/request"
	"gin-clean-starter/internal/handler/dto/response"
	"gin-clean-starter/internal/handler/httperr"
	"gin-clean-starter/internal/handler/middleware"
	"gin-clean-starter/internal/pkg/clientip"
	"gin-clean-starter/internal/usecase/commands"
	"gin-clean-starter/internal/usecase/queries"
)

const maxIdempotencyKeyLen = 255

type VoucherHandler struct {
	claimCommands  commands.ClaimCommands
	refundCommands commands.RefundCommands
	voucherQueries queries.VoucherQueries
}

func NewVoucherHandler(claimCommands commands.ClaimCommands, refundCommands commands.RefundCommands, voucherQueries queries.VoucherQueries) *VoucherHandler {
	return &VoucherHandler{
		claimCommands:  claimCommands,
		refundCommands: refundCommands,
		voucherQueries: voucherQueries,
	}
}

// @Summary Claim a voucher code
// @Tags vouchers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ClaimRequest true "Claim request"
// @Success 200 {object} response.ClaimResponse
// @Success 202 {object} response.ClaimResponse
// @Router /vouchers/claim [post]
func (h *VoucherHandler) Claim(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var req request.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	requestID := idempotencyKey(c)

	outcome, rl, err := h.claimCommands.Claim(c.Request.Context(), commands.ClaimInput{
		UserID:    userID,
		Code:      req.VoucherCode,
		IP:        clientip.FromRequest(c.Request),
		UserAgent: c.Request.UserAgent(),
		DeviceID:  req.DeviceID,
		RequestID: requestID,
	})
	setRateLimitHeaders(c, rl)

	if err != nil {
		httperr.AbortWithClaimErr(c, err)
		return
	}

	// Queued (non-premium) claims answer with 202: the commit is still
	// pending in the worker pool, not "success:true" as if it were done.
	status := http.StatusOK
	if outcome.Status == "pending" {
		status = http.StatusAccepted
	}
	c.JSON(status, response.NewClaimResponse(outcome))
}

// @Summary Get claim status
// @Tags vouchers
// @Security BearerAuth
// @Produce json
// @Param requestId path string true "Request ID"
// @Success 200 {object} response.ClaimStatusResponse
// @Failure 404 {object} httperr.Response
// @Router /vouchers/claim/{requestId} [get]
func (h *VoucherHandler) GetClaimStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	requestID := c.Param("requestId")
	view, err := h.voucherQueries.GetClaimStatus(c.Request.Context(), userID, requestID)
	if err != nil {
		if errors.Is(err, queries.ErrClaimNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "claim not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, response.NewClaimStatusResponse(view))
}

// @Summary Claim history
// @Tags vouchers
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.HistoryResponse
// @Router /vouchers/history [get]
func (h *VoucherHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	limit := int32(queries.MaxListLimit)
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			limit = int32(n)
		}
	}
	var offset int32
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			offset = int32(n)
		}
	}

	views, err := h.voucherQueries.ListHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, response.NewHistoryResponse(views))
}

// @Summary Refund a claim
// @Tags vouchers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.RefundRequest true "Refund request"
// @Success 200
// @Router /vouchers/refund [post]
func (h *VoucherHandler) Refund(c *gin.Context) {
	var req request.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	claimID, err := uuid.Parse(req.ClaimID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claimId"})
		return
	}

	var adminID *uuid.UUID
	if uid, ok := middleware.GetUserID(c); ok {
		adminID = &uid
	}

	if err := h.refundCommands.Refund(c.Request.Context(), commands.RefundInput{
		ClaimID: claimID,
		Reason:  req.Reason,
		AdminID: adminID,
	}); err != nil {
		httperr.AbortWithClaimErr(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// @Summary Current user's voucher summary
// @Tags vouchers
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.UserSummaryResponse
// @Router /vouchers/user/summary [get]
func (h *VoucherHandler) UserSummary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	view, err := h.voucherQueries.UserSummary(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, queries.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, response.NewUserSummaryResponse(view))
}

// @Summary Claim queue metrics
// @Tags vouchers
// @Produce json
// @Success 200 {object} response.QueueMetricsResponse
// @Router /vouchers/queue/metrics [get]
func (h *VoucherHandler) QueueMetrics(c *gin.Context) {
	view, err := h.voucherQueries.QueueMetrics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, response.NewQueueMetricsResponse(view))
}

// idempotencyKey reads Idempotency-Key, generating one when absent, per
// spec.md §6: opaque, <=255 chars, cached for 1h at the coordinator.
func idempotencyKey(c *gin.Context) string {
	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		key = uuid.NewString()
	}
	if len(key) > maxIdempotencyKeyLen {
		key = key[:maxIdempotencyKeyLen]
	}
	return key
}

func setRateLimitHeaders(c *gin.Context, rl commands.RateLimitInfo) {
	if !rl.Present {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(rl.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(rl.ResetAt.Unix(), 10))
	if rl.Remaining <= 0 {
		retryAfter := int(time.Until(rl.ResetAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
	}
}
