package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gin-clean-starter/internal/pkg/claimerr"
)

// AbortWithClaimErr is the one place claimerr.Kind turns into an HTTP
// status and the stable code carried in detail.code, per claimerr's
// package doc.
func AbortWithClaimErr(c *gin.Context, err error) {
	var ce *claimerr.Error
	if !errors.As(err, &ce) {
		AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", gin.H{"code": string(claimerr.KindInternal)})
		return
	}

	switch ce.Kind {
	case claimerr.KindLimitExceeded:
		AbortWithError(c, http.StatusForbidden, err, "claim limit reached", gin.H{"code": string(ce.Kind)})
	case claimerr.KindRateLimited:
		AbortWithError(c, http.StatusTooManyRequests, err, "rate limit exceeded", gin.H{"code": string(ce.Kind)})
	case claimerr.KindInvalidVoucher:
		AbortWithError(c, http.StatusBadRequest, err, "invalid voucher", gin.H{"code": string(ce.Kind), "reason": ce.Reason})
	default:
		AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", gin.H{"code": string(claimerr.KindInternal)})
	}
}
