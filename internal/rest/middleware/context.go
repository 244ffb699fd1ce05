package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gudcity/loyalty/internal/domain/account"
	ierr "github.com/gudcity/loyalty/internal/errors"
	"github.com/gudcity/loyalty/internal/logger"
	"github.com/gudcity/loyalty/internal/types"
)

// RequestContext stamps tenant, actor and request id onto the request
// context. The identity headers are trusted: authentication happens at
// the gateway in front of this service, this layer only resolves the
// already-authenticated account into a permission actor.
func RequestContext(accountRepo account.Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tenantID := c.GetHeader(types.HeaderTenantID)
		if tenantID == "" {
			tenantID = types.DefaultTenantID
		}
		ctx = types.SetTenantID(ctx, tenantID)

		requestID := c.GetHeader(types.HeaderRequestID)
		if requestID == "" {
			requestID = types.GenerateUUID()
		}
		ctx = types.SetRequestID(ctx, requestID)
		c.Header(types.HeaderRequestID, requestID)

		if actorID := c.GetHeader(types.HeaderActorID); actorID != "" {
			acc, err := accountRepo.Get(ctx, actorID)
			if err != nil {
				c.Error(ierr.WithError(err).
					WithHint("Unknown account").
					Mark(ierr.ErrPermissionDenied))
				c.Abort()
				return
			}

			if acc.Status != types.StatusActive {
				log.Warnw("request from non-active account",
					"account_id", acc.ID, "status", acc.Status)
				c.Error(ierr.NewError("account is not active").
					WithHint("This account has been deactivated").
					Mark(ierr.ErrPermissionDenied))
				c.Abort()
				return
			}

			ctx = types.SetActorID(ctx, acc.ID)
			ctx = types.SetActor(ctx, acc.Actor())
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
