package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	apierrors "github.com/yukikurage/taskz/internal/errors"
	"github.com/yukikurage/taskz/internal/logger"
	"go.uber.org/zap"
)

// NewIPRateLimiter limits requests per client IP using an in-memory store.
// rateFormatted uses the limiter format ("20-M", "100-H"); empty disables it.
func NewIPRateLimiter(rateFormatted string, log *zap.Logger) (gin.HandlerFunc, error) {
	if rateFormatted == "" {
		return func(c *gin.Context) { c.Next() }, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(memory.NewStore(), rate)
	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.FromGin(c, log).Warn("Rate limit reached", zap.String("ip", c.ClientIP()))
			apierrors.TooManyRequests(c)
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.FromGin(c, log).Error("Rate limiter failed", zap.Error(err))
			apierrors.InternalError(c, "")
		}),
	), nil
}
