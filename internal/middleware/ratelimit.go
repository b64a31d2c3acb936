package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/codecat-lms/codecat/config"
	"github.com/codecat-lms/codecat/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const rateLimitKeyPrefix = "ratelimit:submit:"

// SubmissionRateLimit is a fixed-window limiter on answer submissions, keyed
// per student (per IP for unauthenticated requests). A nil client or a zero
// MaxRequests disables it; redis outages fail open.
func SubmissionRateLimit(client *redis.Client, cfg *config.Config) gin.HandlerFunc {
	if client == nil || cfg.RateLimit.MaxRequests <= 0 {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	window := time.Duration(cfg.RateLimit.WindowSec) * time.Second

	return func(ctx *gin.Context) {
		key := rateLimitKeyPrefix + ctx.ClientIP()
		if student, ok := StudentFrom(ctx); ok {
			key = fmt.Sprintf("%sstudent:%d", rateLimitKeyPrefix, student.StudentID)
		}

		count, err := client.Incr(ctx.Request.Context(), key).Result()
		if err != nil {
			log.Warn().Err(err).Msg("Rate limiter unavailable, allowing request")
			ctx.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx.Request.Context(), key, window)
		}
		if count > int64(cfg.RateLimit.MaxRequests) {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Message: "Too many submissions, slow down",
			})
			return
		}
		ctx.Next()
	}
}
