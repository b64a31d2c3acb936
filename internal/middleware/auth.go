package middleware

import (
	"net/http"
	"strings"

	"github.com/codecat-lms/codecat/internal/dto"
	"github.com/codecat-lms/codecat/internal/identity"
	"github.com/codecat-lms/codecat/internal/service"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// Authenticate validates the bearer token and stores the decoded identity in
// the request context. Role checks happen in the Require* wrappers.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing bearer token"})
			return
		}
		ident, err := authService.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid or expired token"})
			return
		}
		ctx.Set(identityKey, ident)
		ctx.Next()
	}
}

// RequireStudent aborts unless the caller holds the student capability.
func RequireStudent() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := StudentFrom(ctx); !ok {
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Message: "Student account required"})
			return
		}
		ctx.Next()
	}
}

// RequireInstructor aborts unless the caller holds the instructor capability.
func RequireInstructor() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := InstructorFrom(ctx); !ok {
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Message: "Instructor account required"})
			return
		}
		ctx.Next()
	}
}

// StudentFrom extracts the student capability from the request context.
func StudentFrom(ctx *gin.Context) (identity.StudentIdentity, bool) {
	val, ok := ctx.Get(identityKey)
	if !ok {
		return identity.StudentIdentity{}, false
	}
	ident, ok := val.(identity.Identity)
	if !ok {
		return identity.StudentIdentity{}, false
	}
	return ident.Student()
}

// InstructorFrom extracts the instructor capability from the request context.
func InstructorFrom(ctx *gin.Context) (identity.InstructorIdentity, bool) {
	val, ok := ctx.Get(identityKey)
	if !ok {
		return identity.InstructorIdentity{}, false
	}
	ident, ok := val.(identity.Identity)
	if !ok {
		return identity.InstructorIdentity{}, false
	}
	return ident.Instructor()
}
