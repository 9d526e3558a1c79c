package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskpulse-dev/taskpulse/internal/types"
	"github.com/taskpulse-dev/taskpulse/internal/utils"
)

// TokenVerifier turns a bearer token into the identity it asserts.
type TokenVerifier interface {
	VerifyJWT(token string) (types.Identity, error)
}

const (
	msgUnauthorized = "Unauthorized"
	msgInvalidToken = "Invalid token"
)

// AuthMiddleware requires an "Authorization: Bearer <token>" header. The
// identity is taken from the token as-is and never reloaded from the store.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authenticate(ctx, verifier, bearerToken(ctx.GetHeader("Authorization")))
	}
}

// WebSocketAuth also accepts the token as a "token" query parameter, since
// browsers cannot set headers on websocket handshakes.
func WebSocketAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx.GetHeader("Authorization"))
		if token == "" {
			token = strings.TrimSpace(ctx.Query("token"))
		}
		authenticate(ctx, verifier, token)
	}
}

func authenticate(ctx *gin.Context, verifier TokenVerifier, token string) {
	if token == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgUnauthorized})
		return
	}

	identity, err := verifier.VerifyJWT(token)

	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": msgInvalidToken})
		return
	}

	utils.SetCurrentIdentity(ctx, identity)
	ctx.Next()
}

// bearerToken strips a case-insensitive "Bearer" scheme. A header carrying
// only the scheme yields "", the same as no header at all.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	const scheme = "Bearer"
	if len(header) >= len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		rest := header[len(scheme):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return strings.TrimSpace(rest)
		}
	}
	return header
}
