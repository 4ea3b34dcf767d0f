package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/response"
)

const CtxUserIDKey = "userID"

// TokenDecoder verifies a bearer token. application.Service satisfies it.
type TokenDecoder interface {
	DecodeToken(token string) (*helpers.AuthToken, error)
}

// Auth admits requests carrying a valid "Authorization: Bearer <token>"
// header and stores the token's user id under CtxUserIDKey.
// A missing, malformed, expired or badly signed token yields 401; a valid
// token without a user id yields 403. Admission does not re-check that the
// user still exists.
func Auth(tokens TokenDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "unauthenticated")
			return
		}
		decoded, err := tokens.DecodeToken(token)
		if err != nil || decoded == nil {
			response.Abort(c, http.StatusUnauthorized, "unauthenticated")
			return
		}
		if decoded.UserID == "" {
			response.Abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Set(CtxUserIDKey, decoded.UserID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
