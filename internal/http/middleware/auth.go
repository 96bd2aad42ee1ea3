package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-service/internal/auth"
	"fleet-service/internal/model"
)

const principalKey = "fleet.principal"

var (
	errHeaderMissing   = errors.New("authorization header missing")
	errHeaderMalformed = errors.New("invalid authorization header")
)

// Auth admits any request carrying a bearer token signed with the service
// secret. There are no roles: every valid token is an operator.
func Auth(parser *auth.Parser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		claims, err := parser.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(principalKey, model.Principal{UserID: claims.UserID, Name: claims.Name})
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errHeaderMissing
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errHeaderMalformed
	}
	return token, nil
}

// PrincipalFrom returns the operator stored by Auth.
func PrincipalFrom(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}
