package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hmkim/ordertrack/pkg/models"
)

// userFromToken recovers the identity embedded in the bearer token's
// claims without a network round trip. The parse is unverified: the client
// is not the trust boundary, the store re-checks the signature on every
// call. An expired token is treated as no identity.
func userFromToken(token string) (*models.User, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse credential: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("credential has no claims")
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		if exp.Before(time.Now()) {
			return nil, fmt.Errorf("credential is expired")
		}
	}

	sub, _ := claims.GetSubject()
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("credential subject %q is not a user id", sub)
	}

	user := &models.User{ID: id}
	if v, ok := claims["username"].(string); ok {
		user.Username = v
	}
	if v, ok := claims["name"].(string); ok {
		user.Name = v
	}
	if v, ok := claims["role"].(string); ok {
		user.Role = models.Role(v)
	}
	return user, nil
}
