package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

/* ======== Extractors ======== */

func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", errors.New("unauthorized - no token provided")
	}

	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", errors.New("unauthorized - invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", errors.New("unauthorized - empty token")
	}
	return tok, nil
}

func validateTokenExpiry(claims jwt.MapClaims, skew time.Duration) error {
	expVal, ok := claims["exp"]
	if !ok {
		return errors.New("token has no exp")
	}

	var expUnix int64
	switch t := expVal.(type) {
	case float64:
		expUnix = int64(t)
	case int64:
		expUnix = t
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return errors.New("invalid exp format")
		}
		expUnix = n
	default:
		n, err := strconv.ParseInt(fmt.Sprintf("%v", t), 10, 64)
		if err != nil {
			return errors.New("invalid exp type")
		}
		expUnix = n
	}

	if time.Now().Add(-skew).Unix() > expUnix {
		return errors.New("token expired")
	}
	return nil
}

// extractUserID reads the user id from id, sub or user_id, in that order.
func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, k := range []string{"id", "sub", "user_id"} {
		s, ok := claims[k].(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid %s: %w", k, err)
		}
		if id == uuid.Nil {
			return uuid.Nil, errors.New("nil user id")
		}
		return id, nil
	}
	return uuid.Nil, errors.New("user id not found in claims")
}

// extractRole returns the "role" claim, or the first entry of "roles".
func extractRole(claims jwt.MapClaims) string {
	if r, ok := claims["role"].(string); ok {
		return strings.ToLower(strings.TrimSpace(r))
	}
	if rs, ok := claims["roles"].([]interface{}); ok {
		for _, v := range rs {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.ToLower(strings.TrimSpace(s))
			}
		}
	}
	return ""
}
