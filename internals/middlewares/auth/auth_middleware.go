package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helper "ghg_inventory_backend/internals/helpers"
	"ghg_inventory_backend/internals/helpers/logger"
)

const expirySkew = 30 * time.Second

// AuthMiddleware verifies an HS256 access token from the Authorization header
// (or the access_token cookie) and stores user_id and userRole in Locals.
func AuthMiddleware(secret string) fiber.Handler {
	log := logger.Named("auth")

	return func(c *fiber.Ctx) error {
		if secret == "" {
			log.Error("JWT secret is empty")
			return helper.JsonError(c, fiber.StatusInternalServerError, "missing JWT secret")
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{
			SkipClaimsValidation: true,
			ValidMethods:         []string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()},
		}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}); err != nil {
			log.Debugw("token parse failed", "error", err)
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - token parse error")
		}

		if err := validateTokenExpiry(claims, expirySkew); err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - token expired")
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "unauthorized - invalid or missing user id")
		}
		c.Locals(helper.LocUserID, userID.String())
		c.Locals(helper.LocUserRole, extractRole(claims))

		return c.Next()
	}
}
