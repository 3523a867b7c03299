package helper

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"ghg_inventory_backend/internals/helpers/logger"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

// IsUniqueViolation recognises duplicate-key errors from pgx, lib/pq, gorm's
// translated error, and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if code, _ := pgCode(err); code == pgUniqueViolation {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// JsonServiceError writes the envelope for an error coming out of a service.
func JsonServiceError(c *fiber.Ctx, err error) error {
	var fe *FieldError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &fe):
		if fe.Field != "" {
			return JsonValidationError(c, map[string][]string{fe.Field: {fe.Message}})
		}
		return JsonError(c, fiber.StatusBadRequest, fe.Message)
	case errors.Is(err, ErrInvalidArgument):
		return JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrConflict):
		return JsonError(c, fiber.StatusConflict, err.Error())
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return JsonError(c, fiberErr.Code, fiberErr.Message)
	}

	switch code, constraint := pgCode(err); code {
	case pgUniqueViolation:
		return JsonError(c, fiber.StatusConflict, "duplicate value violates "+constraint)
	case pgForeignKeyViolation:
		return JsonError(c, fiber.StatusBadRequest, "referenced row does not exist")
	case pgCheckViolation:
		return JsonError(c, fiber.StatusBadRequest, "value violates "+constraint)
	}
	if IsUniqueViolation(err) {
		return JsonError(c, fiber.StatusConflict, "duplicate value")
	}

	logger.Sugar.Errorw("unhandled service error", "path", c.Path(), "error", err)
	return JsonError(c, fiber.StatusInternalServerError, "")
}
