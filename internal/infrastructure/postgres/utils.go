package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/abastecimiento-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation referencia a una fila inexistente (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isInvalidID invalid_text_representation (22P02): un id que no es UUID no identifica ninguna fila.
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// isTransient serialization_failure (40001) y deadlock_detected (40P01): la tx completa puede reintentarse.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// classify traduce errores de PostgreSQL a los sentinelas del dominio, conservando la causa.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrDuplicate, err)
	case isForeignKeyViolation(err), isInvalidID(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
	case isTransient(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
