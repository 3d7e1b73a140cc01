package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrPersistence       = errors.New("fallo de persistencia")
	ErrTransient         = errors.New("fallo transitorio de persistencia")
	ErrInconsistentStock = errors.New("stock inconsistente con el libro de movimientos")
	ErrRepairRunning     = fmt.Errorf("%w: reparación en curso", ErrConflict)
)

// ErrorKind clasifica los errores que el libro devuelve a sus llamadores.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindNotFound    ErrorKind = "not_found"
	KindPersistence ErrorKind = "persistence"
	KindConsistency ErrorKind = "consistency"
)

// LedgerError error tipado del libro de abastecimiento y stock.
// Op identifica la operación (ej. "delivery.create"); Err es la causa, si existe.
type LedgerError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *LedgerError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, domain.ErrInvalidInput) y equivalentes según el tipo.
func (e *LedgerError) Is(target error) bool {
	switch e.Kind {
	case KindValidation:
		return target == ErrInvalidInput
	case KindNotFound:
		return target == ErrNotFound
	case KindPersistence:
		return target == ErrPersistence
	case KindConsistency:
		return target == ErrInconsistentStock
	}
	return false
}

// NewValidationError campos faltantes o inválidos; el llamador debe corregir la entrada.
func NewValidationError(op, msg string) *LedgerError {
	return &LedgerError{Kind: KindValidation, Op: op, Message: msg}
}

// NewNotFoundError el pedido, material o entrega referenciado no existe.
func NewNotFoundError(op, msg string) *LedgerError {
	return &LedgerError{Kind: KindNotFound, Op: op, Message: msg}
}

// NewPersistenceError la escritura en el almacén falló; la operación lógica completa puede reintentarse.
func NewPersistenceError(op string, err error) *LedgerError {
	return &LedgerError{Kind: KindPersistence, Op: op, Message: "no se pudo completar la escritura", Err: err}
}

// NewConsistencyError el saldo cacheado difiere de la suma de movimientos.
func NewConsistencyError(op, msg string) *LedgerError {
	return &LedgerError{Kind: KindConsistency, Op: op, Message: msg}
}

// AsLedgerError devuelve el LedgerError contenido en err, si lo hay.
func AsLedgerError(err error) (*LedgerError, bool) {
	var le *LedgerError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
