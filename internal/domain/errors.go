package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")

	// ErrInconsistentTotal: el total declarado del movimiento no coincide con la
	// suma de sus líneas. Se detecta antes de abrir la transacción; no hay escrituras.
	ErrInconsistentTotal = errors.New("total declarado inconsistente con las líneas")

	// ErrAlreadyCanceled: el movimiento ya fue cancelado. No es un error grave para
	// el caller: señala "nada que hacer" y protege contra la doble reversión.
	ErrAlreadyCanceled = errors.New("movimiento ya cancelado")

	// ErrTransactionConflict: la BD abortó la transacción o no pudo adquirir el
	// bloqueo a tiempo. Reintentable por el caller; sin efectos parciales visibles.
	ErrTransactionConflict = errors.New("conflicto de transacción, reintentar")
)

// InconsistentTotalError detalla la diferencia entre el total declarado y la
// suma de las líneas, para que la UI pueda resaltar el monto en conflicto.
type InconsistentTotalError struct {
	Declared decimal.Decimal
	Sum      decimal.Decimal
}

func (e *InconsistentTotalError) Error() string {
	return fmt.Sprintf("total declarado %s no coincide con la suma de líneas %s (diferencia %s)",
		e.Declared, e.Sum, e.Declared.Sub(e.Sum))
}

// Unwrap permite errors.Is(err, ErrInconsistentTotal).
func (e *InconsistentTotalError) Unwrap() error { return ErrInconsistentTotal }

// InvalidLineError identifica la línea ofensora de un movimiento rechazado
// (índice base cero) y el motivo.
type InvalidLineError struct {
	Index  int
	Reason string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("línea %d inválida: %s", e.Index, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *InvalidLineError) Unwrap() error { return ErrInvalidInput }
