package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/p-perotti/gobrewery-sub000/internal/domain"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	domledger "github.com/p-perotti/gobrewery-sub000/internal/domain/ledger"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/repository"
)

// UseCase es el motor transaccional del ledger: registra movimientos y los
// cancela de forma compensada, manteniendo el saldo materializado por clave
// (producto, tamaño). Un solo motor sirve los dos libros (STOCK e INVENTORY),
// parametrizado por kind.
type UseCase struct {
	txRunner TxRunner
	movRepo  repository.MovementRepository
}

// NewUseCase construye el caso de uso. movRepo es la vista fuera-de-transacción
// del log (lecturas previas de CancelMovement); las escrituras siempre pasan
// por los repos que entrega el TxRunner.
func NewUseCase(txRunner TxRunner, movRepo repository.MovementRepository) *UseCase {
	return &UseCase{txRunner: txRunner, movRepo: movRepo}
}

// LineInput una línea del movimiento a registrar.
type LineInput struct {
	ProductID string
	SizeID    *string
	Quantity  decimal.Decimal
}

// MovementInput entrada para RecordMovement.
type MovementInput struct {
	Kind          string
	Direction     string // "E" | "S"
	OccurredAt    time.Time
	DeclaredTotal decimal.Decimal
	UserID        string
	Lines         []LineInput
}

// RecordMovement valida la entrada, abre una transacción, inserta el movimiento
// con sus líneas y ajusta el saldo de cada clave bajo bloqueo de fila.
// Toda la validación ocurre antes de abrir la transacción: un total
// inconsistente o una línea inválida no produce ninguna escritura.
//
// No se rechaza una salida que deje el saldo negativo: comportamiento heredado
// del sistema original; el pre-chequeo de disponibilidad vive en la capa de
// consulta y es consultivo.
func (uc *UseCase) RecordMovement(ctx context.Context, input MovementInput) (*entity.Movement, error) {
	if !entity.ValidKind(input.Kind) || !entity.ValidDirection(input.Direction) {
		return nil, domain.ErrInvalidInput
	}
	if input.UserID == "" || input.OccurredAt.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	mov := &entity.Movement{
		ID:            uuid.New().String(),
		Kind:          input.Kind,
		Direction:     input.Direction,
		OccurredAt:    input.OccurredAt,
		DeclaredTotal: input.DeclaredTotal,
		CreatedAt:     now,
		CreatedBy:     input.UserID,
	}
	mov.Lines = make([]entity.LineItem, 0, len(input.Lines))
	for _, in := range input.Lines {
		mov.Lines = append(mov.Lines, entity.LineItem{
			ID:         uuid.New().String(),
			MovementID: mov.ID,
			ProductID:  in.ProductID,
			SizeID:     in.SizeID,
			Quantity:   in.Quantity,
		})
	}

	if err := domledger.ValidateLines(mov.Kind, mov.Lines, mov.DeclaredTotal); err != nil {
		return nil, err
	}

	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
	) error {
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		for i := range mov.Lines {
			li := &mov.Lines[i]
			if err := uc.applyDelta(balRepo, mov.Kind, li.ProductID, li.SizeID,
				domledger.Signed(li.Quantity, mov.Direction), now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// CancelMovement aplica la reversión compensada de un movimiento: lo marca
// cancelado (sello de actor y hora) y deshace el efecto de cada línea sobre el
// saldo, todo en una transacción.
//
// El chequeo previo de `Canceled` es consultivo; el guardián autoritativo es el
// UPDATE condicional (WHERE canceled = false) dentro de la transacción: bajo
// una carrera entre dos cancelaciones solo una afecta la fila y la perdedora
// recibe ErrAlreadyCanceled sin aplicar la inversa dos veces.
func (uc *UseCase) CancelMovement(ctx context.Context, id, userID string) (*entity.Movement, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	mov, err := uc.movRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	if mov.Canceled {
		return nil, domain.ErrAlreadyCanceled
	}

	now := time.Now()
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
	) error {
		ok, err := movRepo.CancelIfActive(mov.ID, userID, now)
		if err != nil {
			return err
		}
		if !ok {
			// Otra transacción canceló primero; no aplicar la inversa.
			return domain.ErrAlreadyCanceled
		}
		for i := range mov.Lines {
			li := &mov.Lines[i]
			if err := uc.applyDelta(balRepo, mov.Kind, li.ProductID, li.SizeID,
				domledger.Signed(li.Quantity, mov.Direction).Neg(), now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	mov.Canceled = true
	mov.CanceledAt = &now
	mov.CanceledBy = &userID
	return mov, nil
}

// applyDelta lee-o-crea la entrada de saldo bajo bloqueo de escritura y le suma
// el delta con signo. El bloqueo se libera al terminar la transacción.
func (uc *UseCase) applyDelta(
	balRepo repository.BalanceRepository,
	kind, productID string, sizeID *string,
	delta decimal.Decimal, now time.Time,
) error {
	bal, err := balRepo.GetForUpdate(kind, productID, sizeID)
	if err != nil {
		return err
	}
	bal.Quantity = bal.Quantity.Add(delta)
	bal.UpdatedAt = now
	return balRepo.Update(bal)
}
