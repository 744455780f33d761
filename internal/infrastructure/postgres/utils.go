package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/p-perotti/gobrewery-sub000/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// mapTxError clasifica errores de transacción: abortos por serialización
// (40001), deadlock (40P01) y timeout de lock (55P03) se traducen al error
// reintentable del dominio; el resto se propaga como falla de almacenamiento.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return domain.ErrTransactionConflict
		}
	}
	return err
}
