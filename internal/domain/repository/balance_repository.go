package repository

import "github.com/p-perotti/gobrewery-sub000/internal/domain/entity"

// BalanceRepository define el puerto para el almacén de saldos materializados.
// Las filas se crean de forma perezosa y nunca se borran; solo el motor del
// ledger las muta, dentro de una transacción.
type BalanceRepository interface {
	// Get devuelve el saldo actual de la clave, o una entrada en cero si no existe.
	Get(kind, productID string, sizeID *string) (*entity.BalanceEntry, error)

	// GetForUpdate crea la fila si no existe y la bloquea para escritura
	// (SELECT ... FOR UPDATE). El bloqueo se mantiene hasta que la transacción
	// que lo envuelve termina; transacciones concurrentes sobre la misma clave
	// se serializan aquí.
	GetForUpdate(kind, productID string, sizeID *string) (*entity.BalanceEntry, error)

	// Update escribe la cantidad de una entrada ya existente (creada por GetForUpdate).
	Update(balance *entity.BalanceEntry) error

	// List devuelve todas las entradas de saldo de un libro (modo "solo actual"
	// de los reportes, que consulta el almacén directamente sin reconstrucción).
	List(kind string) ([]*entity.BalanceEntry, error)
}
