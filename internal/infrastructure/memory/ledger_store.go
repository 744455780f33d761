// Package memory implementa el log de movimientos y el almacén de saldos en
// memoria, con semántica transaccional (escrituras por etapas, commit o
// descarte). Reemplaza a PostgreSQL en los tests del motor del ledger.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	ledgerapp "github.com/p-perotti/gobrewery-sub000/internal/application/ledger"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/entity"
	"github.com/p-perotti/gobrewery-sub000/internal/domain/repository"
)

var _ ledgerapp.TxRunner = (*Store)(nil)

// Store estado compartido. Un mutex global serializa las transacciones
// completas: es el equivalente grueso del bloqueo de fila de PostgreSQL y
// preserva la propiedad que importa (no hay lost updates sobre una clave).
type Store struct {
	mu        sync.Mutex
	movements map[string]*entity.Movement
	balances  map[string]*entity.BalanceEntry
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		movements: make(map[string]*entity.Movement),
		balances:  make(map[string]*entity.BalanceEntry),
	}
}

// Run ejecuta fn con repos atados a una transacción en memoria. Las escrituras
// quedan en un área de staging y solo se fusionan al estado compartido si fn
// retorna nil; en caso de error se descartan por completo, igual que un
// Rollback.
func (s *Store) Run(_ context.Context, fn func(
	movRepo repository.MovementRepository,
	balRepo repository.BalanceRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txState{
		store:     s,
		movements: make(map[string]*entity.Movement),
		balances:  make(map[string]*entity.BalanceEntry),
	}
	if err := fn(&movementView{store: s, tx: tx}, &balanceView{store: s, tx: tx}); err != nil {
		return err
	}
	for id, m := range tx.movements {
		s.movements[id] = m
	}
	for k, b := range tx.balances {
		s.balances[k] = b
	}
	return nil
}

// MovementRepository vista de solo-committed del log (lecturas fuera de tx).
func (s *Store) MovementRepository() repository.MovementRepository {
	return &movementView{store: s}
}

// BalanceRepository vista de solo-committed de los saldos.
func (s *Store) BalanceRepository() repository.BalanceRepository {
	return &balanceView{store: s}
}

// txState escrituras pendientes de una transacción.
type txState struct {
	store     *Store
	movements map[string]*entity.Movement
	balances  map[string]*entity.BalanceEntry
}

func balanceKey(kind, productID string, sizeID *string) string {
	k := kind + "|" + productID + "|"
	if sizeID != nil {
		k += *sizeID
	}
	return k
}

func copyMovement(m *entity.Movement) *entity.Movement {
	cp := *m
	cp.Lines = append([]entity.LineItem(nil), m.Lines...)
	return &cp
}

func copyBalance(b *entity.BalanceEntry) *entity.BalanceEntry {
	cp := *b
	return &cp
}

// ── MovementRepository ────────────────────────────────────────────────────────

type movementView struct {
	store *Store
	tx    *txState // nil = vista de solo lectura sobre lo commiteado
}

func (v *movementView) lookup(id string) *entity.Movement {
	if v.tx != nil {
		if m, ok := v.tx.movements[id]; ok {
			return m
		}
	}
	return v.store.movements[id]
}

func (v *movementView) all() []*entity.Movement {
	seen := make(map[string]bool)
	var out []*entity.Movement
	if v.tx != nil {
		for id, m := range v.tx.movements {
			seen[id] = true
			out = append(out, m)
		}
	}
	for id, m := range v.store.movements {
		if !seen[id] {
			out = append(out, m)
		}
	}
	return out
}

func (v *movementView) Create(m *entity.Movement) error {
	v.tx.movements[m.ID] = copyMovement(m)
	return nil
}

func (v *movementView) GetByID(id string) (*entity.Movement, error) {
	if v.tx == nil {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	m := v.lookup(id)
	if m == nil {
		return nil, nil
	}
	return copyMovement(m), nil
}

func (v *movementView) List(kind string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	if v.tx == nil {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	var list []*entity.Movement
	for _, m := range v.all() {
		if m.Kind != kind {
			continue
		}
		if from != nil && m.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && !m.OccurredAt.Before(*to) {
			continue
		}
		list = append(list, copyMovement(m))
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].OccurredAt.After(list[j].OccurredAt)
	})
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (v *movementView) CancelIfActive(id, userID string, at time.Time) (bool, error) {
	m := v.lookup(id)
	if m == nil || m.Canceled {
		return false, nil
	}
	cp := copyMovement(m)
	cp.Canceled = true
	cp.CanceledAt = &at
	cp.CanceledBy = &userID
	v.tx.movements[id] = cp
	return true, nil
}

func (v *movementView) SumSignedAsOf(kind, productID string, sizeID *string, instant time.Time) (decimal.Decimal, error) {
	if v.tx == nil {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	sum := decimal.Zero
	for _, m := range v.all() {
		if m.Kind != kind || m.Canceled || !m.OccurredAt.Before(instant) {
			continue
		}
		for _, li := range m.Lines {
			if li.ProductID != productID || !sameSize(li.SizeID, sizeID) {
				continue
			}
			if m.Direction == entity.DirectionIn {
				sum = sum.Add(li.Quantity)
			} else {
				sum = sum.Sub(li.Quantity)
			}
		}
	}
	return sum, nil
}

func (v *movementView) PeriodTotals(kind string, from, to time.Time) ([]repository.PeriodTotal, error) {
	if v.tx == nil {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	byKey := make(map[string]*repository.PeriodTotal)
	var keys []string
	for _, m := range v.all() {
		if m.Kind != kind || m.Canceled {
			continue
		}
		if m.OccurredAt.Before(from) || !m.OccurredAt.Before(to) {
			continue
		}
		for _, li := range m.Lines {
			k := balanceKey(kind, li.ProductID, li.SizeID)
			t, ok := byKey[k]
			if !ok {
				t = &repository.PeriodTotal{
					ProductID: li.ProductID,
					SizeID:    li.SizeID,
					Inward:    decimal.Zero,
					Outward:   decimal.Zero,
				}
				byKey[k] = t
				keys = append(keys, k)
			}
			if m.Direction == entity.DirectionIn {
				t.Inward = t.Inward.Add(li.Quantity)
			} else {
				t.Outward = t.Outward.Add(li.Quantity)
			}
		}
	}
	sort.Strings(keys)
	out := make([]repository.PeriodTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out, nil
}

// ── BalanceRepository ─────────────────────────────────────────────────────────

type balanceView struct {
	store *Store
	tx    *txState
}

func (v *balanceView) lookup(key string) *entity.BalanceEntry {
	if v.tx != nil {
		if b, ok := v.tx.balances[key]; ok {
			return b
		}
	}
	return v.store.balances[key]
}

func (v *balanceView) Get(kind, productID string, sizeID *string) (*entity.BalanceEntry, error) {
	if v.tx == nil {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	b := v.lookup(balanceKey(kind, productID, sizeID))
	if b == nil {
		return &entity.BalanceEntry{Kind: kind, ProductID: productID, SizeID: sizeID, Quantity: decimal.Zero}, nil
	}
	return copyBalance(b), nil
}

func (v *balanceView) GetForUpdate(kind, productID string, sizeID *string) (*entity.BalanceEntry, error) {
	// Run mantiene el mutex global durante toda la transacción, así que la
	// exclusión por clave ya está garantizada aquí.
	key := balanceKey(kind, productID, sizeID)
	b := v.lookup(key)
	if b == nil {
		b = &entity.BalanceEntry{Kind: kind, ProductID: productID, SizeID: sizeID, Quantity: decimal.Zero, UpdatedAt: time.Now()}
		v.tx.balances[key] = copyBalance(b)
	}
	return copyBalance(b), nil
}

func (v *balanceView) Update(b *entity.BalanceEntry) error {
	v.tx.balances[balanceKey(b.Kind, b.ProductID, b.SizeID)] = copyBalance(b)
	return nil
}

func (v *balanceView) List(kind string) ([]*entity.BalanceEntry, error) {
	if v.tx == nil {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	seen := make(map[string]bool)
	var list []*entity.BalanceEntry
	appendEntry := func(key string, b *entity.BalanceEntry) {
		if b.Kind == kind && !seen[key] {
			seen[key] = true
			list = append(list, copyBalance(b))
		}
	}
	if v.tx != nil {
		for k, b := range v.tx.balances {
			appendEntry(k, b)
		}
	}
	for k, b := range v.store.balances {
		appendEntry(k, b)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].ProductID != list[j].ProductID {
			return list[i].ProductID < list[j].ProductID
		}
		return sizeOrEmpty(list[i].SizeID) < sizeOrEmpty(list[j].SizeID)
	})
	return list, nil
}

func sameSize(a, b *string) bool {
	return sizeOrEmpty(a) == sizeOrEmpty(b)
}

func sizeOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
