// Package memory implementa los repositorios del libro en memoria del proceso.
// Las transacciones son serializables (un único mutex) y se deshacen restaurando una instantánea.
// Se usa con APP_STORAGE=memory y como doble de pruebas.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

var _ ledger.TxRunner = (*Store)(nil)

type state struct {
	materials  map[string]entity.Material
	suppliers  map[string]entity.Supplier
	orders     map[string]entity.PurchaseOrder
	deliveries map[string]entity.Delivery
	movements  []entity.Movement
	production map[string]entity.ProductionRecord
}

func newState() state {
	return state{
		materials:  make(map[string]entity.Material),
		suppliers:  make(map[string]entity.Supplier),
		orders:     make(map[string]entity.PurchaseOrder),
		deliveries: make(map[string]entity.Delivery),
		production: make(map[string]entity.ProductionRecord),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.materials {
		c.materials[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.deliveries {
		c.deliveries[k] = v
	}
	for k, v := range s.production {
		c.production[k] = v
	}
	c.movements = append([]entity.Movement(nil), s.movements...)
	return c
}

// Store almacén en memoria.
type Store struct {
	mu       sync.Mutex
	st       state
	failures map[string]error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState(), failures: make(map[string]error)}
}

// Run ejecuta fn con repositorios atados a la "transacción": si fn devuelve error el estado vuelve
// a la instantánea tomada al inicio.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos ledger.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.st.clone()
	if err := fn(ctx, s.repos(true)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) repos(inTx bool) ledger.TxRepos {
	b := base{s: s, inTx: inTx}
	return ledger.TxRepos{
		Movements:  &MovementRepo{b},
		Stock:      &StockAccountRepo{b},
		Deliveries: &DeliveryRepo{b},
		Orders:     &PurchaseOrderRepo{b},
		Production: &ProductionRepo{b},
	}
}

// Repositorios fuera de transacción (lecturas y escrituras sueltas).

func (s *Store) Materials() *MaterialRepo           { return &MaterialRepo{base{s: s}} }
func (s *Store) Suppliers() *SupplierRepo           { return &SupplierRepo{base{s: s}} }
func (s *Store) Orders() *PurchaseOrderRepo         { return &PurchaseOrderRepo{base{s: s}} }
func (s *Store) Deliveries() *DeliveryRepo          { return &DeliveryRepo{base{s: s}} }
func (s *Store) Movements() *MovementRepo           { return &MovementRepo{base{s: s}} }
func (s *Store) StockAccounts() *StockAccountRepo   { return &StockAccountRepo{base{s: s}} }
func (s *Store) ProductionRecords() *ProductionRepo { return &ProductionRepo{base{s: s}} }

// InjectFailure hace que la próxima llamada a op (ej. "deliveries.create") falle con err.
func (s *Store) InjectFailure(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// MovementsOf devuelve una copia de los movimientos del material en orden de inserción.
func (s *Store) MovementsOf(materialID string) []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Movement
	for _, m := range s.st.movements {
		if m.MaterialID == materialID {
			out = append(out, m)
		}
	}
	return out
}

type base struct {
	s    *Store
	inTx bool
}

// lock toma el mutex salvo dentro de Run, que ya lo tiene.
func (b base) lock() func() {
	if b.inTx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

// fail consume un fallo inyectado para op. Llamar con el mutex tomado.
func (b base) fail(op string) error {
	if err, ok := b.s.failures[op]; ok {
		delete(b.s.failures, op)
		return err
	}
	return nil
}
