package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// OpenOrder pedido abierto ya proyectado, entrada del agregador.
type OpenOrder struct {
	OrderID      string
	SupplierID   string
	SupplierName string
	MaterialID   string
	MaterialName string
	Quantity     decimal.Decimal
	Delivered    decimal.Decimal
	Remaining    decimal.Decimal
}

// SupplierBalance saldo pendiente agregado de un proveedor.
type SupplierBalance struct {
	SupplierID     string
	SupplierName   string
	Quantity       decimal.Decimal
	Delivered      decimal.Decimal
	Remaining      decimal.Decimal
	OpenOrderCount int
	Materials      []string // nombres distintos, ordenados
}

// AggregateSupplierBalances agrupa los pedidos abiertos por proveedor.
// Orden: mayor pendiente primero (a quién reclamar antes); empate por nombre y luego por ID.
func AggregateSupplierBalances(orders []OpenOrder) []SupplierBalance {
	byID := make(map[string]*SupplierBalance)
	materials := make(map[string]map[string]struct{})
	for _, o := range orders {
		b, ok := byID[o.SupplierID]
		if !ok {
			b = &SupplierBalance{
				SupplierID:   o.SupplierID,
				SupplierName: o.SupplierName,
				Quantity:     decimal.Zero,
				Delivered:    decimal.Zero,
				Remaining:    decimal.Zero,
			}
			byID[o.SupplierID] = b
			materials[o.SupplierID] = make(map[string]struct{})
		}
		b.Quantity = b.Quantity.Add(o.Quantity)
		b.Delivered = b.Delivered.Add(o.Delivered)
		b.Remaining = b.Remaining.Add(o.Remaining)
		b.OpenOrderCount++
		name := o.MaterialName
		if name == "" {
			name = o.MaterialID
		}
		materials[o.SupplierID][name] = struct{}{}
	}

	out := make([]SupplierBalance, 0, len(byID))
	for id, b := range byID {
		names := make([]string, 0, len(materials[id]))
		for n := range materials[id] {
			names = append(names, n)
		}
		sort.Strings(names)
		b.Materials = names
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Remaining.Equal(b.Remaining) {
			return a.Remaining.GreaterThan(b.Remaining)
		}
		if a.SupplierName != b.SupplierName {
			return a.SupplierName < b.SupplierName
		}
		return a.SupplierID < b.SupplierID
	})
	return out
}
