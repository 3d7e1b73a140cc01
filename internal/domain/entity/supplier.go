package entity

import "time"

// Supplier representa un proveedor de materia prima.
type Supplier struct {
	ID        string
	Name      string
	Document  string // NIT / CNPJ, informativo
	CreatedAt time.Time
}
