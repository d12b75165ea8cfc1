package entity

import "time"

// Supplier proveedor de stock. CRUD fuera del motor; aquí solo referencia.
type Supplier struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
}
