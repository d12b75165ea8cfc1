package entity

import "time"

// Product entrada del catálogo. El CRUD completo vive fuera del motor;
// aquí solo se lee para validar referencias y armar mensajes de alerta.
type Product struct {
	ID                   string
	Name                 string
	Brand                string
	Category             string
	RequiresPrescription bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
