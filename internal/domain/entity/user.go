package entity

import "time"

// Roles de la aplicación.
const (
	RoleAdmin      = "admin"
	RolePharmacist = "pharmacist"
	RoleCashier    = "cashier"
)

// User actor autenticado. La verificación de identidad vive en el
// colaborador de auth; el motor solo recibe {user_id, username, roles}.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}
