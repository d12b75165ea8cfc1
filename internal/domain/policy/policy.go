// Package policy concentra las decisiones de autorización por rol que el
// original repartía en chequeos ad hoc por ruta: una sola función de
// evaluación (roles, acción, recurso) que permite o deniega con el error de
// dominio específico.
package policy

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// Action acción de negocio sujeta a política.
type Action string

const (
	ActionPOCreate Action = "po.create"
	ActionPODelete Action = "po.delete"
)

// Resource contexto del recurso evaluado. Según la acción, solo algunos
// campos aplican (TotalValue para po.create).
type Resource struct {
	TotalValue decimal.Decimal
}

// Policy límites configurables. Cero valor = sin tope.
type Policy struct {
	POBudgetLimit decimal.Decimal // tope de compra para farmacéuticos sin rol admin
}

// Authorize evalúa si los roles del actor permiten la acción sobre el recurso.
// Devuelve nil si está permitida o el error de dominio correspondiente.
func (p Policy) Authorize(roles []string, action Action, res Resource) error {
	switch action {
	case ActionPOCreate:
		// El tope de presupuesto aplica a farmacéuticos que no son admin.
		if hasRole(roles, entity.RolePharmacist) && !hasRole(roles, entity.RoleAdmin) {
			if p.POBudgetLimit.GreaterThan(decimal.Zero) && res.TotalValue.GreaterThan(p.POBudgetLimit) {
				return domain.ErrBudgetExceeded
			}
		}
		return nil
	case ActionPODelete:
		if !hasRole(roles, entity.RoleAdmin) {
			return domain.ErrForbidden
		}
		return nil
	default:
		return domain.ErrForbidden
	}
}

func hasRole(roles []string, want string) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
