package policy_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/policy"
)

func testPolicy() policy.Policy {
	return policy.Policy{POBudgetLimit: decimal.NewFromInt(5000)}
}

// Un farmacéutico sin rol admin no puede crear órdenes por encima del tope.
func TestAuthorize_POCreate_FarmaceuticoExcedePresupuesto(t *testing.T) {
	err := testPolicy().Authorize(
		[]string{"pharmacist"},
		policy.ActionPOCreate,
		policy.Resource{TotalValue: decimal.NewFromInt(5001)},
	)
	assert.ErrorIs(t, err, domain.ErrBudgetExceeded)
}

// En el tope exacto la orden pasa (el límite es inclusivo).
func TestAuthorize_POCreate_FarmaceuticoEnElTope(t *testing.T) {
	err := testPolicy().Authorize(
		[]string{"pharmacist"},
		policy.ActionPOCreate,
		policy.Resource{TotalValue: decimal.NewFromInt(5000)},
	)
	assert.NoError(t, err)
}

// Un admin (aunque también sea farmacéutico) no tiene tope de presupuesto.
func TestAuthorize_POCreate_AdminSinTope(t *testing.T) {
	err := testPolicy().Authorize(
		[]string{"pharmacist", "admin"},
		policy.ActionPOCreate,
		policy.Resource{TotalValue: decimal.NewFromInt(999999)},
	)
	assert.NoError(t, err)
}

// Solo admin puede borrar órdenes terminales.
func TestAuthorize_PODelete_SoloAdmin(t *testing.T) {
	p := testPolicy()

	err := p.Authorize([]string{"pharmacist", "cashier"}, policy.ActionPODelete, policy.Resource{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = p.Authorize([]string{"admin"}, policy.ActionPODelete, policy.Resource{})
	assert.NoError(t, err)
}

// Acción desconocida se deniega por defecto.
func TestAuthorize_AccionDesconocida_Denegada(t *testing.T) {
	err := testPolicy().Authorize([]string{"admin"}, policy.Action("pos.invent"), policy.Resource{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
