package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Se detectan dentro de la transacción, que se revierte, y se devuelven al
// caller con contexto (vía fmt.Errorf("...: %w", Err...)) para que errors.Is
// siga funcionando en los handlers.
var (
	ErrNotFound                   = errors.New("recurso no encontrado")
	ErrInvalidInput               = errors.New("entrada inválida")
	ErrUnauthorized               = errors.New("no autorizado")
	ErrForbidden                  = errors.New("acceso denegado")
	ErrInsufficientStock          = errors.New("stock físico insuficiente")
	ErrInsufficientAvailableStock = errors.New("stock disponible insuficiente (reservas pendientes)")
	ErrDuplicateBatch             = errors.New("número de lote duplicado para el producto")
	ErrInvalidExpiry              = errors.New("la fecha de vencimiento no puede estar en el pasado")
	ErrExpiredStock               = errors.New("no se puede recibir stock vencido")
	ErrInvalidState               = errors.New("transición de estado no permitida para la orden")
	ErrBudgetExceeded             = errors.New("tope de presupuesto de compra excedido")
	ErrReferencedByOtherRecords   = errors.New("no se puede eliminar: existen registros asociados")
)
