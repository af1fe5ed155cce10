package domain

import "errors"

// Errores de dominio (sin dependencias externas). Los call sites envuelven con
// fmt.Errorf("%w") añadiendo entidad, estado actual y transición intentada;
// los handlers mapean con errors.Is.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrValidation   = errors.New("entrada inválida")
	ErrInvalidState = errors.New("operación no permitida en el estado actual")
	ErrConflict     = errors.New("conflicto de unicidad")
)
