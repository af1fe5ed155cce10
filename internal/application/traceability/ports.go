package traceability

import (
	"context"

	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la mutación de la unidad y el
// recálculo del remanente de su lote se confirman o deshacen juntos: si el
// recálculo falla, la mutación de la unidad no se considera completada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		units repository.StockUnitRepository,
		lots repository.LotRepository,
	) error) error
}
