package delivery

import (
	"context"
	"time"

	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios
// de albaranes, unidades y lotes atados a ella. Completar un albarán y mover
// sus unidades es un único commit.
type TxRunner interface {
	RunDelivery(ctx context.Context, fn func(
		notes repository.DeliveryNoteRepository,
		units repository.StockUnitRepository,
		lots repository.LotRepository,
	) error) error
}

// CompletionHook reacciona a la finalización de un albarán dentro de la misma
// transacción. Es el punto de integración donde el libro de unidades expide o
// traslada las unidades referenciadas; un error aborta la finalización.
type CompletionHook interface {
	NoteCompleted(
		units repository.StockUnitRepository,
		lots repository.LotRepository,
		note *entity.DeliveryNote,
		actor string,
		now time.Time,
	) error
}
