package sequence

import (
	"fmt"
	"time"

	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// Claves de contador por tipo de código. El año forma parte de la clave:
// cada (kind, año) arranca en 1.
const (
	KindTraceability = "trz"
	KindDeposit      = "dep"
	KindNoteEntry    = "alb-e"
	KindNoteExit     = "alb-s"
	KindNoteTransfer = "alb-t"
)

// Generator genera códigos de negocio secuenciales sobre contadores atómicos
// por (kind, año). Sustituye el "scan max e incrementa" original, que era una
// carrera bajo creación concurrente.
type Generator struct {
	counters repository.CounterRepository
	now      func() time.Time
}

// NewGenerator construye el generador. nowFn permite fijar el reloj en tests;
// nil usa time.Now.
func NewGenerator(counters repository.CounterRepository, nowFn func() time.Time) *Generator {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Generator{counters: counters, now: nowFn}
}

// NextTraceabilityCode genera TRZ-<año>-<secuencia de 6 dígitos>.
func (g *Generator) NextTraceabilityCode() (string, error) {
	year := g.now().Year()
	n, err := g.counters.Next(KindTraceability, year)
	if err != nil {
		return "", fmt.Errorf("siguiente código de trazabilidad: %w", err)
	}
	return fmt.Sprintf("TRZ-%d-%06d", year, n), nil
}

// NextDepositCode genera DEP-<año>-<secuencia de 5 dígitos>.
func (g *Generator) NextDepositCode() (string, error) {
	year := g.now().Year()
	n, err := g.counters.Next(KindDeposit, year)
	if err != nil {
		return "", fmt.Errorf("siguiente código de depósito: %w", err)
	}
	return fmt.Sprintf("DEP-%d-%05d", year, n), nil
}

// NextNoteNumber genera el número de albarán según tipo:
// entry→ALB-E, exit→ALB-S, transfer→ALB-T, con secuencia de 5 dígitos por (tipo, año).
func (g *Generator) NextNoteNumber(noteType string) (string, error) {
	prefix := entity.NotePrefix(noteType)
	if prefix == "" {
		return "", fmt.Errorf("tipo de albarán %q: %w", noteType, domain.ErrValidation)
	}
	var kind string
	switch noteType {
	case entity.NoteTypeEntry:
		kind = KindNoteEntry
	case entity.NoteTypeExit:
		kind = KindNoteExit
	case entity.NoteTypeTransfer:
		kind = KindNoteTransfer
	}
	year := g.now().Year()
	n, err := g.counters.Next(kind, year)
	if err != nil {
		return "", fmt.Errorf("siguiente número de albarán %s: %w", noteType, err)
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, year, n), nil
}
