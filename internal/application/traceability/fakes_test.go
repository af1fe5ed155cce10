package traceability_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmsanzl/custodia-api/internal/application/sequence"
	"github.com/jmsanzl/custodia-api/internal/application/traceability"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

// Reloj fijo de los tests; los fixtures de caducidad y antigüedad se expresan
// relativos a esta fecha.
var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria. Devuelven copias para que el estado almacenado solo
// cambie vía Create/Update, igual que el adaptador PostgreSQL real.
// ──────────────────────────────────────────────────────────────────────────────

type memUnits struct {
	order []string
	byID  map[string]*entity.StockUnit
}

func newMemUnits() *memUnits {
	return &memUnits{byID: map[string]*entity.StockUnit{}}
}

func cloneUnit(u *entity.StockUnit) *entity.StockUnit {
	c := *u
	c.Movements = append([]entity.MovementEntry(nil), u.Movements...)
	return &c
}

func (r *memUnits) Create(u *entity.StockUnit) error {
	for _, existing := range r.byID {
		if existing.Code == u.Code {
			return fmt.Errorf("código de unidad %s ya existe: %w", u.Code, domain.ErrConflict)
		}
	}
	r.byID[u.ID] = cloneUnit(u)
	r.order = append(r.order, u.ID)
	return nil
}

func (r *memUnits) GetByID(id string) (*entity.StockUnit, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneUnit(u), nil
}

func (r *memUnits) GetByCode(code string) (*entity.StockUnit, error) {
	for _, u := range r.byID {
		if u.Code == code {
			return cloneUnit(u), nil
		}
	}
	return nil, nil
}

func (r *memUnits) Update(u *entity.StockUnit) error {
	if _, ok := r.byID[u.ID]; !ok {
		return fmt.Errorf("unidad %s: %w", u.ID, domain.ErrNotFound)
	}
	r.byID[u.ID] = cloneUnit(u)
	return nil
}

func (r *memUnits) List(filter repository.UnitFilter) ([]*entity.StockUnit, error) {
	var out []*entity.StockUnit
	for _, id := range r.order {
		u := r.byID[id]
		if filter.ClientID != "" && u.Location.ClientID != filter.ClientID {
			continue
		}
		if filter.WarehouseID != "" && u.Location.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.Location != "" && u.Location.Code != filter.Location {
			continue
		}
		if filter.ArticleID != "" && u.ArticleID != filter.ArticleID {
			continue
		}
		if filter.LotID != "" && u.LotMasterID != filter.LotID && u.LotExpoID != filter.LotID {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		out = append(out, cloneUnit(u))
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memUnits) ListByIDs(ids []string) ([]*entity.StockUnit, error) {
	var out []*entity.StockUnit
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out = append(out, cloneUnit(u))
		}
	}
	return out, nil
}

func (r *memUnits) CountActiveByLot(lotID string) (int, error) {
	count := 0
	for _, u := range r.byID {
		if u.LotMasterID == lotID && u.CountsForLot() {
			count++
		}
	}
	return count, nil
}

type memLots struct {
	order []string
	byID  map[string]*entity.Lot
}

func newMemLots() *memLots {
	return &memLots{byID: map[string]*entity.Lot{}}
}

func cloneLot(l *entity.Lot) *entity.Lot {
	c := *l
	return &c
}

func (r *memLots) Create(l *entity.Lot) error {
	for _, existing := range r.byID {
		if existing.Code == l.Code {
			return fmt.Errorf("código de lote %s ya existe: %w", l.Code, domain.ErrConflict)
		}
	}
	r.byID[l.ID] = cloneLot(l)
	r.order = append(r.order, l.ID)
	return nil
}

func (r *memLots) GetByID(id string) (*entity.Lot, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneLot(l), nil
}

func (r *memLots) GetByCode(code string) (*entity.Lot, error) {
	for _, l := range r.byID {
		if l.Code == code {
			return cloneLot(l), nil
		}
	}
	return nil, nil
}

func (r *memLots) Update(l *entity.Lot) error {
	if _, ok := r.byID[l.ID]; !ok {
		return fmt.Errorf("lote %s: %w", l.ID, domain.ErrNotFound)
	}
	r.byID[l.ID] = cloneLot(l)
	return nil
}

func (r *memLots) List(limit, offset int) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, id := range r.order {
		out = append(out, cloneLot(r.byID[id]))
	}
	if offset > 0 {
		if offset >= len(out) {
			return nil, nil
		}
		out = out[offset:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memLots) ExpiringBefore(deadline time.Time) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, id := range r.order {
		l := r.byID[id]
		if l.Status == entity.LotStatusActive && l.ExpiryDate != nil && l.ExpiryDate.Before(deadline) {
			out = append(out, cloneLot(l))
		}
	}
	return out, nil
}

func (r *memLots) Expired(now time.Time) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, id := range r.order {
		l := r.byID[id]
		if l.Status == entity.LotStatusExpired || (l.ExpiryDate != nil && l.ExpiryDate.Before(now)) {
			out = append(out, cloneLot(l))
		}
	}
	return out, nil
}

type memArticles struct {
	byID map[string]*entity.Article
}

func newMemArticles() *memArticles {
	return &memArticles{byID: map[string]*entity.Article{}}
}

func (r *memArticles) Create(a *entity.Article) error {
	c := *a
	r.byID[a.ID] = &c
	return nil
}

func (r *memArticles) GetByID(id string) (*entity.Article, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (r *memArticles) GetBySKU(sku string) (*entity.Article, error) {
	for _, a := range r.byID {
		if a.SKU == sku {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memArticles) Update(a *entity.Article) error {
	c := *a
	r.byID[a.ID] = &c
	return nil
}

func (r *memArticles) List(limit, offset int) ([]*entity.Article, error) {
	var out []*entity.Article
	for _, a := range r.byID {
		c := *a
		out = append(out, &c)
	}
	return out, nil
}

// fakeTx pasa los repositorios en memoria tal cual: en los tests no hay
// transacción real que deshacer.
type fakeTx struct {
	units *memUnits
	lots  *memLots
}

func (f *fakeTx) Run(ctx context.Context, fn func(
	units repository.StockUnitRepository,
	lots repository.LotRepository,
) error) error {
	return fn(f.units, f.lots)
}

type memCounters struct {
	counts map[string]int64
}

func newMemCounters() *memCounters {
	return &memCounters{counts: map[string]int64{}}
}

func (c *memCounters) Next(kind string, year int) (int64, error) {
	key := fmt.Sprintf("%s-%d", kind, year)
	c.counts[key]++
	return c.counts[key], nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: artículo y lote maestro sembrados, casos de uso cableados contra
// los repositorios en memoria.
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	units    *memUnits
	lots     *memLots
	articles *memArticles
	unitUC   *traceability.UnitUseCase
	lotUC    *traceability.LotUseCase
	article  *entity.Article
	lot      *entity.Lot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	units := newMemUnits()
	lots := newMemLots()
	articles := newMemArticles()
	tx := &fakeTx{units: units, lots: lots}
	seq := sequence.NewGenerator(newMemCounters(), testClock)

	article := &entity.Article{
		ID: "art-1", SKU: "ACE-5L", Name: "Aceite de oliva 5L", Unit: "ud",
		Active: true, CreatedAt: testNow, UpdatedAt: testNow,
	}
	if err := articles.Create(article); err != nil {
		t.Fatalf("sembrar artículo: %v", err)
	}
	lot := &entity.Lot{
		ID: "lot-1", Code: "LM-2025-001", Type: entity.LotTypeMaster,
		ArticleID: article.ID, DeclaredQuantity: 10, RemainingQuantity: 10,
		Status: entity.LotStatusActive, CreatedAt: testNow, UpdatedAt: testNow,
	}
	if err := lots.Create(lot); err != nil {
		t.Fatalf("sembrar lote: %v", err)
	}

	return &fixture{
		units:    units,
		lots:     lots,
		articles: articles,
		unitUC:   traceability.NewUnitUseCase(tx, units, lots, articles, seq, testClock),
		lotUC:    traceability.NewLotUseCase(lots, units, articles, testClock),
		article:  article,
		lot:      lot,
	}
}
