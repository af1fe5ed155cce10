package traceability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsanzl/custodia-api/internal/application/dto"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/alert"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
	"github.com/jmsanzl/custodia-api/internal/domain/repository"
)

var testLocation = dto.LocationRequest{ClientID: "cli-1", WarehouseID: "wh-1", Code: "A-01-01"}

func createUnits(t *testing.T, f *fixture, quantity int) []*entity.StockUnit {
	t.Helper()
	units, err := f.unitUC.Create(context.Background(), dto.CreateUnitsRequest{
		ArticleID:    f.article.ID,
		LotMasterID:  f.lot.ID,
		Quantity:     quantity,
		Location:     testLocation,
		ReceivedDate: testNow,
	})
	require.NoError(t, err)
	require.Len(t, units, quantity)
	return units
}

func TestCreate_AltaEnBloque(t *testing.T) {
	f := newFixture(t)

	units := createUnits(t, f, 3)

	codes := map[string]bool{}
	for _, u := range units {
		assert.Equal(t, entity.UnitStatusAvailable, u.Status)
		assert.Empty(t, u.Movements, "una unidad recién creada no tiene historial")
		assert.Equal(t, "cli-1", u.Location.ClientID)
		codes[u.Code] = true
	}
	assert.Len(t, codes, 3, "cada unidad recibe un código propio")
	assert.Contains(t, codes, "TRZ-2025-000001")
	assert.Contains(t, codes, "TRZ-2025-000003")

	// El remanente del lote pasa a ser el recuento de unidades activas.
	lot, err := f.lots.GetByID(f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, lot.RemainingQuantity)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.unitUC.Create(ctx, dto.CreateUnitsRequest{
		ArticleID: f.article.ID, LotMasterID: f.lot.ID, Quantity: 0, Location: testLocation,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "cantidad cero debe rechazarse")

	_, err = f.unitUC.Create(ctx, dto.CreateUnitsRequest{
		ArticleID: f.article.ID, LotMasterID: f.lot.ID, Quantity: 1,
		Location: dto.LocationRequest{ClientID: "cli-1"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "ubicación incompleta debe rechazarse")

	_, err = f.unitUC.Create(ctx, dto.CreateUnitsRequest{
		ArticleID: "no-existe", LotMasterID: f.lot.ID, Quantity: 1, Location: testLocation,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "artículo inexistente debe rechazarse")

	_, err = f.unitUC.Create(ctx, dto.CreateUnitsRequest{
		ArticleID: f.article.ID, LotMasterID: "no-existe", Quantity: 1, Location: testLocation,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "lote inexistente debe rechazarse")

	expo, err := f.lotUC.CreateExpo(f.lot.ID, dto.CreateExpoLotRequest{Code: "LE-2025-001", Quantity: 2})
	require.NoError(t, err)
	_, err = f.unitUC.Create(ctx, dto.CreateUnitsRequest{
		ArticleID: f.article.ID, LotMasterID: expo.ID, Quantity: 1, Location: testLocation,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "un lote expo no sirve de lote maestro")
}

func TestMove_UbicacionEsLaUltimaEntradaDelLog(t *testing.T) {
	f := newFixture(t)
	unit := createUnits(t, f, 1)[0]
	destino := dto.LocationRequest{ClientID: "cli-1", WarehouseID: "wh-2", Code: "B-02-03"}

	moved, err := f.unitUC.Move(context.Background(), unit.ID, dto.MoveUnitRequest{
		Location: destino, Notes: "reubicación por inventario",
	}, "maria")
	require.NoError(t, err)

	require.Len(t, moved.Movements, 1)
	last := moved.LastMovement()
	assert.Equal(t, entity.MovementKindMovement, last.Kind)
	assert.Equal(t, "maria", last.Actor)
	require.NotNil(t, last.From)
	require.NotNil(t, last.To)
	assert.Equal(t, "A-01-01", last.From.Code)
	assert.Equal(t, *last.To, moved.Location,
		"la ubicación actual debe coincidir con el destino de la última entrada")
	assert.Equal(t, entity.UnitStatusAvailable, moved.Status, "mover no cambia el estado")
}

func TestReserve_Release_IdaYVuelta(t *testing.T) {
	f := newFixture(t)
	unit := createUnits(t, f, 1)[0]
	ctx := context.Background()

	reserved, err := f.unitUC.Reserve(ctx, unit.ID, dto.UnitActionRequest{}, "maria")
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusReserved, reserved.Status)
	assert.Equal(t, unit.Location, reserved.Location, "reservar no cambia la ubicación")

	// Reservada sigue contando para el remanente del lote.
	lot, err := f.lots.GetByID(f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, lot.RemainingQuantity)

	_, err = f.unitUC.Reserve(ctx, unit.ID, dto.UnitActionRequest{}, "maria")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "no se reserva dos veces")

	released, err := f.unitUC.Release(ctx, unit.ID, dto.UnitActionRequest{}, "maria")
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusAvailable, released.Status)
	assert.Equal(t, unit.Location, released.Location)

	require.Len(t, released.Movements, 2)
	assert.Equal(t, entity.MovementKindReservation, released.Movements[0].Kind)
	assert.Equal(t, entity.MovementKindRelease, released.Movements[1].Kind)

	_, err = f.unitUC.Release(ctx, unit.ID, dto.UnitActionRequest{}, "maria")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "liberar sin reserva debe rechazarse")
}

func TestShip_TerminalYDecrementaLote(t *testing.T) {
	f := newFixture(t)
	units := createUnits(t, f, 2)
	ctx := context.Background()

	shipped, err := f.unitUC.Ship(ctx, units[0].ID, dto.ShipUnitRequest{DocumentID: "ALB-S-2025-00007"}, "pedro")
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusShipped, shipped.Status)

	last := shipped.LastMovement()
	require.NotNil(t, last)
	assert.Equal(t, entity.MovementKindExit, last.Kind)
	assert.Nil(t, last.To, "la salida no tiene ubicación destino")
	assert.Equal(t, "ALB-S-2025-00007", last.DocumentID)

	lot, err := f.lots.GetByID(f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, lot.RemainingQuantity)

	_, err = f.unitUC.Ship(ctx, units[0].ID, dto.ShipUnitRequest{}, "pedro")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "expedir dos veces debe rechazarse")

	_, err = f.unitUC.Move(ctx, units[0].ID, dto.MoveUnitRequest{Location: testLocation}, "pedro")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una unidad expedida no se mueve")
}

func TestShip_AgotaElLote(t *testing.T) {
	f := newFixture(t)
	units := createUnits(t, f, 2)
	ctx := context.Background()

	for _, u := range units {
		_, err := f.unitUC.Ship(ctx, u.ID, dto.ShipUnitRequest{}, "pedro")
		require.NoError(t, err)
	}

	lot, err := f.lots.GetByID(f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, lot.RemainingQuantity)
	assert.Equal(t, entity.LotStatusDepleted, lot.Status,
		"con remanente cero el lote pasa a depleted")
}

// Ciclo completo sobre un lote de 10: alta en bloque, reserva parcial y salida
// total, incluidas las unidades reservadas (expedir es legal desde cualquier
// estado no terminal).
func TestCicloCompleto_ReservaParcialYSalidaTotal(t *testing.T) {
	f := newFixture(t)
	units := createUnits(t, f, 10)
	ctx := context.Background()

	for _, u := range units[:3] {
		_, err := f.unitUC.Reserve(ctx, u.ID, dto.UnitActionRequest{}, "maria")
		require.NoError(t, err)
	}

	// Reservar no descuenta: las reservadas siguen en custodia.
	lot, err := f.lots.GetByID(f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, lot.RemainingQuantity)
	assert.Equal(t, entity.LotStatusActive, lot.Status)

	for _, u := range units {
		shipped, err := f.unitUC.Ship(ctx, u.ID, dto.ShipUnitRequest{DocumentID: "ALB-S-2025-00009"}, "pedro")
		require.NoError(t, err, "expedir debe ser legal también desde reserved")
		assert.Equal(t, entity.UnitStatusShipped, shipped.Status)
	}

	lot, err = f.lots.GetByID(f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, lot.RemainingQuantity)
	assert.Equal(t, entity.LotStatusDepleted, lot.Status)
}

func TestMarkDamaged(t *testing.T) {
	f := newFixture(t)
	unit := createUnits(t, f, 1)[0]
	ctx := context.Background()

	damaged, err := f.unitUC.MarkDamaged(ctx, unit.ID, dto.UnitActionRequest{Notes: "caja aplastada"}, "maria")
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusDamaged, damaged.Status)

	lot, err := f.lots.GetByID(f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, lot.RemainingQuantity, "una unidad dañada no suma en el remanente")

	_, err = f.unitUC.MarkDamaged(ctx, unit.ID, dto.UnitActionRequest{}, "maria")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGet_MaterializaCaducidadLazy(t *testing.T) {
	f := newFixture(t)
	vencida := testNow.AddDate(0, 0, -2)
	units, err := f.unitUC.Create(context.Background(), dto.CreateUnitsRequest{
		ArticleID:   f.article.ID,
		LotMasterID: f.lot.ID,
		Quantity:    1,
		Location:    testLocation,
		ExpiryDate:  &vencida,
	})
	require.NoError(t, err)

	got, err := f.unitUC.Get(context.Background(), units[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusExpired, got.Status,
		"la transición available→expired se materializa en la lectura")

	// Persistida, no solo proyectada.
	stored, err := f.units.GetByID(units[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.UnitStatusExpired, stored.Status)

	lot, err := f.lots.GetByID(f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, lot.RemainingQuantity, "la unidad caducada deja de contar")
}

func TestGet_NoEncontrada(t *testing.T) {
	f := newFixture(t)
	_, err := f.unitUC.Get(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAgingReport_Tramos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Dos unidades recientes, una de 45 días y una de 100.
	byAge := map[int]*entity.StockUnit{}
	for _, age := range []int{1, 10, 45, 100} {
		units, err := f.unitUC.Create(ctx, dto.CreateUnitsRequest{
			ArticleID:    f.article.ID,
			LotMasterID:  f.lot.ID,
			Quantity:     1,
			Location:     testLocation,
			ReceivedDate: testNow.AddDate(0, 0, -age),
		})
		require.NoError(t, err)
		byAge[age] = units[0]
	}

	report, err := f.unitUC.AgingReport(ctx, repository.UnitFilter{})
	require.NoError(t, err)
	require.Len(t, report, 4)

	byBucket := map[alert.Bucket]int{}
	for _, row := range report {
		byBucket[row.Bucket] = row.Units
	}
	assert.Equal(t, 2, byBucket[alert.Bucket0a30])
	assert.Equal(t, 1, byBucket[alert.Bucket30a60])
	assert.Equal(t, 0, byBucket[alert.Bucket60a90])
	assert.Equal(t, 1, byBucket[alert.Bucket90oMas])

	// Una unidad expedida deja de ser stock activo y sale del reporte.
	_, err = f.unitUC.Ship(ctx, byAge[100].ID, dto.ShipUnitRequest{}, "pedro")
	require.NoError(t, err)

	report, err = f.unitUC.AgingReport(ctx, repository.UnitFilter{})
	require.NoError(t, err)
	for _, row := range report {
		byBucket[row.Bucket] = row.Units
	}
	assert.Equal(t, 0, byBucket[alert.Bucket90oMas], "el stock expedido no suma en los tramos")
}

func TestList_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	units := createUnits(t, f, 3)
	ctx := context.Background()

	_, err := f.unitUC.Reserve(ctx, units[0].ID, dto.UnitActionRequest{}, "maria")
	require.NoError(t, err)

	reserved, err := f.unitUC.List(ctx, repository.UnitFilter{Status: entity.UnitStatusReserved})
	require.NoError(t, err)
	require.Len(t, reserved, 1)
	assert.Equal(t, units[0].ID, reserved[0].ID)

	available, err := f.unitUC.List(ctx, repository.UnitFilter{Status: entity.UnitStatusAvailable})
	require.NoError(t, err)
	assert.Len(t, available, 2)
}

func TestResponse_DerivadosDeUnidad(t *testing.T) {
	f := newFixture(t)
	expiry := testNow.AddDate(0, 0, 5)
	units, err := f.unitUC.Create(context.Background(), dto.CreateUnitsRequest{
		ArticleID:    f.article.ID,
		LotMasterID:  f.lot.ID,
		Quantity:     1,
		Location:     testLocation,
		ReceivedDate: testNow.AddDate(0, 0, -70),
		ExpiryDate:   &expiry,
	})
	require.NoError(t, err)

	resp := dto.UnitResponseFrom(units[0], testNow)
	assert.Equal(t, 70, resp.StockAge)
	assert.Equal(t, "yellow", resp.StockAgeAlertLevel)
	assert.Equal(t, alert.LevelWarning, resp.ExpiryAlertLevel)
	require.NotNil(t, resp.DaysUntilExpiry)
	assert.Equal(t, 5, *resp.DaysUntilExpiry)
	assert.Equal(t, resp.ReceivedDate, resp.LastMovementAt,
		"sin historial el último movimiento es la recepción")
}

func TestMutacionRechazada_NoAlteraEstado(t *testing.T) {
	f := newFixture(t)
	unit := createUnits(t, f, 1)[0]
	ctx := context.Background()

	_, err := f.unitUC.Ship(ctx, unit.ID, dto.ShipUnitRequest{}, "pedro")
	require.NoError(t, err)

	before, err := f.units.GetByID(unit.ID)
	require.NoError(t, err)

	_, err = f.unitUC.Move(ctx, unit.ID, dto.MoveUnitRequest{
		Location: dto.LocationRequest{ClientID: "cli-1", WarehouseID: "wh-9", Code: "Z-99"},
	}, "pedro")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	after, err := f.units.GetByID(unit.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Location, after.Location, "la operación rechazada no deja rastro")
	assert.Equal(t, len(before.Movements), len(after.Movements))
}

func TestMove_ConservaHistorialCompleto(t *testing.T) {
	f := newFixture(t)
	unit := createUnits(t, f, 1)[0]
	ctx := context.Background()

	stops := []dto.LocationRequest{
		{ClientID: "cli-1", WarehouseID: "wh-1", Code: "B-01"},
		{ClientID: "cli-1", WarehouseID: "wh-2", Code: "C-07"},
		{ClientID: "cli-1", WarehouseID: "wh-2", Code: "C-09"},
	}
	var last *entity.StockUnit
	var err error
	for _, stop := range stops {
		last, err = f.unitUC.Move(ctx, unit.ID, dto.MoveUnitRequest{Location: stop}, "maria")
		require.NoError(t, err)
	}

	require.Len(t, last.Movements, len(stops), "el historial es append-only")
	for i, stop := range stops {
		assert.Equal(t, stop.Code, last.Movements[i].To.Code)
	}
	assert.Equal(t, stops[len(stops)-1].Code, last.Location.Code)
	assert.WithinDuration(t, testNow, last.LastMovementAt(), time.Second)
}
