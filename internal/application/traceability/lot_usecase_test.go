package traceability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsanzl/custodia-api/internal/application/dto"
	"github.com/jmsanzl/custodia-api/internal/domain"
	"github.com/jmsanzl/custodia-api/internal/domain/alert"
	"github.com/jmsanzl/custodia-api/internal/domain/entity"
)

func TestCreateMaster(t *testing.T) {
	f := newFixture(t)

	lot, err := f.lotUC.CreateMaster(dto.CreateLotRequest{
		Code: "LM-2025-002", ArticleID: f.article.ID, Quantity: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.LotTypeMaster, lot.Type)
	assert.Equal(t, entity.LotStatusActive, lot.Status)
	assert.Equal(t, 50, lot.DeclaredQuantity)
	assert.Equal(t, 50, lot.RemainingQuantity,
		"el remanente arranca en la cantidad declarada hasta el primer recálculo")
}

func TestCreateMaster_Validaciones(t *testing.T) {
	f := newFixture(t)

	_, err := f.lotUC.CreateMaster(dto.CreateLotRequest{Code: "L-X", ArticleID: f.article.ID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.lotUC.CreateMaster(dto.CreateLotRequest{Code: "L-X", ArticleID: "no-existe", Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.lotUC.CreateMaster(dto.CreateLotRequest{ArticleID: f.article.ID, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrValidation, "el código es obligatorio")

	_, err = f.lotUC.CreateMaster(dto.CreateLotRequest{Code: f.lot.Code, ArticleID: f.article.ID, Quantity: 5})
	assert.ErrorIs(t, err, domain.ErrConflict, "el código de lote es único")
}

func TestCreateExpo_HeredaDelPadre(t *testing.T) {
	f := newFixture(t)
	fab := testNow.AddDate(0, -6, 0)
	exp := testNow.AddDate(1, 0, 0)
	parent, err := f.lotUC.CreateMaster(dto.CreateLotRequest{
		Code: "LM-2025-003", ArticleID: f.article.ID, Quantity: 40,
		ManufacturingDate: &fab, ExpiryDate: &exp,
	})
	require.NoError(t, err)

	expo, err := f.lotUC.CreateExpo(parent.ID, dto.CreateExpoLotRequest{Code: "LE-2025-001", Quantity: 12})
	require.NoError(t, err)
	assert.Equal(t, entity.LotTypeExpo, expo.Type)
	assert.Equal(t, parent.ID, expo.ParentLotID)
	assert.Equal(t, parent.ArticleID, expo.ArticleID, "el artículo se hereda del padre")
	assert.Equal(t, parent.ExpiryDate, expo.ExpiryDate, "la caducidad se hereda del padre")
	assert.Equal(t, 12, expo.DeclaredQuantity)

	// La cantidad declarada del padre no se decrementa.
	reloaded, err := f.lotUC.Get(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, reloaded.DeclaredQuantity)
}

func TestCreateExpo_SoloDeLoteMaestro(t *testing.T) {
	f := newFixture(t)
	expo, err := f.lotUC.CreateExpo(f.lot.ID, dto.CreateExpoLotRequest{Code: "LE-2025-002", Quantity: 3})
	require.NoError(t, err)

	_, err = f.lotUC.CreateExpo(expo.ID, dto.CreateExpoLotRequest{Code: "LE-2025-003", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrValidation, "un lote expo no puede ser padre")

	_, err = f.lotUC.CreateExpo("no-existe", dto.CreateExpoLotRequest{Code: "LE-2025-004", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetLot_MaterializaCaducidadLazy(t *testing.T) {
	f := newFixture(t)
	vencida := testNow.AddDate(0, 0, -1)
	lot, err := f.lotUC.CreateMaster(dto.CreateLotRequest{
		Code: "LM-2025-004", ArticleID: f.article.ID, Quantity: 5, ExpiryDate: &vencida,
	})
	require.NoError(t, err)

	got, err := f.lotUC.Get(lot.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStatusExpired, got.Status,
		"la transición active→expired se materializa en la lectura")

	stored, err := f.lots.GetByID(lot.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStatusExpired, stored.Status, "la transición se persiste")
}

func TestExpiringWithin(t *testing.T) {
	f := newFixture(t)
	pronto := testNow.AddDate(0, 0, 10)
	lejos := testNow.AddDate(0, 6, 0)

	cercano, err := f.lotUC.CreateMaster(dto.CreateLotRequest{
		Code: "LM-2025-005", ArticleID: f.article.ID, Quantity: 5, ExpiryDate: &pronto,
	})
	require.NoError(t, err)
	_, err = f.lotUC.CreateMaster(dto.CreateLotRequest{
		Code: "LM-2025-006", ArticleID: f.article.ID, Quantity: 5, ExpiryDate: &lejos,
	})
	require.NoError(t, err)

	// Lote con caducidad ya pasada que aún figura activo: pertenece a Expired,
	// no al aviso de próximos a caducar.
	ayer := testNow.AddDate(0, 0, -1)
	vencido, err := f.lotUC.CreateMaster(dto.CreateLotRequest{
		Code: "LM-2025-009", ArticleID: f.article.ID, Quantity: 5, ExpiryDate: &ayer,
	})
	require.NoError(t, err)

	list, err := f.lotUC.ExpiringWithin(30)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cercano.ID, list[0].ID)

	// La consulta materializa la transición lazy del vencido.
	stored, err := f.lots.GetByID(vencido.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStatusExpired, stored.Status)

	_, err = f.lotUC.ExpiringWithin(0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLotResponse_NivelDeAlerta(t *testing.T) {
	f := newFixture(t)
	pronto := testNow.AddDate(0, 0, 4)
	lot, err := f.lotUC.CreateMaster(dto.CreateLotRequest{
		Code: "LM-2025-007", ArticleID: f.article.ID, Quantity: 5, ExpiryDate: &pronto,
	})
	require.NoError(t, err)

	resp := dto.LotResponseFrom(lot, testNow)
	assert.Equal(t, alert.LevelWarning, resp.ExpiryAlertLevel)
}

func TestRecomputeRemaining_Reconciliacion(t *testing.T) {
	f := newFixture(t)
	createUnits(t, f, 4)

	// Desajuste artificial del remanente persistido.
	stored, err := f.lots.GetByID(f.lot.ID)
	require.NoError(t, err)
	stored.RemainingQuantity = 99
	require.NoError(t, f.lots.Update(stored))

	lot, err := f.lotUC.RecomputeRemaining(f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, lot.RemainingQuantity, "el recuento de unidades es la verdad")

	_, err = f.lotUC.RecomputeRemaining("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
