package sales_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/maquipaes-api/internal/application/connectivity"
	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/application/sales"
	"github.com/jhoicas/maquipaes-api/internal/application/syncqueue"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (*sales.UseCase, *datasource.Router) {
	t.Helper()
	log := zerolog.Nop()
	conn := connectivity.New(false, false, log)
	store := localstore.New(memory.NewLocalCache(), log)
	q := syncqueue.New(store, memory.NewRemoteStore(), conn, syncqueue.Config{}, log)
	router := datasource.NewRouter(store, q, memory.NewRemoteStore(), conn, log)
	return sales.NewUseCase(datasource.NewTxRunner(router), log), router
}

func manual() entity.Venta {
	return entity.Venta{
		Cliente:      "Constructora Andina",
		FormaPago:    "Contado",
		TipoRegistro: entity.RegistroAutomatico, // se fuerza a Manual
		Detalles: []entity.DetalleVenta{
			{Tipo: entity.DetalleMaterial, ProductoServicio: "Arena", CantidadM3: d("3.333"), ValorUnitario: d("45000"), Subtotal: d("1")},
			{Tipo: entity.DetalleFlete, ProductoServicio: "Flete", CantidadM3: d("1"), ValorUnitario: d("80000.005")},
		},
		TotalVenta: d("999"),
	}
}

func TestSaveManual_RecalculaYMarcaManual(t *testing.T) {
	uc, router := setup(t)
	res, err := uc.SaveManual(context.Background(), manual())
	require.NoError(t, err)

	assert.Equal(t, entity.RegistroManual, res.Venta.TipoRegistro)
	assert.NotEmpty(t, res.Venta.ID)
	// 3.333 × 45000 = 149985 ; 80000.005 -> 80000.01
	assert.True(t, d("149985").Equal(res.Venta.Detalles[0].Subtotal))
	assert.True(t, d("229985.01").Equal(res.Venta.TotalVenta))
	assert.Equal(t, datasource.SourceOffline, res.Source)
	assert.Equal(t, 1, res.Queued)

	rows, _ := router.LocalList(context.Background(), entity.EntityVentas)
	assert.Len(t, rows, 1)
}

func TestSaveManual_Validaciones(t *testing.T) {
	uc, _ := setup(t)
	v := manual()
	v.Cliente = ""
	_, err := uc.SaveManual(context.Background(), v)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	v = manual()
	v.Detalles[0].Tipo = "Regalo"
	_, err = uc.SaveManual(context.Background(), v)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	v = manual()
	v.Detalles = nil
	_, err = uc.SaveManual(context.Background(), v)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSaveManual_NoPisaVentaAutomatica(t *testing.T) {
	ctx := context.Background()
	uc, router := setup(t)
	w, err := datasource.Put(entity.EntityVentas, entity.SyncCreate, "auto-1",
		entity.Venta{ID: "auto-1", Cliente: "X", TipoRegistro: entity.RegistroAutomatico})
	require.NoError(t, err)
	_, err = router.Commit(ctx, w)
	require.NoError(t, err)

	v := manual()
	v.ID = "auto-1"
	_, err = uc.SaveManual(ctx, v)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRecalculate(t *testing.T) {
	ctx := context.Background()
	uc, router := setup(t)
	stale := entity.Venta{
		ID: "v-stale", Cliente: "X", TipoRegistro: entity.RegistroManual,
		Detalles:   []entity.DetalleVenta{{Tipo: entity.DetalleServicio, ProductoServicio: "s", CantidadM3: d("2"), ValorUnitario: d("10"), Subtotal: d("5")}},
		TotalVenta: d("5"),
	}
	w, err := datasource.Put(entity.EntityVentas, entity.SyncCreate, stale.ID, stale)
	require.NoError(t, err)
	_, err = router.Commit(ctx, w)
	require.NoError(t, err)

	res, changed, err := uc.Recalculate(ctx, "v-stale")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, d("20").Equal(res.Venta.TotalVenta))

	row, _, err := router.Get(ctx, entity.EntityVentas, "v-stale")
	require.NoError(t, err)
	var saved entity.Venta
	require.NoError(t, json.Unmarshal(row, &saved))
	assert.True(t, d("20").Equal(saved.TotalVenta))

	_, changed, err = uc.Recalculate(ctx, "v-stale")
	require.NoError(t, err)
	assert.False(t, changed, "ya estaba al día")

	_, _, err = uc.Recalculate(ctx, "nada")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveManual_UsaLocalstoreComoFilaJSON(t *testing.T) {
	uc, router := setup(t)
	res, err := uc.SaveManual(context.Background(), manual())
	require.NoError(t, err)
	rows, _ := router.LocalList(context.Background(), entity.EntityVentas)
	id, err := localstore.RowID(rows[0], "id")
	require.NoError(t, err)
	assert.Equal(t, res.Venta.ID, id)
}
