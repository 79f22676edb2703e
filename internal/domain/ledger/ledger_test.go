package ledger_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/domain/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func trip(origin, dest, m3 string) *entity.ActivityReport {
	q := d(m3)
	return &entity.ActivityReport{
		ID: "r1", ReportType: entity.ReportViajes, Origin: origin, Destination: dest,
		Material: "Arena", CantidadM3: &q,
	}
}

func TestAcopioResolver(t *testing.T) {
	r := ledger.NewAcopioResolver()
	assert.True(t, r.IsAcopio("Acopio Maquipaes"))
	assert.True(t, r.IsAcopio("  ACOPIO  "))
	assert.True(t, r.IsAcopio("Patio Maquipaés norte"))
	assert.False(t, r.IsAcopio("Cantera X"))
	assert.False(t, r.IsAcopio(""))

	custom := ledger.NewAcopioResolver("Bodega Central")
	assert.True(t, custom.IsAcopio("bodega central"))
	assert.False(t, custom.IsAcopio("Acopio"))
}

func TestCapabilitiesFor(t *testing.T) {
	c, err := ledger.CapabilitiesFor(entity.MachineCargador)
	require.NoError(t, err)
	assert.False(t, c.CanEnter)
	assert.True(t, c.ForceOriginAcopio)
	assert.True(t, c.IsAlwaysAtAcopio)

	_, err = ledger.CapabilitiesFor(entity.MachineType("Grua"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestPlanTrip(t *testing.T) {
	volqueta, _ := ledger.CapabilitiesFor(entity.MachineVolqueta)
	cargador, _ := ledger.CapabilitiesFor(entity.MachineCargador)
	excavadora, _ := ledger.CapabilitiesFor(entity.MachineExcavadora)
	acopio := ledger.NewAcopioResolver()

	tests := []struct {
		name string
		rep  *entity.ActivityReport
		caps ledger.Capabilities
		want ledger.PlanKind
	}{
		{"entrada desde cantera", trip("Cantera X", "Acopio Maquipaes", "30"), volqueta, ledger.PlanEntrada},
		{"salida a cliente", trip("Acopio Maquipaes", "Cliente Y", "30"), volqueta, ledger.PlanSalida},
		{"sin acopio", trip("Cantera X", "Cliente Y", "30"), volqueta, ledger.PlanNone},
		{"cargador fuerza origen acopio", trip("Cantera X", "Cliente Y", "30"), cargador, ledger.PlanSalida},
		{"cargador sin origen sale del acopio", trip("", "Cliente Y", "30"), cargador, ledger.PlanSalida},
		{"cargador hacia acopio no registra entrada", trip("Cantera X", "Acopio", "30"), cargador, ledger.PlanNone},
		{"excavadora no registra salidas", trip("Acopio", "Obra Z", "30"), excavadora, ledger.PlanNone},
		{"interno sin cambio de material", trip("Acopio", "Acopio Maquipaes", "30"), volqueta, ledger.PlanNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ledger.PlanTrip(tc.rep, tc.caps, acopio)
			require.NoError(t, err)
			assert.Equal(t, tc.want, plan.Kind, plan.Motivo)
			if tc.want == ledger.PlanNone {
				assert.NotEmpty(t, plan.Motivo)
			}
		})
	}
}

func TestPlanTrip_Desglose(t *testing.T) {
	caps, _ := ledger.CapabilitiesFor(entity.MachineVolqueta)
	r := trip("Acopio", "Acopio Maquipaes", "12")
	r.MaterialDestino = "Arena Fina"
	plan, err := ledger.PlanTrip(r, caps, ledger.NewAcopioResolver())
	require.NoError(t, err)
	assert.Equal(t, ledger.PlanDesglose, plan.Kind)
	assert.Equal(t, "Arena Fina", plan.MaterialDestino)
}

func TestPlanTrip_Validacion(t *testing.T) {
	caps, _ := ledger.CapabilitiesFor(entity.MachineVolqueta)
	acopio := ledger.NewAcopioResolver()

	zero := trip("Cantera", "Acopio", "0")
	_, err := ledger.PlanTrip(zero, caps, acopio)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	noPlaces := trip("", "", "5")
	_, err = ledger.PlanTrip(noPlaces, caps, acopio)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	horas := trip("Cantera", "Acopio", "5")
	horas.ReportType = entity.ReportHorasTrabajadas
	_, err = ledger.PlanTrip(horas, caps, acopio)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestNextBalance(t *testing.T) {
	next, err := ledger.NextBalance(d("100"), d("30"))
	require.NoError(t, err)
	assert.True(t, d("130").Equal(next))

	same, err := ledger.NextBalance(d("100"), d("-150"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, d("100").Equal(same), "el saldo no se recorta ni cambia")
}

// Para cualquier secuencia de entradas/salidas aceptadas, el saldo acumulado coincide con
// el saldo reconstruido desde cero a partir de los asientos.
func TestReplayBalances_CoincideConSaldoAcumulado(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for round := 0; round < 50; round++ {
		balance := decimal.Zero
		var movs []entity.MovementRecord
		for i := 0; i < 40; i++ {
			qty := decimal.NewFromInt(int64(rng.Intn(50) + 1))
			tipo := entity.MovimientoEntrada
			delta := qty
			if rng.Intn(2) == 0 {
				tipo, delta = entity.MovimientoSalida, qty.Neg()
			}
			next, err := ledger.NextBalance(balance, delta)
			if err != nil {
				continue
			}
			m := entity.MovementRecord{
				ID: "m", Fecha: base.Add(time.Duration(i) * time.Minute), Tipo: tipo, Material: "Arena",
				Cantidad: qty, CantidadAnterior: balance, CantidadPosterior: next,
			}
			require.True(t, m.Valid())
			movs = append(movs, m)
			balance = next
		}
		// desordenar: el replay ordena por fecha
		rng.Shuffle(len(movs), func(i, j int) { movs[i], movs[j] = movs[j], movs[i] })
		replayed := ledger.ReplayBalances(movs)
		assert.True(t, balance.Equal(replayed[ledger.MaterialKey("arena")]), "ronda %d", round)
	}
}

func TestMovementRecord_DeltaDesglose(t *testing.T) {
	out := entity.MovementRecord{Tipo: entity.MovimientoDesglose, Material: "Arena", Cantidad: d("5"), CantidadAnterior: d("20"), CantidadPosterior: d("15")}
	in := entity.MovementRecord{Tipo: entity.MovimientoDesglose, Material: "Arena Fina", Cantidad: d("5"), CantidadAnterior: d("0"), CantidadPosterior: d("5")}
	assert.True(t, d("-5").Equal(out.Delta()))
	assert.True(t, d("5").Equal(in.Delta()))
	assert.True(t, out.Valid())
	assert.True(t, in.Valid())

	bad := out
	bad.CantidadPosterior = d("16")
	assert.False(t, bad.Valid())
}
