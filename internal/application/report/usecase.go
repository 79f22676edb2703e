// Package report registra reportes de actividad: aplica el movimiento de inventario de los
// viajes, sintetiza la venta automática y persiste todo en una sola llamada al router.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/application/inventory"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
	"github.com/jhoicas/maquipaes-api/internal/domain/ledger"
	"github.com/jhoicas/maquipaes-api/internal/domain/pricing"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
)

// AddReportResult resultado de registrar un reporte.
type AddReportResult struct {
	Exito       bool                      `json:"exito"`
	Mensaje     string                    `json:"mensaje"`
	Advertencia string                    `json:"advertencia,omitempty"`
	ReportID    string                    `json:"reportId"`
	Source      datasource.DataSource     `json:"source"`
	Queued      int                       `json:"queued"`
	Movement    *inventory.MovementResult `json:"movement,omitempty"`
	VentaID     string                    `json:"ventaId,omitempty"`
	Actualizado bool                      `json:"actualizado"`
}

// UseCase orquestador de reportes.
type UseCase struct {
	txRunner  inventory.TxRunner
	movements *inventory.MovementUseCase
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el orquestador.
func NewUseCase(txRunner inventory.TxRunner, movements *inventory.MovementUseCase, log zerolog.Logger) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		movements: movements,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Validate comprueba el reporte antes de tocar el almacenamiento.
func Validate(r *entity.ActivityReport) error {
	if r == nil {
		return fmt.Errorf("%w: reporte vacío", domain.ErrInvalidInput)
	}
	if _, err := entity.ParseReportType(string(r.ReportType)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if strings.TrimSpace(r.MachineID) == "" {
		return fmt.Errorf("%w: machineId requerido", domain.ErrInvalidInput)
	}
	switch {
	case r.ReportType.IsTrip():
		return ledger.ValidateTrip(r)
	case r.ReportType.IsHours():
		if r.Hours == nil || !r.Hours.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: el reporte de horas requiere horas > 0", domain.ErrInvalidInput)
		}
	}
	if r.Value != nil && r.Value.IsNegative() {
		return fmt.Errorf("%w: valor negativo", domain.ErrInvalidInput)
	}
	return nil
}

// AddReport registra el reporte. Un viaje nuevo aplica su movimiento y, si el movimiento
// tuvo éxito, genera o sobrescribe la venta automática; el reporte se guarda siempre, con
// ProcesamientoOmitido cuando el movimiento no se aplicó. Volver a enviar un reporte
// existente lo actualiza sin repetir ni revertir el movimiento ya aplicado; cambiarle el
// tipo es un conflicto.
func (uc *UseCase) AddReport(ctx context.Context, in entity.ActivityReport) (AddReportResult, error) {
	r := in
	if err := Validate(&r); err != nil {
		return AddReportResult{}, err
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.ReportDate.IsZero() {
		r.ReportDate = uc.now()
	}
	r.TarifaEncontrada, r.ProcesamientoOmitido, r.MensajeProcesamiento = false, false, ""

	res := AddReportResult{ReportID: r.ID}
	commit, err := uc.txRunner.Run(ctx, func(tx datasource.LedgerTx) error {
		machine, err := loadMachine(ctx, tx, r.MachineID)
		if err != nil {
			return err
		}
		existing, err := loadReport(ctx, tx, r.ID)
		if err != nil {
			return err
		}

		op := entity.SyncCreate
		if existing != nil {
			if existing.ReportType != r.ReportType {
				return fmt.Errorf("%w: el reporte %s es de tipo %s y no puede pasar a %s",
					domain.ErrConflict, r.ID, existing.ReportType, r.ReportType)
			}
			op = entity.SyncUpdate
			res.Actualizado = true
			r.CreatedAt = existing.CreatedAt
		} else {
			r.CreatedAt = uc.now()
		}

		switch {
		case r.ReportType.IsTrip() && existing == nil:
			if err := uc.processNewTrip(ctx, tx, &r, machine, &res); err != nil {
				return err
			}
		case r.ReportType.IsTrip():
			if err := uc.reprocessTrip(ctx, tx, &r, existing, machine, &res); err != nil {
				return err
			}
		case r.ReportType.IsHours():
			if err := uc.attachSale(ctx, tx, &r, machine, false, &res); err != nil {
				return err
			}
		}
		return tx.Put(entity.EntityReportes, op, r.ID, r)
	})
	if err != nil {
		return AddReportResult{}, err
	}

	res.Exito = true
	res.Source = commit.Source
	res.Queued = commit.Queued
	res.Mensaje = "reporte registrado"
	if res.Actualizado {
		res.Mensaje = "reporte actualizado"
	}
	if commit.Message != "" {
		res.Mensaje += "; " + commit.Message
	}
	uc.log.Info().
		Str("reporte_id", r.ID).
		Str("tipo", string(r.ReportType)).
		Str("source", string(commit.Source)).
		Bool("omitido", r.ProcesamientoOmitido).
		Msg("reporte registrado")
	return res, nil
}

func (uc *UseCase) processNewTrip(ctx context.Context, tx datasource.LedgerTx, r *entity.ActivityReport, machine entity.Machine, res *AddReportResult) error {
	mres, err := uc.movements.ApplyInTx(ctx, tx, r, machine)
	if err != nil {
		return err
	}
	res.Movement = &mres
	if !mres.Exito {
		r.ProcesamientoOmitido = true
		r.TarifaEncontrada = false
		r.MensajeProcesamiento = mres.Mensaje
		res.Advertencia = mres.Mensaje
		return nil
	}
	return uc.attachSale(ctx, tx, r, machine, mres.Tipo == entity.MovimientoSalida, res)
}

// reprocessTrip conserva el resultado de inventario del reporte original y solo vuelve a
// sintetizar la venta automática (mismo id).
func (uc *UseCase) reprocessTrip(ctx context.Context, tx datasource.LedgerTx, r, existing *entity.ActivityReport, machine entity.Machine, res *AddReportResult) error {
	if existing.ProcesamientoOmitido {
		r.ProcesamientoOmitido = true
		r.MensajeProcesamiento = existing.MensajeProcesamiento
		res.Advertencia = "el viaje no movió inventario al registrarse; la edición no lo reprocesa"
		return nil
	}
	leaves, err := reportLeftAcopio(ctx, tx, r.ID)
	if err != nil {
		return err
	}
	res.Advertencia = "la edición no revierte el movimiento de inventario ya aplicado"
	return uc.attachSale(ctx, tx, r, machine, leaves, res)
}

func (uc *UseCase) attachSale(ctx context.Context, tx datasource.LedgerTx, r *entity.ActivityReport, machine entity.Machine, leaves bool, res *AddReportResult) error {
	rates, err := LoadRates(ctx, tx)
	if err != nil {
		return err
	}
	venta, found, err := pricing.SynthesizeAutomaticSale(pricing.SaleInput{Report: r, Machine: machine, MaterialLeavesAcopio: leaves}, rates)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			r.MensajeProcesamiento = "sin venta automática: " + err.Error()
			res.Advertencia = r.MensajeProcesamiento
			return nil
		}
		return err
	}
	_, exists, err := tx.Get(ctx, entity.EntityVentas, venta.ID)
	if err != nil {
		return err
	}
	op := entity.SyncCreate
	if exists {
		op = entity.SyncUpdate
	}
	if err := tx.Put(entity.EntityVentas, op, venta.ID, venta); err != nil {
		return err
	}
	r.TarifaEncontrada = found
	if !found {
		r.MensajeProcesamiento = "venta automática con tarifa por defecto"
	}
	res.VentaID = venta.ID
	return nil
}

func loadMachine(ctx context.Context, tx datasource.LedgerTx, id string) (entity.Machine, error) {
	row, ok, err := tx.Get(ctx, entity.EntityMachines, id)
	if err != nil {
		return entity.Machine{}, err
	}
	if !ok {
		return entity.Machine{}, fmt.Errorf("%w: máquina %s no registrada", domain.ErrInvalidInput, id)
	}
	var m entity.Machine
	if err := json.Unmarshal(row, &m); err != nil {
		return entity.Machine{}, fmt.Errorf("%w: máquina %s ilegible", domain.ErrInvalidInput, id)
	}
	t, err := entity.ParseMachineType(string(m.Tipo))
	if err != nil {
		return entity.Machine{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	m.Tipo = t
	return m, nil
}

func loadReport(ctx context.Context, tx datasource.LedgerTx, id string) (*entity.ActivityReport, error) {
	row, ok, err := tx.Get(ctx, entity.EntityReportes, id)
	if err != nil || !ok {
		return nil, err
	}
	var r entity.ActivityReport
	if err := json.Unmarshal(row, &r); err != nil {
		return nil, fmt.Errorf("%w: reporte %s ilegible: %v", domain.ErrCorruptCache, id, err)
	}
	return &r, nil
}

func reportLeftAcopio(ctx context.Context, tx datasource.LedgerTx, reportID string) (bool, error) {
	rows, err := tx.List(ctx, entity.EntityMovimientos)
	if err != nil {
		return false, err
	}
	movs, _ := localstore.Decode[entity.MovementRecord](rows)
	for _, m := range movs {
		if m.ReporteID == reportID && m.Tipo == entity.MovimientoSalida {
			return true, nil
		}
	}
	return false, nil
}

// Lister lo cumplen LedgerTx y las lecturas de la caché local.
type Lister interface {
	List(ctx context.Context, et entity.EntityType) ([]json.RawMessage, error)
}

// LoadRates arma los catálogos de precios desde las colecciones materiales, tarifas_flete
// y tarifas_escombrera.
func LoadRates(ctx context.Context, l Lister) (pricing.Rates, error) {
	var rates pricing.Rates
	rows, err := l.List(ctx, entity.EntityMateriales)
	if err != nil {
		return rates, err
	}
	rates.Materiales, _ = localstore.Decode[entity.Material](rows)

	if rows, err = l.List(ctx, entity.EntityTarifasFlete); err != nil {
		return rates, err
	}
	rates.Fletes, _ = localstore.Decode[entity.TarifaFlete](rows)

	if rows, err = l.List(ctx, entity.EntityTarifasEscombrera); err != nil {
		return rates, err
	}
	rates.Escombreras, _ = localstore.Decode[entity.TarifaEscombrera](rows)
	return rates, nil
}
