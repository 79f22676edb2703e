package http

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/maquipaes-api/internal/application/connectivity"
	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/application/dto"
	"github.com/jhoicas/maquipaes-api/internal/domain"
	"github.com/jhoicas/maquipaes-api/internal/domain/entity"
)

// SyncHandler expone el router de datos, la cola de sincronización y el estado de conexión.
type SyncHandler struct {
	router *datasource.Router
	conn   *connectivity.State
}

// NewSyncHandler construye el handler.
func NewSyncHandler(router *datasource.Router) *SyncHandler {
	return &SyncHandler{router: router, conn: router.Connectivity()}
}

// List godoc
// @Summary      Listar una colección
// @Description  Lee del remoto si está alcanzable y sin escrituras pendientes; si no, de la caché local.
// @Tags         datasource
// @Security     Bearer
// @Produce      json
// @Param        entity  path   string  true   "machines, materiales, ventas, inventario_acopio, ..."
// @Param        limit   query  int     false  "máximo de filas (1-100)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.DataSourceListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/datasource/{entity} [get]
func (h *SyncHandler) List(c *fiber.Ctx) error {
	et, err := parseEntity(c.Params("entity"))
	if err != nil {
		return writeError(c, err)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	if err := dto.Validate(page); err != nil {
		return writeError(c, err)
	}
	rows, src, err := h.router.List(c.UserContext(), et)
	if err != nil {
		return writeError(c, err)
	}
	if et == entity.EntityUsers {
		rows = redactPasswords(rows)
	}
	total := len(rows)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)
	return c.JSON(dto.DataSourceListResponse{
		EntityType: string(et),
		Source:     string(src),
		Rows:       rows[start:end],
		Page:       dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Mark godoc
// @Summary      Marcar para sincronizar
// @Description  Aplica la escritura en la caché local y la encola para el remoto. inventario_acopio y movimientos_inventario no se aceptan.
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MarkForSyncRequest  true  "escritura"
// @Success      202  {object}  dto.SyncEntryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sync/mark [post]
func (h *SyncHandler) Mark(c *fiber.Ctx) error {
	var in dto.MarkForSyncRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	et, err := parseEntity(in.EntityType)
	if err != nil {
		return writeError(c, err)
	}
	e, err := h.router.MarkForSync(c.UserContext(), et, entity.SyncOperation(in.Operation), in.EntityID, in.Data)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(entryDTO(e))
}

// Process godoc
// @Summary      Drenar la cola de sincronización
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/sync/process [post]
func (h *SyncHandler) Process(c *fiber.Ctx) error {
	res, err := h.router.Queue().Process(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Queue godoc
// @Summary      Estado de la cola de sincronización
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | dead"
// @Param        limit   query  int     false  "máximo de entradas (1-100)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.SyncQueueResponse
// @Router       /api/sync/queue [get]
func (h *SyncHandler) Queue(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	if err := dto.Validate(page); err != nil {
		return writeError(c, err)
	}
	all, err := h.router.Queue().All(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	status := c.Query("status")
	out := dto.SyncQueueResponse{Entries: []dto.SyncEntryDTO{}}
	var filtered []entity.SyncQueueEntry
	for _, e := range all {
		if e.IsDead() {
			out.DeadLetters++
		} else {
			out.Pending++
		}
		if status == "" || e.Status == status {
			filtered = append(filtered, e)
		}
	}
	start := min(page.Offset, len(filtered))
	end := min(start+page.Limit, len(filtered))
	for _, e := range filtered[start:end] {
		out.Entries = append(out.Entries, entryDTO(e))
	}
	out.Page = dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(filtered)}
	return c.JSON(out)
}

// RetryDeadLetter godoc
// @Summary      Reintentar una entrada en dead-letter
// @Tags         sync
// @Security     Bearer
// @Param        id   path  string  true  "id de la entrada"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sync/dead-letters/{id}/retry [post]
func (h *SyncHandler) RetryDeadLetter(c *fiber.Ctx) error {
	if err := h.router.Queue().RetryDeadLetter(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DiscardDeadLetter godoc
// @Summary      Descartar una entrada en dead-letter
// @Tags         sync
// @Security     Bearer
// @Param        id   path  string  true  "id de la entrada"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sync/dead-letters/{id} [delete]
func (h *SyncHandler) DiscardDeadLetter(c *fiber.Ctx) error {
	if err := h.router.Queue().DiscardDeadLetter(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Connectivity godoc
// @Summary      Estado de conexión
// @Tags         sync
// @Produce      json
// @Success      200  {object}  dto.ConnectivityResponse
// @Router       /api/connectivity [get]
func (h *SyncHandler) Connectivity(c *fiber.Ctx) error {
	sn := h.conn.Snapshot()
	pending, err := h.router.Queue().Pending(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ConnectivityResponse{
		IsOnline:        sn.IsOnline,
		RemoteConnected: sn.RemoteConnected,
		CheckedAt:       sn.CheckedAt,
		Pending:         len(pending),
	})
}

func entryDTO(e entity.SyncQueueEntry) dto.SyncEntryDTO {
	return dto.SyncEntryDTO{
		ID:            e.ID,
		Seq:           e.Seq,
		EntityType:    e.EntityType,
		EntityID:      e.EntityID,
		Operation:     string(e.Operation),
		EnqueuedAt:    e.EnqueuedAt,
		Attempts:      e.Attempts,
		Status:        e.Status,
		LastError:     e.LastError,
		NextAttemptAt: e.NextAttemptAt,
	}
}

func parseEntity(s string) (entity.EntityType, error) {
	et, err := entity.ParseEntityType(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return et, nil
}

// redactPasswords quita password_hash de las filas de users antes de responder.
func redactPasswords(rows []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(row, &m); err != nil {
			continue
		}
		delete(m, "password_hash")
		b, err := json.Marshal(m)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}
