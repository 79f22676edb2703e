package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/maquipaes-api/internal/application/auth"
	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/application/inventory"
	"github.com/jhoicas/maquipaes-api/internal/application/reconciliation"
	"github.com/jhoicas/maquipaes-api/internal/application/report"
	"github.com/jhoicas/maquipaes-api/internal/application/sales"
	"github.com/jhoicas/maquipaes-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DataRouter  *datasource.Router
	AuthUC      *auth.UseCase
	ReportUC    *report.UseCase
	MovementUC  *inventory.MovementUseCase
	SalesUC     *sales.UseCase
	Checker     *reconciliation.Checker
	ReportPDF   ReportPDFGenerator
	JWTSecret   string
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	syncHandler := NewSyncHandler(deps.DataRouter)

	app.Get("/health", func(c *fiber.Ctx) error {
		sn := deps.DataRouter.Connectivity().Snapshot()
		return c.JSON(fiber.Map{
			"status":          "ok",
			"service":         deps.ServiceName,
			"remoteConnected": sn.RemoteConnected,
		})
	})

	api := app.Group("/api")

	// Conectividad (público: lo consulta el indicador de estado del cliente)
	api.Get("/connectivity", syncHandler.Connectivity)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperador)

	// Usuarios
	protected.Post("/users", adminOnly, authHandler.Register)

	// Reportes de actividad
	reportHandler := NewReportHandler(deps.ReportUC)
	protected.Post("/reports", writers, reportHandler.AddReport)

	// Router de datos
	protected.Get("/datasource/:entity", syncHandler.List)

	// Cola de sincronización
	syncGroup := protected.Group("/sync")
	syncGroup.Post("/mark", writers, syncHandler.Mark)
	syncGroup.Post("/process", writers, syncHandler.Process)
	syncGroup.Get("/queue", syncHandler.Queue)
	syncGroup.Post("/dead-letters/:id/retry", adminOnly, syncHandler.RetryDeadLetter)
	syncGroup.Delete("/dead-letters/:id", adminOnly, syncHandler.DiscardDeadLetter)

	// Conciliación
	reconHandler := NewReconciliationHandler(deps.Checker, deps.ReportPDF)
	protected.Get("/reconciliation", RequireRole(jwt.RoleAdmin, jwt.RoleAuditor), reconHandler.Run)

	// Ventas
	salesHandler := NewSalesHandler(deps.SalesUC)
	protected.Post("/sales", writers, salesHandler.Save)
	protected.Post("/sales/:id/recalculate", writers, salesHandler.Recalculate)

	// Inventario del acopio
	inventoryHandler := NewInventoryHandler(deps.MovementUC)
	protected.Get("/inventory", inventoryHandler.Balances)
	protected.Post("/inventory/adjustments", adminOnly, inventoryHandler.RegisterAdjustment)
}
