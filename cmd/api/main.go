package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/maquipaes-api/docs"
	"github.com/jhoicas/maquipaes-api/internal/application/syncqueue"
	"github.com/jhoicas/maquipaes-api/internal/bootstrap"
	infrapdf "github.com/jhoicas/maquipaes-api/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/maquipaes-api/internal/interfaces/http"
	"github.com/jhoicas/maquipaes-api/pkg/config"
	"github.com/jhoicas/maquipaes-api/pkg/logger"
)

// @title        Maquipaes API
// @version      1.0
// @description  Reportes de flota, inventario del acopio, ventas y sincronización offline.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("remote", cfg.Remote.Driver).
		Str("local", cfg.Local.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	deps, err := bootstrap.Build(ctx, cfg, log.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("armar dependencias")
	}
	defer deps.Close()

	// Hidratar la caché local con lo que haya en el remoto antes de aceptar tráfico.
	if err := deps.Router.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("hidratación inicial incompleta; se sirve desde la caché local")
	}

	// Heartbeat de conexión y drenado de la cola en segundo plano.
	if deps.Remote != nil {
		go deps.Conn.Heartbeat(ctx, deps.Remote, cfg.Sync.HeartbeatInterval)
	}
	watcher := syncqueue.NewWatcher(deps.Queue, deps.Conn, cfg.Sync.DrainInterval, log.Component("sync-watcher"))
	go watcher.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Maquipaes API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		DataRouter:  deps.Router,
		AuthUC:      deps.Auth,
		ReportUC:    deps.Reports,
		MovementUC:  deps.Movements,
		SalesUC:     deps.Sales,
		Checker:     deps.Checker,
		ReportPDF:   infrapdf.NewReconciliationPDF(cfg.App.Name),
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
