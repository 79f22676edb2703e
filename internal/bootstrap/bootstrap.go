// Package bootstrap arma el grafo de dependencias a partir de la configuración. Lo comparten
// el servicio HTTP y el CLI de operación.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/maquipaes-api/internal/application/auth"
	"github.com/jhoicas/maquipaes-api/internal/application/connectivity"
	"github.com/jhoicas/maquipaes-api/internal/application/datasource"
	"github.com/jhoicas/maquipaes-api/internal/application/inventory"
	"github.com/jhoicas/maquipaes-api/internal/application/reconciliation"
	"github.com/jhoicas/maquipaes-api/internal/application/report"
	"github.com/jhoicas/maquipaes-api/internal/application/sales"
	"github.com/jhoicas/maquipaes-api/internal/application/syncqueue"
	"github.com/jhoicas/maquipaes-api/internal/domain/ledger"
	"github.com/jhoicas/maquipaes-api/internal/domain/repository"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/localstore"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/memory"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/maquipaes-api/internal/infrastructure/redis"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/maquipaes-api/internal/infrastructure/supabase"
	"github.com/jhoicas/maquipaes-api/pkg/config"
)

// App dependencias armadas.
type App struct {
	Conn      *connectivity.State
	Remote    repository.RemoteStore // nil sin credenciales: modo localStorage
	Queue     *syncqueue.Queue
	Router    *datasource.Router
	Movements *inventory.MovementUseCase
	Reports   *report.UseCase
	Sales     *sales.UseCase
	Checker   *reconciliation.Checker
	Auth      *auth.UseCase

	closers []func()
}

// Close libera conexiones en orden inverso de apertura.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build abre la caché local y el remoto configurados y arma los casos de uso.
// Un remoto inalcanzable no es error: se arranca con remoteConnected=false y la cola
// drena cuando vuelva.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{}

	cache, err := a.openLocal(ctx, cfg.Local)
	if err != nil {
		a.Close()
		return nil, err
	}
	store := localstore.New(cache, log.With().Str("component", "localstore").Logger())

	remote, err := a.openRemote(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Remote = remote

	a.Conn = connectivity.New(true, false, log.With().Str("component", "connectivity").Logger())
	if remote != nil {
		a.Conn.Probe(ctx, remote)
	}

	a.Queue = syncqueue.New(store, remote, a.Conn, syncqueue.Config{
		MaxAttempts:    cfg.Sync.MaxAttempts,
		InitialBackoff: cfg.Sync.InitialBackoff,
		MaxBackoff:     cfg.Sync.MaxBackoff,
	}, log.With().Str("component", "syncqueue").Logger())
	a.Router = datasource.NewRouter(store, a.Queue, remote, a.Conn, log.With().Str("component", "datasource").Logger())

	runner := datasource.NewTxRunner(a.Router)
	a.Movements = inventory.NewMovementUseCase(runner, a.Router, ledger.NewAcopioResolver(cfg.Acopio.Names...),
		log.With().Str("component", "inventory").Logger())
	a.Reports = report.NewUseCase(runner, a.Movements, log.With().Str("component", "report").Logger())
	a.Sales = sales.NewUseCase(runner, log.With().Str("component", "sales").Logger())
	a.Checker = reconciliation.NewChecker(a.Router, log.With().Str("component", "reconciliation").Logger())
	a.Auth = auth.NewUseCase(runner, a.Router, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.With().Str("component", "auth").Logger())
	return a, nil
}

func (a *App) openLocal(ctx context.Context, cfg config.LocalConfig) (repository.LocalCache, error) {
	switch cfg.Driver {
	case config.LocalSQLite:
		c, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("caché local sqlite: %w", err)
		}
		a.closers = append(a.closers, func() { _ = c.Close() })
		return c, nil
	case config.LocalRedis:
		c, err := infraredis.Connect(ctx, infraredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("caché local redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = c.Close() })
		return c, nil
	case config.LocalMemory:
		return memory.NewLocalCache(), nil
	}
	return nil, fmt.Errorf("driver local desconocido %q", cfg.Driver)
}

// openRemote devuelve nil, nil cuando el driver no tiene credenciales.
func (a *App) openRemote(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.RemoteStore, error) {
	if !cfg.Remote.Configured(cfg.DB) {
		log.Warn().Str("driver", cfg.Remote.Driver).Msg("remoto sin credenciales: modo localStorage")
		return nil, nil
	}
	switch cfg.Remote.Driver {
	case config.RemoteSupabase:
		s, err := supabase.New(cfg.Remote.SupabaseURL, cfg.Remote.SupabaseKey, cfg.Remote.Timeout)
		if err != nil {
			return nil, fmt.Errorf("cliente supabase: %w", err)
		}
		return s, nil
	case config.RemotePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			// sin base al arrancar: se trabaja local y se reintenta en el próximo arranque
			log.Error().Err(err).Msg("conexión a PostgreSQL; modo localStorage")
			return nil, nil
		}
		a.closers = append(a.closers, pool.Close)
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return nil, fmt.Errorf("esquema remoto: %w", err)
		}
		return postgres.NewStore(pool, cfg.Remote.Timeout), nil
	case config.RemoteMemory:
		return memory.NewRemoteStore(), nil
	}
	return nil, errors.New("driver remoto desconocido " + cfg.Remote.Driver)
}
