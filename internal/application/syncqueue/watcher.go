package syncqueue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/maquipaes-api/internal/application/connectivity"
)

// Watcher drena la cola en segundo plano: tras cada escritura (Kick), cuando el remoto
// vuelve a estar alcanzable y, como red de seguridad, cada interval.
type Watcher struct {
	q        *Queue
	conn     *connectivity.State
	interval time.Duration
	log      zerolog.Logger
}

// NewWatcher construye el vigilante.
func NewWatcher(q *Queue, conn *connectivity.State, interval time.Duration, log zerolog.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{q: q, conn: conn, interval: interval, log: log}
}

// Run bloquea hasta que ctx termine.
func (w *Watcher) Run(ctx context.Context) {
	changes := w.conn.Subscribe()
	reachable := w.conn.Snapshot().Reachable()
	if reachable {
		w.drain(ctx, "inicio")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.q.Kicks():
			if w.conn.Snapshot().Reachable() {
				w.drain(ctx, "escritura")
			}
		case snap := <-changes:
			now := snap.Reachable()
			if now && !reachable {
				w.drain(ctx, "reconexion")
			}
			reachable = now
		case <-ticker.C:
			if w.conn.Snapshot().Reachable() {
				w.drain(ctx, "temporizador")
			}
		}
	}
}

func (w *Watcher) drain(ctx context.Context, trigger string) {
	res, err := w.q.Process(ctx)
	if err != nil {
		w.log.Error().Err(err).Str("trigger", trigger).Msg("drenado de cola fallido")
		return
	}
	if res.Skipped {
		w.log.Debug().Str("trigger", trigger).Msg("drenado omitido: ya hay uno en curso")
	}
}
