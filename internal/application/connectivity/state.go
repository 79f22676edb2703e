// Package connectivity mantiene el par de banderas (red del dispositivo, sesión remota)
// que consultan el router y la cola. Se pasa explícitamente a quien lo necesita.
package connectivity

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Snapshot valor inmutable del estado en un instante.
type Snapshot struct {
	IsOnline        bool      `json:"isOnline"`
	RemoteConnected bool      `json:"remoteConnected"`
	CheckedAt       time.Time `json:"checkedAt"`
}

// Reachable: red disponible y sesión remota activa.
func (s Snapshot) Reachable() bool { return s.IsOnline && s.RemoteConnected }

// Pinger lo implementa repository.RemoteStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// State estado de conectividad compartido del proceso.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
	subs []chan Snapshot
	log  zerolog.Logger
}

// New construye el estado con los valores iniciales.
func New(online, remoteConnected bool, log zerolog.Logger) *State {
	return &State{
		snap: Snapshot{IsOnline: online, RemoteConnected: remoteConnected, CheckedAt: time.Now().UTC()},
		log:  log,
	}
}

// Snapshot devuelve una copia del estado actual.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// SetOnline registra el estado de la red del dispositivo.
func (s *State) SetOnline(v bool) { s.update(func(sn *Snapshot) { sn.IsOnline = v }) }

// SetRemoteConnected registra el estado de la sesión con el remoto.
func (s *State) SetRemoteConnected(v bool) { s.update(func(sn *Snapshot) { sn.RemoteConnected = v }) }

// Subscribe devuelve un canal que recibe cada cambio de estado. Si el suscriptor no
// consume, los cambios intermedios se descartan y queda el último.
func (s *State) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *State) update(fn func(*Snapshot)) {
	s.mu.Lock()
	prev := s.snap
	next := prev
	fn(&next)
	next.CheckedAt = time.Now().UTC()
	s.snap = next
	changed := prev.IsOnline != next.IsOnline || prev.RemoteConnected != next.RemoteConnected
	subs := append([]chan Snapshot(nil), s.subs...)
	s.mu.Unlock()

	if !changed {
		return
	}
	s.log.Info().
		Bool("is_online", next.IsOnline).
		Bool("remote_connected", next.RemoteConnected).
		Msg("cambio de conectividad")
	for _, ch := range subs {
		publish(ch, next)
	}
}

func publish(ch chan Snapshot, v Snapshot) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Probe hace ping al remoto y actualiza ambas banderas. Una falla de red (dial, DNS,
// timeout de socket) deja al nodo sin red; un rechazo o una sesión inválida solo marca la
// sesión remota como caída.
func (s *State) Probe(ctx context.Context, p Pinger) Snapshot {
	err := p.Ping(ctx)
	offline := NetworkDown(err)
	if err != nil {
		s.log.Debug().Err(err).Bool("sin_red", offline).Msg("ping remoto fallido")
	}
	s.update(func(sn *Snapshot) {
		switch {
		case err == nil:
			sn.IsOnline = true
		case offline:
			sn.IsOnline = false
		}
		sn.RemoteConnected = err == nil
	})
	return s.Snapshot()
}

// NetworkDown indica si err viene de la red y no del servidor remoto.
func NetworkDown(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Heartbeat ejecuta Probe cada interval hasta que ctx termine.
func (s *State) Heartbeat(ctx context.Context, p Pinger, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx, p)
		}
	}
}
