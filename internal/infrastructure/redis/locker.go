package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
)

var _ ledger.RunLocker = (*Locker)(nil)

// Locker candado distribuido con bsm/redislock. Mientras se tiene, se renueva cada TTL/2.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewLocker construye el candado; ttl <= 0 usa 5 minutos.
func NewLocker(rdb *goredis.Client, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Locker{client: redislock.New(rdb), ttl: ttl, log: log}
}

// Acquire obtiene el candado sin esperar. Si otra ejecución lo tiene devuelve domain.ErrRepairRunning.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrRepairRunning
	}
	if err != nil {
		return nil, fmt.Errorf("obtener candado %s: %w", key, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(l.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := lock.Refresh(context.Background(), l.ttl, nil); err != nil {
					l.log.Warn().Err(err).Str("key", key).Msg("no se pudo renovar el candado")
					return
				}
			}
		}
	}()

	return func() {
		close(stop)
		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el candado")
		}
	}, nil
}
