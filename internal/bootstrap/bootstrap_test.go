package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abastecimiento-api/internal/bootstrap"
	"github.com/jhoicas/abastecimiento-api/pkg/config"
	"github.com/jhoicas/abastecimiento-api/pkg/logger"
)

func TestOpen_MemoriaConDatosDeEjemplo(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Storage: config.StorageMemory}}
	ctx := context.Background()

	b, err := bootstrap.Open(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Locker)
	materials, err := b.Materials.List(ctx)
	require.NoError(t, err)
	assert.Len(t, materials, 2)

	svc := bootstrap.NewServices(b, cfg, logger.Nop())
	checks, err := svc.Stock.VerifyAll(ctx)
	require.NoError(t, err)
	for _, c := range checks {
		assert.True(t, c.Consistent)
	}
}

func TestOpen_RedisInalcanzable(t *testing.T) {
	cfg := &config.Config{
		App:   config.AppConfig{Storage: config.StorageMemory},
		Redis: config.RedisConfig{Addr: "127.0.0.1:1"},
	}
	_, err := bootstrap.Open(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}
