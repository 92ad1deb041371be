package health_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mailmetrics/shortlink/internal/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) Ping(_ context.Context) error {
	return s.err
}

func TestHandler_Check(t *testing.T) {
	t.Run("reports ok when all dependencies are healthy", func(t *testing.T) {
		handler := health.NewHandler(&stubChecker{}, &stubChecker{})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Equal(t, "healthy", resp.Body.Redis)
		assert.Equal(t, "healthy", resp.Body.Postgres)
	})

	t.Run("reports degraded when redis is unreachable", func(t *testing.T) {
		handler := health.NewHandler(&stubChecker{err: errors.New("connection refused")}, &stubChecker{})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "degraded", resp.Body.Status)
		assert.Equal(t, "unhealthy", resp.Body.Redis)
		assert.Equal(t, "healthy", resp.Body.Postgres)
	})

	t.Run("reports degraded when postgres is unreachable", func(t *testing.T) {
		handler := health.NewHandler(&stubChecker{}, &stubChecker{err: errors.New("connection refused")})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "degraded", resp.Body.Status)
		assert.Equal(t, "healthy", resp.Body.Redis)
		assert.Equal(t, "unhealthy", resp.Body.Postgres)
	})

	t.Run("reports disabled for absent dependencies without degrading", func(t *testing.T) {
		handler := health.NewHandler(nil, nil)

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Equal(t, "disabled", resp.Body.Redis)
		assert.Equal(t, "disabled", resp.Body.Postgres)
	})
}
