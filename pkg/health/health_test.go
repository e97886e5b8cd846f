package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertogferrario/ferro/pkg/health"
)

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("json when requested", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		health.LivenessHandler()(rec, req)

		var report health.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, health.StatusUp, report.Status)
	})
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	t.Run("all checks pass", func(t *testing.T) {
		t.Parallel()
		checks := health.Checks{
			"db":    func(context.Context) error { return nil },
			"redis": func(context.Context) error { return nil },
		}
		req := httptest.NewRequest(http.MethodGet, "/ready?format=json", nil)
		rec := httptest.NewRecorder()
		health.ReadinessHandler(checks)(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var report health.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, health.StatusUp, report.Status)
		assert.Len(t, report.Checks, 2)
	})

	t.Run("failed check turns report down", func(t *testing.T) {
		t.Parallel()
		checks := health.Checks{
			"db":    func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("connection refused") },
		}
		req := httptest.NewRequest(http.MethodGet, "/ready?format=json", nil)
		rec := httptest.NewRecorder()
		health.ReadinessHandler(checks)(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var report health.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, health.StatusDown, report.Status)
		assert.Equal(t, health.StatusDown, report.Checks["redis"].Status)
		assert.Contains(t, report.Checks["redis"].Error, "connection refused")
	})

	t.Run("no checks is up", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		health.ReadinessHandler(nil)(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("slow check bounded by timeout", func(t *testing.T) {
		t.Parallel()
		checks := health.Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}
		start := time.Now()
		rec := httptest.NewRecorder()
		health.ReadinessHandler(checks, health.WithTimeout(50*time.Millisecond))(
			rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Less(t, time.Since(start), time.Second)
	})
}
