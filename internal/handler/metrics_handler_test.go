package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-records/internal/service"
)

type fakePinger struct {
	err error
}

func (f fakePinger) PingContext(context.Context) error { return f.err }

func newMetricsRouter(h *MetricsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	return r
}

func TestMetricsHandlerHealth(t *testing.T) {
	rec := get(newMetricsRouter(NewMetricsHandler(nil, nil)), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsHandlerReady(t *testing.T) {
	ok := get(newMetricsRouter(NewMetricsHandler(nil, fakePinger{})), "/ready")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.JSONEq(t, `{"status":"ready"}`, ok.Body.String())

	down := get(newMetricsRouter(NewMetricsHandler(nil, fakePinger{err: errors.New("connection refused")})), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, down.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, down.Body.String())
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordLogin(true)

	rec := get(newMetricsRouter(NewMetricsHandler(metrics, nil)), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "records_logins_total")

	disabled := get(newMetricsRouter(NewMetricsHandler(nil, nil)), "/metrics")
	assert.Equal(t, http.StatusServiceUnavailable, disabled.Code)
}
