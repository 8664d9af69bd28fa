package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no ended span named %q", name)
	return nil
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]string {
	attrs := make(map[attribute.Key]string)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	return attrs
}

func tracedRouter(status int, code string) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Tracing("pharmacy-test"), Authenticate(AuthConfig{}), SpanAttributes())
	router.POST("/api/v1/sales/:id/cancel", func(c *gin.Context) {
		if code != "" {
			c.Set(ErrorCodeKey, code)
		}
		c.Status(status)
	})
	return router
}

func TestTracing_SpanCarriesIdentity(t *testing.T) {
	sr := setupTestTracer(t)
	userID, branchID := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/"+uuid.NewString()+"/cancel", nil)
	req.Header.Set(RequestIDHeader, "req-trace-1")
	req.Header.Set(UserIDHeader, userID.String())
	req.Header.Set(BranchIDHeader, branchID.String())
	w := httptest.NewRecorder()
	tracedRouter(http.StatusOK, "").ServeHTTP(w, req)

	span := findSpan(t, sr, "POST /api/v1/sales/:id/cancel")
	attrs := attrMap(span)
	assert.Equal(t, "req-trace-1", attrs["request_id"])
	assert.Equal(t, userID.String(), attrs["user_id"])
	assert.Equal(t, branchID.String(), attrs["branch_id"])
	assert.NotContains(t, attrs, attribute.Key("error.code"))
}

func TestTracing_ErrorCode(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		code       string
		wantStatus codes.Code
	}{
		{"business rule", http.StatusConflict, "ERR_INVALID_STATE", codes.Unset},
		{"internal", http.StatusInternalServerError, "ERR_INTERNAL", codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/"+uuid.NewString()+"/cancel", nil)
			tracedRouter(tt.status, tt.code).ServeHTTP(w, req)

			span := findSpan(t, sr, "POST /api/v1/sales/:id/cancel")
			assert.Equal(t, tt.code, attrMap(span)["error.code"])
			assert.Equal(t, tt.wantStatus, span.Status().Code)
		})
	}
}

func TestSpanAttributes_NoSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanAttributes())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
