package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pedidos/internal/dto"
	"pedidos/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type validadorFijo map[string]*dto.Sesion

func (v validadorFijo) ValidarSesion(_ context.Context, token string) (*dto.Sesion, error) {
	if s, ok := v[token]; ok {
		return s, nil
	}
	return nil, errors.New("sesion invalida")
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func servir(r *gin.Engine, metodo, ruta, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(metodo, ruta, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.CookieSesion, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/api/x", ok)

	w := servir(r, http.MethodGet, "/api/x", "")
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimiter(1))
	r.GET("/api/x", ok)

	// burst is twice the rate
	assert.Equal(t, http.StatusOK, servir(r, http.MethodGet, "/api/x", "").Code)
	assert.Equal(t, http.StatusOK, servir(r, http.MethodGet, "/api/x", "").Code)
	w := servir(r, http.MethodGet, "/api/x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimiter(0))
	r.GET("/api/x", ok)
	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, servir(r, http.MethodGet, "/api/x", "").Code)
	}
}

func TestSesionRequerida(t *testing.T) {
	v := validadorFijo{
		"staff":   {UsuarioID: 1, Username: "admin", EsStaff: true},
		"cliente": {UsuarioID: 2, Username: "ana"},
	}
	r := gin.New()
	r.Use(middleware.CargarSesion(v))
	r.GET("/reporte/", middleware.SesionRequerida(), ok)
	r.GET("/api/privado/", middleware.SesionRequerida(), middleware.SoloStaff(), ok)

	t.Run("anonymous page redirects to login", func(t *testing.T) {
		w := servir(r, http.MethodGet, "/reporte/?desde=1", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login/?next=%2Freporte%2F%3Fdesde%3D1", w.Header().Get("Location"))
	})

	t.Run("bad cookie is anonymous", func(t *testing.T) {
		w := servir(r, http.MethodGet, "/reporte/", "basura")
		assert.Equal(t, http.StatusFound, w.Code)
	})

	t.Run("anonymous api gets 401", func(t *testing.T) {
		w := servir(r, http.MethodGet, "/api/privado/", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Autenticacion requerida")
	})

	t.Run("non staff gets 403", func(t *testing.T) {
		w := servir(r, http.MethodGet, "/api/privado/", "cliente")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("staff passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, servir(r, http.MethodGet, "/api/privado/", "staff").Code)
		assert.Equal(t, http.StatusOK, servir(r, http.MethodGet, "/reporte/", "cliente").Code)
	})
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/api/falla", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: relation does not exist"))
	})

	w := servir(r, http.MethodGet, "/api/falla", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Contains(t, w.Body.String(), "Error interno del servidor")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.GET("/api/panic", func(*gin.Context) { panic("boom") })

	assert.Equal(t, http.StatusInternalServerError, servir(r, http.MethodGet, "/api/panic", "").Code)
}
