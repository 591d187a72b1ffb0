//go:build integration

package router_test

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pedidos/internal/config"
	"pedidos/internal/dto"
	"pedidos/internal/infra"
	"pedidos/internal/model"
	"pedidos/internal/repository"
	"pedidos/internal/router"
	"pedidos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func nuevaAppE2E(t *testing.T) (*app, *redis.Client) {
	t.Helper()
	ctx := context.Background()

	// The Debian image initialises the cluster with a UTF-8 glibc locale, so
	// ILIKE folds accented letters as in production.
	pgC, err := tcPostgres.Run(ctx, "postgres:15",
		tcPostgres.WithDatabase("pedidos_test"),
		tcPostgres.WithUsername("pedidos"),
		tcPostgres.WithPassword("pedidos"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		BaseURL:            "http://tienda.test",
		TimeZone:           "America/Santiago",
		JWTSecret:          "e2e-secret-with-enough-entropy",
		JWTExpirationHours: 8,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		// Jobs are queued but no worker consumes them here.
		SMTPHost:  "smtp.invalid",
		MediaRoot: t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	gin.SetMode(gin.TestMode)
	r, err := router.New(cfg, db, rdb)
	require.NoError(t, err)
	return &app{r: r, db: db, cfg: cfg}, rdb
}

func TestE2E_Health(t *testing.T) {
	a, _ := nuevaAppE2E(t)
	w := a.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"emails_en_dlq":0`)
}

func TestE2E_SolicitudEncolaCorreos(t *testing.T) {
	a, rdb := nuevaAppE2E(t)
	ctx := context.Background()

	w := a.form(t, "/solicitar/", url.Values{
		"nombre_cliente":         {"Ana"},
		"email_cliente":          {"ana@example.com"},
		"descripcion_solicitada": {"Polera con logo"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	n, err := rdb.LLen(ctx, worker.QueueEmail).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	w = a.do(t, httptest.NewRequest(http.MethodGet, "/api/pedidos/filtrar/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"plataforma_origen":"SITIO_WEB"`)

	// Only real state changes notify.
	w = a.json(t, http.MethodPatch, "/api/pedidos/1/", map[string]interface{}{"monto_total": 9900})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.json(t, http.MethodPatch, "/api/pedidos/1/", map[string]interface{}{"estado": "APROBADO"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	n, err = rdb.LLen(ctx, worker.QueueEmail).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestE2E_FiltrarPorRangoEnZonaLocal(t *testing.T) {
	a, _ := nuevaAppE2E(t)

	for _, nombre := range []string{"Uno", "Dos"} {
		w := a.json(t, http.MethodPost, "/api/pedidos/", map[string]interface{}{
			"nombre_cliente": nombre, "descripcion_solicitada": "x",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	hoy := time.Now().In(a.cfg.Location()).Format("2006-01-02")
	w := a.do(t, httptest.NewRequest(http.MethodGet,
		"/api/pedidos/filtrar/?fecha_inicio="+hoy+"&fecha_fin="+hoy+"&limite=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nombre_cliente":"Dos"`)
	assert.NotContains(t, w.Body.String(), `"nombre_cliente":"Uno"`)
}

func TestE2E_LogoutRevocaSesion(t *testing.T) {
	a, _ := nuevaAppE2E(t)
	staff := a.login(t, "admin", true)

	require.Equal(t, http.StatusOK, a.do(t, httptest.NewRequest(http.MethodGet, "/admin/", nil), staff).Code)
	require.Equal(t, http.StatusSeeOther, a.do(t, httptest.NewRequest(http.MethodPost, "/logout/", nil), staff).Code)

	// The old cookie value is rejected even though the JWT has not expired.
	w := a.do(t, httptest.NewRequest(http.MethodGet, "/admin/", nil), staff)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login/"))
}

func TestE2E_BusquedaConAcentos(t *testing.T) {
	a, _ := nuevaAppE2E(t)
	ctx := context.Background()

	w := a.json(t, http.MethodPost, "/api/pedidos/", map[string]interface{}{
		"nombre_cliente": "Ñandú Pérez", "descripcion_solicitada": "x",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a.producto(t, "cafe")
	require.NoError(t, a.db.Model(&model.Producto{}).Where("slug = ?", "cafe").Update("nombre", "Taza Café").Error)

	pedidos, err := repository.NewPedidoRepository(a.db).ListarAdmin(ctx, dto.PedidoAdminFilter{Busqueda: "ñANDÚ pé"})
	require.NoError(t, err)
	require.Len(t, pedidos, 1)
	assert.Equal(t, "Ñandú Pérez", pedidos[0].NombreCliente)

	productos, err := repository.NewProductoRepository(a.db).Listar(ctx, repository.ProductoListado{Busqueda: "CAFÉ"})
	require.NoError(t, err)
	require.Len(t, productos, 1)

	pedidos, err = repository.NewPedidoRepository(a.db).ListarAdmin(ctx, dto.PedidoAdminFilter{Busqueda: "100%"})
	require.NoError(t, err)
	assert.Empty(t, pedidos)
}
