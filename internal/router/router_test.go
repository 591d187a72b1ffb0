package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"pedidos/internal/config"
	"pedidos/internal/dto"
	"pedidos/internal/infra"
	"pedidos/internal/middleware"
	"pedidos/internal/model"
	"pedidos/internal/repository"
	"pedidos/internal/router"
	"pedidos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type app struct {
	r   *gin.Engine
	db  *gorm.DB
	cfg *config.Config
}

func nuevaApp(t *testing.T) *app {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "pedidos.db")+"?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	cfg := &config.Config{
		Env:                "test",
		BaseURL:            "http://tienda.test",
		TimeZone:           "UTC",
		JWTSecret:          "router-test-secret-with-enough-entropy",
		JWTExpirationHours: 8,
		MediaRoot:          t.TempDir(),
	}
	gin.SetMode(gin.TestMode)
	r, err := router.New(cfg, db, nil)
	require.NoError(t, err)
	return &app{r: r, db: db, cfg: cfg}
}

func (a *app) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *app) json(t *testing.T, metodo, ruta string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(metodo, ruta, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(t, req)
}

func (a *app) form(t *testing.T, ruta string, valores url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, ruta, strings.NewReader(valores.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req, cookies...)
}

// login creates a user and returns its session cookie.
func (a *app) login(t *testing.T, username string, staff bool) *http.Cookie {
	t.Helper()
	auth := service.NewAuthService(repository.NewUsuarioRepository(a.db), nil, a.cfg)
	_, err := auth.GuardarUsuario(context.Background(), username, "", "clave-segura", staff)
	require.NoError(t, err)

	w := a.form(t, "/login/", url.Values{"username": {username}, "password": {"clave-segura"}, "next": {"/admin/pedidos/"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/pedidos/", w.Header().Get("Location"))
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CookieSesion {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func TestHealth_WithoutRedis(t *testing.T) {
	a := nuevaApp(t)
	w := a.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"connected"`)
	assert.Contains(t, w.Body.String(), `"redis":"error"`)
}

func TestAPI_Raiz(t *testing.T) {
	a := nuevaApp(t)
	w := a.do(t, httptest.NewRequest(http.MethodGet, "/api/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/pedidos/filtrar/")
}

func TestAPI_InsumosCRUD(t *testing.T) {
	a := nuevaApp(t)

	w := a.json(t, http.MethodPost, "/api/insumos/", map[string]interface{}{
		"nombre": "Tela polar", "tipo": "Tela", "marca": "Textil Sur", "cantidad_disponible": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var creado dto.InsumoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &creado))
	assert.Equal(t, 5, creado.CantidadDisponible)
	ruta := "/api/insumos/" + jsonID(creado.ID) + "/"

	w = a.json(t, http.MethodPatch, ruta, map[string]interface{}{"cantidad_disponible": 12})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"cantidad_disponible":12`)
	assert.Contains(t, w.Body.String(), `"nombre":"Tela polar"`)

	w = a.json(t, http.MethodPut, ruta, map[string]interface{}{"nombre": "Hilo", "tipo": "Hilo", "marca": "Coats"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"nombre":"Hilo"`)
	assert.Contains(t, w.Body.String(), `"cantidad_disponible":12`)

	w = a.json(t, http.MethodPost, "/api/insumos/", map[string]interface{}{"nombre": "Sin tipo"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(t, httptest.NewRequest(http.MethodGet, "/api/insumos/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var lista []dto.InsumoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lista))
	assert.Len(t, lista, 1)

	assert.Equal(t, http.StatusNoContent, a.do(t, httptest.NewRequest(http.MethodDelete, ruta, nil)).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, httptest.NewRequest(http.MethodGet, ruta, nil)).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, httptest.NewRequest(http.MethodGet, "/api/insumos/abc/", nil)).Code)
}

func TestAPI_Pedidos(t *testing.T) {
	a := nuevaApp(t)

	w := a.json(t, http.MethodPost, "/api/pedidos/", map[string]interface{}{
		"nombre_cliente": "Ana", "descripcion_solicitada": "Polera bordada",
		"estado": "FINALIZADA", "estado_pago": "PENDIENTE",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), model.MensajeFinalizacionSinPago)

	w = a.json(t, http.MethodPost, "/api/pedidos/", map[string]interface{}{
		"nombre_cliente": "Ana", "descripcion_solicitada": "Polera bordada", "monto_total": 15000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p dto.PedidoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "SOLICITADO", p.Estado)
	assert.Equal(t, "PENDIENTE", p.EstadoPago)
	assert.Equal(t, "SITIO_WEB", p.PlataformaOrigen)
	ruta := "/api/pedidos/" + jsonID(p.ID) + "/"

	w = a.json(t, http.MethodPatch, ruta, map[string]interface{}{"estado": "FINALIZADA"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.json(t, http.MethodPatch, ruta, map[string]interface{}{"estado": "FINALIZADA", "estado_pago": "PAGADO"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"estado":"FINALIZADA"`)

	w = a.json(t, http.MethodPatch, "/api/pedidos/9999/", map[string]interface{}{"estado": "APROBADO"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, httptest.NewRequest(http.MethodGet, "/api/pedidos/filtrar/?estado=FINALIZADA", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var filtrados []dto.PedidoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &filtrados))
	require.Len(t, filtrados, 1)
	assert.Equal(t, p.ID, filtrados[0].ID)

	w = a.do(t, httptest.NewRequest(http.MethodGet, "/api/pedidos/filtrar/?limite=0", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = a.do(t, httptest.NewRequest(http.MethodGet, "/api/pedidos/filtrar/?fecha_inicio=2024-13-01&fecha_fin=2024-12-01", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTienda_SolicitarYSeguimiento(t *testing.T) {
	a := nuevaApp(t)

	w := a.do(t, httptest.NewRequest(http.MethodGet, "/solicitar/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.form(t, "/solicitar/", url.Values{"nombre_cliente": {"Ana"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), service.MensajeFaltanDatos)

	w = a.form(t, "/solicitar/", url.Values{
		"nombre_cliente": {"Ana"}, "descripcion_solicitada": {"Taza con nombre"}, "producto_referencia": {"no-es-numero"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	destino := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(destino, "/seguimiento/"), destino)

	w = a.do(t, httptest.NewRequest(http.MethodGet, destino, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Taza con nombre")

	assert.Equal(t, http.StatusNotFound, a.do(t, httptest.NewRequest(http.MethodGet, "/seguimiento/no-es-un-token/", nil)).Code)
	assert.Equal(t, http.StatusNotFound,
		a.do(t, httptest.NewRequest(http.MethodGet, "/seguimiento/1b4e28ba-2fa1-11d2-883f-0016d3cca427/", nil)).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, httptest.NewRequest(http.MethodGet, "/solicitar/9999/", nil)).Code)
}

func TestCatalogo(t *testing.T) {
	a := nuevaApp(t)
	assert.Equal(t, http.StatusOK, a.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, httptest.NewRequest(http.MethodGet, "/producto/no-existe/", nil)).Code)
}

func TestAdmin_RequiresStaff(t *testing.T) {
	a := nuevaApp(t)

	w := a.do(t, httptest.NewRequest(http.MethodGet, "/admin/pedidos/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/login/?next="))

	w = a.do(t, httptest.NewRequest(http.MethodGet, "/reporte/", nil))
	assert.Equal(t, http.StatusFound, w.Code)

	cliente := a.login(t, "cliente", false)
	w = a.do(t, httptest.NewRequest(http.MethodGet, "/admin/", nil), cliente)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.form(t, "/login/", url.Values{"username": {"cliente"}, "password": {"otra"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Usuario o contrase")
}

func TestAdmin_Pedidos(t *testing.T) {
	a := nuevaApp(t)
	staff := a.login(t, "admin", true)

	assert.Equal(t, http.StatusOK, a.do(t, httptest.NewRequest(http.MethodGet, "/admin/", nil), staff).Code)
	assert.Equal(t, http.StatusOK, a.do(t, httptest.NewRequest(http.MethodGet, "/admin/pedidos/nuevo/", nil), staff).Code)

	base := url.Values{
		"nombre_cliente":         {"Ana"},
		"descripcion_solicitada": {"Cojín"},
		"estado_pago":            {"PENDIENTE"},
		"plataforma_origen":      {"INSTAGRAM"},
	}

	rechazo := url.Values{}
	for k, v := range base {
		rechazo[k] = v
	}
	rechazo.Set("estado", "FINALIZADA")
	w := a.form(t, "/admin/pedidos/nuevo/", rechazo, staff)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No puedes finalizar el pedido")

	var n int64
	require.NoError(t, a.db.Model(&model.Pedido{}).Count(&n).Error)
	assert.Zero(t, n)

	base.Set("estado", "APROBADO")
	w = a.form(t, "/admin/pedidos/nuevo/", base, staff)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/admin/pedidos/", w.Header().Get("Location"))

	w = a.do(t, httptest.NewRequest(http.MethodGet, "/admin/pedidos/?q=Ana", nil), staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ana")

	w = a.do(t, httptest.NewRequest(http.MethodGet, "/reporte/", nil), staff)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, httptest.NewRequest(http.MethodGet, "/reporte/pdf/", nil), staff)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestLogout_ClearsCookie(t *testing.T) {
	a := nuevaApp(t)
	staff := a.login(t, "admin", true)

	w := a.do(t, httptest.NewRequest(http.MethodPost, "/logout/", nil), staff)
	require.Equal(t, http.StatusSeeOther, w.Code)
	var borrada bool
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CookieSesion && c.MaxAge < 0 {
			borrada = true
		}
	}
	assert.True(t, borrada)
}

func (a *app) producto(t *testing.T, slug string) *model.Producto {
	t.Helper()
	cat := &model.Categoria{Nombre: "Cat " + slug, Slug: "cat-" + slug}
	require.NoError(t, a.db.Create(cat).Error)
	p := &model.Producto{Nombre: "Producto " + slug, Slug: slug, Descripcion: "desc", CategoriaID: cat.ID}
	require.NoError(t, a.db.Create(p).Error)
	return p
}

func TestAPI_PedidosNullLimpiaCampos(t *testing.T) {
	a := nuevaApp(t)
	prod := a.producto(t, "taza")

	crear := func(t *testing.T) string {
		w := a.json(t, http.MethodPost, "/api/pedidos/", map[string]interface{}{
			"nombre_cliente": "Ana", "descripcion_solicitada": "x",
			"email_cliente": "ana@example.com", "producto_referencia": prod.ID,
			"fecha_necesidad": "2024-12-24",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var p dto.PedidoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		require.NotNil(t, p.ProductoReferencia)
		require.NotNil(t, p.EmailCliente)
		return "/api/pedidos/" + jsonID(p.ID) + "/"
	}
	leer := func(t *testing.T, w *httptest.ResponseRecorder) dto.PedidoResponse {
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var p dto.PedidoResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		return p
	}

	t.Run("PUT", func(t *testing.T) {
		ruta := crear(t)
		p := leer(t, a.json(t, http.MethodPut, ruta, map[string]interface{}{
			"nombre_cliente": "Ana", "descripcion_solicitada": "x",
			"producto_referencia": nil, "email_cliente": nil,
		}))
		assert.Nil(t, p.ProductoReferencia)
		assert.Nil(t, p.EmailCliente)
		require.NotNil(t, p.FechaNecesidad, "absent keys keep their value")
	})

	t.Run("PATCH", func(t *testing.T) {
		ruta := crear(t)
		p := leer(t, a.json(t, http.MethodPatch, ruta, map[string]interface{}{"producto_referencia": nil}))
		assert.Nil(t, p.ProductoReferencia)
		require.NotNil(t, p.EmailCliente)

		p = leer(t, a.json(t, http.MethodPatch, ruta, map[string]interface{}{"email_cliente": nil, "fecha_necesidad": nil}))
		assert.Nil(t, p.EmailCliente)
		assert.Nil(t, p.FechaNecesidad)
		assert.Equal(t, "Ana", p.NombreCliente)
	})

	t.Run("PUT accepts a response body as is", func(t *testing.T) {
		ruta := crear(t)
		p := leer(t, a.json(t, http.MethodPatch, ruta, map[string]interface{}{"producto_referencia": nil}))
		p.MontoTotal = 5000
		p = leer(t, a.json(t, http.MethodPut, ruta, p))
		assert.Nil(t, p.ProductoReferencia)
		assert.Equal(t, 5000, p.MontoTotal)
	})

	t.Run("null on a required field is rejected", func(t *testing.T) {
		ruta := crear(t)
		w := a.json(t, http.MethodPatch, ruta, map[string]interface{}{"nombre_cliente": nil})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = a.json(t, http.MethodPatch, ruta, map[string]interface{}{"estado": nil})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAPI_MetodoNoPermitido(t *testing.T) {
	a := nuevaApp(t)
	for _, tc := range []struct{ metodo, ruta string }{
		{http.MethodGet, "/api/pedidos/1/"},
		{http.MethodDelete, "/api/pedidos/1/"},
		{http.MethodGet, "/api/pedidos/"},
		{http.MethodPost, "/api/pedidos/filtrar/"},
	} {
		w := a.do(t, httptest.NewRequest(tc.metodo, tc.ruta, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "%s %s", tc.metodo, tc.ruta)
		assert.Contains(t, w.Body.String(), "no permitido")
	}
	assert.Equal(t, http.StatusNotFound, a.do(t, httptest.NewRequest(http.MethodGet, "/api/no-existe/", nil)).Code)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
