package service_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"pedidos/internal/dto"
	"pedidos/internal/model"
	"pedidos/internal/repository"
	"pedidos/internal/service"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pedidoEnv struct {
	db          *gorm.DB
	svc         service.PedidoService
	repo        repository.PedidoRepository
	almacen     *almacenFalso
	notificador *notificadorEspia
}

func nuevoPedidoEnv(t *testing.T) *pedidoEnv {
	t.Helper()
	db := nuevaDB(t)
	env := &pedidoEnv{
		db:          db,
		repo:        repository.NewPedidoRepository(db),
		almacen:     &almacenFalso{},
		notificador: &notificadorEspia{},
	}
	env.svc = service.NewPedidoService(env.repo, repository.NewProductoRepository(db), env.almacen, env.notificador, time.UTC)
	return env
}

func (e *pedidoEnv) contar(t *testing.T) int64 {
	t.Helper()
	n, err := e.repo.Contar(context.Background())
	require.NoError(t, err)
	return n
}

// ── Finalize guard ───────────────────────────────────────────────────────────

func TestCrearAPI_FinalizadaSinPagoSeRechaza(t *testing.T) {
	env := nuevoPedidoEnv(t)

	_, err := env.svc.CrearAPI(context.Background(), dto.PedidoRequest{
		NombreCliente:         "Ana",
		DescripcionSolicitada: "Taza",
		Estado:                string(model.EstadoFinalizada),
		EstadoPago:            string(model.PagoParcial),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.Forbidden))
	assert.Equal(t, model.MensajeFinalizacionSinPago, err.Error())
	assert.Zero(t, env.contar(t))
}

func TestCrearAPI_Defaults(t *testing.T) {
	env := nuevoPedidoEnv(t)

	resp, err := env.svc.CrearAPI(context.Background(), dto.PedidoRequest{
		NombreCliente:         "  Ana  ",
		DescripcionSolicitada: "Taza",
		EmailCliente:          ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", resp.NombreCliente)
	assert.Equal(t, "SOLICITADO", resp.Estado)
	assert.Equal(t, "PENDIENTE", resp.EstadoPago)
	assert.Equal(t, "SITIO_WEB", resp.PlataformaOrigen)
	assert.Nil(t, resp.EmailCliente)
	assert.NotEmpty(t, resp.TokenSeguimiento.String())
}

func TestActualizarParcial_FinalizarRequierePago(t *testing.T) {
	env := nuevoPedidoEnv(t)
	ctx := context.Background()

	creado, err := env.svc.CrearAPI(ctx, dto.PedidoRequest{
		NombreCliente: "Ana", DescripcionSolicitada: "Taza",
		Estado: string(model.EstadoEntregada), EstadoPago: string(model.PagoParcial),
		MontoTotal: ptr(1000), MontoAbonado: ptr(500),
	})
	require.NoError(t, err)

	_, err = env.svc.ActualizarParcial(ctx, creado.ID, dto.PedidoPatchRequest{
		Estado: ptr(string(model.EstadoFinalizada)), MontoAbonado: ptr(900),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.Forbidden))

	// Nothing of the rejected change was stored.
	p, err := env.svc.ObtenerPorID(ctx, creado.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoEntregada, p.Estado)
	assert.Equal(t, 500, p.MontoAbonado)
	assert.Empty(t, env.notificador.cambios)

	resp, err := env.svc.ActualizarParcial(ctx, creado.ID, dto.PedidoPatchRequest{
		Estado: ptr(string(model.EstadoFinalizada)), EstadoPago: ptr(string(model.PagoPagado)),
	})
	require.NoError(t, err)
	assert.Equal(t, "FINALIZADA", resp.Estado)
	assert.Equal(t, []string{"ENTREGADA->FINALIZADA"}, env.notificador.cambios)
}

func TestGuardarAdmin_FinalizadaSinPagoConservaEstado(t *testing.T) {
	env := nuevoPedidoEnv(t)
	ctx := context.Background()

	p, err := env.svc.GuardarAdmin(ctx, 0, dto.PedidoRequest{
		NombreCliente: "Ana", DescripcionSolicitada: "Taza",
		Estado: string(model.EstadoAprobado), EstadoPago: string(model.PagoPendiente),
	}, nil, nil)
	require.NoError(t, err)

	_, err = env.svc.GuardarAdmin(ctx, p.ID, dto.PedidoRequest{
		NombreCliente: "Ana", DescripcionSolicitada: "Taza",
		Estado: string(model.EstadoFinalizada), EstadoPago: string(model.PagoPendiente),
	}, archivos("a.jpg"), nil)
	require.Error(t, err)
	assert.Equal(t, model.MensajeFinalizacionSinPago, err.Error())
	assert.Empty(t, env.almacen.guardados, "no file is stored for a rejected save")

	got, err := env.svc.ObtenerPorID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoAprobado, got.Estado)
}

func TestGuardarAdmin_ImagenesInline(t *testing.T) {
	env := nuevoPedidoEnv(t)
	ctx := context.Background()
	req := dto.PedidoRequest{NombreCliente: "Ana", DescripcionSolicitada: "Taza"}

	p, err := env.svc.GuardarAdmin(ctx, 0, req, archivos("a.jpg", "b.jpg"), nil)
	require.NoError(t, err)
	require.Len(t, p.ImagenesReferencia, 2)

	_, err = env.svc.GuardarAdmin(ctx, p.ID, req, archivos("c.jpg", "d.jpg"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid), "more than 3 images must be rejected")

	p, err = env.svc.GuardarAdmin(ctx, p.ID, req, archivos("c.jpg"), []uint{p.ImagenesReferencia[0].ID})
	require.NoError(t, err)
	require.Len(t, p.ImagenesReferencia, 2)
	assert.Contains(t, env.almacen.eliminados, "referencias/a.jpg")
}

// ── Public submission ────────────────────────────────────────────────────────

func TestSolicitar_SinDescripcionNoCreaNada(t *testing.T) {
	env := nuevoPedidoEnv(t)

	_, err := env.svc.Solicitar(context.Background(), dto.SolicitudPedido{
		NombreCliente:         "Ana",
		DescripcionSolicitada: "   ",
		Imagenes:              archivos("a.jpg"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.Equal(t, service.MensajeFaltanDatos, err.Error())
	assert.Zero(t, env.contar(t))
	assert.Empty(t, env.almacen.guardados)
}

func TestSolicitar_GuardaComoMaximoTresImagenes(t *testing.T) {
	env := nuevoPedidoEnv(t)

	p, err := env.svc.Solicitar(context.Background(), dto.SolicitudPedido{
		NombreCliente:         "Ana",
		DescripcionSolicitada: "Polera estampada",
		Imagenes:              archivos("1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"),
	})
	require.NoError(t, err)
	assert.Len(t, env.almacen.guardados, model.MaxImagenesReferencia)

	var n int64
	env.db.Model(&model.ImagenReferencia{}).Where("pedido_id = ?", p.ID).Count(&n)
	assert.Equal(t, int64(model.MaxImagenesReferencia), n)
	assert.Equal(t, []uint{p.ID}, env.notificador.recibidos)
}

func TestSolicitar_Referencia(t *testing.T) {
	env := nuevoPedidoEnv(t)
	ctx := context.Background()
	taza := crearProducto(t, env.db, "taza")
	polera := crearProducto(t, env.db, "polera")

	base := dto.SolicitudPedido{NombreCliente: "Ana", DescripcionSolicitada: "x"}

	t.Run("ruta", func(t *testing.T) {
		req := base
		req.ProductoRuta = &taza.ID
		p, err := env.svc.Solicitar(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, p.ProductoReferenciaID)
		assert.Equal(t, taza.ID, *p.ProductoReferenciaID)
	})

	t.Run("el campo del formulario gana", func(t *testing.T) {
		req := base
		req.ProductoRuta = &taza.ID
		req.ProductoReferencia = strconv.FormatUint(uint64(polera.ID), 10)
		p, err := env.svc.Solicitar(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, p.ProductoReferenciaID)
		assert.Equal(t, polera.ID, *p.ProductoReferenciaID)
	})

	t.Run("valor inválido queda vacío", func(t *testing.T) {
		for _, v := range []string{"abc", "999"} {
			req := base
			req.ProductoReferencia = v
			p, err := env.svc.Solicitar(ctx, req)
			require.NoError(t, err)
			assert.Nil(t, p.ProductoReferenciaID, v)
		}
	})
}

func TestProductoParaSolicitud_Inexistente(t *testing.T) {
	env := nuevoPedidoEnv(t)
	_, err := env.svc.ProductoParaSolicitud(context.Background(), 42)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestSeguimiento(t *testing.T) {
	env := nuevoPedidoEnv(t)
	ctx := context.Background()

	p, err := env.svc.Solicitar(ctx, dto.SolicitudPedido{NombreCliente: "Ana", DescripcionSolicitada: "x"})
	require.NoError(t, err)

	got, err := env.svc.Seguimiento(ctx, p.TokenSeguimiento.String())
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	for _, token := range []string{"no-es-uuid", "3f2504e0-4f89-11d3-9a0c-0305e82c3301"} {
		_, err = env.svc.Seguimiento(ctx, token)
		assert.True(t, errors.Is(err, errors.NotFound), token)
	}
}

// ── PATCH semantics ──────────────────────────────────────────────────────────

func TestActualizarParcial_VaciosLimpian(t *testing.T) {
	env := nuevoPedidoEnv(t)
	ctx := context.Background()
	taza := crearProducto(t, env.db, "taza")

	creado, err := env.svc.CrearAPI(ctx, dto.PedidoRequest{
		NombreCliente: "Ana", DescripcionSolicitada: "x",
		EmailCliente: ptr("ana@example.com"), ProductoReferencia: &taza.ID,
		FechaNecesidad: ptr("2024-12-24"),
	})
	require.NoError(t, err)
	require.NotNil(t, creado.FechaNecesidad)
	assert.Equal(t, "2024-12-24", *creado.FechaNecesidad)

	resp, err := env.svc.ActualizarParcial(ctx, creado.ID, dto.PedidoPatchRequest{
		EmailCliente: ptr(""), ProductoReferencia: ptr(uint(0)), FechaNecesidad: ptr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.EmailCliente)
	assert.Nil(t, resp.ProductoReferencia)
	assert.Nil(t, resp.FechaNecesidad)
	assert.Equal(t, "Ana", resp.NombreCliente, "absent fields keep their value")

	_, err = env.svc.ActualizarParcial(ctx, creado.ID, dto.PedidoPatchRequest{ProductoReferencia: ptr(uint(777))})
	assert.True(t, errors.Is(err, errors.NotValid))

	_, err = env.svc.ActualizarParcial(ctx, 9999, dto.PedidoPatchRequest{})
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestActualizarParcial_NulosLimpian(t *testing.T) {
	env := nuevoPedidoEnv(t)
	ctx := context.Background()
	taza := crearProducto(t, env.db, "taza")

	creado, err := env.svc.CrearAPI(ctx, dto.PedidoRequest{
		NombreCliente: "Ana", DescripcionSolicitada: "x",
		EmailCliente: ptr("ana@example.com"), TelefonoCliente: ptr("+56 9 1234"),
		ProductoReferencia: &taza.ID, FechaNecesidad: ptr("2024-12-24"),
	})
	require.NoError(t, err)

	resp, err := env.svc.ActualizarParcial(ctx, creado.ID, dto.PedidoPatchRequest{
		Nulos: map[string]bool{"producto_referencia": true, "email_cliente": true},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.ProductoReferencia)
	assert.Nil(t, resp.EmailCliente)
	require.NotNil(t, resp.TelefonoCliente, "absent fields keep their value")
	require.NotNil(t, resp.FechaNecesidad)

	resp, err = env.svc.Reemplazar(ctx, creado.ID, dto.PedidoRequest{
		NombreCliente: "Ana", DescripcionSolicitada: "x",
		Nulos: map[string]bool{"telefono_cliente": true, "fecha_necesidad": true},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.TelefonoCliente)
	assert.Nil(t, resp.FechaNecesidad)

	for _, campo := range []string{"nombre_cliente", "estado", "monto_total"} {
		_, err = env.svc.ActualizarParcial(ctx, creado.ID, dto.PedidoPatchRequest{Nulos: map[string]bool{campo: true}})
		assert.True(t, errors.Is(err, errors.NotValid), campo)
	}
}

// ── Filter ───────────────────────────────────────────────────────────────────

func TestFiltrar(t *testing.T) {
	env := nuevoPedidoEnv(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	crear := func(nombre string, estado model.EstadoPedido, creado time.Time) uint {
		p := &model.Pedido{NombreCliente: nombre, DescripcionSolicitada: "x", Estado: estado, FechaCreacion: creado}
		require.NoError(t, env.repo.Crear(ctx, p))
		return p.ID
	}
	a := crear("a", model.EstadoAprobado, base.AddDate(0, 0, -2))
	crear("b", model.EstadoSolicitado, base.AddDate(0, 0, -1))
	c := crear("c", model.EstadoAprobado, base)

	ids := func(list []dto.PedidoResponse) []uint {
		out := make([]uint, len(list))
		for i, p := range list {
			out[i] = p.ID
		}
		return out
	}

	got, err := env.svc.Filtrar(ctx, dto.FiltroPedidos{Estado: "APROBADO"})
	require.NoError(t, err)
	assert.Equal(t, []uint{c, a}, ids(got))

	sinLimite, err := env.svc.Filtrar(ctx, dto.FiltroPedidos{})
	require.NoError(t, err)
	conBasura, err := env.svc.Filtrar(ctx, dto.FiltroPedidos{Limite: "abc"})
	require.NoError(t, err)
	assert.Equal(t, ids(sinLimite), ids(conBasura))
	assert.Len(t, conBasura, 3)

	negativo, err := env.svc.Filtrar(ctx, dto.FiltroPedidos{Limite: "-1"})
	require.NoError(t, err)
	assert.Len(t, negativo, 3)

	cero, err := env.svc.Filtrar(ctx, dto.FiltroPedidos{Limite: "0"})
	require.NoError(t, err)
	assert.NotNil(t, cero)
	assert.Empty(t, cero)

	dos, err := env.svc.Filtrar(ctx, dto.FiltroPedidos{Limite: "2"})
	require.NoError(t, err)
	assert.Len(t, dos, 2)

	dia, err := env.svc.Filtrar(ctx, dto.FiltroPedidos{FechaInicio: "2024-05-30", FechaFin: "2024-05-30"})
	require.NoError(t, err)
	assert.Equal(t, []uint{a}, ids(dia))

	// A single bound is ignored.
	solo, err := env.svc.Filtrar(ctx, dto.FiltroPedidos{FechaInicio: "2024-06-01"})
	require.NoError(t, err)
	assert.Len(t, solo, 3)

	_, err = env.svc.Filtrar(ctx, dto.FiltroPedidos{FechaInicio: "ayer", FechaFin: "2024-06-01"})
	assert.True(t, errors.Is(err, errors.NotValid))
}
