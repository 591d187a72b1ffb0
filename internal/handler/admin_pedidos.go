package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pedidos/internal/apierror"
	"pedidos/internal/dto"
	"pedidos/internal/infra"
	"pedidos/internal/model"
	"pedidos/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

const accionAumentarStock = "aumentar_stock"

// ── Insumos ──────────────────────────────────────────────────────────────────

func (h *AdminHandler) ListaInsumos(c *gin.Context) {
	ctx := c.Request.Context()
	var f dto.InsumoFilter
	_ = c.ShouldBindQuery(&f)
	list, err := h.insumos.Listar(ctx, f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	tipos, err := h.insumos.Tipos(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	marcas, err := h.insumos.Marcas(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	lista := dto.AdminLista{
		Entidad:  "insumos",
		Titulo:   "Insumos",
		Columnas: []string{"Nombre", "Tipo", "Cantidad disponible", "Marca"},
		Filtros: []dto.AdminFiltro{
			{Nombre: "tipo", Etiqueta: "Tipo", Opciones: opciones(tipos, mismo, f.Tipo)},
			{Nombre: "marca", Etiqueta: "Marca", Opciones: opciones(marcas, mismo, f.Marca)},
		},
		Acciones: []dto.AdminAccion{{Nombre: accionAumentarStock, Etiqueta: "Aumentar stock en 10"}},
	}
	for _, i := range list {
		lista.Filas = append(lista.Filas, dto.AdminFila{
			ID:  i.ID,
			URL: fmt.Sprintf("/admin/insumos/%d/", i.ID),
			Celdas: []dto.AdminCelda{
				{Texto: i.Nombre}, {Texto: i.Tipo}, {Texto: strconv.Itoa(i.CantidadDisponible)}, {Texto: i.Marca},
			},
		})
	}
	h.renderLista(c, lista)
}

func formularioInsumo(i *dto.InsumoResponse) dto.AdminFormulario {
	return dto.AdminFormulario{
		Entidad: "insumos",
		Titulo:  tituloFormulario("insumo", i.ID, i.Nombre),
		Grupos: []dto.AdminGrupo{{Campos: []dto.AdminCampo{
			{Nombre: "nombre", Etiqueta: "Nombre", Tipo: "text", Valor: i.Nombre},
			{Nombre: "tipo", Etiqueta: "Tipo", Tipo: "text", Valor: i.Tipo},
			{Nombre: "cantidad_disponible", Etiqueta: "Cantidad disponible", Tipo: "number",
				Valor: strconv.Itoa(i.CantidadDisponible)},
			{Nombre: "marca", Etiqueta: "Marca", Tipo: "text", Valor: i.Marca},
		}}},
	}
}

// Insumo handles GET and POST /admin/insumos/nuevo/ and /admin/insumos/:id/.
func (h *AdminHandler) Insumo(c *gin.Context) {
	ctx := c.Request.Context()
	id, nuevo := idFormulario(c)
	if id == 0 && !nuevo {
		renderEstado(c, http.StatusNotFound, "Insumo no encontrado.")
		return
	}
	i := &dto.InsumoResponse{}
	if !nuevo {
		var err error
		if i, err = h.insumos.Obtener(ctx, id); err != nil {
			renderError(c, err)
			return
		}
	}
	if c.Request.Method != http.MethodPost {
		h.renderFormulario(c, formularioInsumo(i), id, nil, nil)
		return
	}

	var form dto.InsumoRequest
	campos, err := bindFormulario(c, &form)
	if err == nil && len(campos) == 0 {
		if nuevo {
			_, err = h.insumos.Crear(ctx, form)
		} else {
			_, err = h.insumos.Reemplazar(ctx, id, form)
		}
		if err == nil {
			guardado(c, "insumos")
			return
		}
	}
	if _, ok := apierror.Status(err); err != nil && !ok {
		_ = c.Error(err)
		return
	}
	h.renderFormulario(c, formularioInsumo(i), id, err, campos)
}

// ── Pedidos ──────────────────────────────────────────────────────────────────

func (h *AdminHandler) ListaPedidos(c *gin.Context) {
	var f dto.PedidoAdminFilter
	_ = c.ShouldBindQuery(&f)
	list, err := h.pedidos.ListarAdmin(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}

	lista := dto.AdminLista{
		Entidad:     "pedidos",
		Titulo:      "Pedidos",
		Columnas:    []string{"Cliente", "Estado", "Estado de pago", "Monto total", "Seguimiento"},
		ConBusqueda: true,
		Busqueda:    f.Busqueda,
		Filtros: []dto.AdminFiltro{
			{Nombre: "estado", Etiqueta: "Estado", Opciones: opciones(codigosEstado(), etiquetaEstado, f.Estado)},
			{Nombre: "estado_pago", Etiqueta: "Estado de pago", Opciones: opciones(codigosPago(), etiquetaPago, f.EstadoPago)},
		},
	}
	for i := range list {
		p := &list[i]
		link := service.LinkSeguimiento(h.baseURL, p)
		lista.Filas = append(lista.Filas, dto.AdminFila{
			ID:  p.ID,
			URL: fmt.Sprintf("/admin/pedidos/%d/", p.ID),
			Celdas: []dto.AdminCelda{
				{Texto: p.NombreCliente},
				{Texto: p.Estado.Etiqueta()},
				{Texto: p.EstadoPago.Etiqueta()},
				{Texto: strconv.Itoa(p.MontoTotal)},
				{Texto: "Ver seguimiento", Enlace: link},
			},
		})
	}
	h.renderLista(c, lista)
}

func (h *AdminHandler) formularioPedido(p *model.Pedido, prods []model.Producto) dto.AdminFormulario {
	prodOpts := []dto.AdminOpcion{{Valor: "", Etiqueta: "---------"}}
	ref := ""
	if p.ProductoReferenciaID != nil {
		ref = strconv.FormatUint(uint64(*p.ProductoReferenciaID), 10)
	}
	for _, pr := range prods {
		v := strconv.FormatUint(uint64(pr.ID), 10)
		prodOpts = append(prodOpts, dto.AdminOpcion{Valor: v, Etiqueta: pr.Nombre, Seleccionada: v == ref})
	}

	estado, pago, plataforma := p.Estado, p.EstadoPago, p.PlataformaOrigen
	if p.ID == 0 {
		estado, pago, plataforma = model.EstadoSolicitado, model.PagoPendiente, model.PlataformaSitioWeb
	}

	grupos := []dto.AdminGrupo{
		{Titulo: "Cliente", Campos: []dto.AdminCampo{
			{Nombre: "nombre_cliente", Etiqueta: "Nombre", Tipo: "text", Valor: p.NombreCliente},
			{Nombre: "email_cliente", Etiqueta: "Email", Tipo: "email", Valor: derefStr(p.EmailCliente)},
			{Nombre: "telefono_cliente", Etiqueta: "Teléfono", Tipo: "text", Valor: derefStr(p.TelefonoCliente)},
			{Nombre: "red_social_cliente", Etiqueta: "Red social", Tipo: "text", Valor: derefStr(p.RedSocialCliente)},
		}},
		{Titulo: "Pedido", Campos: []dto.AdminCampo{
			{Nombre: "producto_referencia", Etiqueta: "Producto de referencia", Tipo: "select", Opciones: prodOpts, Valor: ref},
			{Nombre: "descripcion_solicitada", Etiqueta: "Descripción solicitada", Tipo: "textarea", Valor: p.DescripcionSolicitada},
			{Nombre: "fecha_necesidad", Etiqueta: "Fecha de necesidad", Tipo: "date", Valor: fechaISO(p.FechaNecesidad)},
		}},
		{Titulo: "Estado", Campos: []dto.AdminCampo{
			{Nombre: "estado", Etiqueta: "Estado", Tipo: "select",
				Opciones: opciones(codigosEstado(), etiquetaEstado, string(estado)), Valor: string(estado)},
			{Nombre: "estado_pago", Etiqueta: "Estado de pago", Tipo: "select",
				Opciones: opciones(codigosPago(), etiquetaPago, string(pago)), Valor: string(pago)},
			{Nombre: "plataforma_origen", Etiqueta: "Plataforma de origen", Tipo: "select",
				Opciones: opciones(codigosPlataforma(), etiquetaPlataforma, string(plataforma)), Valor: string(plataforma)},
			{Nombre: "monto_total", Etiqueta: "Monto total", Tipo: "number", Valor: strconv.Itoa(p.MontoTotal)},
			{Nombre: "monto_abonado", Etiqueta: "Monto abonado", Tipo: "number", Valor: strconv.Itoa(p.MontoAbonado)},
		}},
	}
	if p.ID != 0 {
		grupos = append(grupos, dto.AdminGrupo{Titulo: "Sistema", Campos: []dto.AdminCampo{
			{Nombre: "fecha_creacion", Etiqueta: "Fecha de creación", Tipo: "readonly",
				Valor: p.FechaCreacion.Format("02/01/2006 15:04")},
			{Nombre: "token_seguimiento", Etiqueta: "Token de seguimiento", Tipo: "readonly", Valor: p.TokenSeguimiento.String()},
			{Nombre: "link_seguimiento", Etiqueta: "Link de seguimiento", Tipo: "link", Valor: service.LinkSeguimiento(h.baseURL, p)},
		}})
	}

	f := dto.AdminFormulario{
		Entidad:     "pedidos",
		Titulo:      tituloFormulario("pedido", p.ID, p.NombreCliente),
		Grupos:      grupos,
		ConImagenes: true,
	}
	for _, img := range p.ImagenesReferencia {
		f.Imagenes = append(f.Imagenes, dto.AdminImagen{ID: img.ID, URL: infra.URL(img.Imagen)})
	}
	f.CuposImagen = max(0, model.MaxImagenesReferencia-len(p.ImagenesReferencia))
	return f
}

// Pedido handles GET and POST /admin/pedidos/nuevo/ and /admin/pedidos/:id/.
// A rejected save (FINALIZADA without full payment) re-renders the form with
// the message and leaves the stored order untouched.
func (h *AdminHandler) Pedido(c *gin.Context) {
	ctx := c.Request.Context()
	id, nuevo := idFormulario(c)
	if id == 0 && !nuevo {
		renderEstado(c, http.StatusNotFound, "Pedido no encontrado.")
		return
	}
	p := &model.Pedido{}
	if !nuevo {
		var err error
		if p, err = h.pedidos.ObtenerPorID(ctx, id); err != nil {
			renderError(c, err)
			return
		}
	}
	prods, err := h.productos.Listar(ctx, dto.ProductoFilter{})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if c.Request.Method != http.MethodPost {
		h.renderFormulario(c, h.formularioPedido(p, prods), id, nil, nil)
		return
	}

	var form dto.PedidoRequest
	campos, err := bindFormulario(c, &form)
	if err == nil && len(campos) == 0 {
		_, err = h.pedidos.GuardarAdmin(ctx, id, form, archivos(c, "imagenes"), idsMarcados(c, "borrar_imagen"))
		if err == nil {
			guardado(c, "pedidos")
			return
		}
	}
	if _, ok := apierror.Status(err); err != nil && !ok {
		_ = c.Error(err)
		return
	}
	h.renderFormulario(c, h.formularioPedido(p, prods), id, err, campos)
}

// ── enum helpers ─────────────────────────────────────────────────────────────

func codigosEstado() []string {
	out := make([]string, len(model.EstadosPedido))
	for i, e := range model.EstadosPedido {
		out[i] = string(e)
	}
	return out
}

func codigosPago() []string {
	out := make([]string, len(model.EstadosPago))
	for i, e := range model.EstadosPago {
		out[i] = string(e)
	}
	return out
}

func codigosPlataforma() []string {
	out := make([]string, len(model.Plataformas))
	for i, p := range model.Plataformas {
		out[i] = string(p)
	}
	return out
}

func etiquetaEstado(s string) string     { return model.EstadoPedido(s).Etiqueta() }
func etiquetaPago(s string) string       { return model.EstadoPago(s).Etiqueta() }
func etiquetaPlataforma(s string) string { return model.Plataforma(s).Etiqueta() }

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fechaISO(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format("2006-01-02")
}
