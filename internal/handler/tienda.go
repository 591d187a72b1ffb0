package handler

import (
	"net/http"
	"strconv"

	"pedidos/internal/dto"
	"pedidos/internal/model"
	"pedidos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
)

// MensajePedidoEnviado is flashed on the tracking page after a submission.
const MensajePedidoEnviado = "Pedido enviado correctamente"

// TiendaHandler serves the public pages: catalog, product detail, the order
// form and order tracking.
type TiendaHandler struct {
	catalogo  service.CatalogoService
	pedidos   service.PedidoService
	productos service.ProductoService
	baseURL   string
}

func NewTiendaHandler(catalogo service.CatalogoService, pedidos service.PedidoService, productos service.ProductoService, baseURL string) *TiendaHandler {
	return &TiendaHandler{catalogo: catalogo, pedidos: pedidos, productos: productos, baseURL: baseURL}
}

// Catalogo handles GET /.
func (h *TiendaHandler) Catalogo(c *gin.Context) {
	var f dto.CatalogoFilter
	_ = c.ShouldBindQuery(&f)
	vista, err := h.catalogo.Explorar(c.Request.Context(), f)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "catalogo.html", gin.H{"Titulo": "Catálogo", "Vista": vista})
}

// Producto handles GET and POST /producto/:slug/.
func (h *TiendaHandler) Producto(c *gin.Context) {
	slug := c.Param("slug")
	if c.Request.Method == http.MethodPost {
		var form dto.ComentarioForm
		_ = c.ShouldBind(&form)
		creado, err := h.catalogo.Comentar(c.Request.Context(), slug, form)
		if err != nil {
			renderError(c, err)
			return
		}
		if creado {
			c.Redirect(http.StatusSeeOther, "/producto/"+slug+"/")
			return
		}
		// An incomplete comment falls through and re-renders the page.
	}

	detalle, err := h.catalogo.Detalle(c.Request.Context(), slug)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "producto_detalle.html", gin.H{"Titulo": detalle.Producto.Nombre, "Detalle": detalle})
}

// Solicitar handles GET and POST /solicitar/ and /solicitar/:id/.
func (h *TiendaHandler) Solicitar(c *gin.Context) {
	ctx := c.Request.Context()

	var producto *model.Producto
	if c.Param("id") != "" {
		id, ok := paramID(c, "id")
		if !ok {
			renderEstado(c, http.StatusNotFound, "Producto no encontrado.")
			return
		}
		p, err := h.pedidos.ProductoParaSolicitud(ctx, id)
		if err != nil {
			renderError(c, err)
			return
		}
		producto = p
	}

	if c.Request.Method != http.MethodPost {
		h.formulario(c, http.StatusOK, producto, dto.SolicitudPedido{}, "")
		return
	}

	req := dto.SolicitudPedido{
		NombreCliente:         c.PostForm("nombre_cliente"),
		EmailCliente:          c.PostForm("email_cliente"),
		TelefonoCliente:       c.PostForm("telefono_cliente"),
		RedSocialCliente:      c.PostForm("red_social_cliente"),
		DescripcionSolicitada: c.PostForm("descripcion_solicitada"),
		FechaNecesidad:        c.PostForm("fecha_necesidad"),
		ProductoReferencia:    c.PostForm("producto_referencia"),
	}
	if producto != nil {
		req.ProductoRuta = &producto.ID
	}
	if mf, err := c.MultipartForm(); err == nil && mf != nil {
		req.Imagenes = mf.File["imagenes_referencia"]
	}

	p, err := h.pedidos.Solicitar(ctx, req)
	if err != nil {
		if errors.Is(err, errors.NotValid) {
			h.formulario(c, http.StatusOK, producto, req, err.Error())
			return
		}
		renderError(c, err)
		return
	}
	setFlash(c, MensajePedidoEnviado)
	c.Redirect(http.StatusSeeOther, "/seguimiento/"+p.TokenSeguimiento.String()+"/")
}

func (h *TiendaHandler) formulario(c *gin.Context, status int, producto *model.Producto, form dto.SolicitudPedido, msg string) {
	productos, err := h.productos.Listar(c.Request.Context(), dto.ProductoFilter{})
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, status, "formulario_solicitud.html", gin.H{
		"Titulo":      "Solicitar pedido",
		"Producto":    producto,
		"Productos":   productos,
		"Form":        form,
		"Error":       msg,
		"MaxImagenes": model.MaxImagenesReferencia,
	})
}

// Seguimiento handles GET /seguimiento/:token/.
func (h *TiendaHandler) Seguimiento(c *gin.Context) {
	p, err := h.pedidos.Seguimiento(c.Request.Context(), c.Param("token"))
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "seguimiento.html", gin.H{
		"Titulo": "Pedido #" + strconv.FormatUint(uint64(p.ID), 10),
		"Pedido": p,
		"Link":   service.LinkSeguimiento(h.baseURL, p),
	})
}
