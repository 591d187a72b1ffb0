package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"pedidos/internal/apierror"
	"pedidos/internal/dto"
	"pedidos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/rs/zerolog/log"
)

const accionEliminar = "eliminar_seleccionados"

// AdminHandler serves the staff screens. Every entity gets a list, an
// add/edit form, a delete endpoint and bulk actions; the templates are
// generic and driven by the dto.Admin* descriptors built here.
type AdminHandler struct {
	categorias  service.CategoriaService
	productos   service.ProductoService
	insumos     service.InsumoService
	pedidos     service.PedidoService
	comentarios service.ComentarioService
	baseURL     string
}

func NewAdminHandler(
	categorias service.CategoriaService,
	productos service.ProductoService,
	insumos service.InsumoService,
	pedidos service.PedidoService,
	comentarios service.ComentarioService,
	baseURL string,
) *AdminHandler {
	return &AdminHandler{
		categorias:  categorias,
		productos:   productos,
		insumos:     insumos,
		pedidos:     pedidos,
		comentarios: comentarios,
		baseURL:     baseURL,
	}
}

// entidad describes one admin section.
type entidad struct {
	ruta     string // URL segment under /admin/
	titulo   string
	contar   func(ctx context.Context) (int64, error)
	eliminar func(ctx context.Context, id uint) error
}

func (h *AdminHandler) entidades() []entidad {
	return []entidad{
		{"categorias", "Categorías", h.categorias.Contar, h.categorias.Eliminar},
		{"productos", "Productos", h.productos.Contar, h.productos.Eliminar},
		{"comentarios", "Comentarios", h.comentarios.Contar, h.comentarios.Eliminar},
		{"insumos", "Insumos", h.insumos.Contar, h.insumos.Eliminar},
		{"pedidos", "Pedidos", h.pedidos.Contar, h.pedidos.Eliminar},
	}
}

func (h *AdminHandler) entidad(ruta string) (entidad, bool) {
	for _, e := range h.entidades() {
		if e.ruta == ruta {
			return e, true
		}
	}
	return entidad{}, false
}

// Index handles GET /admin/.
func (h *AdminHandler) Index(c *gin.Context) {
	var entradas []dto.AdminEntrada
	for _, e := range h.entidades() {
		n, err := e.contar(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		entradas = append(entradas, dto.AdminEntrada{Titulo: e.titulo, URL: "/admin/" + e.ruta + "/", Total: n})
	}
	render(c, http.StatusOK, "admin_index.html", gin.H{"Titulo": "Administración", "Entradas": entradas})
}

// Eliminar handles POST /admin/<entidad>/:id/eliminar/.
func (h *AdminHandler) Eliminar(ruta string) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, _ := h.entidad(ruta)
		id, ok := paramID(c, "id")
		if !ok {
			renderEstado(c, http.StatusNotFound, "Registro no encontrado.")
			return
		}
		if err := e.eliminar(c.Request.Context(), id); err != nil {
			if errors.Is(err, errors.Forbidden) {
				setFlash(c, err.Error())
				c.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/%s/%d/", ruta, id))
				return
			}
			renderError(c, err)
			return
		}
		log.Info().Str("entidad", ruta).Uint("id", id).Msg("registro eliminado desde admin")
		setFlash(c, "Registro eliminado.")
		c.Redirect(http.StatusSeeOther, "/admin/"+ruta+"/")
	}
}

// Accion handles POST /admin/<entidad>/accion/. Every section supports
// deleting the selected rows; insumos adds the stock increment.
func (h *AdminHandler) Accion(ruta string) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, _ := h.entidad(ruta)
		var req dto.AccionMasiva
		if err := c.ShouldBind(&req); err != nil || len(req.IDs) == 0 {
			setFlash(c, "Selecciona al menos un registro.")
			c.Redirect(http.StatusSeeOther, "/admin/"+ruta+"/")
			return
		}

		ctx := c.Request.Context()
		switch {
		case req.Accion == accionEliminar:
			borrados, rechazos := 0, 0
			for _, id := range req.IDs {
				err := e.eliminar(ctx, id)
				switch {
				case err == nil:
					borrados++
				case errors.Is(err, errors.Forbidden), errors.Is(err, errors.NotFound):
					rechazos++
				default:
					_ = c.Error(err)
					return
				}
			}
			msg := fmt.Sprintf("%d registro(s) eliminado(s).", borrados)
			if rechazos > 0 {
				msg += fmt.Sprintf(" %d no se pudieron eliminar.", rechazos)
			}
			setFlash(c, msg)
		case ruta == "insumos" && req.Accion == accionAumentarStock:
			msg, err := h.insumos.AumentarStock(ctx, req.IDs)
			if err != nil {
				if _, ok := apierror.Status(err); !ok {
					_ = c.Error(err)
					return
				}
				msg = err.Error()
			}
			setFlash(c, msg)
		default:
			setFlash(c, "Acción desconocida.")
		}
		c.Redirect(http.StatusSeeOther, "/admin/"+ruta+"/")
	}
}

// ── shared helpers ───────────────────────────────────────────────────────────

func (h *AdminHandler) renderLista(c *gin.Context, lista dto.AdminLista) {
	lista.URLNuevo = "/admin/" + lista.Entidad + "/nuevo/"
	lista.Acciones = append(lista.Acciones, dto.AdminAccion{Nombre: accionEliminar, Etiqueta: "Eliminar seleccionados"})
	render(c, http.StatusOK, "admin_lista.html", gin.H{
		"Titulo":    lista.Titulo,
		"Lista":     lista,
		"URLAccion": "/admin/" + lista.Entidad + "/accion/",
	})
}

// renderFormulario shows an add/edit form. On a failed POST the submitted
// values replace the stored ones so nothing typed is lost.
func (h *AdminHandler) renderFormulario(c *gin.Context, f dto.AdminFormulario, id uint, err error, campos map[string]string) {
	if id == 0 {
		f.Accion = "/admin/" + f.Entidad + "/nuevo/"
	} else {
		f.Accion = fmt.Sprintf("/admin/%s/%d/", f.Entidad, id)
		f.URLEliminar = f.Accion + "eliminar/"
	}
	f.URLVolver = "/admin/" + f.Entidad + "/"

	if c.Request.Method == http.MethodPost {
		for gi := range f.Grupos {
			for ci := range f.Grupos[gi].Campos {
				campo := &f.Grupos[gi].Campos[ci]
				switch campo.Tipo {
				case "readonly", "link":
				case "checkbox":
					campo.Valor = strconv.FormatBool(c.PostForm(campo.Nombre) == "true")
				case "select":
					campo.Valor = c.PostForm(campo.Nombre)
					for oi := range campo.Opciones {
						campo.Opciones[oi].Seleccionada = campo.Opciones[oi].Valor == campo.Valor
					}
				default:
					campo.Valor = c.PostForm(campo.Nombre)
				}
				if msg, ok := campos[campo.Nombre]; ok {
					campo.Error = msg
				}
			}
		}
	}

	status := http.StatusOK
	if err != nil {
		f.Error = err.Error()
	} else if len(campos) > 0 {
		f.Error = "Corrige los errores indicados."
	}
	render(c, status, "admin_formulario.html", gin.H{"Titulo": f.Titulo, "Formulario": f})
}

// bindFormulario binds a posted admin form and runs its validate tags.
// The returned map holds a message per invalid field.
func bindFormulario(c *gin.Context, form interface{}) (map[string]string, error) {
	if err := c.ShouldBind(form); err != nil {
		return nil, errors.WithType(errors.New("Revisa los datos del formulario: hay valores con formato inválido."), errors.NotValid)
	}
	if err := validate.Struct(form); err != nil {
		ves, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, errors.Trace(err)
		}
		campos := make(map[string]string, len(ves))
		for _, fe := range ves {
			campos[fe.Field()] = mensajeCampo(fe)
		}
		return campos, nil
	}
	return nil, nil
}

func mensajeCampo(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es obligatorio."
	case "max":
		return fmt.Sprintf("Máximo %s caracteres.", fe.Param())
	case "min":
		return fmt.Sprintf("Debe ser mayor o igual a %s.", fe.Param())
	case "email_opcional":
		return "Introduce una dirección de email válida."
	case "fecha_opcional":
		return "Introduce una fecha válida (AAAA-MM-DD)."
	case "oneof":
		return "Selecciona una opción válida."
	}
	return "Valor inválido."
}

// archivos returns the uploads under name, or nil.
func archivos(c *gin.Context, name string) []*multipart.FileHeader {
	mf, err := c.MultipartForm()
	if err != nil || mf == nil {
		return nil
	}
	return mf.File[name]
}

// idsMarcados parses the checked image ids of an inline image set.
func idsMarcados(c *gin.Context, name string) []uint {
	var ids []uint
	for _, v := range c.PostFormArray(name) {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids
}

func opciones(valores []string, etiqueta func(string) string, seleccionada string) []dto.AdminOpcion {
	out := make([]dto.AdminOpcion, 0, len(valores))
	for _, v := range valores {
		out = append(out, dto.AdminOpcion{Valor: v, Etiqueta: etiqueta(v), Seleccionada: v == seleccionada})
	}
	return out
}

func mismo(s string) string { return s }

func siNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// guardado finishes a successful save: flash and back to the list.
func guardado(c *gin.Context, ruta string) {
	setFlash(c, "Cambios guardados correctamente.")
	c.Redirect(http.StatusSeeOther, "/admin/"+ruta+"/")
}
