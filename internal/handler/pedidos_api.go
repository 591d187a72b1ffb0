package handler

import (
	"net/http"

	"pedidos/internal/apierror"
	"pedidos/internal/dto"
	"pedidos/internal/service"

	"github.com/gin-gonic/gin"
)

// PedidosAPIHandler exposes order create, update and filter. There is no
// list, retrieve or delete on purpose.
type PedidosAPIHandler struct{ svc service.PedidoService }

func NewPedidosAPIHandler(svc service.PedidoService) *PedidosAPIHandler {
	return &PedidosAPIHandler{svc: svc}
}

// Crear godoc
// @Summary Crea un pedido
// @Tags pedidos
// @Accept json
// @Produce json
// @Param body body dto.PedidoRequest true "Pedido"
// @Success 201 {object} dto.PedidoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "estado FINALIZADA sin pago completo"
// @Failure 422 {object} apierror.ValidationError
// @Router /api/pedidos/ [post]
func (h *PedidosAPIHandler) Crear(c *gin.Context) {
	var req dto.PedidoRequest
	nulos, ok := bindConNulos(c, &req)
	if !ok {
		return
	}
	req.Nulos = nulos
	resp, err := h.svc.CrearAPI(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Reemplazar godoc
// @Summary Actualiza un pedido completo
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path int true "ID del pedido"
// @Param body body dto.PedidoRequest true "Pedido"
// @Success 200 {object} dto.PedidoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "estado FINALIZADA sin pago completo"
// @Failure 422 {object} apierror.ValidationError
// @Router /api/pedidos/{id}/ [put]
func (h *PedidosAPIHandler) Reemplazar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Pedido no encontrado."))
		return
	}
	var req dto.PedidoRequest
	if req.Nulos, ok = bindConNulos(c, &req); !ok {
		return
	}
	resp, err := h.svc.Reemplazar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarParcial godoc
// @Summary Actualiza parcialmente un pedido
// @Tags pedidos
// @Accept json
// @Produce json
// @Param id path int true "ID del pedido"
// @Param body body dto.PedidoPatchRequest true "Campos a modificar"
// @Success 200 {object} dto.PedidoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "estado FINALIZADA sin pago completo"
// @Failure 422 {object} apierror.ValidationError
// @Router /api/pedidos/{id}/ [patch]
func (h *PedidosAPIHandler) ActualizarParcial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Pedido no encontrado."))
		return
	}
	var req dto.PedidoPatchRequest
	if req.Nulos, ok = bindConNulos(c, &req); !ok {
		return
	}
	resp, err := h.svc.ActualizarParcial(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Filtrar godoc
// @Summary Filtra pedidos
// @Description Rango inclusivo sobre la fecha de creación (solo si vienen ambas fechas), estado exacto y tope de resultados. Orden: más nuevos primero.
// @Tags pedidos
// @Produce json
// @Param fecha_inicio query string false "AAAA-MM-DD"
// @Param fecha_fin query string false "AAAA-MM-DD"
// @Param estado query string false "Código de estado"
// @Param limite query int false "Máximo de resultados; se ignora si no es entero"
// @Success 200 {array} dto.PedidoResponse
// @Failure 400 {object} apierror.APIError
// @Router /api/pedidos/filtrar/ [get]
func (h *PedidosAPIHandler) Filtrar(c *gin.Context) {
	var f dto.FiltroPedidos
	_ = c.ShouldBindQuery(&f)
	resp, err := h.svc.Filtrar(c.Request.Context(), f)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Raiz lists the API resources.
func Raiz(c *gin.Context) {
	base := "http://" + c.Request.Host
	if c.Request.TLS != nil {
		base = "https://" + c.Request.Host
	}
	c.JSON(http.StatusOK, gin.H{
		"insumos":         base + "/api/insumos/",
		"pedidos":         base + "/api/pedidos/",
		"pedidos_filtrar": base + "/api/pedidos/filtrar/",
	})
}
