package handler

import (
	"net/http"

	"pedidos/internal/apierror"
	"pedidos/internal/dto"
	"pedidos/internal/service"

	"github.com/gin-gonic/gin"
)

type InsumosAPIHandler struct{ svc service.InsumoService }

func NewInsumosAPIHandler(svc service.InsumoService) *InsumosAPIHandler {
	return &InsumosAPIHandler{svc: svc}
}

// Listar godoc
// @Summary Lista los insumos
// @Tags insumos
// @Produce json
// @Success 200 {array} dto.InsumoResponse
// @Router /api/insumos/ [get]
func (h *InsumosAPIHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), dto.InsumoFilter{})
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Obtiene un insumo
// @Tags insumos
// @Produce json
// @Param id path int true "ID del insumo"
// @Success 200 {object} dto.InsumoResponse
// @Failure 404 {object} apierror.APIError
// @Router /api/insumos/{id}/ [get]
func (h *InsumosAPIHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Insumo no encontrado."))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary Crea un insumo
// @Tags insumos
// @Accept json
// @Produce json
// @Param body body dto.InsumoRequest true "Insumo"
// @Success 201 {object} dto.InsumoResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /api/insumos/ [post]
func (h *InsumosAPIHandler) Crear(c *gin.Context) {
	var req dto.InsumoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Reemplazar godoc
// @Summary Reemplaza un insumo
// @Tags insumos
// @Accept json
// @Produce json
// @Param id path int true "ID del insumo"
// @Param body body dto.InsumoRequest true "Insumo"
// @Success 200 {object} dto.InsumoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /api/insumos/{id}/ [put]
func (h *InsumosAPIHandler) Reemplazar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Insumo no encontrado."))
		return
	}
	var req dto.InsumoRequest
	if !bindAndValidate(c, &req) {
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
// @Summary Actualiza parcialmente un insumo
// @Tags insumos
// @Accept json
// @Produce json
// @Param id path int true "ID del insumo"
// @Param body body dto.InsumoPatchRequest true "Campos a modificar"
// @Success 200 {object} dto.InsumoResponse
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /api/insumos/{id}/ [patch]
func (h *InsumosAPIHandler) ActualizarParcial(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Insumo no encontrado."))
		return
	}
	var req dto.InsumoPatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarParcial(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary Elimina un insumo
// @Tags insumos
// @Param id path int true "ID del insumo"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /api/insumos/{id}/ [delete]
func (h *InsumosAPIHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("Insumo no encontrado."))
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
