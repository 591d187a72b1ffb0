package handler

import (
	"net/http"
	"time"

	"pedidos/internal/dto"
	"pedidos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReporteHandler struct{ svc service.ReporteService }

func NewReporteHandler(svc service.ReporteService) *ReporteHandler {
	return &ReporteHandler{svc: svc}
}

// Ver handles GET /reporte/.
func (h *ReporteHandler) Ver(c *gin.Context) {
	var f dto.ReporteFilter
	_ = c.ShouldBindQuery(&f)
	rep, err := h.svc.Generar(c.Request.Context(), f)
	if err != nil {
		renderError(c, err)
		return
	}
	render(c, http.StatusOK, "reporte.html", gin.H{"Titulo": "Reporte", "Reporte": rep})
}

// PDF handles GET /reporte/pdf/.
func (h *ReporteHandler) PDF(c *gin.Context) {
	var f dto.ReporteFilter
	_ = c.ShouldBindQuery(&f)
	out, err := h.svc.PDF(c.Request.Context(), f)
	if err != nil {
		renderError(c, err)
		return
	}
	nombre := "reporte-pedidos-" + time.Now().Format("20060102") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Data(http.StatusOK, "application/pdf", out)
}
