package dto

import (
	"pedidos/internal/model"

	"github.com/shopspring/decimal"
)

// ReporteFilter is the query of GET /reporte/. The range only applies when
// both ends are present.
type ReporteFilter struct {
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
}

// ConteoReporte is one row of a grouped count.
type ConteoReporte struct {
	Codigo     string
	Etiqueta   string
	Total      int64
	Porcentaje decimal.Decimal
}

// Reporte bundles the three datasets of the report page.
type Reporte struct {
	PorEstado     []ConteoReporte
	PorPlataforma []ConteoReporte
	TotalPedidos  int64
	Pedidos       []model.Pedido
	Filtro        ReporteFilter
	// FiltroAplicado is false when the range was absent or unparsable.
	FiltroAplicado bool
}
