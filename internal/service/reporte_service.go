package service

import (
	"context"
	"time"

	"pedidos/internal/dto"
	"pedidos/internal/infra"
	"pedidos/internal/model"
	"pedidos/internal/repository"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
)

// ReporteService builds the staff order report.
type ReporteService interface {
	// Generar returns the counts by state and by platform over every order,
	// and the order table restricted to the date range when both ends parse.
	Generar(ctx context.Context, f dto.ReporteFilter) (*dto.Reporte, error)
	// PDF renders the same report as an A4 document.
	PDF(ctx context.Context, f dto.ReporteFilter) ([]byte, error)
}

type reporteService struct {
	pedidos repository.PedidoRepository
	loc     *time.Location
}

func NewReporteService(pedidos repository.PedidoRepository, loc *time.Location) ReporteService {
	if loc == nil {
		loc = time.UTC
	}
	return &reporteService{pedidos: pedidos, loc: loc}
}

func (s *reporteService) Generar(ctx context.Context, f dto.ReporteFilter) (*dto.Reporte, error) {
	porEstado, err := s.pedidos.ContarPorEstado(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "contando pedidos por estado")
	}
	porPlataforma, err := s.pedidos.ContarPorPlataforma(ctx)
	if err != nil {
		return nil, errors.Annotate(err, "contando pedidos por plataforma")
	}

	rep := &dto.Reporte{Filtro: f}
	for _, g := range porEstado {
		rep.TotalPedidos += g.Total
	}

	codigosEstado := make([]string, len(model.EstadosPedido))
	for i, e := range model.EstadosPedido {
		codigosEstado[i] = string(e)
	}
	rep.PorEstado = conteos(porEstado, codigosEstado, rep.TotalPedidos, func(c string) string {
		return model.EstadoPedido(c).Etiqueta()
	})
	codigosPlataforma := make([]string, len(model.Plataformas))
	for i, p := range model.Plataformas {
		codigosPlataforma[i] = string(p)
	}
	rep.PorPlataforma = conteos(porPlataforma, codigosPlataforma, rep.TotalPedidos, func(c string) string {
		return model.Plataforma(c).Etiqueta()
	})

	// An unusable range shows the whole table, as if no filter was sent.
	q := dto.ConsultaPedidos{}
	if desde, hasta, err := rangoFechas(f.FechaInicio, f.FechaFin, s.loc); err == nil && desde != nil {
		q.Desde, q.Hasta = desde, hasta
		rep.FiltroAplicado = true
	}
	if rep.Pedidos, err = s.pedidos.Filtrar(ctx, q); err != nil {
		return nil, errors.Annotate(err, "listando pedidos del reporte")
	}
	return rep, nil
}

func (s *reporteService) PDF(ctx context.Context, f dto.ReporteFilter) ([]byte, error) {
	rep, err := s.Generar(ctx, f)
	if err != nil {
		return nil, err
	}
	out, err := infra.GenerarReportePDF(rep, s.loc)
	return out, errors.Annotate(err, "generando PDF del reporte")
}

// conteos orders grouped counts by the enum order in codigos, appending any
// unknown value last, and computes each group's share of total.
func conteos(grupos []repository.ConteoGrupo, codigos []string, total int64, etiqueta func(string) string) []dto.ConteoReporte {
	porCodigo := make(map[string]int64, len(grupos))
	for _, g := range grupos {
		porCodigo[g.Valor] += g.Total
	}
	out := make([]dto.ConteoReporte, 0, len(porCodigo))
	add := func(c string, n int64) {
		pct := decimal.Zero
		if total > 0 {
			pct = decimal.NewFromInt(n).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total)).Round(1)
		}
		out = append(out, dto.ConteoReporte{Codigo: c, Etiqueta: etiqueta(c), Total: n, Porcentaje: pct})
	}
	for _, c := range codigos {
		if n, ok := porCodigo[c]; ok {
			add(c, n)
			delete(porCodigo, c)
		}
	}
	for _, g := range grupos {
		if n, ok := porCodigo[g.Valor]; ok {
			add(g.Valor, n)
			delete(porCodigo, g.Valor)
		}
	}
	return out
}
