package infra

// pdf.go: order report export using go-pdf/fpdf.
// A4 portrait with:
//   - Title and generation timestamp (and the date range, when filtered)
//   - Orders by state and by origin platform, with their share
//   - The raw order table

import (
	"bytes"
	"fmt"
	"time"

	"pedidos/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerarReportePDF renders a report into an in-memory PDF document.
// Timestamps are shown in loc.
func GenerarReportePDF(rep *dto.Reporte, loc *time.Location) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	// Core fonts are cp1252; translate the UTF-8 labels.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr("Reporte de pedidos"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Generado: "+time.Now().In(loc).Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	if rep.FiltroAplicado {
		rango := fmt.Sprintf("Rango: %s a %s", rep.Filtro.FechaInicio, rep.Filtro.FechaFin)
		pdf.CellFormat(contentW, 5, tr(rango), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Grouped counts ───────────────────────────────────────────────────────
	tablaConteos(pdf, tr, contentW, "Pedidos por estado", rep.PorEstado)
	tablaConteos(pdf, tr, contentW, "Pedidos por plataforma", rep.PorPlataforma)

	// ── Order table ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr(fmt.Sprintf("Pedidos (%d)", len(rep.Pedidos))), "", 1, "L", false, 0, "")

	cols := []struct {
		titulo string
		ancho  float64
		align  string
	}{
		{"#", 0.07, "R"},
		{"Cliente", 0.27, "L"},
		{"Estado", 0.16, "L"},
		{"Pago", 0.13, "L"},
		{"Plataforma", 0.13, "L"},
		{"Creado", 0.12, "L"},
		{"Total", 0.12, "R"},
	}
	pdf.SetFont("Helvetica", "B", 8)
	for _, c := range cols {
		pdf.CellFormat(contentW*c.ancho, 6, tr(c.titulo), "B", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, p := range rep.Pedidos {
		nombre := []rune(p.NombreCliente)
		if len(nombre) > 30 {
			nombre = append(nombre[:29], '…')
		}
		celdas := []string{
			fmt.Sprintf("%d", p.ID),
			string(nombre),
			p.Estado.Etiqueta(),
			p.EstadoPago.Etiqueta(),
			p.PlataformaOrigen.Etiqueta(),
			p.FechaCreacion.In(loc).Format("02/01/2006"),
			fmt.Sprintf("$%d", p.MontoTotal),
		}
		for i, c := range cols {
			pdf.CellFormat(contentW*c.ancho, 5, tr(celdas[i]), "", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render report: %w", err)
	}
	return buf.Bytes(), nil
}

func tablaConteos(pdf *fpdf.Fpdf, tr func(string) string, contentW float64, titulo string, filas []dto.ConteoReporte) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr(titulo), "", 1, "L", false, 0, "")

	col1, col2, col3 := contentW*0.5, contentW*0.25, contentW*0.25
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cantidad", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 6, "%", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, f := range filas {
		pdf.CellFormat(col1, 5, tr(f.Etiqueta), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", f.Total), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 5, f.Porcentaje.StringFixed(1), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}
