// Package excel exporta reportes a XLSX con excelize.
package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Gestion-RD-api/internal/application/inventory"
	"github.com/jhoicas/Gestion-RD-api/internal/domain/entity"
)

const sheetName = "Movimientos"

var movementHeaders = []string{"Fecha", "Producto", "Tipo", "Dirección", "Cantidad", "Referencia", "Notas", "Usuario"}

var _ inventory.MovementExporter = (*MovementExporter)(nil)

// MovementExporter genera el reporte de movimientos de inventario.
type MovementExporter struct{}

// NewMovementExporter construye el exportador.
func NewMovementExporter() *MovementExporter { return &MovementExporter{} }

// ExportMovements título en A1, encabezados en la fila 3 y un movimiento por fila.
func (e *MovementExporter) ExportMovements(_ context.Context, title string, movements []*entity.InventoryMovement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo título: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"002D62"}},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo encabezado: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo fecha: %w", err)
	}

	_ = f.SetCellValue(sheetName, "A1", title)
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	const headerRow = 3
	for i, h := range movementHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(movementHeaders), headerRow)
	if err := f.SetCellStyle(sheetName, first, last, headerStyle); err != nil {
		return nil, fmt.Errorf("excel: aplicar estilo: %w", err)
	}

	for i, m := range movements {
		row := headerRow + 1 + i
		values := []any{
			m.Date,
			m.ProductName,
			m.Type,
			m.Direction,
			m.Quantity.InexactFloat64(),
			m.Reference,
			m.Notes,
			m.CreatedBy,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("excel: celda %s: %w", cell, err)
			}
		}
		dateCell, _ := excelize.CoordinatesToCellName(1, row)
		_ = f.SetCellStyle(sheetName, dateCell, dateCell, dateStyle)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 32)
	_ = f.SetColWidth(sheetName, "C", "E", 12)
	_ = f.SetColWidth(sheetName, "F", "G", 24)
	_ = f.SetColWidth(sheetName, "H", "H", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}
