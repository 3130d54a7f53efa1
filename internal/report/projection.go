// Package report renders the balance projection as a spreadsheet file.
package report

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"

	"financas/internal/core"
)

const (
	projectionSheet  = "Projecao"
	feasibilitySheet = "Fatura"
)

// ProjectionXLSX writes one row per month with its totals and balance, and,
// when f is not nil, a second sheet with the payment feasibility of f.Month.
func ProjectionXLSX(balances []core.MonthlyBalance, f *core.PaymentFeasibility) ([]byte, error) {
	xlsx := excelize.NewFile()
	defer xlsx.Close()

	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "financas",
		DocSecurity: 2,
	})

	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	if err := xlsx.SetSheetName(sheet, projectionSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	_ = xlsx.SetColWidth(projectionSheet, "A", "A", 20)
	_ = xlsx.SetColWidth(projectionSheet, "B", "E", 15)
	writeProjectionSheet(xlsx, projectionSheet, balances)

	if f != nil {
		if _, err := xlsx.NewSheet(feasibilitySheet); err != nil {
			return nil, fmt.Errorf("add sheet: %w", err)
		}
		_ = xlsx.SetColWidth(feasibilitySheet, "A", "A", 28)
		_ = xlsx.SetColWidth(feasibilitySheet, "B", "B", 18)
		writeFeasibilitySheet(xlsx, feasibilitySheet, *f)
	}

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeProjectionSheet(xlsx *excelize.File, sheet string, balances []core.MonthlyBalance) {
	row := 1
	headers := []string{"Mês", "Receitas", "Cartão pago", "Débito", "Saldo"}
	for i, h := range headers {
		_ = xlsx.SetCellValue(sheet, cell('A'+rune(i), row), h)
	}
	style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), thinBorder("bottom")))
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('E', row), style)
	row++

	var total core.Money
	numbers, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), numberFormat()))
	negative, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), numberFormat(), fontColor("#C00000")))
	for _, b := range balances {
		_ = xlsx.SetCellValue(sheet, cell('A', row), b.Month.Label())
		_ = xlsx.SetCellValue(sheet, cell('B', row), b.IncomesTotal.Float())
		_ = xlsx.SetCellValue(sheet, cell('C', row), b.CardChargesPaidTotal.Float())
		_ = xlsx.SetCellValue(sheet, cell('D', row), b.DebitsTotal.Float())
		_ = xlsx.SetCellValue(sheet, cell('E', row), b.Balance.Float())
		_ = xlsx.SetCellStyle(sheet, cell('B', row), cell('D', row), numbers)
		if b.Balance.Cents < 0 {
			_ = xlsx.SetCellStyle(sheet, cell('E', row), cell('E', row), negative)
		} else {
			_ = xlsx.SetCellStyle(sheet, cell('E', row), cell('E', row), numbers)
		}
		total = total.Add(b.Balance)
		row++
	}

	_ = xlsx.SetCellValue(sheet, cell('A', row), "Total")
	_ = xlsx.SetCellValue(sheet, cell('E', row), total.Float())
	style, _ = xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold(), numberFormat(), thickBorder("top")))
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('E', row), style)
}

func writeFeasibilitySheet(xlsx *excelize.File, sheet string, f core.PaymentFeasibility) {
	status := "Sim"
	if !f.CanPay {
		status = "Não"
	}
	rows := []struct {
		label string
		value any
	}{
		{"Mês", f.Month.Label()},
		{"Total do cartão", f.CardTotalForMonth.Float()},
		{"Receitas do mês", f.IncomesForMonth.Float()},
		{"Saldo disponível", f.AvailableBalance.Float()},
		{"Pode pagar", status},
		{"Meses até cobrir", f.MonthsUntilCoverable},
		{"Cobertura (%)", f.CoveragePercent},
	}

	label, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold()))
	for i, r := range rows {
		row := i + 1
		_ = xlsx.SetCellValue(sheet, cell('A', row), r.label)
		_ = xlsx.SetCellValue(sheet, cell('B', row), r.value)
		_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), label)
	}
	if !f.Covered {
		row := len(rows) + 2
		_ = xlsx.SetCellValue(sheet, cell('A', row), "A janela de meses não cobre o total do cartão")
		style, _ := xlsx.NewStyle(mergeStyles(defaultStyle(), fontItalic()))
		_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('A', row), style)
	}
}

func cell(col rune, row int) string {
	return fmt.Sprintf("%c%d", col, row)
}

func defaultStyle() *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FFFFFF"},
			Pattern: 1,
		},
	}
}

func numberFormat() *excelize.Style {
	format := "#,##0.00"
	return &excelize.Style{
		CustomNumFmt: &format,
	}
}

func fontBold() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	}
}

func fontItalic() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Italic: true,
		},
	}
}

func fontColor(color string) *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Color: color,
		},
	}
}

func thinBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#000000",
			Style: 1,
		})
	}
	return s
}

func thickBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#000000",
			Style: 2,
		})
	}
	return s
}

// mergeStyles folds every style into the first one, later ones winning.
func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}
