package calculator

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

// NoDate es el valor que se exporta cuando no hay fecha seleccionada
const NoDate = "N/A"

const (
	displayDateLayout = "02/01/2006"
	fileDateLayout    = "2006-01-02"
)

// ExportState es todo lo que se exporta de un cálculo
type ExportState struct {
	Date    *time.Time
	Input   models.CalculatorInput
	Metrics models.DerivedMetrics
}

// Row es una fila label/valor del CSV
type Row struct {
	Label string
	Value string
}

// Rows devuelve las filas de exportación en el orden fijo del archivo
func Rows(s ExportState) []Row {
	in, m := s.Input, s.Metrics
	return []Row{
		{"Date", DateLabel(s.Date)},
		{"ARS to Pay", formatNumber(in.ArsToPay)},
		{"USDT to Pay", formatNumber(in.UsdtToPay)},
		{"USDT/BRL Rate", formatNumber(in.UsdtBrlRate)},
		{"USDT/ARS Rate", formatNumber(in.UsdtArsRate)},
		{"BRL Received", formatNumber(in.BrlReceived)},
		{"BRL Generated from USDT", formatNumber(in.BrlGeneratedFromUsdt)},
		{"Number of Operations", strconv.Itoa(in.NumberOfOperations)},
		{"Total BRL", formatNumber(m.TotalBrl)},
		{"USDT Operated", formatNumber(m.UsdtOperated)},
		{"ARS Generated", formatNumber(m.ArsGenerated)},
		{"Average Ticket (USDT)", formatNumber(m.AverageTicketUsdt)},
		{"PIX Cost (BRL)", formatNumber(m.PixCostBrl)},
		{"PIX Cost (ARS)", formatNumber(m.PixCostArs)},
		{"Exchange Commission (ARS)", formatNumber(m.ExchangeCommission)},
		{"IOF Tax (ARS)", formatNumber(m.IofTax)},
		{"Seller Commission (ARS)", formatNumber(m.SellerCommission)},
		{"Total Variable Costs (ARS)", formatNumber(m.TotalVariableCosts)},
		{"Profit from USDT Operations (BRL)", formatNumber(m.ProfitFromUsdtOps)},
		{"Gross Income (ARS)", formatNumber(m.GrossIncome)},
		{"Net Income (ARS)", formatNumber(m.NetIncome)},
		{"Gross Income (USDT)", formatNumber(m.GrossIncomeUsdt)},
		{"Net Income (USDT)", formatNumber(m.NetIncomeUsdt)},
		{"Gross Income (BRL)", formatNumber(m.GrossIncomeBrl)},
		{"Net Income (BRL)", formatNumber(m.NetIncomeBrl)},
		{"Gross Profit %", formatNumber(m.GrossProfitPct)},
		{"Variable Costs %", formatNumber(m.VariableCostsPct)},
		{"Net Profit %", formatNumber(m.NetProfitPct)},
	}
}

// Export escribe el estado en formato CSV (Data,Value) sobre w.
// No abre ni cierra archivos: el que llama decide dónde escribir.
func Export(w io.Writer, s ExportState) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Data", "Value"}); err != nil {
		return fmt.Errorf("error escribiendo encabezado: %w", err)
	}
	for _, r := range Rows(s) {
		if err := cw.Write([]string{r.Label, r.Value}); err != nil {
			return fmt.Errorf("error escribiendo fila %q: %w", r.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename devuelve dashboard_data_<fecha o N_A>.csv
func ExportFilename(date *time.Time) string {
	if date == nil {
		return "dashboard_data_N_A.csv"
	}
	return "dashboard_data_" + date.Format(fileDateLayout) + ".csv"
}

// DateLabel formatea la fecha como dd/MM/yyyy, o N/A si no hay fecha
func DateLabel(date *time.Time) string {
	if date == nil {
		return NoDate
	}
	return date.Format(displayDateLayout)
}

// formatNumber usa la representación decimal más corta, sin separador de miles
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
