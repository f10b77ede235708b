package calculator

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

// Formatos de pantalla (es-AR). Solo para mostrar: nunca vuelven al modelo ni al CSV.
var (
	arsFormatter     = money.GetCurrency(money.ARS).Formatter()
	brlFormatter     = money.GetCurrency(money.BRL).Formatter()
	usdtFormatter    = money.NewFormatter(2, ",", ".", "USDT ", "$1")
	percentFormatter = money.NewFormatter(2, ",", ".", "", "1%")
)

// FormatARS devuelve el monto como $1.234,56
func FormatARS(v float64) string { return format(arsFormatter, v) }

// FormatBRL devuelve el monto como R$1.234,56
func FormatBRL(v float64) string { return format(brlFormatter, v) }

// FormatUSDT devuelve el monto como USDT 1.234,56
func FormatUSDT(v float64) string { return format(usdtFormatter, v) }

// FormatPercent devuelve el porcentaje como 12,34%
func FormatPercent(v float64) string { return format(percentFormatter, v) }

func format(f *money.Formatter, v float64) string {
	d := decimal.NewFromFloat(v).Round(int32(f.Fraction)).Shift(int32(f.Fraction))
	return f.Format(d.IntPart())
}

// DisplayMetrics son las métricas listas para mostrar
type DisplayMetrics struct {
	TotalBrl           string `json:"totalBrl"`
	UsdtOperated       string `json:"usdtOperated"`
	ArsGenerated       string `json:"arsGenerated"`
	AverageTicketUsdt  string `json:"averageTicketUsdt"`
	PixCostBrl         string `json:"pixCostBrl"`
	PixCostArs         string `json:"pixCostArs"`
	ExchangeCommission string `json:"exchangeCommission"`
	IofTax             string `json:"iofTax"`
	SellerCommission   string `json:"sellerCommission"`
	TotalVariableCosts string `json:"totalVariableCosts"`
	ProfitFromUsdtOps  string `json:"profitFromUsdtOperations"`
	GrossIncome        string `json:"grossIncome"`
	NetIncome          string `json:"netIncome"`
	GrossIncomeUsdt    string `json:"grossIncomeUsdt"`
	NetIncomeUsdt      string `json:"netIncomeUsdt"`
	GrossIncomeBrl     string `json:"grossIncomeBrl"`
	NetIncomeBrl       string `json:"netIncomeBrl"`
	GrossProfitPct     string `json:"grossProfitPercentage"`
	VariableCostsPct   string `json:"variableCostsPercentage"`
	NetProfitPct       string `json:"netProfitPercentage"`
}

// Display formatea cada métrica según su moneda
func Display(m models.DerivedMetrics) DisplayMetrics {
	return DisplayMetrics{
		TotalBrl:           FormatBRL(m.TotalBrl),
		UsdtOperated:       FormatUSDT(m.UsdtOperated),
		ArsGenerated:       FormatARS(m.ArsGenerated),
		AverageTicketUsdt:  FormatUSDT(m.AverageTicketUsdt),
		PixCostBrl:         FormatBRL(m.PixCostBrl),
		PixCostArs:         FormatARS(m.PixCostArs),
		ExchangeCommission: FormatARS(m.ExchangeCommission),
		IofTax:             FormatARS(m.IofTax),
		SellerCommission:   FormatARS(m.SellerCommission),
		TotalVariableCosts: FormatARS(m.TotalVariableCosts),
		ProfitFromUsdtOps:  FormatBRL(m.ProfitFromUsdtOps),
		GrossIncome:        FormatARS(m.GrossIncome),
		NetIncome:          FormatARS(m.NetIncome),
		GrossIncomeUsdt:    FormatUSDT(m.GrossIncomeUsdt),
		NetIncomeUsdt:      FormatUSDT(m.NetIncomeUsdt),
		GrossIncomeBrl:     FormatBRL(m.GrossIncomeBrl),
		NetIncomeBrl:       FormatBRL(m.NetIncomeBrl),
		GrossProfitPct:     FormatPercent(m.GrossProfitPct),
		VariableCostsPct:   FormatPercent(m.VariableCostsPct),
		NetProfitPct:       FormatPercent(m.NetProfitPct),
	}
}
