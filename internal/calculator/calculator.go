// Package calculator implementa el tablero de rentabilidad de cambio
// ARS/BRL/USDT: cálculo de métricas, historial de operaciones y exportación.
package calculator

import "github.com/AgusMolinaCode/ControlDiario_Api/internal/models"

// Costos fijos aplicados a cada cálculo
const (
	ExchangeCommission = 0.005  // comisión de la casa de cambio sobre ARS a pagar
	IofTax             = 0.0038 // IOF sobre ARS a pagar
	SellerCommission   = 0.005  // comisión del vendedor sobre ARS a pagar
	PixCostBrl         = 0.30   // costo por operación PIX, en BRL
)

// Calculate deriva todas las métricas a partir de la entrada.
// Ninguna división falla: si el divisor es 0 el resultado es 0.
func Calculate(in models.CalculatorInput) models.DerivedMetrics {
	var m models.DerivedMetrics

	ops := float64(in.NumberOfOperations)

	m.TotalBrl = in.BrlReceived + in.BrlGeneratedFromUsdt
	m.UsdtOperated = safeDiv(m.TotalBrl, in.UsdtBrlRate)

	if in.BrlReceived > 0 && in.UsdtBrlRate > 0 {
		m.ArsGenerated = (in.BrlReceived / in.UsdtBrlRate) * in.UsdtArsRate
	}

	m.AverageTicketUsdt = safeDiv(m.UsdtOperated, ops)

	// Costos PIX
	m.PixCostBrl = ops * PixCostBrl
	if in.UsdtBrlRate > 0 && in.UsdtArsRate > 0 {
		m.PixCostArs = (m.PixCostBrl / in.UsdtBrlRate) * in.UsdtArsRate
	}

	// Costos variables sobre el monto en ARS
	m.ExchangeCommission = in.ArsToPay * ExchangeCommission
	m.IofTax = in.ArsToPay * IofTax
	m.SellerCommission = in.ArsToPay * SellerCommission
	m.TotalVariableCosts = m.ExchangeCommission + m.IofTax + m.SellerCommission + m.PixCostArs

	m.ProfitFromUsdtOps = in.BrlGeneratedFromUsdt - (in.UsdtToPay * in.UsdtBrlRate)

	// Ingresos en ARS, USDT y BRL
	m.GrossIncome = m.ArsGenerated - in.ArsToPay
	m.NetIncome = m.GrossIncome - m.TotalVariableCosts
	m.GrossIncomeUsdt = safeDiv(m.GrossIncome, in.UsdtArsRate)
	m.NetIncomeUsdt = safeDiv(m.NetIncome, in.UsdtArsRate)
	m.GrossIncomeBrl = m.GrossIncomeUsdt*in.UsdtBrlRate + m.ProfitFromUsdtOps
	m.NetIncomeBrl = m.NetIncomeUsdt*in.UsdtBrlRate + m.ProfitFromUsdtOps

	// Porcentajes sobre lo generado en ARS
	m.GrossProfitPct = percentOf(m.GrossIncome, m.ArsGenerated)
	m.VariableCostsPct = percentOf(m.GrossIncome-m.NetIncome, m.ArsGenerated)
	m.NetProfitPct = percentOf(m.NetIncome, m.ArsGenerated)

	return m
}

func safeDiv(a, b float64) float64 {
	if b > 0 {
		return a / b
	}
	return 0
}

func percentOf(part, total float64) float64 {
	if total > 0 {
		return (part / total) * 100
	}
	return 0
}
