package models

// CalculatorInput contiene los montos y cotizaciones que carga el usuario.
// Los campos sin cargar valen 0 a efectos del cálculo.
type CalculatorInput struct {
	ArsToPay             float64 `json:"arsToPay"`
	UsdtToPay            float64 `json:"usdtToPay"`
	UsdtBrlRate          float64 `json:"usdtBrlRate"`
	UsdtArsRate          float64 `json:"usdtArsRate"`
	BrlReceived          float64 `json:"brlReceived"`
	BrlGeneratedFromUsdt float64 `json:"brlGeneratedFromUsdt"`
	NumberOfOperations   int     `json:"numberOfOperations"`
}

// DerivedMetrics son las métricas calculadas a partir de un CalculatorInput.
// Es un valor: se recalcula completo cada vez que cambia la entrada.
type DerivedMetrics struct {
	TotalBrl           float64 `json:"totalBrl"`
	UsdtOperated       float64 `json:"usdtOperated"`
	ArsGenerated       float64 `json:"arsGenerated"`
	AverageTicketUsdt  float64 `json:"averageTicketUsdt"`
	PixCostBrl         float64 `json:"pixCostBrl"`
	PixCostArs         float64 `json:"pixCostArs"`
	ExchangeCommission float64 `json:"exchangeCommission"` // ARS
	IofTax             float64 `json:"iofTax"`             // ARS
	SellerCommission   float64 `json:"sellerCommission"`   // ARS
	TotalVariableCosts float64 `json:"totalVariableCosts"` // ARS
	ProfitFromUsdtOps  float64 `json:"profitFromUsdtOperations"`
	GrossIncome        float64 `json:"grossIncome"`
	NetIncome          float64 `json:"netIncome"`
	GrossIncomeUsdt    float64 `json:"grossIncomeUsdt"`
	NetIncomeUsdt      float64 `json:"netIncomeUsdt"`
	GrossIncomeBrl     float64 `json:"grossIncomeBrl"`
	NetIncomeBrl       float64 `json:"netIncomeBrl"`
	GrossProfitPct     float64 `json:"grossProfitPercentage"`
	VariableCostsPct   float64 `json:"variableCostsPercentage"`
	NetProfitPct       float64 `json:"netProfitPercentage"`
}

// SavedOperation es una foto inmutable de un cálculo guardado por el usuario
type SavedOperation struct {
	Date           string          `json:"date"`
	InputData      CalculatorInput `json:"inputData"`
	CalculatedData DerivedMetrics  `json:"calculatedData"`
}
