package calculator

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

// Nombres de campos editables del tablero
const (
	FieldArsToPay             = "arsToPay"
	FieldUsdtToPay            = "usdtToPay"
	FieldUsdtBrlRate          = "usdtBrlRate"
	FieldUsdtArsRate          = "usdtArsRate"
	FieldBrlReceived          = "brlReceived"
	FieldBrlGeneratedFromUsdt = "brlGeneratedFromUsdt"
	FieldNumberOfOperations   = "numberOfOperations"
)

// ValidationError indica que un valor cargado fue rechazado.
// El campo conserva su valor anterior.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("valor inválido para %s (%q): %s", e.Field, e.Value, e.Reason)
}

// State es lo que ve el frontend del tablero
type State struct {
	Date           string                 `json:"date"`
	Input          models.CalculatorInput `json:"input"`
	Metrics        models.DerivedMetrics  `json:"metrics"`
	Display        DisplayMetrics         `json:"display"`
	HistoryVisible bool                   `json:"historyVisible"`
	SavedCount     int                    `json:"savedCount"`
}

// Dashboard es una sesión del tablero de cambio. La entrada es la única
// fuente de verdad; las métricas se recalculan completas en cada cambio.
type Dashboard struct {
	mu      sync.Mutex
	input   models.CalculatorInput
	metrics models.DerivedMetrics
	date    *time.Time
	history History
}

// NewDashboard crea un tablero vacío
func NewDashboard() *Dashboard {
	d := &Dashboard{}
	d.metrics = Calculate(d.input)
	return d
}

// SetField actualiza un campo a partir del texto cargado por el usuario.
// Un texto vacío vuelve el campo a 0.
func (d *Dashboard) SetField(field, raw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := d.input
	raw = strings.TrimSpace(raw)

	if field == FieldNumberOfOperations {
		n, err := parseCount(field, raw)
		if err != nil {
			return err
		}
		next.NumberOfOperations = n
	} else {
		target := floatField(&next, field)
		if target == nil {
			return &ValidationError{Field: field, Value: raw, Reason: "campo desconocido"}
		}
		v, err := parseAmount(field, raw)
		if err != nil {
			return err
		}
		*target = v
	}

	d.setInput(next)
	return nil
}

// SetInput reemplaza toda la entrada. Los valores negativos se rechazan.
func (d *Dashboard) SetInput(in models.CalculatorInput) error {
	if err := ValidateInput(in); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setInput(in)
	return nil
}

// ApplyRates copia las cotizaciones a la entrada
func (d *Dashboard) ApplyRates(q models.RateQuote) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := d.input
	next.UsdtBrlRate = q.UsdtBrl
	next.UsdtArsRate = q.UsdtArs
	d.setInput(next)
}

func (d *Dashboard) setInput(in models.CalculatorInput) {
	d.input = in
	d.metrics = Calculate(in)
}

// SetDate selecciona la fecha de la operación; nil la borra
func (d *Dashboard) SetDate(date *time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if date == nil {
		d.date = nil
		return
	}
	t := *date
	d.date = &t
}

// Save guarda el cálculo actual en el historial y lo devuelve
func (d *Dashboard) Save() models.SavedOperation {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history.Save(d.input, d.metrics, DateLabel(d.date))
	ops := d.history.List()
	return ops[len(ops)-1]
}

// Operations devuelve el historial y si está visible
func (d *Dashboard) Operations() ([]models.SavedOperation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.List(), d.history.Visible()
}

// ToggleHistory alterna la visibilidad del historial
func (d *Dashboard) ToggleHistory() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.ToggleVisibility()
}

// State devuelve una foto del tablero
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{
		Date:           DateLabel(d.date),
		Input:          d.input,
		Metrics:        d.metrics,
		Display:        Display(d.metrics),
		HistoryVisible: d.history.Visible(),
		SavedCount:     d.history.Len(),
	}
}

// Export escribe el estado actual como CSV
func (d *Dashboard) Export(w io.Writer) error {
	d.mu.Lock()
	s := ExportState{Date: d.date, Input: d.input, Metrics: d.metrics}
	d.mu.Unlock()
	return Export(w, s)
}

// Filename devuelve el nombre de archivo de exportación para la fecha actual
func (d *Dashboard) Filename() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ExportFilename(d.date)
}

// ValidateInput verifica que ningún monto sea negativo
func ValidateInput(in models.CalculatorInput) error {
	amounts := map[string]float64{
		FieldArsToPay:             in.ArsToPay,
		FieldUsdtToPay:            in.UsdtToPay,
		FieldUsdtBrlRate:          in.UsdtBrlRate,
		FieldUsdtArsRate:          in.UsdtArsRate,
		FieldBrlReceived:          in.BrlReceived,
		FieldBrlGeneratedFromUsdt: in.BrlGeneratedFromUsdt,
	}
	for field, v := range amounts {
		if v < 0 {
			return &ValidationError{Field: field, Value: formatNumber(v), Reason: "no puede ser negativo"}
		}
	}
	if in.NumberOfOperations < 0 {
		return &ValidationError{Field: FieldNumberOfOperations, Value: strconv.Itoa(in.NumberOfOperations), Reason: "no puede ser negativo"}
	}
	return nil
}

func floatField(in *models.CalculatorInput, field string) *float64 {
	switch field {
	case FieldArsToPay:
		return &in.ArsToPay
	case FieldUsdtToPay:
		return &in.UsdtToPay
	case FieldUsdtBrlRate:
		return &in.UsdtBrlRate
	case FieldUsdtArsRate:
		return &in.UsdtArsRate
	case FieldBrlReceived:
		return &in.BrlReceived
	case FieldBrlGeneratedFromUsdt:
		return &in.BrlGeneratedFromUsdt
	}
	return nil
}

func parseAmount(field, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Value: raw, Reason: "no es un número"}
	}
	// ParseFloat acepta "NaN" e "Inf"
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ValidationError{Field: field, Value: raw, Reason: "no es un número finito"}
	}
	if v < 0 {
		return 0, &ValidationError{Field: field, Value: raw, Reason: "no puede ser negativo"}
	}
	return v, nil
}

func parseCount(field, raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: field, Value: raw, Reason: "no es un entero"}
	}
	if n < 0 {
		return 0, &ValidationError{Field: field, Value: raw, Reason: "no puede ser negativo"}
	}
	return n, nil
}
