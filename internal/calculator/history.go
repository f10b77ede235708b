package calculator

import "github.com/AgusMolinaCode/ControlDiario_Api/internal/models"

// History guarda en memoria las operaciones calculadas, en orden de guardado.
// No hay borrado ni deduplicación.
type History struct {
	operations []models.SavedOperation
	visible    bool
}

// Save agrega una operación al final del historial
func (h *History) Save(input models.CalculatorInput, derived models.DerivedMetrics, label string) {
	h.operations = append(h.operations, models.SavedOperation{
		Date:           label,
		InputData:      input,
		CalculatedData: derived,
	})
}

// List devuelve una copia del historial
func (h *History) List() []models.SavedOperation {
	out := make([]models.SavedOperation, len(h.operations))
	copy(out, h.operations)
	return out
}

// Len devuelve la cantidad de operaciones guardadas
func (h *History) Len() int { return len(h.operations) }

// ToggleVisibility alterna si el historial se muestra y devuelve el nuevo valor
func (h *History) ToggleVisibility() bool {
	h.visible = !h.visible
	return h.visible
}

// Visible indica si el historial está visible
func (h *History) Visible() bool { return h.visible }
