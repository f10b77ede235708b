package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/calculator"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

var sessionStore *calculator.SessionStore

// InitCalculator deja disponible el store de sesiones para los handlers
func InitCalculator(store *calculator.SessionStore) {
	sessionStore = store
}

// Calculate calcula las métricas sin sesión
func Calculate(c *gin.Context) {
	var in models.CalculatorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := calculator.ValidateInput(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, calculator.Calculate(in))
}

// CreateSession abre un tablero nuevo
func CreateSession(c *gin.Context) {
	id, dashboard := sessionStore.Create()
	logger.Debug().Str("session", id).Int("sessions", sessionStore.Count()).Msg("Sesión creada")
	c.JSON(http.StatusCreated, gin.H{
		"id":    id,
		"state": dashboard.State(),
	})
}

// GetSession devuelve el estado del tablero
func GetSession(c *gin.Context) {
	dashboard, ok := sessionFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dashboard.State())
}

// UpdateSessionInput aplica ediciones de campos {campo: "valor"}.
// Los valores inválidos se ignoran y el campo conserva su valor anterior.
func UpdateSessionInput(c *gin.Context) {
	dashboard, ok := sessionFromParam(c)
	if !ok {
		return
	}

	var edits map[string]any
	if err := c.ShouldBindJSON(&edits); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for field, value := range edits {
		if err := dashboard.SetField(field, rawValue(value)); err != nil {
			var verr *calculator.ValidationError
			if errors.As(err, &verr) {
				logger.Debug().Str("field", verr.Field).Str("value", verr.Value).Str("reason", verr.Reason).Msg("Edición rechazada")
			}
		}
	}

	c.JSON(http.StatusOK, dashboard.State())
}

type dateRequest struct {
	Date string `json:"date"`
}

// SetSessionDate selecciona la fecha (yyyy-MM-dd) o la borra con ""
func SetSessionDate(c *gin.Context) {
	dashboard, ok := sessionFromParam(c)
	if !ok {
		return
	}

	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw := strings.TrimSpace(req.Date)
	if raw == "" {
		dashboard.SetDate(nil)
		c.JSON(http.StatusOK, dashboard.State())
		return
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha inválida, se espera yyyy-MM-dd"})
		return
	}

	dashboard.SetDate(&date)
	c.JSON(http.StatusOK, dashboard.State())
}

// SaveOperation guarda el cálculo actual en el historial
func SaveOperation(c *gin.Context) {
	dashboard, ok := sessionFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, dashboard.Save())
}

// GetOperations devuelve el historial guardado y su visibilidad
func GetOperations(c *gin.Context) {
	dashboard, ok := sessionFromParam(c)
	if !ok {
		return
	}

	operations, visible := dashboard.Operations()
	c.JSON(http.StatusOK, gin.H{
		"visible":    visible,
		"operations": operations,
	})
}

// ToggleHistory muestra u oculta el historial
func ToggleHistory(c *gin.Context) {
	dashboard, ok := sessionFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"visible": dashboard.ToggleHistory()})
}

// ExportSession descarga el tablero como CSV
func ExportSession(c *gin.Context) {
	dashboard, ok := sessionFromParam(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+dashboard.Filename())
	c.Status(http.StatusOK)

	if err := dashboard.Export(c.Writer); err != nil {
		logger.Error().Err(err).Msg("Error al exportar CSV")
		_ = c.Error(err)
	}
}

// rawValue acepta tanto "1000" como 1000; null equivale a vaciar el campo
func rawValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// sessionFromParam busca la sesión :id; si no existe responde 404
func sessionFromParam(c *gin.Context) (*calculator.Dashboard, bool) {
	dashboard, err := sessionStore.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, calculator.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return dashboard, true
}
