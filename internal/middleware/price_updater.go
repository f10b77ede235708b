package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/services"
)

// RateSource devuelve la última cotización conocida
type RateSource interface {
	Latest() (models.RateQuote, bool)
}

// Variable global para la fuente de cotizaciones
var rateSource RateSource

// SetRateSource establece la fuente de cotizaciones (normalmente el RateUpdater)
func SetRateSource(src RateSource) {
	rateSource = src
}

func latestQuote() (models.RateQuote, error) {
	if rateSource == nil {
		return models.RateQuote{}, services.ErrNoQuote
	}
	quote, ok := rateSource.Latest()
	if !ok {
		return models.RateQuote{}, services.ErrNoQuote
	}
	return quote, nil
}

// GetRates devuelve la última cotización de USDT
func GetRates(c *gin.Context) {
	quote, err := latestQuote()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, quote)
}

// ApplySessionRates copia la última cotización a la sesión del tablero
func ApplySessionRates(c *gin.Context) {
	dashboard, ok := sessionFromParam(c)
	if !ok {
		return
	}

	quote, err := latestQuote()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	dashboard.ApplyRates(quote)
	c.JSON(http.StatusOK, dashboard.State())
}
