package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/middleware"
)

// RegisterRoutes registra todas las rutas. Los handlers usan el estado
// cargado antes con middleware.InitLedger, InitCalculator y SetRateSource.
func RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Control diario
	router.GET("/movimientos", middleware.GetMovimientos)
	router.POST("/movimientos", middleware.CreateMovimiento)
	router.GET("/movimientos/stream", middleware.StreamMovimientos)
	router.GET("/balance", middleware.GetBalance)

	// Calculadora de cambio
	calc := router.Group("/calculator")
	{
		calc.POST("/calculate", middleware.Calculate)
		calc.GET("/rates", middleware.GetRates)

		calc.POST("/sessions", middleware.CreateSession)
		calc.GET("/sessions/:id", middleware.GetSession)
		calc.PATCH("/sessions/:id/input", middleware.UpdateSessionInput)
		calc.PUT("/sessions/:id/date", middleware.SetSessionDate)
		calc.POST("/sessions/:id/operations", middleware.SaveOperation)
		calc.GET("/sessions/:id/operations", middleware.GetOperations)
		calc.POST("/sessions/:id/history/toggle", middleware.ToggleHistory)
		calc.GET("/sessions/:id/export", middleware.ExportSession)
		calc.POST("/sessions/:id/rates", middleware.ApplySessionRates)
	}
}
