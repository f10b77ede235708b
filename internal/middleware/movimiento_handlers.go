package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/calculator"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/ledger"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

var (
	ledgerFeed     *ledger.Feed
	originPatterns []string
)

const streamWriteTimeout = 5 * time.Second

// InitLedger deja disponible el feed para los handlers. allowedOrigins son
// los orígenes CORS; se usan también para aceptar el WebSocket.
func InitLedger(feed *ledger.Feed, allowedOrigins []string) {
	ledgerFeed = feed
	originPatterns = hostPatterns(allowedOrigins)
}

type ledgerPayload struct {
	Movimientos []models.MovimientoView `json:"movimientos"`
	Balance     float64                 `json:"balance"`
}

func newLedgerPayload(list []models.Movimiento) ledgerPayload {
	return ledgerPayload{
		Movimientos: ledger.Views(list),
		Balance:     ledger.Balance(list),
	}
}

// GetMovimientos devuelve todos los movimientos con el balance total
func GetMovimientos(c *gin.Context) {
	list, err := ledgerFeed.List(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Error al obtener movimientos")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener los movimientos"})
		return
	}

	c.JSON(http.StatusOK, newLedgerPayload(list))
}

// CreateMovimiento guarda un movimiento nuevo
func CreateMovimiento(c *gin.Context) {
	var in models.NewMovimiento
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := ledgerFeed.Append(c.Request.Context(), in)
	if err != nil {
		var perr *ledger.PersistenceError
		if errors.As(err, &perr) {
			logger.Error().Err(err).Str("op", perr.Op).Msg("Error al guardar movimiento")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al guardar el movimiento"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.MovimientoView{Movimiento: m, Balance: m.Balance()})
}

// GetBalance devuelve el balance total y su versión formateada
func GetBalance(c *gin.Context) {
	list, err := ledgerFeed.List(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Error al calcular balance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al calcular el balance"})
		return
	}

	balance := ledger.Balance(list)
	c.JSON(http.StatusOK, gin.H{
		"balance": balance,
		"display": calculator.FormatARS(balance),
	})
}

// StreamMovimientos abre un WebSocket que recibe la lista y el balance en cada cambio
func StreamMovimientos(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		// Accept ya respondió al cliente
		logger.Warn().Err(err).Msg("No se pudo aceptar el WebSocket")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	// El cliente no envía mensajes; CloseRead cancela ctx cuando se desconecta
	ctx := conn.CloseRead(c.Request.Context())

	// Sólo importa la última lista: si el cliente está atrasado se descarta la anterior
	updates := make(chan []models.Movimiento, 1)
	unsubscribe := ledgerFeed.Subscribe(func(list []models.Movimiento) {
		select {
		case updates <- list:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- list
		}
	})
	defer unsubscribe()

	logger.Debug().Int("subscribers", ledgerFeed.Subscribers()).Msg("Cliente de movimientos conectado")

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case list := <-updates:
			if err := writeLedger(ctx, conn, list); err != nil {
				logger.Debug().Err(err).Msg("Cliente de movimientos desconectado")
				return
			}
		}
	}
}

func writeLedger(ctx context.Context, conn *websocket.Conn, list []models.Movimiento) error {
	data, err := json.Marshal(newLedgerPayload(list))
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

// hostPatterns convierte orígenes (http://host:port) en patrones de host
func hostPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			patterns = append(patterns, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			patterns = append(patterns, o)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}
