package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/calculator"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/config"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/database"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/ledger"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/middleware"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
	"github.com/AgusMolinaCode/ControlDiario_Api/internal/repository"
)

type fixedRates struct {
	quote models.RateQuote
	ok    bool
}

func (f fixedRates) Latest() (models.RateQuote, bool) { return f.quote, f.ok }

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DriverSQLite, filepath.Join(t.TempDir(), "control.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	feed := ledger.NewFeed(repository.NewMovimientoRepository(db), zerolog.Nop())
	require.NoError(t, feed.Refresh(context.Background()))

	middleware.InitLedger(feed, []string{"http://localhost:3000"})
	middleware.InitCalculator(calculator.NewSessionStore(time.Hour))
	middleware.SetRateSource(fixedRates{})

	router := gin.New()
	RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type ledgerResponse struct {
	Movimientos []models.MovimientoView `json:"movimientos"`
	Balance     float64                 `json:"balance"`
}

type sessionResponse struct {
	ID    string           `json:"id"`
	State calculator.State `json:"state"`
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/calculator/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[sessionResponse](t, w)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestHealth(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMovimientos_CreateAndList(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/movimientos", models.NewMovimiento{
		Fecha: "2025-03-01", Ventas: 1000, Gastos: 250, Comentarios: "feria",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.MovimientoView](t, w)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 750.0, created.Balance)

	w = doJSON(t, router, http.MethodPost, "/movimientos", models.NewMovimiento{Fecha: "2025-03-05", Gastos: 100})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/movimientos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[ledgerResponse](t, w)
	require.Len(t, list.Movimientos, 2)
	assert.Equal(t, "2025-03-05", list.Movimientos[0].Fecha)
	assert.Equal(t, -100.0, list.Movimientos[0].Balance)
	assert.Equal(t, 650.0, list.Balance)

	w = doJSON(t, router, http.MethodGet, "/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balance":650,"display":"$650,00"}`, w.Body.String())
}

func TestMovimientos_BadRequests(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/movimientos", strings.NewReader(`{"ventas":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/movimientos", models.NewMovimiento{Fecha: "01/03/2025"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestMovimientos_Stream(t *testing.T) {
	router := setupRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/movimientos/stream"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() ledgerResponse {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var resp ledgerResponse
		require.NoError(t, json.Unmarshal(data, &resp))
		return resp
	}

	first := read()
	assert.Empty(t, first.Movimientos)
	assert.Zero(t, first.Balance)

	w := doJSON(t, router, http.MethodPost, "/movimientos", models.NewMovimiento{Fecha: "2025-03-01", Ventas: 500, Gastos: 20})
	require.Equal(t, http.StatusCreated, w.Code)

	second := read()
	require.Len(t, second.Movimientos, 1)
	assert.Equal(t, 480.0, second.Balance)
}

func TestCalculator_Calculate(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/calculator/calculate", models.CalculatorInput{
		ArsToPay: 1000, UsdtToPay: 10, UsdtBrlRate: 5, UsdtArsRate: 1000,
		BrlReceived: 200, BrlGeneratedFromUsdt: 50, NumberOfOperations: 2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[models.DerivedMetrics](t, w)
	assert.Equal(t, 250.0, m.TotalBrl)
	assert.Equal(t, 40000.0, m.ArsGenerated)
	assert.Equal(t, 39000.0, m.GrossIncome)

	w = doJSON(t, router, http.MethodPost, "/calculator/calculate", models.CalculatorInput{ArsToPay: -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculator_SessionFlow(t *testing.T) {
	router := setupRouter(t)
	id := createSession(t, router)
	base := "/calculator/sessions/" + id

	w := doJSON(t, router, http.MethodPatch, base+"/input", map[string]any{
		"arsToPay":             "1000",
		"usdtToPay":            10,
		"usdtBrlRate":          "5",
		"usdtArsRate":          "1000",
		"brlReceived":          "200",
		"brlGeneratedFromUsdt": "50",
		"numberOfOperations":   "2",
	})
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[calculator.State](t, w)
	assert.Equal(t, 250.0, state.Metrics.TotalBrl)
	assert.Equal(t, "R$250,00", state.Display.TotalBrl)

	// Valores inválidos se ignoran
	w = doJSON(t, router, http.MethodPatch, base+"/input", map[string]any{
		"usdtToPay":          "abc",
		"numberOfOperations": "2.5",
		"brlReceived":        "-3",
	})
	require.Equal(t, http.StatusOK, w.Code)
	state = decode[calculator.State](t, w)
	assert.Equal(t, 10.0, state.Input.UsdtToPay)
	assert.Equal(t, 2, state.Input.NumberOfOperations)
	assert.Equal(t, 200.0, state.Input.BrlReceived)

	w = doJSON(t, router, http.MethodPut, base+"/date", map[string]string{"date": "2025-03-14"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "14/03/2025", decode[calculator.State](t, w).Date)

	w = doJSON(t, router, http.MethodPut, base+"/date", map[string]string{"date": "14-03-2025"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, base+"/operations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	saved := decode[models.SavedOperation](t, w)
	assert.Equal(t, "14/03/2025", saved.Date)
	assert.Equal(t, 250.0, saved.CalculatedData.TotalBrl)

	w = doJSON(t, router, http.MethodPost, base+"/history/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"visible":true}`, w.Body.String())

	w = doJSON(t, router, http.MethodGet, base+"/operations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ops := decode[struct {
		Visible    bool                    `json:"visible"`
		Operations []models.SavedOperation `json:"operations"`
	}](t, w)
	assert.True(t, ops.Visible)
	assert.Len(t, ops.Operations, 1)

	w = doJSON(t, router, http.MethodGet, base+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "attachment; filename=dashboard_data_2025-03-14.csv", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Total BRL,250")
	assert.Contains(t, w.Body.String(), "Exchange Commission (ARS),5")

	w = doJSON(t, router, http.MethodPut, base+"/date", map[string]string{"date": ""})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodGet, base+"/export", nil)
	assert.Equal(t, "attachment; filename=dashboard_data_N_A.csv", w.Header().Get("Content-Disposition"))
}

func TestCalculator_UnknownSession(t *testing.T) {
	router := setupRouter(t)

	for _, path := range []string{"/calculator/sessions/nope", "/calculator/sessions/nope/export", "/calculator/sessions/nope/operations"} {
		w := doJSON(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestCalculator_Rates(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/calculator/rates", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	id := createSession(t, router)
	w = doJSON(t, router, http.MethodPost, "/calculator/sessions/"+id+"/rates", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	middleware.SetRateSource(fixedRates{quote: models.RateQuote{UsdtBrl: 5.5, UsdtArs: 1200, Source: "test"}, ok: true})

	w = doJSON(t, router, http.MethodGet, "/calculator/rates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.5, decode[models.RateQuote](t, w).UsdtBrl)

	w = doJSON(t, router, http.MethodPost, "/calculator/sessions/"+id+"/rates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[calculator.State](t, w)
	assert.Equal(t, 5.5, state.Input.UsdtBrlRate)
	assert.Equal(t, 1200.0, state.Input.UsdtArsRate)
}
