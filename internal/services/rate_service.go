package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AgusMolinaCode/ControlDiario_Api/internal/models"
)

// ErrNoQuote indica que todavía no hay una cotización disponible
var ErrNoQuote = errors.New("no hay cotización disponible")

const quoteSource = "cryptocompare"

// RateService consulta la cotización de USDT en CryptoCompare
type RateService struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewRateService crea el cliente de cotizaciones
func NewRateService(baseURL, apiKey string, log zerolog.Logger) *RateService {
	return &RateService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("component", "rate_service").Logger(),
	}
}

// GetUSDTQuote obtiene USDT/BRL y USDT/ARS en una sola llamada
func (s *RateService) GetUSDTQuote(ctx context.Context) (models.RateQuote, error) {
	params := url.Values{}
	params.Set("fsym", "USDT")
	params.Set("tsyms", "BRL,ARS")
	params.Set("api_key", s.apiKey)
	endpoint := s.baseURL + "/data/price?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.RateQuote{}, fmt.Errorf("error armando la petición: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Msg("Error haciendo la petición HTTP de cotización")
		return models.RateQuote{}, fmt.Errorf("error en la petición HTTP: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.RateQuote{}, fmt.Errorf("error leyendo respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.log.Error().Int("status", resp.StatusCode).Msg("CryptoCompare respondió con error")
		return models.RateQuote{}, fmt.Errorf("respuesta inesperada de CryptoCompare: %d", resp.StatusCode)
	}

	// Ante un error la API responde 200 con {"Response":"Error","Message":"..."}
	var result map[string]json.RawMessage
	if err := json.Unmarshal(body, &result); err != nil {
		return models.RateQuote{}, fmt.Errorf("error decodificando JSON: %w", err)
	}
	if raw, ok := result["Message"]; ok {
		var msg string
		_ = json.Unmarshal(raw, &msg)
		return models.RateQuote{}, fmt.Errorf("CryptoCompare devolvió error: %s", msg)
	}

	brl, err := priceField(result, "BRL")
	if err != nil {
		return models.RateQuote{}, err
	}
	ars, err := priceField(result, "ARS")
	if err != nil {
		return models.RateQuote{}, err
	}

	return models.RateQuote{
		UsdtBrl:   brl,
		UsdtArs:   ars,
		Source:    quoteSource,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func priceField(result map[string]json.RawMessage, symbol string) (float64, error) {
	raw, ok := result[symbol]
	if !ok {
		return 0, fmt.Errorf("no se encontró precio para %s", symbol)
	}
	var price float64
	if err := json.Unmarshal(raw, &price); err != nil {
		return 0, fmt.Errorf("precio inválido para %s: %w", symbol, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("precio no positivo para %s: %v", symbol, price)
	}
	return price, nil
}
