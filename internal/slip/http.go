package slip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
)

type HTTPConfig struct {
	ServiceURL string
	APIKey     string
	Timeout    time.Duration
}

// HTTPGenerator posts slips to an external document service.
type HTTPGenerator struct {
	serviceURL string
	apiKey     string
	client     *http.Client
	logger     *slog.Logger
}

func NewHTTPGenerator(cfg HTTPConfig, logger *slog.Logger) *HTTPGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGenerator{
		serviceURL: strings.TrimRight(cfg.ServiceURL, "/"),
		apiKey:     cfg.APIKey,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (g *HTTPGenerator) Generate(ctx context.Context, s *Slip) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal slip: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.serviceURL+"/slips", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create slip request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", fmt.Sprintf("salary-%d", s.SalaryID))
	if g.apiKey != "" {
		req.Header.Set("X-API-Key", g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", internal.NewExternalError("slip service unreachable", internal.ErrCodeSlipFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", internal.NewExternalError(fmt.Sprintf("slip service returned status %d", resp.StatusCode), internal.ErrCodeSlipFailed, nil)
	}

	var apiResponse struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", internal.NewExternalError("failed to decode slip service response", internal.ErrCodeSlipFailed, err)
	}

	g.logger.Info("slip accepted by slip service",
		"salary_id", s.SalaryID,
		"employee_id", s.EmployeeID,
		"document_id", apiResponse.Data.ID)
	return apiResponse.Data.ID, nil
}
