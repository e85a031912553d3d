package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/logger"
	"govitrine/internal/service/analyticsservice"
)

// AnalyticsService define o contrato que o Handler espera da camada de Serviço.
type AnalyticsService interface {
	Report(ctx context.Context, filter analyticsservice.ReportFilter) (analyticsservice.SalesReport, error)
	Dashboard(ctx context.Context) (analyticsservice.CatalogDashboard, error)
}

// Handler agrupa os métodos de Handler dos relatórios do operador.
type Handler struct {
	Service AnalyticsService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AnalyticsService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)
	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	}

	errorResponse := domain.ErrorResponse{
		Code:     status,
		Category: category,
		Message:  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// SalesReportHandler lida com GET /v1/admin/reports/sales.
// Query params: start=YYYY-MM-DD, end=YYYY-MM-DD, q=texto livre.
// @Summary Relatório de vendas filtrado por período e busca textual
// @Tags admin
// @Produce json
// @Param start query string false "Data inicial (YYYY-MM-DD, inclusiva)"
// @Param end query string false "Data final (YYYY-MM-DD, inclusiva)"
// @Param q query string false "Busca por cliente ou nome de item"
// @Success 200 {object} analyticsservice.SalesReport
// @Failure 400 {object} domain.ErrorResponse
// @Router /admin/reports/sales [get]
func (h *Handler) SalesReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	filter := analyticsservice.ReportFilter{Search: r.URL.Query().Get("q")}

	if startStr := r.URL.Query().Get("start"); startStr != "" {
		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Data inicial inválida. Use YYYY-MM-DD."), 0)
			return
		}
		filter.Start = &start
	}
	if endStr := r.URL.Query().Get("end"); endStr != "" {
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Data final inválida. Use YYYY-MM-DD."), 0)
			return
		}
		filter.End = &end
	}

	report, err := h.Service.Report(r.Context(), filter)
	h.handleServiceResponse(w, r, report, err, http.StatusOK)
}

// DashboardHandler lida com GET /v1/admin/dashboard: números do catálogo
// inteiro (produtos, unidades, valor de estoque e estoque baixo).
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	dashboard, err := h.Service.Dashboard(r.Context())
	h.handleServiceResponse(w, r, dashboard, err, http.StatusOK)
}
