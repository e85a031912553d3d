package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/logger"
	"govitrine/internal/pkg/middleware"
	"govitrine/internal/service/checkoutservice"
)

// CheckoutService define o contrato que o Handler espera do Orquestrador.
type CheckoutService interface {
	Get(ctx context.Context, sessionID string) (domain.CheckoutSession, error)
	Advance(ctx context.Context, sessionID string, input checkoutservice.AdvanceInput) (checkoutservice.Result, error)
	Back(ctx context.Context, sessionID string) (domain.CheckoutSession, error)
	Cancel(ctx context.Context, sessionID string) error
}

// Handler agrupa todos os métodos de Handler do checkout.
type Handler struct {
	Service CheckoutService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CheckoutService, log logger.Logger) *Handler {
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
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
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

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Sessão não identificada."), 0)
		return "", false
	}
	return sid, true
}

// GetCheckoutHandler lida com GET /v1/checkout: estado atual do formulário.
func (h *Handler) GetCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.Service.Get(r.Context(), sid)
	h.handleServiceResponse(w, r, session, err, http.StatusOK)
}

// AdvanceHandler lida com POST /v1/checkout/advance.
// A transição final (a partir de payment) submete o pedido e retorna a venda.
// @Summary Avança um passo no checkout
// @Tags checkout
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Identificador do dispositivo/sessão"
// @Param input body checkoutservice.AdvanceInput true "Campos do passo atual"
// @Success 200 {object} checkoutservice.Result
// @Failure 400 {object} domain.ErrorResponse
// @Router /checkout/advance [post]
func (h *Handler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var input checkoutservice.AdvanceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	result, err := h.Service.Advance(r.Context(), sid, input)
	h.handleServiceResponse(w, r, result, err, http.StatusOK)
}

// BackHandler lida com POST /v1/checkout/back.
func (h *Handler) BackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	session, err := h.Service.Back(r.Context(), sid)
	h.handleServiceResponse(w, r, session, err, http.StatusOK)
}

// CancelHandler lida com POST /v1/checkout/cancel.
// Descarta apenas o formulário; carrinho e cupom sobrevivem.
func (h *Handler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	err := h.Service.Cancel(r.Context(), sid)
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}
