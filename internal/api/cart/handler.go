package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/logger"
	"govitrine/internal/pkg/middleware"
	"govitrine/internal/service/cartservice"
)

// CartService define o contrato que o Handler espera da camada de Serviço.
type CartService interface {
	Get(ctx context.Context, sessionID string) (cartservice.Summary, error)
	AddLine(ctx context.Context, sessionID, productID, color, size string) (cartservice.Summary, error)
	RemoveLine(ctx context.Context, sessionID string, index int) (cartservice.Summary, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (cartservice.Summary, error)
	RemoveCoupon(ctx context.Context, sessionID string) (cartservice.Summary, error)
	Clear(ctx context.Context, sessionID string) error
}

// Handler agrupa todos os métodos de Handler do carrinho.
type Handler struct {
	Service CartService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CartService, log logger.Logger) *Handler {
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

// sessionID extrai o identificador de sessão anexado pelo middleware.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Sessão não identificada."), 0)
		return "", false
	}
	return sid, true
}

// GetCartHandler lida com GET /v1/cart (visão do carrinho) e
// DELETE /v1/cart (esvazia carrinho e cupom).
// @Summary Retorna o carrinho da sessão com subtotal e total
// @Tags cart
// @Produce json
// @Param X-Session-ID header string true "Identificador do dispositivo/sessão"
// @Success 200 {object} cartservice.Summary
// @Router /cart [get]
func (h *Handler) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		summary, err := h.Service.Get(r.Context(), sid)
		h.handleServiceResponse(w, r, summary, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.Clear(r.Context(), sid)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// AddLineHandler lida com POST /v1/cart/items.
// Rejeita com OUT_OF_STOCK quando a variante não tem unidades suficientes.
func (h *Handler) AddLineHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"product_id"`
		Color     string `json:"color"`
		Size      string `json:"size"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	summary, err := h.Service.AddLine(r.Context(), sid, req.ProductID, req.Color, req.Size)
	h.handleServiceResponse(w, r, summary, err, http.StatusOK)
}

// RemoveLineHandler lida com DELETE /v1/cart/items/{index}.
func (h *Handler) RemoveLineHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	indexStr := strings.TrimPrefix(r.URL.Path, "/v1/cart/items/")
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Índice de linha inválido na URL."), 0)
		return
	}

	summary, err := h.Service.RemoveLine(r.Context(), sid, index)
	h.handleServiceResponse(w, r, summary, err, http.StatusOK)
}

// CouponHandler lida com POST e DELETE /v1/cart/coupon.
func (h *Handler) CouponHandler(w http.ResponseWriter, r *http.Request) {
	sid, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
			return
		}
		summary, err := h.Service.ApplyCoupon(r.Context(), sid, req.Code)
		h.handleServiceResponse(w, r, summary, err, http.StatusOK)

	case http.MethodDelete:
		summary, err := h.Service.RemoveCoupon(r.Context(), sid)
		h.handleServiceResponse(w, r, summary, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
