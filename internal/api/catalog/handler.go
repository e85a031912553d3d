package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/logger"
)

// CatalogService define o contrato que o Handler espera da camada de Serviço.
type CatalogService interface {
	ListProducts(ctx context.Context, visibleOnly bool) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	SetVariantQuantity(ctx context.Context, productID, color, size string, quantity int) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CreateCoupon(ctx context.Context, coupon domain.Coupon) error
}

// Handler agrupa todos os métodos de Handler do catálogo.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CatalogService, log logger.Logger) *Handler {
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

// ListProductsHandler lida com GET /v1/products (vitrine: apenas visíveis).
// @Summary Lista os produtos visíveis da vitrine
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.Product
// @Failure 500 {object} domain.ErrorResponse
// @Router /products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	products, err := h.Service.ListProducts(r.Context(), true)
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}

// GetProductByIDHandler lida com GET /v1/products/{id}.
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/products/")
	if id == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do produto ausente na URL."), 0)
		return
	}

	product, err := h.Service.GetProductByID(r.Context(), id)
	h.handleServiceResponse(w, r, product, err, http.StatusOK)
}

// ListAllProductsHandler lida com GET /v1/admin/products (inclui ocultos).
func (h *Handler) ListAllProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListProducts(r.Context(), false)
	h.handleServiceResponse(w, r, products, err, http.StatusOK)
}

// CreateProductHandler lida com POST /v1/admin/products.
// @Summary Cria um produto no catálogo
// @Tags admin
// @Accept json
// @Produce json
// @Param product body domain.Product true "Produto a criar"
// @Success 201 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse
// @Router /admin/products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	created, err := h.Service.CreateProduct(r.Context(), product)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// AdminProductHandler despacha PUT/DELETE /v1/admin/products/{id} e
// PUT /v1/admin/products/{id}/stock pelo sufixo do caminho.
func (h *Handler) AdminProductHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/admin/products/")

	if strings.HasSuffix(rest, "/stock") {
		h.setVariantQuantity(w, r, strings.TrimSuffix(rest, "/stock"))
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updateProduct(w, r, rest)
	case http.MethodDelete:
		h.deleteProduct(w, r, rest)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request, id string) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}
	product.ID = id

	updated, err := h.Service.UpdateProduct(r.Context(), product)
	h.handleServiceResponse(w, r, updated, err, http.StatusOK)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	err := h.Service.DeleteProduct(r.Context(), id)
	h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
}

// setVariantQuantity ajusta a quantidade de uma variante (reposição de estoque).
func (h *Handler) setVariantQuantity(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Color    string `json:"color"`
		Size     string `json:"size"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	product, err := h.Service.SetVariantQuantity(r.Context(), id, req.Color, req.Size, req.Quantity)
	h.handleServiceResponse(w, r, product, err, http.StatusOK)
}

// CreateCouponHandler lida com POST /v1/admin/coupons.
func (h *Handler) CreateCouponHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var coupon domain.Coupon
	if err := json.NewDecoder(r.Body).Decode(&coupon); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	err := h.Service.CreateCoupon(r.Context(), coupon)
	h.handleServiceResponse(w, r, coupon, err, http.StatusCreated)
}
