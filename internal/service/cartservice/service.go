package cartservice

import (
	"context"
	"errors"
	"fmt"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/logger"
	"govitrine/internal/service/pricingservice"
)

// SessionRepository define o contrato de persistência da sessão de compra
// (carrinho durável por dispositivo e cupom aplicado).
type SessionRepository interface {
	LoadCart(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	SaveCart(ctx context.Context, sessionID string, lines []domain.CartLine) error
	ClearCart(ctx context.Context, sessionID string) error
	LoadCoupon(ctx context.Context, sessionID string) (domain.Coupon, bool, error)
	SaveCoupon(ctx context.Context, sessionID string, coupon domain.Coupon) error
	ClearCoupon(ctx context.Context, sessionID string) error
}

// CatalogRepository define o que o carrinho precisa do catálogo:
// o produto com a lista de variantes, para snapshot e disponibilidade.
type CatalogRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
}

// CouponRepository define o contrato de busca de cupons cadastrados.
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (domain.Coupon, error)
}

// Summary é a visão do carrinho entregue ao handler: linhas, cupom aplicado
// e os valores calculados pelo motor de precificação.
type Summary struct {
	Lines    []domain.CartLine `json:"lines"`
	Coupon   *domain.Coupon    `json:"coupon,omitempty"`
	Subtotal float64           `json:"subtotal"`
	Total    float64           `json:"total"`
}

// Service é o Motor de Carrinho: coleção de linhas de variantes escolhidas,
// com disponibilidade garantida no momento da inserção.
type Service struct {
	sessions SessionRepository
	catalog  CatalogRepository
	coupons  CouponRepository
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Carrinho.
func NewService(sessions SessionRepository, catalog CatalogRepository, coupons CouponRepository, log logger.Logger) *Service {
	return &Service{
		sessions: sessions,
		catalog:  catalog,
		coupons:  coupons,
		logger:   log,
	}
}

// AddLine adiciona uma unidade da variante (cor, tamanho) ao carrinho.
// Se a quantidade já no carrinho mais uma exceder a disponibilidade do
// estoque, falha com OutOfStockError e o carrinho permanece inalterado.
// Caso contrário, incrementa a linha existente de mesma chave
// (productID, cor, tamanho) ou cria uma linha nova com quantidade 1.
func (s *Service) AddLine(ctx context.Context, sessionID, productID, color, size string) (Summary, error) {
	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return Summary{}, err
	}

	lines, err := s.sessions.LoadCart(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}

	// Checagem de disponibilidade no momento da inserção.
	// O estoque só é consumido no checkout; dois carrinhos independentes podem
	// passar por esta checagem contra o mesmo estoque (limitação aceita).
	inCart := domain.QuantityInCart(lines, productID, color, size)
	available := product.VariantQuantity(color, size)
	if inCart+1 > available {
		return Summary{}, apperror.NewOutOfStockError(
			fmt.Sprintf("%s (%s, %s) não tem unidades suficientes em estoque.", product.Name, color, size))
	}

	lines = domain.MergeLine(lines, product, color, size)
	if err := s.sessions.SaveCart(ctx, sessionID, lines); err != nil {
		return Summary{}, err
	}

	s.logger.Debug("Linha adicionada ao carrinho.", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
		"color":      color,
		"size":       size,
	})
	return s.summarize(ctx, sessionID, lines)
}

// RemoveLine remove a linha no índice posicional informado.
// Não há efeito colateral no estoque.
func (s *Service) RemoveLine(ctx context.Context, sessionID string, index int) (Summary, error) {
	lines, err := s.sessions.LoadCart(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}

	if index < 0 || index >= len(lines) {
		return Summary{}, apperror.NewValidationError(fmt.Sprintf("Índice de linha %d inválido.", index))
	}

	lines = domain.RemoveLineAt(lines, index)
	if err := s.sessions.SaveCart(ctx, sessionID, lines); err != nil {
		return Summary{}, err
	}

	return s.summarize(ctx, sessionID, lines)
}

// Get retorna a visão atual do carrinho da sessão.
func (s *Service) Get(ctx context.Context, sessionID string) (Summary, error) {
	lines, err := s.sessions.LoadCart(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return s.summarize(ctx, sessionID, lines)
}

// Clear esvazia o carrinho e remove o cupom aplicado da sessão.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.sessions.ClearCart(ctx, sessionID); err != nil {
		return err
	}
	return s.sessions.ClearCoupon(ctx, sessionID)
}

// ApplyCoupon busca o código digitado (case-insensitive contra o código
// canônico em maiúsculas) e o aplica à sessão. Código desconhecido falha
// com InvalidCouponError e um cupom anteriormente aplicado permanece
// como estava.
func (s *Service) ApplyCoupon(ctx context.Context, sessionID, code string) (Summary, error) {
	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return Summary{}, apperror.NewInvalidCouponError(fmt.Sprintf("O código '%s' não corresponde a nenhum cupom.", code))
		}
		return Summary{}, err
	}

	if err := s.sessions.SaveCoupon(ctx, sessionID, coupon); err != nil {
		return Summary{}, err
	}

	s.logger.Info("Cupom aplicado à sessão.", map[string]interface{}{
		"session_id": sessionID,
		"code":       coupon.Code,
	})

	lines, err := s.sessions.LoadCart(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return s.summarize(ctx, sessionID, lines)
}

// RemoveCoupon desaplica o cupom da sessão.
func (s *Service) RemoveCoupon(ctx context.Context, sessionID string) (Summary, error) {
	if err := s.sessions.ClearCoupon(ctx, sessionID); err != nil {
		return Summary{}, err
	}
	lines, err := s.sessions.LoadCart(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return s.summarize(ctx, sessionID, lines)
}

// summarize monta a visão do carrinho com os valores do motor de precificação.
func (s *Service) summarize(ctx context.Context, sessionID string, lines []domain.CartLine) (Summary, error) {
	coupon, found, err := s.sessions.LoadCoupon(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Lines:    lines,
		Subtotal: pricingservice.Subtotal(lines),
	}
	if found {
		summary.Coupon = &coupon
		summary.Total = pricingservice.Total(lines, &coupon)
	} else {
		summary.Total = pricingservice.Total(lines, nil)
	}
	return summary, nil
}
