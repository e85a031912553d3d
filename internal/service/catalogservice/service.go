package catalogservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/logger"
)

// Service é a camada de lógica de negócio do Catálogo: fonte de verdade
// de preço e disponibilidade, mantida pelas ações do operador.
// Também administra o cadastro de cupons de desconto.
type Service struct {
	repo    domain.CatalogRepository
	coupons domain.CouponRepository
	logger  logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Catálogo.
func NewService(repo domain.CatalogRepository, coupons domain.CouponRepository, log logger.Logger) *Service {
	return &Service{repo: repo, coupons: coupons, logger: log}
}

// ListProducts lista os produtos do catálogo.
// Com visibleOnly, retorna apenas os produtos visíveis na vitrine.
func (s *Service) ListProducts(ctx context.Context, visibleOnly bool) ([]domain.Product, error) {
	return s.repo.FindAll(ctx, domain.ProductFilter{VisibleOnly: visibleOnly})
}

// GetProductByID busca um produto pelo ID.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	return s.repo.FindByID(ctx, id)
}

// CreateProduct valida e persiste um novo produto. A lista de variantes de
// estoque é reconciliada com os conjuntos de cores e tamanhos informados.
// Falha de validação bloqueia a gravação; nenhum registro parcial é criado.
func (s *Service) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.Name == "" {
		return domain.Product{}, apperror.NewValidationError("O nome do produto é obrigatório.")
	}
	if product.Price <= 0 {
		return domain.Product{}, apperror.NewValidationError("O preço do produto deve ser positivo.")
	}
	if product.PromoPrice < 0 {
		return domain.Product{}, apperror.NewValidationError("O preço promocional não pode ser negativo.")
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.Stock = domain.ReconcileVariants(product.Stock, product.Colors, product.Sizes)

	created, err := s.repo.Save(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto criado.", map[string]interface{}{"product_id": created.ID, "name": created.Name})
	return created, nil
}

// UpdateProduct valida e persiste a edição de um produto existente.
// Quando o operador altera cores ou tamanhos, as variantes de estoque são
// reconciliadas: pares removidos saem da lista, pares novos entram com
// quantidade zero e as quantidades dos pares sobreviventes são preservadas.
func (s *Service) UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if _, err := uuid.Parse(product.ID); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if product.Name == "" {
		return domain.Product{}, apperror.NewValidationError("O nome do produto é obrigatório.")
	}
	if product.Price <= 0 {
		return domain.Product{}, apperror.NewValidationError("O preço do produto deve ser positivo.")
	}

	existing, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		return domain.Product{}, err
	}

	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	product.Stock = domain.ReconcileVariants(existing.Stock, product.Colors, product.Sizes)

	if err := s.repo.Update(ctx, product); err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto atualizado.", map[string]interface{}{"product_id": product.ID})
	return product, nil
}

// SetVariantQuantity ajusta a quantidade de uma variante específica
// (ação do operador, e.g. reposição de estoque).
func (s *Service) SetVariantQuantity(ctx context.Context, productID, color, size string, quantity int) (domain.Product, error) {
	if quantity < 0 {
		return domain.Product{}, apperror.NewValidationError("A quantidade em estoque não pode ser negativa.")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, err
	}

	found := false
	for i, v := range product.Stock {
		if v.Color == color && v.Size == size {
			product.Stock[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return domain.Product{}, apperror.NewNotFoundError("Variante (cor, tamanho) não existe para este produto.")
	}

	if err := s.repo.UpdateStock(ctx, productID, product.Stock); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// CreateCoupon cadastra um cupom de desconto percentual (0–100).
func (s *Service) CreateCoupon(ctx context.Context, coupon domain.Coupon) error {
	if coupon.Code == "" {
		return apperror.NewValidationError("O código do cupom é obrigatório.")
	}
	if coupon.DiscountPercent < 0 || coupon.DiscountPercent > 100 {
		return apperror.NewValidationError("O desconto do cupom deve estar entre 0 e 100.")
	}
	return s.coupons.Save(ctx, coupon)
}

// DeleteProduct remove um produto do catálogo.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Produto removido.", map[string]interface{}{"product_id": id})
	return nil
}
