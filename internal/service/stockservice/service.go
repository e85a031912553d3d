package stockservice

import (
	"context"

	"govitrine/internal/domain"
	"govitrine/internal/pkg/logger"
)

// CatalogRepository define o contrato que o Livro de Estoque espera
// da camada de Persistência.
type CatalogRepository interface {
	FindByID(ctx context.Context, id string) (domain.Product, error)
	UpdateStock(ctx context.Context, productID string, stock []domain.StockVariant) error
}

// Service é o Livro de Estoque: leitura e ajuste das quantidades
// por variante (cor, tamanho) de um produto.
type Service struct {
	repo   CatalogRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(repo CatalogRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// AvailableQuantity retorna a quantidade disponível da variante (cor, tamanho).
// Variante ausente da lista do produto conta como zero.
func (s *Service) AvailableQuantity(ctx context.Context, productID, color, size string) (int, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.VariantQuantity(color, size), nil
}

// Decrement abate amount unidades da variante (cor, tamanho) do produto,
// limitado em zero: o estoque nunca fica negativo e o piso é aplicado em
// silêncio, sem erro. Retorna a nova quantidade da variante.
//
// A leitura e a gravação não são atomizadas entre clientes: dois compradores
// em dispositivos distintos podem passar pela checagem de disponibilidade
// antes de qualquer decremento (limitação aceita, sem coordenação global).
func (s *Service) Decrement(ctx context.Context, productID, color, size string, amount int) (int, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return 0, err
	}

	newQuantity := 0
	found := false
	for i, v := range product.Stock {
		if v.Color == color && v.Size == size {
			newQuantity = v.Quantity - amount
			if newQuantity < 0 {
				newQuantity = 0
			}
			product.Stock[i].Quantity = newQuantity
			found = true
			break
		}
	}

	if !found {
		// Variante ausente: estoque já é zero, nada a persistir.
		s.logger.Warn("Decremento sobre variante inexistente ignorado.", map[string]interface{}{
			"product_id": productID,
			"color":      color,
			"size":       size,
		})
		return 0, nil
	}

	if err := s.repo.UpdateStock(ctx, productID, product.Stock); err != nil {
		return 0, err
	}

	s.logger.Info("Estoque decrementado.", map[string]interface{}{
		"product_id":   productID,
		"color":        color,
		"size":         size,
		"amount":       amount,
		"new_quantity": newQuantity,
	})
	return newQuantity, nil
}
