package domain

import (
	"context"
	"time"
)

// Product representa o item principal do catálogo (a Entidade).
// O controle de estoque é feito por variante (cor, tamanho) na lista Stock.
type Product struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Price        float64        `json:"price"`
	PromoPrice   float64        `json:"promo_price"`
	Category     string         `json:"category"`
	Colors       []string       `json:"colors"`
	Sizes        []string       `json:"sizes"`
	Stock        []StockVariant `json:"stock"`
	IsPromotion  bool           `json:"is_promotion"`
	IsMulticolor bool           `json:"is_multicolor"`
	IsVisible    bool           `json:"is_visible"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// StockVariant representa a combinação (cor, tamanho) de um Produto,
// cada uma com sua própria quantidade em estoque.
// Invariante: Quantity nunca fica negativa (decrementos são limitados em zero).
type StockVariant struct {
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// EffectivePrice retorna o preço efetivamente cobrado por unidade:
// o preço promocional quando a promoção está ativa e tem valor positivo,
// caso contrário o preço base.
func (p Product) EffectivePrice() float64 {
	if p.IsPromotion && p.PromoPrice > 0 {
		return p.PromoPrice
	}
	return p.Price
}

// VariantQuantity retorna a quantidade em estoque da variante (cor, tamanho).
// Uma variante ausente da lista é tratada como estoque zero.
func (p Product) VariantQuantity(color, size string) int {
	for _, v := range p.Stock {
		if v.Color == color && v.Size == size {
			return v.Quantity
		}
	}
	return 0
}

// TotalStock retorna a soma das quantidades de todas as variantes do produto.
func (p Product) TotalStock() int {
	total := 0
	for _, v := range p.Stock {
		total += v.Quantity
	}
	return total
}

// ReconcileVariants reconcilia a lista de variantes de estoque com os novos
// conjuntos de cores e tamanhos escolhidos pelo operador:
//   - remove variantes cuja cor ou tamanho deixou de ser selecionado;
//   - acrescenta variantes com quantidade zero para cada par (cor, tamanho)
//     ainda não presente;
//   - preserva as quantidades dos pares que continuam existindo.
//
// A operação é idempotente: executá-la duas vezes com as mesmas entradas
// produz a mesma lista.
func ReconcileVariants(current []StockVariant, colors, sizes []string) []StockVariant {
	colorSet := make(map[string]bool, len(colors))
	for _, c := range colors {
		colorSet[c] = true
	}
	sizeSet := make(map[string]bool, len(sizes))
	for _, s := range sizes {
		sizeSet[s] = true
	}

	// 1. Mantém apenas as variantes cujos cor e tamanho continuam selecionados.
	result := make([]StockVariant, 0, len(colors)*len(sizes))
	seen := make(map[string]bool)
	for _, v := range current {
		if colorSet[v.Color] && sizeSet[v.Size] {
			result = append(result, v)
			seen[v.Color+"|"+v.Size] = true
		}
	}

	// 2. Acrescenta pares novos com quantidade zero, na ordem cores × tamanhos.
	for _, c := range colors {
		for _, s := range sizes {
			if !seen[c+"|"+s] {
				result = append(result, StockVariant{Color: c, Size: s, Quantity: 0})
				seen[c+"|"+s] = true
			}
		}
	}

	return result
}

// --- Interfaces de Contrato ---

// CatalogRepository define o contrato de persistência do catálogo.
// A camada de Serviço depende apenas desta interface; a implementação
// concreta (Postgres + cache Redis) vive em internal/repository/catalogrepo.
type CatalogRepository interface {
	Save(ctx context.Context, product Product) (Product, error)
	FindByID(ctx context.Context, id string) (Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
	Update(ctx context.Context, product Product) error
	UpdateStock(ctx context.Context, productID string, stock []StockVariant) error
	Delete(ctx context.Context, id string) error
}

// ProductFilter define os parâmetros de listagem do catálogo.
type ProductFilter struct {
	Category    string
	VisibleOnly bool
}
