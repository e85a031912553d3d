package domain

import (
	"context"
	"time"
)

// Sale representa um pedido submetido (a Entidade de venda).
// Os itens são um snapshot imutável do carrinho no momento da submissão:
// preço e variantes escolhidas ficam congelados, independentes de edições
// posteriores do catálogo. Registros de venda nunca são mutados.
type Sale struct {
	ID              string     `json:"id"`
	CustomerName    string     `json:"customer_name"`
	CustomerAddress string     `json:"customer_address"`
	PaymentMethod   string     `json:"payment_method"`
	Total           float64    `json:"total"`
	Items           []SaleItem `json:"items"`
	CreatedAt       time.Time  `json:"created_at"`
}

// SaleItem é uma linha congelada do pedido.
type SaleItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// SnapshotItems congela as linhas do carrinho em itens de venda,
// aplicando o preço efetivo vigente de cada produto.
func SnapshotItems(lines []CartLine) []SaleItem {
	items := make([]SaleItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, SaleItem{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Color:       l.Color,
			Size:        l.Size,
			Quantity:    l.Quantity,
			UnitPrice:   l.Product.EffectivePrice(),
		})
	}
	return items
}

// OrderRepository define o contrato de persistência do log de pedidos.
// List retorna os pedidos ordenados por created_at decrescente.
type OrderRepository interface {
	Insert(ctx context.Context, sale Sale) (Sale, error)
	List(ctx context.Context) ([]Sale, error)
}
