package analyticsservice

import (
	"context"
	"strings"
	"time"

	"govitrine/internal/domain"
	"govitrine/internal/pkg/logger"
)

// LowStockThreshold é o limite fixo abaixo do qual um produto entra na
// contagem de estoque baixo do painel.
const LowStockThreshold = 5

// BestSellerNone é o valor sentinela quando não há itens no período filtrado.
const BestSellerNone = "nenhum"

// OrderRepository define a leitura do log de pedidos.
type OrderRepository interface {
	List(ctx context.Context) ([]domain.Sale, error)
}

// CatalogRepository define a leitura do catálogo para o painel.
type CatalogRepository interface {
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// ReportFilter define o recorte do relatório de vendas: intervalo de datas
// inclusivo comparado por dia-calendário (hora zerada) e busca textual
// case-insensitive sobre o nome do cliente OU o nome de qualquer item.
// Critério ausente é vacuamente verdadeiro.
type ReportFilter struct {
	Start  *time.Time
	End    *time.Time
	Search string
}

// SalesReport agrega o log de pedidos filtrado.
type SalesReport struct {
	TotalRevenue  float64    `json:"total_revenue"`
	TotalOrders   int        `json:"total_orders"`
	AverageTicket float64    `json:"average_ticket"`
	BestSeller    BestSeller `json:"best_seller"`
}

// BestSeller é o item de maior quantidade somada no período filtrado.
// Empates são resolvidos pela ordem de primeira ocorrência (estável).
type BestSeller struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// CatalogDashboard agrega o catálogo inteiro (sem filtro) para o operador.
type CatalogDashboard struct {
	TotalProducts   int     `json:"total_products"`
	TotalStockUnits int     `json:"total_stock_units"`
	TotalStockValue float64 `json:"total_stock_value"`
	LowStockCount   int     `json:"low_stock_count"`
}

// Service é o Agregador de Análise de Vendas: lê o log de pedidos e o
// catálogo e produz os números do painel do operador.
type Service struct {
	orders  OrderRepository
	catalog CatalogRepository
	logger  logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Análise.
func NewService(orders OrderRepository, catalog CatalogRepository, log logger.Logger) *Service {
	return &Service{orders: orders, catalog: catalog, logger: log}
}

// Report filtra o log de pedidos e agrega receita, contagem, ticket médio
// e item mais vendido.
func (s *Service) Report(ctx context.Context, filter ReportFilter) (SalesReport, error) {
	sales, err := s.orders.List(ctx)
	if err != nil {
		return SalesReport{}, err
	}

	report := SalesReport{
		BestSeller: BestSeller{Name: BestSellerNone, Quantity: 0},
	}

	// Quantidade somada por nome de item, preservando a ordem de primeira
	// ocorrência para desempate estável.
	quantities := map[string]int{}
	var firstSeen []string

	for _, sale := range sales {
		if !matches(sale, filter) {
			continue
		}

		report.TotalRevenue += sale.Total
		report.TotalOrders++

		for _, item := range sale.Items {
			if _, ok := quantities[item.ProductName]; !ok {
				firstSeen = append(firstSeen, item.ProductName)
			}
			quantities[item.ProductName] += item.Quantity
		}
	}

	if report.TotalOrders > 0 {
		report.AverageTicket = report.TotalRevenue / float64(report.TotalOrders)
	}

	for _, name := range firstSeen {
		if quantities[name] > report.BestSeller.Quantity {
			report.BestSeller = BestSeller{Name: name, Quantity: quantities[name]}
		}
	}

	return report, nil
}

// Dashboard agrega o catálogo inteiro: contagem de produtos, unidades em
// estoque, valor do estoque (unidades × preço efetivo) e produtos com
// estoque total abaixo do limite.
func (s *Service) Dashboard(ctx context.Context) (CatalogDashboard, error) {
	products, err := s.catalog.FindAll(ctx, domain.ProductFilter{})
	if err != nil {
		return CatalogDashboard{}, err
	}

	dashboard := CatalogDashboard{TotalProducts: len(products)}
	for _, p := range products {
		units := p.TotalStock()
		dashboard.TotalStockUnits += units
		dashboard.TotalStockValue += float64(units) * p.EffectivePrice()
		if units < LowStockThreshold {
			dashboard.LowStockCount++
		}
	}

	return dashboard, nil
}

// matches aplica o filtro a um pedido: intervalo de datas E busca textual,
// ambos vacuamente verdadeiros quando ausentes.
func matches(sale domain.Sale, filter ReportFilter) bool {
	day := truncateToDay(sale.CreatedAt)

	if filter.Start != nil && day.Before(truncateToDay(*filter.Start)) {
		return false
	}
	if filter.End != nil && day.After(truncateToDay(*filter.End)) {
		return false
	}

	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if strings.Contains(strings.ToLower(sale.CustomerName), needle) {
			return true
		}
		for _, item := range sale.Items {
			if strings.Contains(strings.ToLower(item.ProductName), needle) {
				return true
			}
		}
		return false
	}

	return true
}

// truncateToDay zera a hora para comparação por dia-calendário.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
