package orderrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/logger"
)

// OrderRepository implementa a interface domain.OrderRepository.
// O log de pedidos é append-only: registros de venda nunca são mutados.
type OrderRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOrderRepository cria e retorna uma nova instância do Repositório de Pedidos.
func NewOrderRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *OrderRepository {
	return &OrderRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

// Insert grava um pedido com seu snapshot imutável de itens.
func (r *OrderRepository) Insert(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	r.logger.Debug("Gravando pedido no repositório.", map[string]interface{}{"order_id": sale.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	itemsJSON, err := json.Marshal(sale.Items)
	if err != nil {
		return domain.Sale{}, apperror.NewInternalError("Falha ao serializar itens do pedido.", err)
	}

	const insertSQL = `
		INSERT INTO orders (id, customer_name, customer_address, payment_method, total, items, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.DB.ExecContext(ctxTimeout, insertSQL,
		sale.ID,
		sale.CustomerName,
		sale.CustomerAddress,
		sale.PaymentMethod,
		sale.Total,
		itemsJSON,
		sale.CreatedAt,
	)
	if err != nil {
		return domain.Sale{}, apperror.NewDBError("Falha ao inserir pedido", err)
	}

	return sale, nil
}

// List retorna todos os pedidos, ordenados por created_at decrescente.
func (r *OrderRepository) List(ctx context.Context) ([]domain.Sale, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const listSQL = `
		SELECT id, customer_name, customer_address, payment_method, total, items, created_at
		FROM orders
		ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, listSQL)
	if err != nil {
		return nil, apperror.NewDBError("Falha ao listar pedidos", err)
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		var sale domain.Sale
		var itemsJSON []byte

		err := rows.Scan(
			&sale.ID,
			&sale.CustomerName,
			&sale.CustomerAddress,
			&sale.PaymentMethod,
			&sale.Total,
			&itemsJSON,
			&sale.CreatedAt,
		)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao ler linha de pedido", err)
		}

		sale.Items = []domain.SaleItem{}
		if len(itemsJSON) > 0 {
			if err := json.Unmarshal(itemsJSON, &sale.Items); err != nil {
				// Snapshot ilegível não derruba o relatório inteiro: loga e segue.
				r.logger.Warn("Coluna items malformada em pedido.", map[string]interface{}{"order_id": sale.ID})
			}
		}

		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar pedidos", err)
	}

	return sales, nil
}
