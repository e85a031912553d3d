package catalogrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/cache"
	"govitrine/internal/pkg/logger"
)

// CatalogRepository implementa a interface domain.CatalogRepository.
// Ela contém as conexões necessárias para acessar dados (Postgres + Redis).
type CatalogRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewCatalogRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewCatalogRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *CatalogRepository {
	return &CatalogRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// Define a chave de cache para produtos.
const productCacheKey = "product:%s"

// --- Mapeamento de fronteira (schema snake_case do banco ⇄ modelo de domínio) ---

// productRow é a forma bruta da linha de products, com colunas anuláveis.
// O mapeamento para domain.Product é total e aplica defaults explícitos:
// stock ausente → lista vazia; visibilidade ausente → visível;
// flags de promoção/multicolor ausentes → false.
type productRow struct {
	ID           string
	Name         string
	Price        sql.NullFloat64
	PromoPrice   sql.NullFloat64
	Category     sql.NullString
	Colors       pq.StringArray
	Sizes        pq.StringArray
	Stock        []byte
	IsPromotion  sql.NullBool
	IsMulticolor sql.NullBool
	IsVisible    sql.NullBool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// toDomain converte a linha bruta do banco no modelo de domínio,
// aplicando os defaults da fronteira.
func (row productRow) toDomain() (domain.Product, error) {
	p := domain.Product{
		ID:        row.ID,
		Name:      row.Name,
		Category:  row.Category.String,
		Colors:    []string(row.Colors),
		Sizes:     []string(row.Sizes),
		Stock:     []domain.StockVariant{},
		IsVisible: true,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	if row.Price.Valid {
		p.Price = row.Price.Float64
	}
	if row.PromoPrice.Valid {
		p.PromoPrice = row.PromoPrice.Float64
	}
	if row.IsPromotion.Valid {
		p.IsPromotion = row.IsPromotion.Bool
	}
	if row.IsMulticolor.Valid {
		p.IsMulticolor = row.IsMulticolor.Bool
	}
	if row.IsVisible.Valid {
		p.IsVisible = row.IsVisible.Bool
	}
	if p.Colors == nil {
		p.Colors = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}

	if len(row.Stock) > 0 {
		if err := json.Unmarshal(row.Stock, &p.Stock); err != nil {
			return domain.Product{}, apperror.NewInternalError(
				fmt.Sprintf("Coluna stock malformada para o produto %s.", row.ID), err)
		}
	}

	return p, nil
}

// scanProduct lê uma linha de products em productRow e converte para o domínio.
func scanProduct(scanner interface{ Scan(dest ...interface{}) error }) (domain.Product, error) {
	var row productRow
	err := scanner.Scan(
		&row.ID,
		&row.Name,
		&row.Price,
		&row.PromoPrice,
		&row.Category,
		&row.Colors,
		&row.Sizes,
		&row.Stock,
		&row.IsPromotion,
		&row.IsMulticolor,
		&row.IsVisible,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	return row.toDomain()
}

const productColumns = `id, name, price, promo_price, category, colors, sizes, stock,
       is_promotion, is_multicolor, is_visible, created_at, updated_at`

// --- Operações ---

// Save persiste um novo Produto (com a lista de variantes de estoque embutida).
func (r *CatalogRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	stockJSON, err := json.Marshal(product.Stock)
	if err != nil {
		return domain.Product{}, apperror.NewInternalError("Falha ao serializar variantes de estoque.", err)
	}

	const insertSQL = `
		INSERT INTO products (id, name, price, promo_price, category, colors, sizes, stock,
		                      is_promotion, is_multicolor, is_visible, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err = r.DB.ExecContext(ctxTimeout, insertSQL,
		product.ID,
		product.Name,
		product.Price,
		product.PromoPrice,
		product.Category,
		pq.Array(product.Colors),
		pq.Array(product.Sizes),
		stockJSON,
		product.IsPromotion,
		product.IsMulticolor,
		product.IsVisible,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return domain.Product{}, apperror.NewDBError("Falha ao inserir produto", err)
	}

	return product, nil
}

// FindByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *CatalogRepository) FindByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			return product, nil
		}
		// Se a desserialização falhar, continua para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): logamos, mas continuamos.
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err = scanProduct(r.DB.QueryRowContext(ctxTimeout, query, id))

	if err == sql.ErrNoRows {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		return domain.Product{}, apperror.NewDBError("Falha ao buscar produto no DB", err)
	}

	// 3. Estratégia Cache-Aside (WRITE): popula o cache para futuras requisições.
	if productJSON, marshalErr := json.Marshal(product); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	}

	return product, nil
}

// FindAll lista os produtos do catálogo, opcionalmente filtrados
// por visibilidade e categoria.
func (r *CatalogRepository) FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products`
	var args []interface{}

	where := ""
	if filter.VisibleOnly {
		where = ` WHERE COALESCE(is_visible, true)`
	}
	if filter.Category != "" {
		if where == "" {
			where = ` WHERE category = $1`
		} else {
			where += ` AND category = $1`
		}
		args = append(args, filter.Category)
	}
	query += where + ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, apperror.NewDBError("Falha ao listar produtos", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, apperror.NewDBError("Falha ao ler linha de produto", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar produtos", err)
	}

	return products, nil
}

// Update persiste o produto completo e invalida a entrada de cache.
func (r *CatalogRepository) Update(ctx context.Context, product domain.Product) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	stockJSON, err := json.Marshal(product.Stock)
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar variantes de estoque.", err)
	}

	const updateSQL = `
		UPDATE products
		SET name = $1, price = $2, promo_price = $3, category = $4, colors = $5, sizes = $6,
		    stock = $7, is_promotion = $8, is_multicolor = $9, is_visible = $10, updated_at = $11
		WHERE id = $12`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL,
		product.Name,
		product.Price,
		product.PromoPrice,
		product.Category,
		pq.Array(product.Colors),
		pq.Array(product.Sizes),
		stockJSON,
		product.IsPromotion,
		product.IsMulticolor,
		product.IsVisible,
		time.Now().UTC(),
		product.ID,
	)
	if err != nil {
		return apperror.NewDBError("Falha ao atualizar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", product.ID))
	}

	r.invalidate(ctxTimeout, product.ID)
	return nil
}

// UpdateStock persiste apenas a lista de variantes de estoque de um produto.
// Usado pelo decremento best-effort do checkout e pelos ajustes do operador.
func (r *CatalogRepository) UpdateStock(ctx context.Context, productID string, stock []domain.StockVariant) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	stockJSON, err := json.Marshal(stock)
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar variantes de estoque.", err)
	}

	const updateSQL = `UPDATE products SET stock = $1, updated_at = $2 WHERE id = $3`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL, stockJSON, time.Now().UTC(), productID)
	if err != nil {
		return apperror.NewDBError("Falha ao atualizar estoque", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", productID))
	}

	r.invalidate(ctxTimeout, productID)
	return nil
}

// Delete remove um produto e invalida a entrada de cache.
func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDBError("Falha ao deletar produto", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}

	r.invalidate(ctxTimeout, id)
	return nil
}

// invalidate remove a entrada de cache do produto. Falha de cache não é fatal.
func (r *CatalogRepository) invalidate(ctx context.Context, id string) {
	key := fmt.Sprintf(productCacheKey, id)
	if err := r.Cache.Delete(ctx, key); err != nil {
		r.logger.Warn("Falha ao invalidar cache de produto.", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
