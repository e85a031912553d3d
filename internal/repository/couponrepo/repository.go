package couponrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
)

// CouponRepository implementa a interface domain.CouponRepository.
// Os códigos são armazenados canonicamente em maiúsculas.
type CouponRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
}

// NewCouponRepository cria e retorna uma nova instância do Repositório de Cupons.
func NewCouponRepository(db *sql.DB, dbTimeout time.Duration) *CouponRepository {
	return &CouponRepository{
		DB:        db,
		DBTimeout: dbTimeout,
	}
}

// FindByCode busca um cupom pelo código. A comparação é case-insensitive:
// o código digitado é canonicalizado em maiúsculas antes da busca exata.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	canonical := strings.ToUpper(strings.TrimSpace(code))

	var coupon domain.Coupon
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT code, discount_percent FROM coupons WHERE code = $1`, canonical,
	).Scan(&coupon.Code, &coupon.DiscountPercent)

	if err == sql.ErrNoRows {
		return domain.Coupon{}, apperror.NewNotFoundError(fmt.Sprintf("Cupom %s não existe.", canonical))
	}
	if err != nil {
		return domain.Coupon{}, apperror.NewDBError("Falha ao buscar cupom", err)
	}

	return coupon, nil
}

// Save cadastra (ou atualiza) um cupom, canonicalizando o código em maiúsculas.
func (r *CouponRepository) Save(ctx context.Context, coupon domain.Coupon) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const upsertSQL = `
		INSERT INTO coupons (code, discount_percent)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET discount_percent = EXCLUDED.discount_percent`

	_, err := r.DB.ExecContext(ctxTimeout, upsertSQL,
		strings.ToUpper(strings.TrimSpace(coupon.Code)),
		coupon.DiscountPercent,
	)
	if err != nil {
		return apperror.NewDBError("Falha ao salvar cupom", err)
	}

	return nil
}
