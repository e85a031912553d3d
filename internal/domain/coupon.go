package domain

import "context"

// Coupon representa um cupom de desconto percentual sobre o subtotal.
// O código é armazenado canonicamente em maiúsculas; a busca é
// case-insensitive sobre o código digitado pelo cliente.
// No máximo um cupom fica ativo por sessão de carrinho.
type Coupon struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

// CouponRepository define o contrato de persistência dos cupons.
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (Coupon, error)
	Save(ctx context.Context, coupon Coupon) error
}
