package pricingservice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"govitrine/internal/domain"
	"govitrine/internal/service/pricingservice"
)

// TestSubtotal_SumsEffectivePrices testa que o subtotal soma preço efetivo × quantidade.
func TestSubtotal_SumsEffectivePrices(t *testing.T) {
	lines := []domain.CartLine{
		{
			Product:  domain.Product{ID: "p1", Price: 100, PromoPrice: 80, IsPromotion: true},
			Quantity: 2,
		},
		{
			Product:  domain.Product{ID: "p2", Price: 40},
			Quantity: 1,
		},
	}

	// 2×80 (preço promocional) + 1×40
	assert.Equal(t, 200.0, pricingservice.Subtotal(lines))
}

func TestSubtotal_EmptyCartIsZero(t *testing.T) {
	assert.Equal(t, 0.0, pricingservice.Subtotal(nil))
	assert.Equal(t, 0.0, pricingservice.Subtotal([]domain.CartLine{}))
}

// TestTotal_AppliesCouponOnWholeSubtotal testa que o desconto percentual
// incide sobre o subtotal inteiro, não linha a linha.
func TestTotal_AppliesCouponOnWholeSubtotal(t *testing.T) {
	lines := []domain.CartLine{
		{Product: domain.Product{ID: "p1", Price: 150}, Quantity: 1},
		{Product: domain.Product{ID: "p2", Price: 50}, Quantity: 1},
	}
	coupon := &domain.Coupon{Code: "SAVE10", DiscountPercent: 10}

	// 200 com 10% de desconto = 180
	assert.InDelta(t, 180.0, pricingservice.Total(lines, coupon), 0.0001)
}

func TestTotal_WithoutCouponEqualsSubtotal(t *testing.T) {
	lines := []domain.CartLine{
		{Product: domain.Product{ID: "p1", Price: 99.9}, Quantity: 3},
	}

	assert.Equal(t, pricingservice.Subtotal(lines), pricingservice.Total(lines, nil))
}

func TestTotal_FullDiscountIsZero(t *testing.T) {
	lines := []domain.CartLine{
		{Product: domain.Product{ID: "p1", Price: 70}, Quantity: 2},
	}
	coupon := &domain.Coupon{Code: "GRATIS", DiscountPercent: 100}

	assert.InDelta(t, 0.0, pricingservice.Total(lines, coupon), 0.0001)
}
