package pricingservice

import (
	"govitrine/internal/domain"
)

// Funções puras de precificação: sem efeitos colaterais, sem dependências.
// A busca de cupom (com acesso a dados) fica no serviço de carrinho; aqui
// entra apenas o cupom já resolvido.

// Subtotal retorna Σ preço efetivo × quantidade sobre as linhas do carrinho.
func Subtotal(lines []domain.CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.Product.EffectivePrice() * float64(l.Quantity)
	}
	return total
}

// Total aplica o desconto percentual do cupom sobre o subtotal inteiro
// (desconto multiplicativo no todo, não por linha). Sem cupom, é o subtotal.
func Total(lines []domain.CartLine, coupon *domain.Coupon) float64 {
	subtotal := Subtotal(lines)
	if coupon == nil {
		return subtotal
	}
	return subtotal * (1 - float64(coupon.DiscountPercent)/100)
}
