package cartrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/cache"
)

// Chaves do estado de sessão no Redis, por dispositivo (sessionID).
const (
	cartKey     = "cart:%s"
	couponKey   = "coupon:%s"
	checkoutKey = "checkout:%s"
)

// SessionRepository guarda o estado durável de uma sessão de compra no Redis:
// o carrinho (durável por dispositivo, sem expiração), o cupom aplicado e o
// formulário transitório de checkout (com expiração).
type SessionRepository struct {
	Cache       cache.Client
	CheckoutTTL time.Duration
}

// NewSessionRepository cria e retorna uma nova instância do Repositório de Sessão.
func NewSessionRepository(cacheClient cache.Client, checkoutTTL time.Duration) *SessionRepository {
	return &SessionRepository{
		Cache:       cacheClient,
		CheckoutTTL: checkoutTTL,
	}
}

// --- Carrinho ---

// LoadCart carrega as linhas do carrinho da sessão. Sessão sem carrinho
// retorna lista vazia, não erro.
func (r *SessionRepository) LoadCart(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	data, err := r.Cache.Get(ctx, fmt.Sprintf(cartKey, sessionID))
	if err == cache.ErrCacheMiss {
		return []domain.CartLine{}, nil
	}
	if err != nil {
		return nil, apperror.NewInternalError("Falha ao carregar carrinho da sessão.", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, apperror.NewInternalError("Carrinho da sessão malformado.", err)
	}
	return lines, nil
}

// SaveCart persiste as linhas do carrinho. Expiração zero: o carrinho
// sobrevive entre sessões no mesmo dispositivo.
func (r *SessionRepository) SaveCart(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar carrinho.", err)
	}
	if err := r.Cache.Set(ctx, fmt.Sprintf(cartKey, sessionID), data, 0); err != nil {
		return apperror.NewInternalError("Falha ao salvar carrinho da sessão.", err)
	}
	return nil
}

// ClearCart remove o carrinho da sessão.
func (r *SessionRepository) ClearCart(ctx context.Context, sessionID string) error {
	return r.Cache.Delete(ctx, fmt.Sprintf(cartKey, sessionID))
}

// --- Cupom aplicado ---

// LoadCoupon retorna o cupom aplicado na sessão, se houver.
func (r *SessionRepository) LoadCoupon(ctx context.Context, sessionID string) (domain.Coupon, bool, error) {
	data, err := r.Cache.Get(ctx, fmt.Sprintf(couponKey, sessionID))
	if err == cache.ErrCacheMiss {
		return domain.Coupon{}, false, nil
	}
	if err != nil {
		return domain.Coupon{}, false, apperror.NewInternalError("Falha ao carregar cupom da sessão.", err)
	}

	var coupon domain.Coupon
	if err := json.Unmarshal([]byte(data), &coupon); err != nil {
		return domain.Coupon{}, false, apperror.NewInternalError("Cupom da sessão malformado.", err)
	}
	return coupon, true, nil
}

// SaveCoupon grava o cupom aplicado. No máximo um cupom por sessão:
// gravar substitui o anterior.
func (r *SessionRepository) SaveCoupon(ctx context.Context, sessionID string, coupon domain.Coupon) error {
	data, err := json.Marshal(coupon)
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar cupom.", err)
	}
	if err := r.Cache.Set(ctx, fmt.Sprintf(couponKey, sessionID), data, 0); err != nil {
		return apperror.NewInternalError("Falha ao salvar cupom da sessão.", err)
	}
	return nil
}

// ClearCoupon remove o cupom aplicado da sessão.
func (r *SessionRepository) ClearCoupon(ctx context.Context, sessionID string) error {
	return r.Cache.Delete(ctx, fmt.Sprintf(couponKey, sessionID))
}

// --- Formulário de checkout ---

// LoadCheckout retorna a sessão de checkout em andamento, se houver.
func (r *SessionRepository) LoadCheckout(ctx context.Context, sessionID string) (domain.CheckoutSession, bool, error) {
	data, err := r.Cache.Get(ctx, fmt.Sprintf(checkoutKey, sessionID))
	if err == cache.ErrCacheMiss {
		return domain.CheckoutSession{}, false, nil
	}
	if err != nil {
		return domain.CheckoutSession{}, false, apperror.NewInternalError("Falha ao carregar checkout da sessão.", err)
	}

	var session domain.CheckoutSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return domain.CheckoutSession{}, false, apperror.NewInternalError("Checkout da sessão malformado.", err)
	}
	return session, true, nil
}

// SaveCheckout grava o formulário transitório de checkout, com expiração:
// um checkout abandonado não fica para sempre no Redis.
func (r *SessionRepository) SaveCheckout(ctx context.Context, sessionID string, session domain.CheckoutSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar checkout.", err)
	}
	if err := r.Cache.Set(ctx, fmt.Sprintf(checkoutKey, sessionID), data, r.CheckoutTTL); err != nil {
		return apperror.NewInternalError("Falha ao salvar checkout da sessão.", err)
	}
	return nil
}

// ClearCheckout descarta o formulário transitório. Carrinho e cupom
// não são afetados.
func (r *SessionRepository) ClearCheckout(ctx context.Context, sessionID string) error {
	return r.Cache.Delete(ctx, fmt.Sprintf(checkoutKey, sessionID))
}
