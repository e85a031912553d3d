package middleware

import (
	"context"
	"net/http"

	apperror "govitrine/internal/errors"
)

const (
	sessionIDKey ContextKey = iota + 100

	// SessionHeader identifica o dispositivo/sessão do comprador.
	// O carrinho é durável por dispositivo, mas não compartilhado entre dispositivos.
	SessionHeader = "X-Session-ID"
)

// SessionMiddleware exige o header de sessão nas rotas do comprador
// (carrinho e checkout) e anexa o identificador ao contexto.
func SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(SessionHeader)
		if sid == "" {
			http.Error(w, apperror.NewValidationError("Header X-Session-ID é obrigatório.").Error(), http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetSessionIDFromContext extrai o identificador de sessão anexado pelo middleware.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionIDKey).(string)
	return sid, ok
}
