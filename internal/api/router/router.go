package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"govitrine/internal/api/analytics"
	"govitrine/internal/api/cart"
	"govitrine/internal/api/catalog"
	"govitrine/internal/api/checkout"
	"govitrine/internal/api/user"
	"govitrine/internal/domain"
	"govitrine/internal/pkg/cache"
	"govitrine/internal/pkg/middleware"
)

// Deps agrupa os Handlers e colaboradores que o roteador precisa receber
// por injeção de dependências.
type Deps struct {
	Catalog   *catalog.Handler
	Cart      *cart.Handler
	Checkout  *checkout.Handler
	Analytics *analytics.Handler
	User      *user.Handler

	TokenSvc   middleware.TokenService
	Cache      cache.Client
	RateLimit  int
	RatePeriod time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(d Deps) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	// Middlewares compostos
	auth := middleware.NewAuthMiddleware(d.TokenSvc)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)
	admin := func(h http.HandlerFunc) http.HandlerFunc { return auth(adminOnly(h)) }
	session := middleware.SessionMiddleware

	// --- 1. Health Check e documentação ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/swagger/", httpSwagger.Handler())

	// --- 2. Vitrine (público) ---
	mux.HandleFunc("/v1/products", d.Catalog.ListProductsHandler)
	mux.HandleFunc("/v1/products/", d.Catalog.GetProductByIDHandler)

	// --- 3. Carrinho e checkout (exigem X-Session-ID) ---
	mux.HandleFunc("/v1/cart", session(d.Cart.GetCartHandler))
	mux.HandleFunc("/v1/cart/items", session(d.Cart.AddLineHandler))
	mux.HandleFunc("/v1/cart/items/", session(d.Cart.RemoveLineHandler))
	mux.HandleFunc("/v1/cart/coupon", session(d.Cart.CouponHandler))

	mux.HandleFunc("/v1/checkout", session(d.Checkout.GetCheckoutHandler))
	mux.HandleFunc("/v1/checkout/advance", session(d.Checkout.AdvanceHandler))
	mux.HandleFunc("/v1/checkout/back", session(d.Checkout.BackHandler))
	mux.HandleFunc("/v1/checkout/cancel", session(d.Checkout.CancelHandler))

	// --- 4. Autenticação do operador ---
	mux.HandleFunc("/v1/register", d.User.RegisterUserHandler)
	mux.HandleFunc("/v1/login", d.User.LoginUserHandler)

	// --- 5. Administração (JWT + role admin) ---
	mux.HandleFunc("/v1/admin/products", admin(adminProductsHandler(d.Catalog)))
	mux.HandleFunc("/v1/admin/products/", admin(d.Catalog.AdminProductHandler))
	mux.HandleFunc("/v1/admin/coupons", admin(d.Catalog.CreateCouponHandler))
	mux.HandleFunc("/v1/admin/reports/sales", admin(d.Analytics.SalesReportHandler))
	mux.HandleFunc("/v1/admin/dashboard", admin(d.Analytics.DashboardHandler))

	// --- 6. Middlewares globais ---
	return middleware.RateLimiter(d.Cache, d.RateLimit, d.RatePeriod)(mux)
}

// adminProductsHandler despacha GET (lista completa) e POST (criação)
// em /v1/admin/products.
func adminProductsHandler(h *catalog.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.ListAllProductsHandler(w, r)
		case http.MethodPost:
			h.CreateProductHandler(w, r)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
	}
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
