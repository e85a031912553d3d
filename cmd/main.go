package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"govitrine/config"
	"govitrine/internal/notify"
	"govitrine/internal/pkg/cache"
	"govitrine/internal/pkg/database"
	"govitrine/internal/pkg/logger"
	"govitrine/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"govitrine/internal/api/analytics"
	"govitrine/internal/api/cart"
	"govitrine/internal/api/catalog"
	"govitrine/internal/api/checkout"
	"govitrine/internal/api/router"
	"govitrine/internal/api/user"
	"govitrine/internal/repository/cartrepo"
	"govitrine/internal/repository/catalogrepo"
	"govitrine/internal/repository/couponrepo"
	"govitrine/internal/repository/orderrepo"
	"govitrine/internal/repository/userrepo"
	"govitrine/internal/service/analyticsservice"
	"govitrine/internal/service/cartservice"
	"govitrine/internal/service/catalogservice"
	"govitrine/internal/service/checkoutservice"
	"govitrine/internal/service/stockservice"
	"govitrine/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço GoVitrine...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache e Sessões (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	appLog.Info("Conexão Redis estabelecida.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	catalogRepo := catalogrepo.NewCatalogRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLog)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, appLog)
	couponRepo := couponrepo.NewCouponRepository(db, cfg.DBTimeout)
	sessionRepo := cartrepo.NewSessionRepository(cacheClient, cfg.CheckoutTTL)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	// B. Colaboradores externos
	dispatcher := notify.NewWebhookDispatcher(cfg.NotifyWebhookURL, cfg.NotifyTimeout, appLog)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// C. Serviços (Camada de Lógica de Negócio)
	catalogSvc := catalogservice.NewService(catalogRepo, couponRepo, appLog)
	stockSvc := stockservice.NewService(catalogRepo, appLog)
	cartSvc := cartservice.NewService(sessionRepo, catalogRepo, couponRepo, appLog)
	checkoutSvc := checkoutservice.NewService(sessionRepo, orderRepo, stockSvc, dispatcher, cfg.NotifyDestination, appLog)
	analyticsSvc := analyticsservice.NewService(orderRepo, catalogRepo, appLog)
	userSvc := userservice.NewService(userRepo, tokenSvc)
	appLog.Debug("Serviços inicializados.", nil)

	// D. Handlers (Camada de Apresentação)
	deps := router.Deps{
		Catalog:    catalog.NewHandler(catalogSvc, appLog),
		Cart:       cart.NewHandler(cartSvc, appLog),
		Checkout:   checkout.NewHandler(checkoutSvc, appLog),
		Analytics:  analytics.NewHandler(analyticsSvc, appLog),
		User:       user.NewHandler(userSvc, appLog),
		TokenSvc:   tokenSvc,
		Cache:      cacheClient,
		RateLimit:  cfg.RateLimitMaxRequests,
		RatePeriod: cfg.RateLimitPeriod,
	}
	appLog.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(deps)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor GoVitrine ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
