package checkoutservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/notify"
	"govitrine/internal/pkg/logger"
	"govitrine/internal/service/pricingservice"
)

// SessionRepository define o estado de sessão que o orquestrador manipula:
// o formulário transitório de checkout, o carrinho e o cupom aplicado.
type SessionRepository interface {
	LoadCart(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	ClearCart(ctx context.Context, sessionID string) error
	LoadCoupon(ctx context.Context, sessionID string) (domain.Coupon, bool, error)
	ClearCoupon(ctx context.Context, sessionID string) error
	LoadCheckout(ctx context.Context, sessionID string) (domain.CheckoutSession, bool, error)
	SaveCheckout(ctx context.Context, sessionID string, session domain.CheckoutSession) error
	ClearCheckout(ctx context.Context, sessionID string) error
}

// OrderRepository define o contrato de gravação no log de pedidos.
type OrderRepository interface {
	Insert(ctx context.Context, sale domain.Sale) (domain.Sale, error)
}

// StockLedger define o decremento best-effort usado após a submissão.
type StockLedger interface {
	Decrement(ctx context.Context, productID, color, size string, amount int) (int, error)
}

// AdvanceInput carrega os campos do passo atual do formulário.
type AdvanceInput struct {
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	PaymentMethod   string `json:"payment_method"`
}

// Result é a resposta de uma transição: a sessão atualizada e,
// na submissão final, o pedido gerado.
type Result struct {
	Session domain.CheckoutSession `json:"session"`
	Sale    *domain.Sale           `json:"sale,omitempty"`
}

// Service é o Orquestrador de Checkout: uma máquina de estados linear
// (identification → delivery → payment → submitted) que, na transição final,
// grava o pedido, despacha a notificação e decrementa o estoque best-effort.
type Service struct {
	sessions    SessionRepository
	orders      OrderRepository
	ledger      StockLedger
	dispatcher  notify.Dispatcher
	destination string
	logger      logger.Logger
}

// NewService cria e retorna uma nova instância do Orquestrador de Checkout.
func NewService(sessions SessionRepository, orders OrderRepository, ledger StockLedger, dispatcher notify.Dispatcher, destination string, log logger.Logger) *Service {
	return &Service{
		sessions:    sessions,
		orders:      orders,
		ledger:      ledger,
		dispatcher:  dispatcher,
		destination: destination,
		logger:      log,
	}
}

// Get retorna a sessão de checkout em andamento, ou uma sessão zerada
// no estado inicial quando não há checkout em curso.
func (s *Service) Get(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	session, found, err := s.sessions.LoadCheckout(ctx, sessionID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}
	if !found {
		return domain.NewCheckoutSession(), nil
	}
	return session, nil
}

// Advance valida os campos do passo atual e avança a máquina de estados.
// A transição final a partir de payment executa a submissão do pedido.
func (s *Service) Advance(ctx context.Context, sessionID string, input AdvanceInput) (Result, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}

	// Validação por etapa: cada passo exige apenas os próprios campos.
	switch session.State {
	case domain.StateIdentification:
		if input.CustomerName == "" {
			return Result{}, apperror.NewValidationError("O nome do cliente é obrigatório.")
		}
		session.CustomerName = input.CustomerName

	case domain.StateDelivery:
		if input.CustomerAddress == "" {
			return Result{}, apperror.NewValidationError("O endereço de entrega é obrigatório.")
		}
		session.CustomerAddress = input.CustomerAddress

	case domain.StatePayment:
		if input.PaymentMethod == "" {
			return Result{}, apperror.NewValidationError("A forma de pagamento é obrigatória.")
		}
		session.PaymentMethod = input.PaymentMethod

	default:
		return Result{}, apperror.NewConflictError("O checkout já foi submetido.")
	}

	next, ok := domain.NextState(session.State)
	if !ok {
		return Result{}, apperror.NewConflictError("Não há transição a partir do estado atual.")
	}

	// Transição final: payment → submitted dispara a submissão do pedido.
	if next == domain.StateSubmitted {
		sale, err := s.submit(ctx, sessionID, session)
		if err != nil {
			return Result{}, err
		}
		return Result{Session: domain.CheckoutSession{State: domain.StateIdentification}, Sale: &sale}, nil
	}

	session.State = next
	if err := s.sessions.SaveCheckout(ctx, sessionID, session); err != nil {
		return Result{}, err
	}
	return Result{Session: session}, nil
}

// Back volta um passo na máquina de estados, preservando os dados
// já preenchidos.
func (s *Service) Back(ctx context.Context, sessionID string) (domain.CheckoutSession, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	prev, ok := domain.PrevState(session.State)
	if !ok {
		return domain.CheckoutSession{}, apperror.NewConflictError("Não há passo anterior a partir do estado atual.")
	}

	session.State = prev
	if err := s.sessions.SaveCheckout(ctx, sessionID, session); err != nil {
		return domain.CheckoutSession{}, err
	}
	return session, nil
}

// Cancel descarta apenas o formulário transitório do checkout.
// Carrinho e cupom sobrevivem ao cancelamento.
func (s *Service) Cancel(ctx context.Context, sessionID string) error {
	return s.sessions.ClearCheckout(ctx, sessionID)
}

// submit executa a transição final:
//  1. monta o snapshot imutável do pedido (dados do cliente, pagamento,
//     total calculado e cópia congelada das linhas do carrinho);
//  2. grava no log de pedidos; falha é logada mas NÃO aborta o fluxo:
//     a notificação ao operador não pode depender do backend;
//  3. despacha o resumo formatado, sempre, independente do resultado de (2);
//  4. decrementa o estoque por linha, best-effort, em segundo plano;
//  5. limpa carrinho, cupom e formulário, voltando ao estado inicial.
func (s *Service) submit(ctx context.Context, sessionID string, session domain.CheckoutSession) (domain.Sale, error) {
	lines, err := s.sessions.LoadCart(ctx, sessionID)
	if err != nil {
		return domain.Sale{}, err
	}
	if len(lines) == 0 {
		return domain.Sale{}, apperror.NewValidationError("O carrinho está vazio.")
	}

	var coupon *domain.Coupon
	if c, found, err := s.sessions.LoadCoupon(ctx, sessionID); err == nil && found {
		coupon = &c
	} else if err != nil {
		// Sem o cupom legível, cobramos o subtotal cheio em vez de abortar a venda.
		s.logger.Warn("Falha ao carregar cupom na submissão; prosseguindo sem desconto.", map[string]interface{}{
			"session_id": sessionID,
		})
	}

	// 1. Snapshot imutável
	sale := domain.Sale{
		ID:              uuid.NewString(),
		CustomerName:    session.CustomerName,
		CustomerAddress: session.CustomerAddress,
		PaymentMethod:   session.PaymentMethod,
		Total:           pricingservice.Total(lines, coupon),
		Items:           domain.SnapshotItems(lines),
		CreatedAt:       time.Now().UTC(),
	}

	// 2. Gravação no log de pedidos (disponibilidade sobre consistência:
	//    uma falha de backend não pode perder a venda)
	if _, err := s.orders.Insert(ctx, sale); err != nil {
		s.logger.Error("Falha ao gravar pedido; o fluxo continua.", err)
	}

	// 3. Notificação ao operador, sempre despachada uma vez
	if err := s.dispatcher.Dispatch(ctx, s.destination, notify.FormatOrderSummary(sale)); err != nil {
		s.logger.Error("Falha ao despachar notificação de pedido.", err)
	}

	// 4. Decremento best-effort do estoque, desacoplado da resposta ao
	//    comprador: dispara e segue, sem rollback em falha parcial.
	go s.decrementStock(context.Background(), sale.Items)

	// 5. Limpeza da sessão
	if err := s.sessions.ClearCart(ctx, sessionID); err != nil {
		s.logger.Error("Falha ao limpar carrinho após submissão.", err)
	}
	if err := s.sessions.ClearCoupon(ctx, sessionID); err != nil {
		s.logger.Error("Falha ao limpar cupom após submissão.", err)
	}
	if err := s.sessions.ClearCheckout(ctx, sessionID); err != nil {
		s.logger.Error("Falha ao limpar checkout após submissão.", err)
	}

	s.logger.Info("Pedido submetido.", map[string]interface{}{
		"order_id": sale.ID,
		"total":    sale.Total,
		"items":    len(sale.Items),
	})
	return sale, nil
}

// decrementStock abate o estoque de cada item do pedido. Cada linha é
// independente: falha em uma não bloqueia as demais.
func (s *Service) decrementStock(ctx context.Context, items []domain.SaleItem) {
	for _, item := range items {
		if _, err := s.ledger.Decrement(ctx, item.ProductID, item.Color, item.Size, item.Quantity); err != nil {
			s.logger.Error("Falha ao decrementar estoque de item do pedido.", err)
		}
	}
}
