package checkoutservice_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"govitrine/internal/domain"
	apperror "govitrine/internal/errors"
	"govitrine/internal/pkg/logger"
	"govitrine/internal/service/checkoutservice"
)

// MockSessionRepository é uma implementação mock da interface SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) LoadCart(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.CartLine), args.Error(1)
}

func (m *MockSessionRepository) ClearCart(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) LoadCoupon(ctx context.Context, sessionID string) (domain.Coupon, bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.Coupon), args.Bool(1), args.Error(2)
}

func (m *MockSessionRepository) ClearCoupon(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionRepository) LoadCheckout(ctx context.Context, sessionID string) (domain.CheckoutSession, bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.CheckoutSession), args.Bool(1), args.Error(2)
}

func (m *MockSessionRepository) SaveCheckout(ctx context.Context, sessionID string, session domain.CheckoutSession) error {
	args := m.Called(ctx, sessionID, session)
	return args.Error(0)
}

func (m *MockSessionRepository) ClearCheckout(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockOrderRepository é uma implementação mock da interface OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Insert(ctx context.Context, sale domain.Sale) (domain.Sale, error) {
	args := m.Called(ctx, sale)
	return args.Get(0).(domain.Sale), args.Error(1)
}

// MockStockLedger sinaliza cada decremento por canal, já que o abate de
// estoque roda em goroutine própria após a submissão.
type MockStockLedger struct {
	mock.Mock
	decrements chan string
}

func NewMockStockLedger(buffer int) *MockStockLedger {
	return &MockStockLedger{decrements: make(chan string, buffer)}
}

func (m *MockStockLedger) Decrement(ctx context.Context, productID, color, size string, amount int) (int, error) {
	args := m.Called(ctx, productID, color, size, amount)
	m.decrements <- productID
	return args.Int(0), args.Error(1)
}

func (m *MockStockLedger) waitDecrements(t *testing.T, n int) []string {
	t.Helper()
	var seen []string
	for i := 0; i < n; i++ {
		select {
		case id := <-m.decrements:
			seen = append(seen, id)
		case <-time.After(2 * time.Second):
			t.Fatalf("esperava %d decrementos, recebeu %d", n, len(seen))
		}
	}
	return seen
}

// MockDispatcher é uma implementação mock da interface notify.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, destination, message string) error {
	args := m.Called(ctx, destination, message)
	return args.Error(0)
}

func newCheckoutService(sessions *MockSessionRepository, orders *MockOrderRepository, ledger *MockStockLedger, dispatcher *MockDispatcher) *checkoutservice.Service {
	return checkoutservice.NewService(sessions, orders, ledger, dispatcher, "+5511999990000", logger.NewLogger("debug"))
}

// TestGet_NoCheckoutReturnsInitial testa que sem checkout em curso a sessão
// volta zerada no estado inicial.
func TestGet_NoCheckoutReturnsInitial(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	svc := newCheckoutService(mockSessions, new(MockOrderRepository), NewMockStockLedger(1), new(MockDispatcher))

	mockSessions.On("LoadCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.CheckoutSession{}, false, nil)

	session, err := svc.Get(context.Background(), "sid-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.StateIdentification, session.State)
}

// TestAdvance_IdentificationStep testa o avanço do primeiro passo com nome preenchido.
func TestAdvance_IdentificationStep(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	svc := newCheckoutService(mockSessions, new(MockOrderRepository), NewMockStockLedger(1), new(MockDispatcher))

	mockSessions.On("LoadCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.CheckoutSession{}, false, nil)
	mockSessions.On("SaveCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1",
		domain.CheckoutSession{State: domain.StateDelivery, CustomerName: "Maria"}).
		Return(nil)

	result, err := svc.Advance(context.Background(), "sid-1", checkoutservice.AdvanceInput{CustomerName: "Maria"})

	assert.NoError(t, err)
	assert.Equal(t, domain.StateDelivery, result.Session.State)
	assert.Equal(t, "Maria", result.Session.CustomerName)
	assert.Nil(t, result.Sale)
	mockSessions.AssertExpectations(t)
}

// TestAdvance_MissingFieldFails testa que cada passo exige o próprio campo.
func TestAdvance_MissingFieldFails(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	svc := newCheckoutService(mockSessions, new(MockOrderRepository), NewMockStockLedger(1), new(MockDispatcher))

	mockSessions.On("LoadCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.CheckoutSession{State: domain.StateDelivery, CustomerName: "Maria"}, true, nil)

	_, err := svc.Advance(context.Background(), "sid-1", checkoutservice.AdvanceInput{})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockSessions.AssertNotCalled(t, "SaveCheckout", mock.Anything, mock.Anything, mock.Anything)
}

// TestAdvance_FinalStepSubmitsOrder testa a transição payment -> submitted:
// pedido gravado, notificação despachada, estoque decrementado e sessão limpa.
func TestAdvance_FinalStepSubmitsOrder(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	mockOrders := new(MockOrderRepository)
	mockLedger := NewMockStockLedger(4)
	mockDispatcher := new(MockDispatcher)
	svc := newCheckoutService(mockSessions, mockOrders, mockLedger, mockDispatcher)

	lines := []domain.CartLine{
		{
			Product:  domain.Product{ID: "p1", Name: "Camiseta", Price: 50},
			Color:    "Preto",
			Size:     "M",
			Quantity: 2,
		},
	}

	mockSessions.On("LoadCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.CheckoutSession{State: domain.StatePayment, CustomerName: "Maria", CustomerAddress: "Rua A, 10"}, true, nil)
	mockSessions.On("LoadCart", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(lines, nil)
	mockSessions.On("LoadCoupon", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.Coupon{}, false, nil)
	mockOrders.On("Insert", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.Sale")).
		Return(domain.Sale{}, nil)
	mockDispatcher.On("Dispatch", mock.AnythingOfType("context.backgroundCtx"), "+5511999990000",
		mock.MatchedBy(func(msg string) bool {
			return strings.Contains(msg, "Camiseta") && strings.Contains(msg, "Maria")
		})).
		Return(nil)
	mockLedger.On("Decrement", mock.AnythingOfType("context.backgroundCtx"), "p1", "Preto", "M", 2).
		Return(0, nil)
	mockSessions.On("ClearCart", mock.AnythingOfType("context.backgroundCtx"), "sid-1").Return(nil)
	mockSessions.On("ClearCoupon", mock.AnythingOfType("context.backgroundCtx"), "sid-1").Return(nil)
	mockSessions.On("ClearCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").Return(nil)

	result, err := svc.Advance(context.Background(), "sid-1", checkoutservice.AdvanceInput{PaymentMethod: "pix"})

	assert.NoError(t, err)
	assert.Equal(t, domain.StateIdentification, result.Session.State)
	assert.NotNil(t, result.Sale)
	assert.Equal(t, 100.0, result.Sale.Total)
	assert.Len(t, result.Sale.Items, 1)
	assert.NotEmpty(t, result.Sale.ID)

	// O decremento roda em goroutine própria
	seen := mockLedger.waitDecrements(t, 1)
	assert.Equal(t, []string{"p1"}, seen)

	mockSessions.AssertExpectations(t)
	mockOrders.AssertExpectations(t)
	mockDispatcher.AssertNumberOfCalls(t, "Dispatch", 1)
}

// TestAdvance_Submit_RecordFailureStillNotifies testa que a falha na gravação
// do pedido não impede a notificação nem a limpeza do carrinho.
func TestAdvance_Submit_RecordFailureStillNotifies(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	mockOrders := new(MockOrderRepository)
	mockLedger := NewMockStockLedger(4)
	mockDispatcher := new(MockDispatcher)
	svc := newCheckoutService(mockSessions, mockOrders, mockLedger, mockDispatcher)

	lines := []domain.CartLine{
		{
			Product:  domain.Product{ID: "p1", Name: "Vestido", Price: 120},
			Color:    "Azul",
			Size:     "M",
			Quantity: 1,
		},
	}

	mockSessions.On("LoadCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.CheckoutSession{State: domain.StatePayment, CustomerName: "Ana", CustomerAddress: "Rua B, 20"}, true, nil)
	mockSessions.On("LoadCart", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(lines, nil)
	mockSessions.On("LoadCoupon", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.Coupon{}, false, nil)
	mockOrders.On("Insert", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.Sale")).
		Return(domain.Sale{}, errors.New("banco indisponível"))
	mockDispatcher.On("Dispatch", mock.AnythingOfType("context.backgroundCtx"), "+5511999990000",
		mock.MatchedBy(func(msg string) bool { return strings.Contains(msg, "Vestido") })).
		Return(nil)
	mockLedger.On("Decrement", mock.AnythingOfType("context.backgroundCtx"), "p1", "Azul", "M", 1).
		Return(0, nil)
	mockSessions.On("ClearCart", mock.AnythingOfType("context.backgroundCtx"), "sid-1").Return(nil)
	mockSessions.On("ClearCoupon", mock.AnythingOfType("context.backgroundCtx"), "sid-1").Return(nil)
	mockSessions.On("ClearCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").Return(nil)

	result, err := svc.Advance(context.Background(), "sid-1", checkoutservice.AdvanceInput{PaymentMethod: "cartão"})

	// A venda prossegue apesar da falha de gravação
	assert.NoError(t, err)
	assert.NotNil(t, result.Sale)

	mockLedger.waitDecrements(t, 1)
	mockDispatcher.AssertNumberOfCalls(t, "Dispatch", 1)
	mockSessions.AssertCalled(t, "ClearCart", mock.Anything, "sid-1")
}

// TestAdvance_Submit_AppliesCoupon testa que o cupom da sessão entra no total do pedido.
func TestAdvance_Submit_AppliesCoupon(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	mockOrders := new(MockOrderRepository)
	mockLedger := NewMockStockLedger(4)
	mockDispatcher := new(MockDispatcher)
	svc := newCheckoutService(mockSessions, mockOrders, mockLedger, mockDispatcher)

	lines := []domain.CartLine{
		{
			Product:  domain.Product{ID: "p1", Name: "Camiseta", Price: 100},
			Color:    "Preto",
			Size:     "M",
			Quantity: 2,
		},
	}

	mockSessions.On("LoadCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.CheckoutSession{State: domain.StatePayment, CustomerName: "Maria", CustomerAddress: "Rua A, 10"}, true, nil)
	mockSessions.On("LoadCart", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(lines, nil)
	mockSessions.On("LoadCoupon", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.Coupon{Code: "SAVE10", DiscountPercent: 10}, true, nil)
	mockOrders.On("Insert", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.Sale")).
		Return(domain.Sale{}, nil)
	mockDispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mockLedger.On("Decrement", mock.AnythingOfType("context.backgroundCtx"), "p1", "Preto", "M", 2).
		Return(0, nil)
	mockSessions.On("ClearCart", mock.AnythingOfType("context.backgroundCtx"), "sid-1").Return(nil)
	mockSessions.On("ClearCoupon", mock.AnythingOfType("context.backgroundCtx"), "sid-1").Return(nil)
	mockSessions.On("ClearCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").Return(nil)

	result, err := svc.Advance(context.Background(), "sid-1", checkoutservice.AdvanceInput{PaymentMethod: "pix"})

	assert.NoError(t, err)
	assert.InDelta(t, 180.0, result.Sale.Total, 0.0001)

	mockLedger.waitDecrements(t, 1)
}

// TestAdvance_Submit_EmptyCartFails testa que não se submete um carrinho vazio.
func TestAdvance_Submit_EmptyCartFails(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	mockOrders := new(MockOrderRepository)
	mockDispatcher := new(MockDispatcher)
	svc := newCheckoutService(mockSessions, mockOrders, NewMockStockLedger(1), mockDispatcher)

	mockSessions.On("LoadCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.CheckoutSession{State: domain.StatePayment, CustomerName: "Maria", CustomerAddress: "Rua A, 10"}, true, nil)
	mockSessions.On("LoadCart", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return([]domain.CartLine{}, nil)

	_, err := svc.Advance(context.Background(), "sid-1", checkoutservice.AdvanceInput{PaymentMethod: "pix"})

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockDispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	mockOrders.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

// TestBack_PreservesFilledData testa que voltar um passo não apaga campos.
func TestBack_PreservesFilledData(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	svc := newCheckoutService(mockSessions, new(MockOrderRepository), NewMockStockLedger(1), new(MockDispatcher))

	current := domain.CheckoutSession{
		State:           domain.StateDelivery,
		CustomerName:    "Maria",
		CustomerAddress: "Rua A, 10",
	}

	mockSessions.On("LoadCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(current, true, nil)
	mockSessions.On("SaveCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1",
		domain.CheckoutSession{State: domain.StateIdentification, CustomerName: "Maria", CustomerAddress: "Rua A, 10"}).
		Return(nil)

	session, err := svc.Back(context.Background(), "sid-1")

	assert.NoError(t, err)
	assert.Equal(t, domain.StateIdentification, session.State)
	assert.Equal(t, "Maria", session.CustomerName)
	assert.Equal(t, "Rua A, 10", session.CustomerAddress)
	mockSessions.AssertExpectations(t)
}

// TestBack_FromInitialFails testa que não há retorno a partir do estado inicial.
func TestBack_FromInitialFails(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	svc := newCheckoutService(mockSessions, new(MockOrderRepository), NewMockStockLedger(1), new(MockDispatcher))

	mockSessions.On("LoadCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(domain.CheckoutSession{}, false, nil)

	_, err := svc.Back(context.Background(), "sid-1")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ConflictError{}, err)
}

// TestCancel_KeepsCartAndCoupon testa que o cancelamento descarta apenas o
// formulário transitório, sem tocar no carrinho nem no cupom.
func TestCancel_KeepsCartAndCoupon(t *testing.T) {
	mockSessions := new(MockSessionRepository)
	svc := newCheckoutService(mockSessions, new(MockOrderRepository), NewMockStockLedger(1), new(MockDispatcher))

	mockSessions.On("ClearCheckout", mock.AnythingOfType("context.backgroundCtx"), "sid-1").
		Return(nil)

	err := svc.Cancel(context.Background(), "sid-1")

	assert.NoError(t, err)
	mockSessions.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
	mockSessions.AssertNotCalled(t, "ClearCoupon", mock.Anything, mock.Anything)
	mockSessions.AssertExpectations(t)
}
