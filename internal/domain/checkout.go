package domain

// CheckoutState é o estado nomeado da máquina de checkout.
// As transições são lineares para frente (sem pular etapas), com um passo
// opcional para trás por etapa, e cancelamento a partir de qualquer estado
// não submetido.
type CheckoutState string

const (
	StateIdentification CheckoutState = "identification"
	StateDelivery       CheckoutState = "delivery"
	StatePayment        CheckoutState = "payment"
	StateSubmitted      CheckoutState = "submitted"
)

// checkoutForward é a tabela de transições para frente.
var checkoutForward = map[CheckoutState]CheckoutState{
	StateIdentification: StateDelivery,
	StateDelivery:       StatePayment,
	StatePayment:        StateSubmitted,
}

// checkoutBackward é a tabela de transições para trás.
var checkoutBackward = map[CheckoutState]CheckoutState{
	StateDelivery: StateIdentification,
	StatePayment:  StateDelivery,
}

// NextState retorna o próximo estado da transição para frente.
// Retorna false quando não há transição a partir do estado atual.
func NextState(s CheckoutState) (CheckoutState, bool) {
	next, ok := checkoutForward[s]
	return next, ok
}

// PrevState retorna o estado anterior da transição para trás.
// Voltar não apaga dados já preenchidos.
func PrevState(s CheckoutState) (CheckoutState, bool) {
	prev, ok := checkoutBackward[s]
	return prev, ok
}

// CheckoutSession é o formulário transitório do checkout de uma sessão.
// É descartado no cancelamento; carrinho e cupom sobrevivem ao cancelamento.
type CheckoutSession struct {
	State           CheckoutState `json:"state"`
	CustomerName    string        `json:"customer_name"`
	CustomerAddress string        `json:"customer_address"`
	PaymentMethod   string        `json:"payment_method"`
}

// NewCheckoutSession retorna uma sessão de checkout zerada, no estado inicial.
func NewCheckoutSession() CheckoutSession {
	return CheckoutSession{State: StateIdentification}
}
