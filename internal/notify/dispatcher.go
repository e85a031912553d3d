package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"govitrine/internal/domain"
	"govitrine/internal/pkg/logger"
)

// Dispatcher define o contrato do despachante de notificações de pedido.
// Ele recebe um resumo já formatado e um identificador de destino;
// o resultado da entrega não é observado pelo fluxo de compra.
type Dispatcher interface {
	Dispatch(ctx context.Context, destination, message string) error
}

// WebhookDispatcher envia o resumo do pedido para um webhook HTTP
// (e.g., uma ponte para o canal de mensagens do operador).
type WebhookDispatcher struct {
	URL    string
	client *http.Client
	logger logger.Logger
}

// NewWebhookDispatcher cria um despachante de webhook.
// URL vazia desativa o envio (útil em desenvolvimento).
func NewWebhookDispatcher(url string, timeout time.Duration, log logger.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		URL:    url,
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// Dispatch envia {destination, message} como JSON para o webhook configurado.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, destination, message string) error {
	if d.URL == "" {
		d.logger.Info("Webhook de notificação não configurado; resumo do pedido apenas logado.", map[string]interface{}{
			"destination": destination,
		})
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"destination": destination,
		"message":     message,
	})
	if err != nil {
		return fmt.Errorf("falha ao serializar notificação: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("falha ao montar requisição de notificação: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("falha ao enviar notificação: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook de notificação respondeu %d", resp.StatusCode)
	}
	return nil
}

// FormatOrderSummary monta o resumo legível do pedido enviado ao operador.
func FormatOrderSummary(sale domain.Sale) string {
	var b strings.Builder

	b.WriteString("🛍️ Novo pedido!\n\n")
	for _, item := range sale.Items {
		b.WriteString(fmt.Sprintf("• %dx %s", item.Quantity, item.ProductName))
		if item.Color != "" || item.Size != "" {
			b.WriteString(fmt.Sprintf(" (%s, %s)", item.Color, item.Size))
		}
		b.WriteString(fmt.Sprintf(" — R$ %.2f\n", item.UnitPrice*float64(item.Quantity)))
	}
	b.WriteString(fmt.Sprintf("\nTotal: R$ %.2f\n", sale.Total))
	b.WriteString(fmt.Sprintf("Pagamento: %s\n\n", sale.PaymentMethod))
	b.WriteString(fmt.Sprintf("Cliente: %s\n", sale.CustomerName))
	b.WriteString(fmt.Sprintf("Endereço: %s\n", sale.CustomerAddress))

	return b.String()
}
