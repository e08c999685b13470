package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JeterChan/miao-fruit-web/internal/application"
	"github.com/JeterChan/miao-fruit-web/internal/logger"
)

const linePushURL = "https://api.line.me/v2/bot/message/push"

// LineNotifier pushes order confirmations through the LINE Messaging API.
// With no channel token configured it degrades to a no-op.
type LineNotifier struct {
	token  string
	client *http.Client
}

func NewLineNotifier(token string) *LineNotifier {
	return &LineNotifier{
		token:  token,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *LineNotifier) IsConfigured() bool {
	return n.token != ""
}

type pushMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []pushMessage `json:"messages"`
}

func (n *LineNotifier) SendOrderConfirmation(ctx context.Context, ev application.ConfirmationEvent) error {
	if !n.IsConfigured() {
		logger.Warn("line notifier not configured, skipping message", "order_number", ev.OrderNumber)
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛒 訂單成立！\n訂單編號：%s\n", ev.OrderNumber)
	for _, item := range ev.Items {
		fmt.Fprintf(&b, "%s x%d  $%d\n", item.Name, item.Quantity, item.Price*int64(item.Quantity))
	}
	fmt.Fprintf(&b, "總金額：$%d\n狀態：%s\n感謝您的訂購！", ev.TotalAmount, ev.Status)

	return n.push(ctx, ev.LineUserID, b.String())
}

func (n *LineNotifier) push(ctx context.Context, userID, text string) error {
	payload, err := json.Marshal(pushRequest{
		To:       userID,
		Messages: []pushMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, linePushURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<10))
		return fmt.Errorf("line push failed: status %d: %s", resp.StatusCode, body)
	}
	return nil
}
