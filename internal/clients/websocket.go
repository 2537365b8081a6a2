package clients

import (
	"context"
	"errors"
	"fmt"

	"classroom-ledger/internal/domain"
	ws "classroom-ledger/internal/transport/websocket"
)

var (
	// ErrNoHub is returned by deliveries that need a running hub.
	ErrNoHub = errors.New("websocket hub not configured")
	// ErrRecipientOffline is returned when a delivery has no open connection to go to.
	ErrRecipientOffline = errors.New("recipient has no open connection")
)

type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{hub: hub}
}

func (c *WebSocketClient) send(userID, msgType, channel string, data any) error {
	return c.hub.Broadcast(userID, &ws.Message{Type: msgType, Channel: channel + "#" + userID, Data: data})
}

func (c *WebSocketClient) NotifyExportProgress(ctx context.Context, userID, exportID string, progress float64, stage string) error {
	if c.hub == nil {
		return nil
	}
	data := map[string]any{"id": exportID, "progress": progress}
	if stage != "" {
		data["stage"] = stage
	}
	return c.send(userID, "export_progress", "export_progress", data)
}

func (c *WebSocketClient) NotifyExportComplete(ctx context.Context, userID, exportID, url, filename string) error {
	if c.hub == nil {
		return nil
	}
	return c.send(userID, "export_complete", "export_complete", map[string]any{
		"id":       exportID,
		"url":      url,
		"filename": filename,
	})
}

func (c *WebSocketClient) NotifyExportFailed(ctx context.Context, userID, exportID, errMsg string) error {
	if c.hub == nil {
		return nil
	}
	return c.send(userID, "export_failed", "export_failed", map[string]any{
		"id":      exportID,
		"message": errMsg,
	})
}

// NotifyPaymentProcessed pushes the processed payment, as a payment record, to the student's channel.
func (c *WebSocketClient) NotifyPaymentProcessed(ctx context.Context, p domain.Payment) error {
	if c.hub == nil {
		return nil
	}
	rec := domain.NewPaymentRecord(p)
	if err := rec.Validate(); err != nil {
		return err
	}
	return c.send(p.StudentID, "payment_processed", "payments", rec)
}

// SendReminder delivers r to the parent when one is linked, otherwise to the student.
// A recipient without an open connection is a failed delivery.
func (c *WebSocketClient) SendReminder(ctx context.Context, r domain.PaymentReminder) error {
	if c.hub == nil {
		return ErrNoHub
	}
	recipient := r.StudentID
	if r.ParentID != nil && *r.ParentID != "" {
		recipient = *r.ParentID
	}
	if c.hub.Online(recipient) == 0 {
		return fmt.Errorf("reminder %s to %s: %w", r.ID, recipient, ErrRecipientOffline)
	}
	return c.send(recipient, "payment_reminder", "reminders", map[string]any{
		"id":          r.ID,
		"paymentId":   r.PaymentID,
		"sequence":    r.Sequence,
		"channel":     r.Channel,
		"daysPastDue": r.DaysPastDue,
		"amount":      r.Amount,
		"currency":    r.Currency,
	})
}
