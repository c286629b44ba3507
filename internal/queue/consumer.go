package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/bernardev/good-trip-api/internal/notify"
)

// adminLogFile is where the consumer appends one line per notification,
// serving as the admin alert trail.
const adminLogFile = "notifications.log"

// StartNotificationConsumer connects to RabbitMQ, declares both
// notification queues and consumes them, delivering a WhatsApp message to
// the lead passenger and appending an admin log line per event. The
// function runs a reconnect loop with exponential backoff and never
// returns under normal operation; processing errors are logged and the
// offending message is rejected without requeue so the worker keeps
// draining.
func StartNotificationConsumer(url string, wa *notify.WhatsAppClient, log *zap.Logger) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("notification consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, wa, log); err != nil {
			log.Warn("notification consumer: loop ended, reconnecting", zap.Error(err))
			time.Sleep(2 * time.Second)
		}
		_ = conn.Close()
	}
}

func consumeLoop(conn *amqp.Connection, wa *notify.WhatsAppClient, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Warn("notification consumer: set QoS failed", zap.Error(err))
	}

	for _, q := range []string{TicketIssuedQueue, RefundProcessedQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", q, err)
		}
	}

	issued, err := ch.Consume(TicketIssuedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", TicketIssuedQueue, err)
	}
	refunded, err := ch.Consume(RefundProcessedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", RefundProcessedQueue, err)
	}

	for {
		select {
		case d, ok := <-issued:
			if !ok {
				return errors.New("ticket.issued deliveries channel closed")
			}
			ack(d, handleIssued(d.Body, wa, log), log)
		case d, ok := <-refunded:
			if !ok {
				return errors.New("refund.processed deliveries channel closed")
			}
			ack(d, handleRefund(d.Body, wa, log), log)
		}
	}
}

func ack(d amqp.Delivery, err error, log *zap.Logger) {
	if err != nil {
		log.Error("notification consumer: handle message failed", zap.Error(err))
		_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
		return
	}
	_ = d.Ack(false)
}

func handleIssued(body []byte, wa *notify.WhatsAppClient, log *zap.Logger) error {
	var ev TicketIssuedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Tickets issued | order=%s | seats=%d | %s -> %s | total=%s\n",
		ev.IssuedAt, ev.OrderID, ev.SeatCount, ev.OriginName, ev.DestinationName, ev.TotalFare)
	if err := appendAdminLog(line); err != nil {
		return err
	}
	if ev.PassengerPhone == "" {
		return nil
	}
	msg := fmt.Sprintf("Sua passagem %s -> %s em %s às %s foi emitida. Localizadores: %v",
		ev.OriginName, ev.DestinationName, ev.DepartureDate, ev.DepartureTime, ev.Locators)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := wa.SendMessage(ctx, ev.PassengerPhone, msg); err != nil {
		// Delivery is best-effort; the admin log line above already recorded the event.
		log.Warn("whatsapp delivery failed", zap.String("order_id", ev.OrderID), zap.Error(err))
	}
	return nil
}

func handleRefund(body []byte, wa *notify.WhatsAppClient, log *zap.Logger) error {
	var ev RefundProcessedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line := fmt.Sprintf("[%s] Refund %s | order=%s | amount=%s | issued=%d/%d | reason=%s\n",
		ev.ProcessedAt, ev.Status, ev.OrderID, ev.Amount, ev.SeatsIssued, ev.SeatsExpected, ev.Reason)
	if err := appendAdminLog(line); err != nil {
		return err
	}
	if ev.PassengerPhone == "" {
		return nil
	}
	msg := fmt.Sprintf("Não foi possível emitir todos os bilhetes do pedido %s. Estorno de R$ %s: %s.",
		ev.OrderID, ev.Amount, ev.Status)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := wa.SendMessage(ctx, ev.PassengerPhone, msg); err != nil {
		log.Warn("whatsapp delivery failed", zap.String("order_id", ev.OrderID), zap.Error(err))
	}
	return nil
}

func appendAdminLog(line string) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", adminLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
