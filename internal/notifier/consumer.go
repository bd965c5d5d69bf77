package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Max3uc3Planz/lcdt-back/internal/invoices"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
	"github.com/Max3uc3Planz/lcdt-back/pkg/mailer"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox/payloads"
)

type repository interface {
	FindForInvoice(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SetInvoiceURL(ctx context.Context, id uuid.UUID, path string) error
}

type sender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

const consumerName = "notifier"

// Consumer processes order events from Pub/Sub: for every freshly created
// order it generates the invoice PDF and mails the confirmation.
type Consumer struct {
	repo         repository
	invoices     invoices.Service
	mail         sender
	idem         idempotencyChecker
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer constructs a consumer that watches the provided subscription.
func NewConsumer(repo repository, invoiceSvc invoices.Service, mail sender, idem idempotencyChecker, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, errors.New("order repository is required")
	}
	if invoiceSvc == nil {
		return nil, errors.New("invoice service is required")
	}
	if mail == nil {
		return nil, errors.New("mail sender is required")
	}
	if idem == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		repo:         repo,
		invoices:     invoiceSvc,
		mail:         mail,
		idem:         idem,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if eventType != enums.EventOrderCreated {
		c.logg.Info(logCtx, "skipping non-creation event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode event envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "envelope carries no usable event id", err)
		return processResult{ack: true}
	}
	already, err := c.idem.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var event payloads.OrderCreatedEvent
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		c.logg.Error(logCtx, "failed to decode order payload", err)
		return processResult{ack: true}
	}
	if event.OrderID == uuid.Nil {
		c.logg.Error(logCtx, "payload missing order id", errors.New("nil order id"))
		return processResult{ack: true}
	}

	fields["order_id"] = event.OrderID.String()
	logCtx = c.logg.WithFields(ctx, fields)

	order, err := c.repo.FindForInvoice(logCtx, event.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.logg.Warn(logCtx, "order row not found")
			return processResult{ack: true}
		}
		return c.handleDBError(logCtx, eventID, err)
	}

	if order.InvoiceURL != nil && *order.InvoiceURL != "" {
		c.logg.Info(logCtx, "invoice already generated")
		return processResult{ack: true}
	}

	path, document, err := c.invoices.Generate(logCtx, order)
	if err != nil {
		c.logg.Error(logCtx, "invoice generation failed", err)
		return c.retryLater(logCtx, eventID)
	}

	if err := c.repo.SetInvoiceURL(ctx, order.ID, path); err != nil {
		return c.handleDBError(logCtx, eventID, err)
	}

	fields["invoice_path"] = path
	logCtx = c.logg.WithFields(ctx, fields)

	if err := c.sendConfirmation(logCtx, order, document); err != nil {
		// The invoice is persisted; a redelivery would skip it, so a mail
		// failure is logged rather than nacked.
		c.logg.Error(logCtx, "confirmation email failed", err)
		return processResult{ack: true}
	}

	c.logg.Info(logCtx, "order confirmation sent")
	return processResult{ack: true}
}

func (c *Consumer) sendConfirmation(ctx context.Context, order *models.Order, document []byte) error {
	if order.User == nil || order.User.Email == nil || strings.TrimSpace(*order.User.Email) == "" {
		c.logg.Warn(ctx, "customer has no email, skipping confirmation")
		return nil
	}

	html, err := c.invoices.RenderEmail(order)
	if err != nil {
		return err
	}

	return c.mail.Send(ctx, mailer.Message{
		To:      *order.User.Email,
		Subject: invoices.SubjectFor(order),
		HTML:    html,
		Attachments: []mailer.Attachment{
			{
				Filename: invoices.Filename(order),
				Content:  document,
				MimeType: "application/pdf",
			},
		},
	})
}

func (c *Consumer) handleDBError(ctx context.Context, eventID uuid.UUID, err error) processResult {
	c.logg.Error(ctx, "order persistence error", err)
	if isTransientDBError(err) {
		return c.retryLater(ctx, eventID)
	}
	return processResult{ack: true}
}

// retryLater clears the processed mark so the redelivered message is not
// short-circuited by the idempotency guard.
func (c *Consumer) retryLater(ctx context.Context, eventID uuid.UUID) processResult {
	if err := c.idem.Delete(ctx, consumerName, eventID); err != nil {
		c.logg.Error(ctx, "failed to clear idempotency mark", err)
	}
	return processResult{nack: true}
}

func isTransientDBError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
