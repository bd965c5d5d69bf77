package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Max3uc3Planz/lcdt-back/pkg/db/models"
	"github.com/Max3uc3Planz/lcdt-back/pkg/enums"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
	"github.com/Max3uc3Planz/lcdt-back/pkg/mailer"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox/payloads"
)

type stubOrderRepo struct {
	order   *models.Order
	findErr error
	setID   uuid.UUID
	setPath string
	setErr  error
}

func (s *stubOrderRepo) FindForInvoice(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.order, s.findErr
}

func (s *stubOrderRepo) SetInvoiceURL(ctx context.Context, id uuid.UUID, path string) error {
	s.setID = id
	s.setPath = path
	return s.setErr
}

type stubInvoices struct {
	path        string
	document    []byte
	generateErr error
	generated   int
}

func (s *stubInvoices) Generate(ctx context.Context, order *models.Order) (string, []byte, error) {
	s.generated++
	return s.path, s.document, s.generateErr
}

func (s *stubInvoices) RenderEmail(order *models.Order) (string, error) {
	return "<p>confirmation</p>", nil
}

type stubMailer struct {
	sent []mailer.Message
	err  error
}

func (s *stubMailer) Send(ctx context.Context, msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func testOrder(email *string) *models.Order {
	orderID := uuid.New()
	return &models.Order{
		ID:       orderID,
		Date:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		TotalTax: decimal.NewFromInt(42),
		TslotMin: time.Date(2026, 3, 15, 18, 0, 0, 0, time.UTC),
		TslotMax: time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC),
		User: &models.User{
			ID:        uuid.New(),
			Email:     email,
			FirstName: "Alice",
			LastName:  "Martin",
		},
		Items: []models.OrderItem{
			{Name: "Couscous royal", Quantity: 2, TotalTax: decimal.NewFromInt(30)},
		},
	}
}

func buildMessage(t *testing.T, eventType enums.OutboxEventType, orderID uuid.UUID) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payloads.OrderCreatedEvent{OrderID: orderID, UserID: uuid.New()})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		ID:         "msg-1",
		Attributes: map[string]string{"event_type": string(eventType)},
		Data:       envelope,
	}
}

type stubIdempotency struct {
	processed map[uuid.UUID]bool
	checkErr  error
	deleted   []uuid.UUID
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{processed: map[uuid.UUID]bool{}}
}

func (s *stubIdempotency) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	if s.checkErr != nil {
		return false, s.checkErr
	}
	already := s.processed[eventID]
	s.processed[eventID] = true
	return already, nil
}

func (s *stubIdempotency) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	s.deleted = append(s.deleted, eventID)
	delete(s.processed, eventID)
	return nil
}

func newTestConsumer(t *testing.T, repo *stubOrderRepo, inv *stubInvoices, mail *stubMailer, idem *stubIdempotency) *Consumer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "notifier-test"})
	consumer, err := NewConsumer(repo, inv, mail, idem, &pubsub.Subscriber{}, logg)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	return consumer
}

func TestConsumerGeneratesInvoiceAndSendsMail(t *testing.T) {
	t.Parallel()

	email := "alice@example.com"
	order := testOrder(&email)
	repo := &stubOrderRepo{order: order}
	inv := &stubInvoices{path: "2026/alice/invoice.pdf", document: []byte("%PDF-")}
	mail := &stubMailer{}
	consumer := newTestConsumer(t, repo, inv, mail, newStubIdempotency())

	result := consumer.process(context.Background(), buildMessage(t, enums.EventOrderCreated, order.ID))
	if !result.ack || result.nack {
		t.Fatalf("expected ack result, got %+v", result)
	}
	if repo.setID != order.ID || repo.setPath != inv.path {
		t.Fatalf("invoice path not recorded: %s %s", repo.setID, repo.setPath)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mail.sent))
	}
	msg := mail.sent[0]
	if msg.To != email {
		t.Fatalf("unexpected recipient: %s", msg.To)
	}
	if len(msg.Attachments) != 1 || msg.Attachments[0].MimeType != "application/pdf" {
		t.Fatalf("expected pdf attachment, got %+v", msg.Attachments)
	}
}

func TestConsumerSkipsOtherEventTypes(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{}
	inv := &stubInvoices{}
	consumer := newTestConsumer(t, repo, inv, &stubMailer{}, newStubIdempotency())

	result := consumer.process(context.Background(), buildMessage(t, enums.EventOrderStatusChanged, uuid.New()))
	if !result.ack {
		t.Fatalf("expected ack")
	}
	if inv.generated != 0 {
		t.Fatalf("invoice should not have been generated")
	}
}

func TestConsumerAcksWhenInvoiceAlreadyGenerated(t *testing.T) {
	t.Parallel()

	email := "alice@example.com"
	order := testOrder(&email)
	existing := "2026/alice/invoice.pdf"
	order.InvoiceURL = &existing
	repo := &stubOrderRepo{order: order}
	inv := &stubInvoices{}
	mail := &stubMailer{}
	consumer := newTestConsumer(t, repo, inv, mail, newStubIdempotency())

	result := consumer.process(context.Background(), buildMessage(t, enums.EventOrderCreated, order.ID))
	if !result.ack {
		t.Fatalf("expected ack")
	}
	if inv.generated != 0 || len(mail.sent) != 0 {
		t.Fatalf("redelivery should be a no-op")
	}
}

func TestConsumerSkipsAlreadyProcessedEvent(t *testing.T) {
	t.Parallel()

	email := "alice@example.com"
	order := testOrder(&email)
	repo := &stubOrderRepo{order: order}
	inv := &stubInvoices{path: "2026/alice/invoice.pdf", document: []byte("%PDF-")}
	mail := &stubMailer{}
	idem := newStubIdempotency()
	consumer := newTestConsumer(t, repo, inv, mail, idem)

	msg := buildMessage(t, enums.EventOrderCreated, order.ID)
	if result := consumer.process(context.Background(), msg); !result.ack {
		t.Fatalf("first delivery should ack")
	}

	redelivered := consumer.process(context.Background(), msg)
	if !redelivered.ack {
		t.Fatalf("redelivery should ack")
	}
	if inv.generated != 1 || len(mail.sent) != 1 {
		t.Fatalf("redelivered event must not be processed twice: %d invoices, %d mails", inv.generated, len(mail.sent))
	}
}

func TestConsumerNacksOnRendererFailure(t *testing.T) {
	t.Parallel()

	email := "alice@example.com"
	order := testOrder(&email)
	repo := &stubOrderRepo{order: order}
	inv := &stubInvoices{generateErr: errors.New("renderer down")}
	idem := newStubIdempotency()
	consumer := newTestConsumer(t, repo, inv, &stubMailer{}, idem)

	result := consumer.process(context.Background(), buildMessage(t, enums.EventOrderCreated, order.ID))
	if !result.nack {
		t.Fatalf("expected nack on renderer failure")
	}
	// The processed mark must be gone so the redelivery retries the render.
	if len(idem.deleted) != 1 {
		t.Fatalf("expected the processed mark to be cleared, deletions: %d", len(idem.deleted))
	}
}

func TestConsumerAcksMalformedPayload(t *testing.T) {
	t.Parallel()

	consumer := newTestConsumer(t, &stubOrderRepo{}, &stubInvoices{}, &stubMailer{}, newStubIdempotency())

	msg := &pubsub.Message{
		ID:         "msg-bad",
		Attributes: map[string]string{"event_type": string(enums.EventOrderCreated)},
		Data:       []byte("not-json"),
	}
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("malformed payload must be acked, not redelivered")
	}
}

func TestConsumerSkipsCustomersWithoutEmail(t *testing.T) {
	t.Parallel()

	order := testOrder(nil)
	repo := &stubOrderRepo{order: order}
	inv := &stubInvoices{path: "2026/anonymous/invoice.pdf", document: []byte("%PDF-")}
	mail := &stubMailer{}
	consumer := newTestConsumer(t, repo, inv, mail, newStubIdempotency())

	result := consumer.process(context.Background(), buildMessage(t, enums.EventOrderCreated, order.ID))
	if !result.ack {
		t.Fatalf("expected ack")
	}
	if repo.setPath != inv.path {
		t.Fatalf("invoice should still be stored")
	}
	if len(mail.sent) != 0 {
		t.Fatalf("no mail expected without an address")
	}
}
