package handlers

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/models"
)

// Replier produces the agent's reply to one user message. The
// gateway only depends on this, not on the model client.
type Replier interface {
	Reply(ctx context.Context, text string) (string, error)
}

// MessageSender relays a reply back to the user.
type MessageSender interface {
	SendText(ctx context.Context, phoneNumber, message string) error
}

const errorReply = "Sorry, an error occurred while processing your request. Please try again later."

// MessageProcessor runs agent invocations on a worker pool. Webhook
// handling stays fast: it only enqueues and returns. Tasks run to
// completion; there is no cancellation or join for callers.
type MessageProcessor struct {
	workers int
	queue   chan models.InboundMessage
	stopCh  chan struct{}
	wg      sync.WaitGroup
	replier Replier
	sender  MessageSender
}

// NewMessageProcessor creates a processor with the given worker count.
func NewMessageProcessor(workers int, replier Replier, sender MessageSender) *MessageProcessor {
	return &MessageProcessor{
		workers: workers,
		queue:   make(chan models.InboundMessage, 100),
		stopCh:  make(chan struct{}),
		replier: replier,
		sender:  sender,
	}
}

// Start starts the worker pool.
func (p *MessageProcessor) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Printf("✅ Started %d message workers", p.workers)
}

// Stop waits for the workers to drain. Queued messages that no worker
// picked up yet are dropped.
func (p *MessageProcessor) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	log.Println("Message processor stopped")
}

// Enqueue schedules background processing for one authorized message
// and returns immediately. It never blocks the webhook response: when
// the queue is full the message is dropped with a log line.
func (p *MessageProcessor) Enqueue(sender, text string) string {
	msg := models.InboundMessage{
		TaskID: uuid.NewString(),
		Sender: sender,
		Text:   text,
	}
	select {
	case p.queue <- msg:
		return msg.TaskID
	default:
		log.Printf("Task %s dropped: queue full", msg.TaskID)
		return ""
	}
}

func (p *MessageProcessor) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		case msg := <-p.queue:
			p.process(id, msg)
		}
	}
}

// process runs one agent invocation. A panic in the agent or sender
// is contained here so it cannot take down the worker.
func (p *MessageProcessor) process(workerID int, msg models.InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker %d recovered from panic in task %s: %v", workerID, msg.TaskID, r)
		}
	}()

	log.Printf("Worker %d processing task %s from %s: '%s'",
		workerID, msg.TaskID, msg.Sender, truncate(msg.Text, 100))

	ctx := context.Background()

	reply, err := p.replier.Reply(ctx, msg.Text)
	if err != nil {
		log.Printf("Task %s: agent error: %v", msg.TaskID, err)
		if sendErr := p.sender.SendText(ctx, msg.Sender, errorReply); sendErr != nil {
			log.Printf("Task %s: failed to send error message: %v", msg.TaskID, sendErr)
		}
		return
	}

	log.Printf("Task %s: agent response generated: '%s'", msg.TaskID, truncate(reply, 100))

	if err := p.sender.SendText(ctx, msg.Sender, reply); err != nil {
		log.Printf("Task %s: failed to send reply: %v", msg.TaskID, err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
