// Package messaging keeps a talent-recruiter conversation in sync by
// re-fetching it on a fixed interval while the thread is open.
package messaging

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

const DefaultInterval = 5 * time.Second

var (
	ErrIdle         = errors.New("poller is idle")
	ErrEmptyMessage = errors.New("message is empty")
)

// API is the part of *scoutjar.Core the poller uses.
type API interface {
	Messages(ctx context.Context, senderID, recipientID scoutjar.ID) ([]scoutjar.Message, error)
	SendMessage(ctx context.Context, senderID, recipientID scoutjar.ID, content string) (*scoutjar.SentMessage, error)
}

type State int

const (
	StateIdle State = iota
	StatePolling
)

func (s State) String() string {
	if s == StatePolling {
		return "polling"
	}
	return "idle"
}

// Thread identifies a conversation by the two users' ids. Self is always
// the signed-in talent's user_id.
type Thread struct {
	Self scoutjar.ID
	Peer scoutjar.ID
}

// Receipt describes a sent message. PlaceholderID is only used for logs;
// MessageID is assigned by the server.
type Receipt struct {
	PlaceholderID string
	MessageID     scoutjar.ID
	SentAt        time.Time
}

type Poller struct {
	api      API
	logger   *zap.Logger
	interval time.Duration

	// OnUpdate, if set, is called with a copy of the thread after every
	// successful fetch.
	OnUpdate func([]scoutjar.Message)

	// lifecycle serialises Start and Stop.
	lifecycle sync.Mutex

	mu       sync.Mutex
	state    State
	thread   Thread
	epoch    uint64
	messages []scoutjar.Message
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(api API, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		api:      api,
		interval: interval,
		logger:   logger.WithFields(log),
	}
}

// Start opens thread: it fetches once right away and then every interval
// until Stop or ctx is done. An open thread is stopped first.
func (p *Poller) Start(ctx context.Context, thread Thread) {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	p.stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.epoch++
	p.state = StatePolling
	p.thread = thread
	p.messages = nil
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.logger.Debug("polling started",
		zap.String("self", thread.Self.String()),
		zap.String("peer", thread.Peer.String()),
		zap.Duration("interval", p.interval),
	)

	_ = p.Refresh(loopCtx)

	go p.loop(loopCtx, done)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.Refresh(ctx)
		}
	}
}

// Stop cancels the polling goroutine and waits for it to exit. Stopping an
// idle poller does nothing.
func (p *Poller) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	p.stop()
}

func (p *Poller) stop() {
	p.mu.Lock()
	if p.state == StateIdle {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.state = StateIdle
	p.epoch++
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	cancel()
	<-done

	p.logger.Debug("polling stopped")
}

// Refresh fetches the thread once and replaces the local list. A failed
// fetch is logged and keeps the previous list.
func (p *Poller) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StatePolling {
		p.mu.Unlock()
		return ErrIdle
	}
	thread, epoch := p.thread, p.epoch
	p.mu.Unlock()

	messages, err := p.api.Messages(ctx, thread.Self, thread.Peer)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("fetching messages failed", zap.Error(err))
		}
		return err
	}

	p.mu.Lock()
	if p.epoch != epoch {
		p.mu.Unlock()
		return nil
	}
	p.messages = messages
	onUpdate := p.OnUpdate
	snapshot := append([]scoutjar.Message(nil), messages...)
	p.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}

	return nil
}

// Send posts content to the open thread and then forces a refresh so the
// list reflects the server copy.
func (p *Poller) Send(ctx context.Context, content string) (Receipt, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Receipt{}, ErrEmptyMessage
	}

	p.mu.Lock()
	if p.state != StatePolling {
		p.mu.Unlock()
		return Receipt{}, ErrIdle
	}
	thread := p.thread
	p.mu.Unlock()

	receipt := Receipt{PlaceholderID: uuid.NewString()}
	log := p.logger.With(zap.String("placeholder_id", receipt.PlaceholderID))

	sent, err := p.api.SendMessage(ctx, thread.Self, thread.Peer, content)
	if err != nil {
		log.Warn("sending message failed", zap.Error(err))
		return receipt, err
	}

	receipt.MessageID = sent.MessageID
	receipt.SentAt = sent.SentAt
	log.Debug("message sent", zap.String("message_id", sent.MessageID.String()))

	if err := p.Refresh(ctx); err != nil && !errors.Is(err, ErrIdle) {
		log.Debug("refresh after send failed", zap.Error(err))
	}

	return receipt, nil
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) Thread() Thread {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.thread
}

// Messages returns a copy of the last fetched thread.
func (p *Poller) Messages() []scoutjar.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]scoutjar.Message(nil), p.messages...)
}
