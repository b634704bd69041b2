package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prefeitura-rio/app-fomento/internal/observability"
	"github.com/prefeitura-rio/app-fomento/internal/utils/httpclient"
	"go.uber.org/zap"
)

// EmailMessage is one notification handed to the e-mail relay
type EmailMessage struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Subject string            `json:"subject"`
	Body    string            `json:"body"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// EmailStats tracks queue activity
type EmailStats struct {
	Enqueued  int64 `json:"enqueued"`
	Sent      int64 `json:"sent"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
	QueueSize int   `json:"queue_size"`
	Workers   int   `json:"workers"`
}

// EmailConfig configures the relay and the worker pool
type EmailConfig struct {
	URL       string
	Token     string
	From      string
	Workers   int
	QueueSize int
}

// EmailService delivers notifications through an HTTP relay from a bounded
// queue. Enqueue never blocks and delivery errors never reach callers.
type EmailService struct {
	cfg    EmailConfig
	pool   *httpclient.HTTPClientPool
	logger *zap.Logger

	queue  chan EmailMessage
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	statsMu sync.Mutex
	stats   EmailStats
}

// NewEmailService creates the service and starts its workers
func NewEmailService(cfg EmailConfig, pool *httpclient.HTTPClientPool, logger *zap.Logger) *EmailService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &EmailService{
		cfg:    cfg,
		pool:   pool,
		logger: logger.Named("email"),
		queue:  make(chan EmailMessage, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	s.stats.Workers = cfg.Workers

	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	return s
}

// Enqueue schedules msg for delivery. It reports false when the message was
// dropped because the queue is full or the service is shut down.
func (s *EmailService) Enqueue(msg EmailMessage) bool {
	if msg.From == "" {
		msg.From = s.cfg.From
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.drop(msg, "service stopped")
		return false
	}

	select {
	case s.queue <- msg:
		s.count(func(st *EmailStats) { st.Enqueued++ })
		return true
	default:
		s.drop(msg, "queue full")
		return false
	}
}

func (s *EmailService) drop(msg EmailMessage, reason string) {
	s.count(func(st *EmailStats) { st.Dropped++ })
	observability.EmailsSent.WithLabelValues("dropped").Inc()
	s.logger.Warn("dropping e-mail",
		zap.String("reason", reason),
		zap.String("to", observability.MaskEmail(msg.To)),
		zap.String("subject", msg.Subject))
}

func (s *EmailService) count(fn func(*EmailStats)) {
	s.statsMu.Lock()
	fn(&s.stats)
	s.statsMu.Unlock()
}

func (s *EmailService) worker(id int) {
	defer s.wg.Done()
	for msg := range s.queue {
		if err := s.deliver(msg); err != nil {
			s.count(func(st *EmailStats) { st.Failed++ })
			observability.EmailsSent.WithLabelValues("error").Inc()
			s.logger.Error("failed to deliver e-mail",
				zap.Int("worker_id", id),
				zap.String("to", observability.MaskEmail(msg.To)),
				zap.Error(err))
			continue
		}
		s.count(func(st *EmailStats) { st.Sent++ })
		observability.EmailsSent.WithLabelValues("success").Inc()
	}
}

func (s *EmailService) deliver(msg EmailMessage) error {
	if s.cfg.URL == "" {
		s.logger.Info("e-mail relay not configured, logging message only",
			zap.String("to", observability.MaskEmail(msg.To)),
			zap.String("subject", msg.Subject))
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode e-mail: %w", err)
	}

	ctx, cancel := context.WithTimeout(s.ctx, httpclient.DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build e-mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.pool.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call e-mail relay: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("e-mail relay returned status %d", resp.StatusCode)
	}
	return nil
}

// Stats returns a snapshot of the queue counters
func (s *EmailService) Stats() EmailStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	st := s.stats
	st.QueueSize = len(s.queue)
	return st
}

// Shutdown stops accepting messages and waits for the queue to drain. When
// ctx expires first, in-flight deliveries are cancelled.
func (s *EmailService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return fmt.Errorf("e-mail queue did not drain: %w", ctx.Err())
	}
}

// drainTimeout bounds the queue drain in Stop.
const drainTimeout = 10 * time.Second

// Stop shuts the service down with the default drain timeout
func (s *EmailService) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		s.logger.Warn("e-mail shutdown incomplete", zap.Error(err))
	}
}
