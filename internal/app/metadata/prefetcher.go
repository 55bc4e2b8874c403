package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/nats-io/nats.go"
	"github.com/sifan077/Rinku/internal/app/model"
	"go.uber.org/zap"
)

const (
	prefetchBatch       = 10
	prefetchWait        = 5 * time.Second
	prefetchTimeout     = 45 * time.Second
	prefetchMaxDeliver  = 5
	prefetchFetchPause  = 2 * time.Second
	bloomExpectedURLs   = 100_000
	bloomFalsePositives = 0.01
)

// Warmer loads metadata for a URL into the cache.
type Warmer interface {
	Warm(ctx context.Context, url string) error
}

// Prefetcher consumes bookmark events and warms the metadata cache for newly
// saved URLs. URLs it has already warmed are skipped via a bloom filter; a
// false positive only costs a skipped prefetch.
type Prefetcher struct {
	js     nats.JetStreamContext
	warmer Warmer
	logger *zap.Logger

	mu   sync.Mutex
	seen *bloom.BloomFilter

	stop chan struct{}
	done chan struct{}
}

// prefetchBackoff is the redelivery delay after the n-th failed attempt. The
// server also uses its first entry as the ack wait, so it must exceed
// prefetchTimeout.
var prefetchBackoff = []time.Duration{
	time.Minute,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

func retryDelay(numDelivered uint64) time.Duration {
	i := int(numDelivered) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(prefetchBackoff) {
		i = len(prefetchBackoff) - 1
	}
	return prefetchBackoff[i]
}

func consumerConfig() *nats.ConsumerConfig {
	return &nats.ConsumerConfig{
		Durable:    model.PrefetchConsumerName,
		AckPolicy:  nats.AckExplicitPolicy,
		MaxDeliver: prefetchMaxDeliver,
		BackOff:    prefetchBackoff,
	}
}

// NewPrefetcher creates a prefetcher bound to the bookmark stream.
func NewPrefetcher(js nats.JetStreamContext, warmer Warmer, logger *zap.Logger) *Prefetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prefetcher{
		js:     js,
		warmer: warmer,
		logger: logger,
		seen:   bloom.NewWithEstimates(bloomExpectedURLs, bloomFalsePositives),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start ensures the durable consumer exists with the current retry limits
// and begins pulling events.
func (p *Prefetcher) Start() error {
	_, err := p.js.ConsumerInfo(model.BookmarkStreamName, model.PrefetchConsumerName)
	switch {
	case errors.Is(err, nats.ErrConsumerNotFound):
		_, err = p.js.AddConsumer(model.BookmarkStreamName, consumerConfig())
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up consumer: %w", err)
	default:
		if _, err := p.js.UpdateConsumer(model.BookmarkStreamName, consumerConfig()); err != nil {
			p.logger.Warn("failed to update prefetch consumer limits", zap.Error(err))
		}
	}

	sub, err := p.js.PullSubscribe(model.BookmarkStreamSubjects, model.PrefetchConsumerName,
		nats.Bind(model.BookmarkStreamName, model.PrefetchConsumerName))
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go p.consume(sub)
	return nil
}

// Stop ends the consume loop and waits for the in-flight batch.
func (p *Prefetcher) Stop() {
	close(p.stop)
	<-p.done
}

func (p *Prefetcher) consume(sub *nats.Subscription) {
	defer close(p.done)
	defer func() { _ = sub.Unsubscribe() }()

	for {
		select {
		case <-p.stop:
			p.logger.Info("metadata prefetcher stopped")
			return
		default:
		}

		msgs, err := sub.Fetch(prefetchBatch, nats.MaxWait(prefetchWait))
		if err != nil && !errors.Is(err, nats.ErrTimeout) {
			p.logger.Error("failed to fetch bookmark events", zap.Error(err))
			p.pause(prefetchFetchPause)
			continue
		}

		for _, msg := range msgs {
			p.settle(msg, p.Handle(msg.Data))
		}
	}
}

// settle acks, terminates or delays redelivery of msg depending on err.
func (p *Prefetcher) settle(msg *nats.Msg, err error) {
	if err == nil {
		_ = msg.Ack()
		return
	}
	if IsPermanent(err) {
		p.logger.Info("metadata prefetch skipped", zap.Error(err))
		_ = msg.Term()
		return
	}

	var delivered uint64 = 1
	if md, mdErr := msg.Metadata(); mdErr == nil {
		delivered = md.NumDelivered
	}
	p.logger.Warn("metadata prefetch failed",
		zap.Error(err),
		zap.Uint64("delivery", delivered),
	)
	_ = msg.NakWithDelay(retryDelay(delivered))
}

func (p *Prefetcher) pause(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.stop:
	case <-t.C:
	}
}

// Handle processes one encoded BookmarkEvent. Undecodable events are
// dropped without error so they are acked and never redelivered. Errors
// matching ErrUnscrapable are final: the URL is remembered and skipped.
func (p *Prefetcher) Handle(data []byte) error {
	var event model.BookmarkEvent
	if err := json.Unmarshal(data, &event); err != nil {
		p.logger.Error("failed to unmarshal bookmark event", zap.Error(err))
		return nil
	}

	if event.Type == model.BookmarkDeleted || event.URL == "" {
		return nil
	}
	if p.alreadyWarmed(event.URL) {
		p.logger.Debug("metadata already prefetched", zap.String("url", event.URL))
		return nil
	}

	if err := checkScrapable(event.URL); err != nil {
		p.markWarmed(event.URL)
		return fmt.Errorf("warm %s: %w", event.URL, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
	defer cancel()

	if err := p.warmer.Warm(ctx, event.URL); err != nil {
		if IsPermanent(err) {
			p.markWarmed(event.URL)
		}
		return fmt.Errorf("warm %s: %w", event.URL, err)
	}
	p.markWarmed(event.URL)

	p.logger.Debug("metadata prefetched",
		zap.Int64("bookmark_id", event.BookmarkID),
		zap.String("url", event.URL),
	)
	return nil
}

func (p *Prefetcher) alreadyWarmed(url string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seen.TestString(url)
}

func (p *Prefetcher) markWarmed(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen.AddString(url)
}
