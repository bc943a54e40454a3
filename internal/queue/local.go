package queue

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

// LocalPublisher emulates the push queue for development and tests:
// instead of handing the message to the provider it signs it with the
// current key and delivers it to the callback itself, in the
// background, retrying a bounded number of times on non-2xx responses.
type LocalPublisher struct {
	signingKey  string
	maxAttempts int
	backoff     time.Duration
	httpc       *http.Client
	wg          sync.WaitGroup
}

// NewLocalPublisher creates a local delivery emulator signing with key.
func NewLocalPublisher(key string) *LocalPublisher {
	return &LocalPublisher{
		signingKey:  key,
		maxAttempts: 3,
		backoff:     time.Second,
		httpc:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Publish schedules delivery of body to callbackURL and returns
// immediately, matching the provider's accept-then-deliver contract.
func (p *LocalPublisher) Publish(ctx context.Context, callbackURL string, body []byte) error {
	p.wg.Add(1)
	go p.deliver(callbackURL, body)
	return nil
}

// Wait blocks until all scheduled deliveries have finished. Short-lived
// callers (the CLI) use it so the process does not exit mid-delivery.
func (p *LocalPublisher) Wait() {
	p.wg.Wait()
}

func (p *LocalPublisher) deliver(callbackURL string, body []byte) {
	defer p.wg.Done()
	sig := Sign(p.signingKey, callbackURL, body)

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(p.backoff)
		}

		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, callbackURL, bytes.NewReader(body))
		if err != nil {
			log.Printf("local queue: build delivery request: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, sig)

		resp, err := p.httpc.Do(req)
		if err != nil {
			log.Printf("local queue: delivery attempt %d: %v", attempt, err)
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			return
		}
		log.Printf("local queue: delivery attempt %d: callback returned %d", attempt, resp.StatusCode)
	}
	log.Printf("local queue: giving up delivery to %s after %d attempts", callbackURL, p.maxAttempts)
}
