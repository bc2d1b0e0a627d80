package activitylog

import (
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/auctionarena/auction-arena/internal/platform/logging"
	"github.com/auctionarena/auction-arena/internal/platform/resilience"
	"github.com/auctionarena/auction-arena/internal/usecase"
)

const (
	defaultQueueSize     = 1024
	defaultBatchSize     = 32
	defaultFlushInterval = 2 * time.Second
	defaultTimeout       = 5 * time.Second

	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
	breakerHalfOpenMaxReq   = 2
)

type WebhookConfig struct {
	URL           string
	Token         string
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Timeout       time.Duration
}

// WebhookPublisher ships auction activity events to an external webhook in
// batches. Record never blocks the auction hot path; when the queue is full
// the event is dropped and counted, not waited on.
type WebhookPublisher struct {
	client        *fasthttp.Client
	url           string
	token         string
	queue         chan usecase.ActivityEvent
	batchSize     int
	flushInterval time.Duration
	timeout       time.Duration
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

func NewWebhookPublisher(cfg WebhookConfig, logger *logging.Logger) (*WebhookPublisher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, crerr.New("webhook url is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = defaultFlushInterval
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	p := &WebhookPublisher{
		client:        &fasthttp.Client{ReadTimeout: timeout, WriteTimeout: timeout},
		url:           strings.TrimSpace(cfg.URL),
		token:         strings.TrimSpace(cfg.Token),
		queue:         make(chan usecase.ActivityEvent, queueSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		timeout:       timeout,
		breaker:       resilience.NewCircuitBreaker(breakerFailureThreshold, breakerOpenTimeout, breakerHalfOpenMaxReq),
		logger:        logger,
		done:          make(chan struct{}),
	}

	p.wg.Add(1)
	go p.run()

	return p, nil
}

func (p *WebhookPublisher) Record(event usecase.ActivityEvent) {
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("activity queue full, dropping event", "kind", event.Kind, "auction_id", event.AuctionID)
	}
}

// Close flushes buffered events and stops the worker.
func (p *WebhookPublisher) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.wg.Wait()
	})
}

func (p *WebhookPublisher) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]usecase.ActivityEvent, 0, p.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		p.send(batch)
		batch = batch[:0]
	}

	for {
		select {
		case event := <-p.queue:
			batch = append(batch, event)
			if len(batch) >= p.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-p.done:
			for {
				select {
				case event := <-p.queue:
					batch = append(batch, event)
					if len(batch) >= p.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

func (p *WebhookPublisher) send(batch []usecase.ActivityEvent) {
	if err := p.breaker.Allow(); err != nil {
		p.logger.Warn("activity webhook circuit open, dropping batch", "events", len(batch), "state", p.breaker.State())
		return
	}

	body, err := sonic.Marshal(batch)
	if err != nil {
		p.logger.Error("encode activity batch", "error", err)
		return
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(body)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	req.SetBody(buf.B)

	if err := p.client.DoTimeout(req, resp, p.timeout); err != nil {
		p.breaker.RecordFailure()
		p.logger.Warn("activity webhook delivery failed", "events", len(batch), "error", err)
		return
	}
	if resp.StatusCode()/100 != 2 {
		p.breaker.RecordFailure()
		p.logger.Warn("activity webhook rejected batch", "events", len(batch), "status", resp.StatusCode())
		return
	}

	p.breaker.RecordSuccess()
}
