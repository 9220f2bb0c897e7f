package heartbeat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultLogFile — файл, куда дописываются heartbeat-строки.
	DefaultLogFile = "/tmp/crm_heartbeat_log.txt"
	// DefaultEndpoint — адрес GraphQL-эндпоинта для probe-запроса.
	DefaultEndpoint = "http://localhost:8000/graphql"
	// DefaultInterval — период между heartbeat-проверками.
	DefaultInterval = 5 * time.Minute

	timestampLayout = "02/01/2006-15:04:05"
	helloQuery      = `{ hello }`
)

var heartbeatProbes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "crm_heartbeat_probes_total",
	Help: "Total number of heartbeat probes grouped by result.",
}, []string{"result"})

// Options задаёт параметры heartbeat worker.
type Options struct {
	Logger   *log.Entry
	Endpoint string
	LogFile  string
	Interval time.Duration
	Client   *http.Client
	Clock    func() time.Time
}

// Option настраивает Worker.
type Option func(*Options)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithEndpoint задаёт адрес GraphQL-эндпоинта.
func WithEndpoint(endpoint string) Option {
	return func(opts *Options) {
		opts.Endpoint = endpoint
	}
}

// WithLogFile задаёт путь к heartbeat-журналу.
func WithLogFile(path string) Option {
	return func(opts *Options) {
		opts.LogFile = path
	}
}

// WithInterval задаёт период между проверками.
func WithInterval(interval time.Duration) Option {
	return func(opts *Options) {
		opts.Interval = interval
	}
}

// WithHTTPClient задаёт HTTP-клиент probe-запросов.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.Client = client
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = clock
	}
}

// Worker периодически опрашивает GraphQL-эндпоинт полем hello и дописывает
// строку статуса в журнал. Сбои probe только логируются.
type Worker struct {
	logger   *log.Entry
	endpoint string
	logFile  string
	interval time.Duration
	client   *http.Client
	now      func() time.Time
}

// NewWorker создаёт heartbeat worker.
func NewWorker(options ...Option) *Worker {
	opts := Options{
		Endpoint: DefaultEndpoint,
		LogFile:  DefaultLogFile,
		Interval: DefaultInterval,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "heartbeat")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.LogFile == "" {
		opts.LogFile = DefaultLogFile
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Worker{
		logger:   logger,
		endpoint: opts.Endpoint,
		logFile:  opts.LogFile,
		interval: opts.Interval,
		client:   client,
		now:      clock,
	}
}

// Run запускает периодические проверки до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.ProcessOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет одну проверку и дописывает строку в журнал.
// Ошибка probe не возвращается наружу: статус фиксируется в строке.
func (w *Worker) ProcessOnce(ctx context.Context) {
	status := w.probe(ctx)

	line := fmt.Sprintf("%s CRM is alive - %s\n", w.now().Format(timestampLayout), status)
	if err := w.appendLine(line); err != nil {
		w.logger.WithError(err).Warn("failed to append heartbeat line")
	}
}

func (w *Worker) probe(ctx context.Context) string {
	body, err := json.Marshal(map[string]string{"query": helloQuery})
	if err != nil {
		heartbeatProbes.WithLabelValues("error").Inc()
		return fmt.Sprintf("GraphQL ERROR (%v)", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		heartbeatProbes.WithLabelValues("error").Inc()
		return fmt.Sprintf("GraphQL ERROR (%v)", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.WithError(err).Warn("heartbeat probe failed")
		heartbeatProbes.WithLabelValues("error").Inc()
		return fmt.Sprintf("GraphQL ERROR (%v)", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		heartbeatProbes.WithLabelValues("error").Inc()
		return fmt.Sprintf("GraphQL ERROR (%v)", err)
	}
	if resp.StatusCode != http.StatusOK {
		heartbeatProbes.WithLabelValues("error").Inc()
		return fmt.Sprintf("GraphQL ERROR (unexpected status %d)", resp.StatusCode)
	}

	var parsed struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		heartbeatProbes.WithLabelValues("error").Inc()
		return fmt.Sprintf("GraphQL ERROR (%v)", err)
	}
	if _, ok := parsed.Data["hello"]; !ok {
		heartbeatProbes.WithLabelValues("no_hello").Inc()
		return "GraphQL responded without 'hello' field"
	}

	heartbeatProbes.WithLabelValues("ok").Inc()
	return "GraphQL OK"
}

func (w *Worker) appendLine(line string) error {
	f, err := os.OpenFile(w.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open heartbeat log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write heartbeat line: %w", err)
	}
	return nil
}
