// Package telemetry records retrieval query metrics for observing search
// quality drift: method mix, hot query terms, zero-result queries, and
// latency distribution. All data stays local.
package telemetry

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Method classifies how a query was served.
type Method string

const (
	MethodLexical Method = "lexical"
	MethodHybrid  Method = "hybrid"
)

// LatencyBucket is a histogram bucket.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"   // <10ms
	BucketP50   LatencyBucket = "p50"   // 10-50ms
	BucketP100  LatencyBucket = "p100"  // 50-100ms
	BucketP500  LatencyBucket = "p500"  // 100-500ms
	BucketP1000 LatencyBucket = "p1000" // >=500ms
)

// LatencyToBucket converts a duration to its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// QueryEvent is a single retrieval request observation.
type QueryEvent struct {
	Query         string
	ComponentType string
	Method        Method
	ResultCount   int
	Latency       time.Duration
	Timestamp     time.Time
}

// IsZeroResult reports whether the query returned nothing.
func (e QueryEvent) IsZeroResult() bool {
	return e.ResultCount == 0
}

// CircularBuffer is a fixed-capacity FIFO buffer.
type CircularBuffer[T any] struct {
	mu       sync.RWMutex
	items    []T
	head     int
	size     int
	capacity int
}

// NewCircularBuffer creates a buffer with the given capacity.
func NewCircularBuffer[T any](capacity int) *CircularBuffer[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &CircularBuffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Add appends an item, evicting the oldest when full.
func (b *CircularBuffer[T]) Add(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[b.head] = item
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Items returns the buffered items oldest first.
func (b *CircularBuffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return []T{}
	}

	result := make([]T, b.size)
	if b.size < b.capacity {
		copy(result, b.items[:b.size])
	} else {
		copy(result, b.items[b.head:])
		copy(result[b.capacity-b.head:], b.items[:b.head])
	}
	return result
}

// Size returns the number of buffered items.
func (b *CircularBuffer[T]) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// TermCount pairs a query term with its frequency.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Snapshot is an immutable view of collected metrics.
type Snapshot struct {
	MethodCounts        map[Method]int64        `json:"method_counts"`
	TopTerms            []TermCount             `json:"top_terms"`
	ZeroResultQueries   []string                `json:"zero_result_queries"`
	LatencyDistribution map[LatencyBucket]int64 `json:"latency_distribution"`
	TotalQueries        int64                   `json:"total_queries"`
	ZeroResultCount     int64                   `json:"zero_result_count"`
	Since               time.Time               `json:"since"`
}

// ZeroResultPercentage returns the share of zero-result queries.
func (s *Snapshot) ZeroResultPercentage() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResultCount) / float64(s.TotalQueries) * 100
}

// Config tunes the collector.
type Config struct {
	TopTermsCapacity    int
	ZeroResultsCapacity int
	// FlushInterval persists aggregates to the store when > 0.
	FlushInterval time.Duration
}

// DefaultConfig returns the standard collector configuration.
func DefaultConfig() Config {
	return Config{
		TopTermsCapacity:    100,
		ZeroResultsCapacity: 100,
		FlushInterval:       5 * time.Minute,
	}
}

// Collector aggregates query events in memory, optionally flushing to a
// persistent store. Thread-safe; Record never blocks on I/O.
type Collector struct {
	mu sync.RWMutex

	methods         map[Method]int64
	topTerms        *lru.Cache[string, int64]
	zeroResults     *CircularBuffer[string]
	latencies       map[LatencyBucket]int64
	totalQueries    int64
	zeroResultCount int64
	startTime       time.Time

	store       *SQLiteStore
	config      Config
	flushTicker *time.Ticker
	stopCh      chan struct{}
	closed      bool
}

// NewCollector creates a collector. A nil store keeps metrics in memory
// only.
func NewCollector(store *SQLiteStore, cfg Config) *Collector {
	if cfg.TopTermsCapacity <= 0 {
		cfg.TopTermsCapacity = 100
	}
	if cfg.ZeroResultsCapacity <= 0 {
		cfg.ZeroResultsCapacity = 100
	}

	topTerms, _ := lru.New[string, int64](cfg.TopTermsCapacity)

	c := &Collector{
		methods:     make(map[Method]int64),
		topTerms:    topTerms,
		zeroResults: NewCircularBuffer[string](cfg.ZeroResultsCapacity),
		latencies:   make(map[LatencyBucket]int64),
		startTime:   time.Now(),
		store:       store,
		config:      cfg,
		stopCh:      make(chan struct{}),
	}

	if cfg.FlushInterval > 0 && store != nil {
		c.flushTicker = time.NewTicker(cfg.FlushInterval)
		go c.flushLoop()
	}

	return c
}

func (c *Collector) flushLoop() {
	for {
		select {
		case <-c.flushTicker.C:
			_ = c.Flush()
		case <-c.stopCh:
			return
		}
	}
}

// Record captures one query event. Nil-collector safe so callers don't
// guard every call site.
func (c *Collector) Record(event QueryEvent) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.methods[event.Method]++
	c.totalQueries++

	for _, term := range ExtractTerms(event.Query) {
		count, _ := c.topTerms.Get(term)
		c.topTerms.Add(term, count+1)
	}

	if event.IsZeroResult() {
		c.zeroResults.Add(event.Query)
		c.zeroResultCount++
	}

	c.latencies[LatencyToBucket(event.Latency)]++
}

// Snapshot returns the current aggregates.
func (c *Collector) Snapshot() *Snapshot {
	if c == nil {
		return &Snapshot{
			MethodCounts:        map[Method]int64{},
			TopTerms:            []TermCount{},
			ZeroResultQueries:   []string{},
			LatencyDistribution: map[LatencyBucket]int64{},
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	methods := make(map[Method]int64, len(c.methods))
	for k, v := range c.methods {
		methods[k] = v
	}
	latencies := make(map[LatencyBucket]int64, len(c.latencies))
	for k, v := range c.latencies {
		latencies[k] = v
	}

	terms := make([]TermCount, 0, c.topTerms.Len())
	for _, key := range c.topTerms.Keys() {
		if count, ok := c.topTerms.Peek(key); ok {
			terms = append(terms, TermCount{Term: key, Count: count})
		}
	}

	return &Snapshot{
		MethodCounts:        methods,
		TopTerms:            terms,
		ZeroResultQueries:   c.zeroResults.Items(),
		LatencyDistribution: latencies,
		TotalQueries:        c.totalQueries,
		ZeroResultCount:     c.zeroResultCount,
		Since:               c.startTime,
	}
}

// Flush persists the current aggregates to the store.
func (c *Collector) Flush() error {
	if c == nil || c.store == nil {
		return nil
	}

	snap := c.Snapshot()
	date := time.Now().Format("2006-01-02")

	if err := c.store.SaveMethodCounts(date, snap.MethodCounts); err != nil {
		return err
	}

	termCounts := make(map[string]int64, len(snap.TopTerms))
	for _, tc := range snap.TopTerms {
		termCounts[tc.Term] = tc.Count
	}
	if err := c.store.UpsertTermCounts(termCounts); err != nil {
		return err
	}

	for _, q := range snap.ZeroResultQueries {
		if err := c.store.AddZeroResultQuery(q, time.Now()); err != nil {
			return err
		}
	}

	return c.store.SaveLatencyCounts(date, snap.LatencyDistribution)
}

// Close stops the flush loop and performs a final flush.
func (c *Collector) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if c.flushTicker != nil {
		c.flushTicker.Stop()
		close(c.stopCh)
	}

	return c.Flush()
}

// ExtractTerms pulls searchable terms from a query: lowercased words of
// at least three characters.
func ExtractTerms(query string) []string {
	var terms []string
	for _, w := range splitFields(query) {
		if len(w) >= 3 {
			terms = append(terms, w)
		}
	}
	return terms
}

func splitFields(query string) []string {
	var fields []string
	var current []rune
	for _, r := range query {
		switch {
		case r >= 'A' && r <= 'Z':
			current = append(current, r+('a'-'A'))
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			current = append(current, r)
		default:
			if len(current) > 0 {
				fields = append(fields, string(current))
				current = nil
			}
		}
	}
	if len(current) > 0 {
		fields = append(fields, string(current))
	}
	return fields
}
