package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	pgBatchSize     = 50
	pgFlushInterval = 5 * time.Second
)

// pgSink is the shared buffer behind a PGHandler and every handler derived
// from it with WithAttrs.
type pgSink struct {
	db     *gorm.DB
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// PGHandler batches ERROR+ records into system_logs.
type PGHandler struct {
	sink  *pgSink
	attrs []slog.Attr
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	sink := &pgSink{
		db:     db,
		buffer: make([]models.SystemLog, 0, pgBatchSize),
		ticker: time.NewTicker(pgFlushInterval),
		done:   make(chan struct{}),
	}
	sink.wg.Add(1)
	go sink.loop()
	return &PGHandler{sink: sink}
}

func (s *pgSink) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *pgSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, pgBatchSize)
	s.mu.Unlock()

	// Written through the JSON handler only; logging at ERROR here would recurse.
	if err := s.db.CreateInBatches(batch, pgBatchSize).Error; err != nil {
		slog.Warn("failed to flush system logs", "error", err, "count", len(batch))
	}
}

func (s *pgSink) add(entry models.SystemLog) {
	s.mu.Lock()
	s.buffer = append(s.buffer, entry)
	full := len(s.buffer) >= pgBatchSize
	s.mu.Unlock()

	if full {
		go s.flush()
	}
}

// Stop flushes what is buffered and waits for the writer to exit. Safe to call twice.
func (h *PGHandler) Stop() {
	h.sink.once.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
	h.sink.wg.Wait()
}

// Flush writes the buffer synchronously.
func (h *PGHandler) Flush() { h.sink.flush() }

func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		setField(&entry, extra, a)
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.sink.add(entry)
	return nil
}

func setField(entry *models.SystemLog, extra map[string]interface{}, a slog.Attr) {
	value := a.Value.Resolve()
	switch a.Key {
	case "request_id":
		entry.RequestID = value.String()
	case "user_id":
		s := value.String()
		entry.UserID = &s
	case "load_id":
		s := value.String()
		entry.LoadID = &s
	case "action":
		entry.Action = value.String()
	case "error":
		entry.Error = value.String()
	case "latency_ms":
		switch value.Kind() {
		case slog.KindFloat64:
			entry.LatencyMs = int(math.Round(value.Float64()))
		case slog.KindInt64:
			entry.LatencyMs = int(value.Int64())
		case slog.KindDuration:
			entry.LatencyMs = int(value.Duration().Milliseconds())
		}
	default:
		if value.Kind() == slog.KindAny {
			if err, ok := value.Any().(error); ok {
				extra[a.Key] = err.Error()
				return
			}
			if s, ok := value.Any().(fmt.Stringer); ok {
				extra[a.Key] = s.String()
				return
			}
		}
		extra[a.Key] = value.Any()
	}
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{sink: h.sink, attrs: merged}
}

// Groups are flattened; system_logs has no nesting.
func (h *PGHandler) WithGroup(string) slog.Handler {
	return h
}
