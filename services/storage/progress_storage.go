package storage

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/learning_hub/dto"
	"github.com/lac-hong-legacy/learning_hub/model"
	"github.com/lac-hong-legacy/learning_hub/shared"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

const defaultOpTimeout = 5 * time.Second

type Options struct {
	Key      string
	Backend  Backend
	Notifier Notifier
	Clock    func() time.Time
	Metrics  Metrics
	Timeout  time.Duration
}

type Info struct {
	Engine     string `json:"engine"`
	Degraded   bool   `json:"degraded"`
	DataSize   int    `json:"dataSize"`
	DataExists bool   `json:"dataExists"`
}

// ProgressStorage reads and writes the progress document under one key.
// Failures are logged and reported as false, never returned.
type ProgressStorage struct {
	key      string
	origin   string
	notifier Notifier
	clock    func() time.Time
	metrics  Metrics
	timeout  time.Duration

	mu       sync.RWMutex
	backend  Backend
	degraded bool

	debounceMu sync.Mutex
	timer      *time.Timer
	pending    *model.UserProgress
	generation uint64
}

func New(opts Options) *ProgressStorage {
	s := &ProgressStorage{
		key:      opts.Key,
		origin:   uuid.NewString(),
		notifier: opts.Notifier,
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		timeout:  opts.Timeout,
		backend:  opts.Backend,
	}
	if s.key == "" {
		s.key = shared.StorageKey
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.timeout <= 0 {
		s.timeout = defaultOpTimeout
	}
	if s.backend == nil {
		s.backend = NewMemoryBackend()
	}

	ctx, cancel := s.opContext()
	defer cancel()
	if err := Probe(ctx, s.backend); err != nil {
		log.WithFields(log.Fields{
			"engine": s.backend.Name(),
			"error":  err,
		}).Warn("Storage engine unavailable, using in-memory storage")
		s.backend = NewMemoryBackend()
		s.degraded = true
	}
	s.metrics.SetDegraded(s.degraded)
	return s
}

func (s *ProgressStorage) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *ProgressStorage) currentBackend() Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

func (s *ProgressStorage) degrade() Backend {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.degraded {
		s.backend = NewMemoryBackend()
		s.degraded = true
		s.metrics.SetDegraded(true)
	}
	return s.backend
}

// Origin identifies this instance in storage events.
func (s *ProgressStorage) Origin() string {
	return s.origin
}

func (s *ProgressStorage) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Load returns the stored document, or a fresh default when nothing usable
// is stored.
func (s *ProgressStorage) Load() *model.UserProgress {
	now := s.clock()
	ctx, cancel := s.opContext()
	defer cancel()

	raw, ok, err := s.currentBackend().GetItem(ctx, s.key)
	if err != nil {
		log.WithFields(log.Fields{"key": s.key, "error": err}).Warn("Failed to read progress, using defaults")
		return model.DefaultUserProgress(now)
	}
	if !ok || raw == "" {
		return model.DefaultUserProgress(now)
	}

	progress, err := DecodeProgress([]byte(raw), now)
	if err != nil {
		log.WithFields(log.Fields{"key": s.key, "error": err}).Warn("Failed to parse stored progress, using defaults")
		return model.DefaultUserProgress(now)
	}
	return progress
}

func (s *ProgressStorage) Save(progress *model.UserProgress) bool {
	if progress == nil {
		return false
	}
	doc := progress.Clone()
	doc.UpdatedAt = s.clock()

	data, err := shared.Marshal(doc)
	if err != nil {
		log.Printf("Failed to serialise progress: %v", err)
		return false
	}

	ctx, cancel := s.opContext()
	defer cancel()

	backend := s.currentBackend()
	if err := backend.SetItem(ctx, s.key, string(data)); err != nil {
		s.metrics.ObserveSave(backend.Name(), false)
		log.WithFields(log.Fields{
			"engine": backend.Name(),
			"error":  err,
		}).Error("Failed to save progress, falling back to in-memory storage")

		_ = s.degrade().SetItem(ctx, s.key, string(data))
		return false
	}
	s.metrics.ObserveSave(backend.Name(), true)

	if !s.Degraded() {
		s.notify(ctx, string(data))
	}
	return true
}

func (s *ProgressStorage) notify(ctx context.Context, value string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, StorageEvent{Key: s.key, NewValue: value, Origin: s.origin})
	if err != nil {
		log.WithFields(log.Fields{"key": s.key, "error": err}).Warn("Failed to publish storage event")
	}
}

// DebouncedSave schedules a save after delay. A later call replaces the
// pending document and restarts the timer.
func (s *ProgressStorage) DebouncedSave(progress *model.UserProgress, delay time.Duration) {
	if progress == nil {
		return
	}
	if delay <= 0 {
		delay = shared.DefaultDebounceMs * time.Millisecond
	}
	snapshot := progress.Clone()

	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.pending != nil {
		s.metrics.ObserveDebounce()
	}
	s.generation++
	gen := s.generation
	s.pending = snapshot
	s.timer = time.AfterFunc(delay, func() {
		s.firePending(gen)
	})
}

func (s *ProgressStorage) firePending(gen uint64) {
	s.debounceMu.Lock()
	if gen != s.generation || s.pending == nil {
		s.debounceMu.Unlock()
		return
	}
	progress := s.pending
	s.pending = nil
	s.timer = nil
	s.debounceMu.Unlock()

	s.Save(progress)
}

func (s *ProgressStorage) takePending() *model.UserProgress {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	progress := s.pending
	s.pending = nil
	return progress
}

// Flush writes the pending debounced document now. It reports true when
// nothing was pending.
func (s *ProgressStorage) Flush() bool {
	progress := s.takePending()
	if progress == nil {
		return true
	}
	return s.Save(progress)
}

// Stop drops the pending debounced document.
func (s *ProgressStorage) Stop() {
	s.takePending()
}

func (s *ProgressStorage) HasPending() bool {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()
	return s.pending != nil
}

func (s *ProgressStorage) Clear() bool {
	s.Stop()

	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.currentBackend().RemoveItem(ctx, s.key); err != nil {
		log.WithFields(log.Fields{"key": s.key, "error": err}).Error("Failed to clear progress")
		return false
	}
	if !s.Degraded() {
		s.notify(ctx, "")
	}
	return true
}

// Checksum is the hex blake2b-256 digest of the progress encoded with sorted
// map keys.
func Checksum(progress *model.UserProgress) (string, error) {
	data, err := sonic.ConfigStd.Marshal(progress)
	if err != nil {
		return "", fmt.Errorf("failed to encode progress: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (s *ProgressStorage) ExportData() (*model.ProgressExport, bool) {
	progress := s.Load()

	checksum, err := Checksum(progress)
	if err != nil {
		log.Printf("Failed to export progress: %v", err)
		return nil, false
	}

	return &model.ProgressExport{
		Metadata: &model.ExportMetadata{
			ExportDate:    s.clock(),
			Version:       model.ProgressVersion,
			TotalPages:    model.TotalCatalogPages(),
			TotalSections: model.TotalCatalogSections(),
			Checksum:      checksum,
		},
		Progress: progress,
	}, true
}

func verifyExport(export *model.ProgressExport) error {
	if export == nil {
		return fmt.Errorf("%w: missing envelope", ErrInvalidProgress)
	}
	if err := dto.GetValidator().Struct(export); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProgress, err)
	}
	if err := validateProgress(export.Progress); err != nil {
		return err
	}
	if export.Metadata.Checksum == "" {
		return nil
	}
	sum, err := Checksum(export.Progress)
	if err != nil {
		return err
	}
	if sum != export.Metadata.Checksum {
		return fmt.Errorf("%w: checksum mismatch", ErrInvalidProgress)
	}
	return nil
}

// ImportData validates an export envelope and replaces the stored document.
// Stored state is untouched when the envelope is rejected.
func (s *ProgressStorage) ImportData(export *model.ProgressExport) bool {
	if err := verifyExport(export); err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("Rejected progress import")
		return false
	}
	s.Stop()
	return s.Save(MigrateProgress(export.Progress, s.clock()))
}

// ImportJSON is ImportData for an encoded envelope. Fields missing from the
// encoded progress are defaulted individually.
func (s *ProgressStorage) ImportJSON(data []byte) bool {
	var export model.ProgressExport
	if err := shared.Unmarshal(data, &export); err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("Rejected progress import")
		return false
	}
	if err := verifyExport(&export); err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("Rejected progress import")
		return false
	}

	var raw struct {
		Progress json.RawMessage `json:"progress"`
	}
	if err := shared.Unmarshal(data, &raw); err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("Rejected progress import")
		return false
	}
	progress, err := DecodeProgress(raw.Progress, s.clock())
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Warn("Rejected progress import")
		return false
	}

	s.Stop()
	return s.Save(progress)
}

// OnExternalChange calls fn with the reloaded document whenever another
// instance writes the key.
func (s *ProgressStorage) OnExternalChange(fn func(*model.UserProgress)) func() {
	if s.notifier == nil || fn == nil {
		return func() {}
	}

	ctx, cancel := s.opContext()
	defer cancel()

	unsubscribe, err := s.notifier.Subscribe(ctx, s.key, func(ev StorageEvent) {
		if ev.Origin == s.origin || ev.NewValue == "" {
			return
		}
		s.metrics.ObserveExternalChange()
		fn(s.Load())
	})
	if err != nil {
		log.WithFields(log.Fields{"key": s.key, "error": err}).Warn("Cross-instance sync disabled")
		return func() {}
	}
	return unsubscribe
}

func (s *ProgressStorage) Info() Info {
	ctx, cancel := s.opContext()
	defer cancel()

	backend := s.currentBackend()
	info := Info{Engine: backend.Name(), Degraded: s.Degraded()}

	raw, ok, err := backend.GetItem(ctx, s.key)
	if err == nil && ok && raw != "" {
		info.DataExists = true
		info.DataSize = len(raw)
	}
	return info
}
