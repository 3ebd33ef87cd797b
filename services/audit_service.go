package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/repositories"
)

// AuditService persists audit entries off the request path. Entries are
// queued on a buffered channel and drained by a single background goroutine,
// so a slow audit store never adds to client-visible latency. When the queue
// is full the entry is dropped and counted; audit writes are best-effort and
// must never block or fail a request.
type AuditService struct {
	repo      repositories.AuditRepository
	ch        chan models.AuditLogEntry
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
	log       zerolog.Logger
}

// writeTimeout bounds one audit insert so the drain loop cannot wedge
const writeTimeout = 5 * time.Second

// NewAuditService creates an AuditService and starts its writer goroutine
func NewAuditService(repo repositories.AuditRepository, bufferSize int, log zerolog.Logger) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 1
	}

	s := &AuditService{
		repo: repo,
		ch:   make(chan models.AuditLogEntry, bufferSize),
		done: make(chan struct{}),
		log:  log,
	}

	s.wg.Add(1)
	go s.run()

	return s
}

func (s *AuditService) run() {
	defer s.wg.Done()

	for {
		select {
		case entry := <-s.ch:
			s.write(entry)
		case <-s.done:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case entry := <-s.ch:
					s.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *AuditService) write(entry models.AuditLogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, &entry); err != nil {
		// Operational channel only; the request that generated this entry
		// has already been answered.
		s.log.Error().Err(err).
			Str("method", entry.Method).
			Str("endpoint", entry.Endpoint).
			Msg("failed to persist audit entry")
	}
}

// Record queues an entry for persistence. Never blocks.
func (s *AuditService) Record(entry models.AuditLogEntry) {
	if s == nil || s.closed.Load() {
		return
	}

	select {
	case s.ch <- entry:
	default:
		s.dropped.Add(1)
		s.log.Warn().
			Uint64("dropped_total", s.dropped.Load()).
			Msg("audit queue full, entry dropped")
	}
}

// Dropped returns how many entries were discarded due to a full queue
func (s *AuditService) Dropped() uint64 {
	return s.dropped.Load()
}

// Close stops accepting entries, drains the queue, and waits for the writer
func (s *AuditService) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		s.wg.Wait()
	})
}
