package service

import (
	"context"
	"sync"

	"retail-bank-ledger/internal/core/domain"
	"retail-bank-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

const defaultJournalBuffer = 256

// journalService copies committed entries to the journal repository on a
// single background worker, preserving commit order.
type journalService struct {
	repo  ports.JournalRepository
	log   zerolog.Logger
	queue chan []*domain.Transaction
	done  chan struct{}

	// mu guards closed; senders hold it shared so Close cannot close the
	// queue under them.
	mu     sync.RWMutex
	closed bool
}

// NewJournalService starts the journal worker. If repo is nil, entries are
// only logged. Close must be called to flush pending batches.
func NewJournalService(repo ports.JournalRepository, buffer int, log zerolog.Logger) ports.JournalService {
	if buffer <= 0 {
		buffer = defaultJournalBuffer
	}
	s := &journalService{
		repo:  repo,
		log:   log,
		queue: make(chan []*domain.Transaction, buffer),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// Record enqueues a batch. It blocks while the buffer is full unless ctx ends.
func (s *journalService) Record(ctx context.Context, entries ...*domain.Transaction) {
	batch := make([]*domain.Transaction, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			batch = append(batch, e)
		}
	}
	if len(batch) == 0 {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn().Int("entries", len(batch)).Msg("journal closed, batch dropped")
		return
	}

	// Committed entries are enqueued whenever there is room, even for a
	// cancelled request.
	select {
	case s.queue <- batch:
		return
	default:
	}

	select {
	case s.queue <- batch:
	case <-ctx.Done():
		s.log.Warn().Err(ctx.Err()).Int("entries", len(batch)).Msg("journal batch dropped")
	}
}

// Close stops accepting batches and waits for the worker to drain. Later
// Record calls drop their batch.
func (s *journalService) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *journalService) run() {
	defer close(s.done)
	for batch := range s.queue {
		for _, e := range batch {
			s.log.Debug().
				Str("account_no", e.AccountNo).
				Int("seq", e.Seq).
				Str("entry", e.String()).
				Msg("journal")
		}
		if s.repo == nil {
			continue
		}
		if err := s.repo.Append(context.Background(), batch); err != nil {
			s.log.Error().Err(err).
				Str("account_no", batch[0].AccountNo).
				Int("entries", len(batch)).
				Msg("failed to persist journal batch")
		}
	}
}
