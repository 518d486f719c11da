package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/coref/internal/store"
)

const defaultExpirerInterval = 1 * time.Minute

// ExpirerService evicts idle sessions in the background. Sessions are
// in-memory only, so eviction is the sole reclamation path.
type ExpirerService struct {
	sessions *store.SessionStore
	ttl      time.Duration
	logger   *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewExpirerService(ss *store.SessionStore, ttl time.Duration, logger *zap.Logger) *ExpirerService {
	return &ExpirerService{
		sessions: ss,
		ttl:      ttl,
		logger:   logger,
		interval: defaultExpirerInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *ExpirerService) SetInterval(d time.Duration) {
	s.interval = d
}

// Start runs the expirer on a periodic schedule in a background goroutine.
func (s *ExpirerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("session expirer started",
			zap.Duration("interval", s.interval),
			zap.Duration("ttl", s.ttl))

		for {
			select {
			case <-ticker.C:
				if removed := s.sessions.DeleteIdle(s.ttl); removed > 0 {
					s.logger.Info("evicted idle sessions", zap.Int("count", removed))
				}
			case <-s.stopCh:
				s.logger.Info("session expirer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer.
func (s *ExpirerService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}
