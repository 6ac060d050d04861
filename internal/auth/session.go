package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/nikolayk812/agrocart/internal/config"
	"github.com/nikolayk812/agrocart/internal/domain"
	"go.uber.org/zap"
)

// Session is the signed-in principal and the bearer token the cart backend
// expects. Invalidate ends it; afterwards every cart operation fails with
// domain.ErrAuthRequired until Login is called again.
type Session struct {
	mu        sync.RWMutex
	principal domain.Principal
	token     string
	logger    *zap.Logger
}

func NewSession(cfg config.Config, logger *zap.Logger) *Session {
	s := &Session{logger: logger.Named("auth")}
	s.Login(cfg.Principal(), cfg.APIToken)
	return s
}

func (s *Session) Login(principal domain.Principal, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.principal = principal
	s.token = strings.TrimSpace(token)
}

func (s *Session) Principal() domain.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.principal
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

func (s *Session) Active() bool {
	return s.Principal().Authenticated()
}

func (s *Session) Invalidate(_ context.Context) error {
	s.mu.Lock()
	email := s.principal.Email
	s.principal = domain.Principal{}
	s.token = ""
	s.mu.Unlock()

	s.logger.Warn("session invalidated", zap.String("email", email))
	return nil
}
