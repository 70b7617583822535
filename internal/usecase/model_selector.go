// File: internal/usecase/model_selector.go
package usecase

import (
	"fmt"
	"strings"
	"sync"

	"telegram-ai-relay/internal/domain"
	"telegram-ai-relay/internal/domain/model"
)

// ModelSelector owns the single active model of the process.
type ModelSelector struct {
	mu      sync.RWMutex
	current string
	catalog *model.Catalog
}

// NewModelSelector starts on initial, which must be part of the catalog.
func NewModelSelector(catalog *model.Catalog, initial string) (*ModelSelector, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("model selector: %w: empty catalog", domain.ErrInvalidArgument)
	}
	initial = strings.TrimSpace(initial)
	if !catalog.Contains(initial) {
		return nil, fmt.Errorf("model selector: %w: %q", domain.ErrUnknownModel, initial)
	}
	return &ModelSelector{current: initial, catalog: catalog}, nil
}

func (s *ModelSelector) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCurrent switches the active model. Ids outside the catalog are refused.
func (s *ModelSelector) SetCurrent(id string) error {
	if !s.catalog.Contains(id) {
		return domain.ErrUnknownModel
	}
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
	return nil
}

func (s *ModelSelector) Catalog() *model.Catalog { return s.catalog }
