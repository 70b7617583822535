package application

import (
	"context"

	"telegram-ai-relay/internal/domain/model"
	"telegram-ai-relay/internal/usecase"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----
// These describe the minimal surface that the facade needs. Using interfaces
// enables tests to pass in light-weight mocks.
type ChatUseCaseIface interface {
	HandleText(ctx context.Context, in usecase.Inbound) (usecase.Outcome, error)
	ResetSession(ctx context.Context, userID int64, reason string) error
	CurrentModel() string
}

type CatalogIface interface {
	Vendors() []string
	ByVendor(vendor string) []model.CatalogEntry
	Featured() []model.CatalogEntry
}
