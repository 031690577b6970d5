package feedback

import (
	"candor-backend/internal/models"

	"github.com/google/uuid"
)

// Collector accepts a single redemption: token text in, stored feedback out.
type Collector struct {
	registry InviteRegistry
}

func NewCollector(registry InviteRegistry) *Collector {
	return &Collector{registry: registry}
}

// Submit validates the token text before any storage access so malformed
// client input reports ErrInvalidFormat instead of a generic not-found, then
// delegates to the registry. Registry failures pass through unchanged.
func (col *Collector) Submit(tokenText, body string) (*models.FeedbackRecord, error) {
	if _, err := uuid.Parse(tokenText); err != nil {
		return nil, ErrInvalidFormat
	}
	return col.registry.Redeem(tokenText, body)
}
