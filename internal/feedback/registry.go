package feedback

import (
	"errors"

	"candor-backend/internal/models"
	"candor-backend/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrDuplicateInvite means a token already exists for the email,
	// redeemed or not. Invites are never overwritten.
	ErrDuplicateInvite = errors.New("email already invited")
	// ErrNotFound means no token exists for the given id.
	ErrNotFound = errors.New("invite token not found")
	// ErrAlreadyRedeemed means the token was consumed by an earlier
	// submission. Redemption is terminal.
	ErrAlreadyRedeemed = errors.New("feedback already submitted for this token")
	// ErrInvalidBody rejects empty feedback text.
	ErrInvalidBody = errors.New("feedback body is empty")
	// ErrInvalidRecipient means the email stored with the token fails
	// syntactic validation. The address was fixed at issue time, so this
	// signals corrupted data rather than bad caller input.
	ErrInvalidRecipient = errors.New("stored recipient address is invalid")
	// ErrInvalidFormat rejects token ids that are not well-formed UUIDs
	// before any storage lookup happens.
	ErrInvalidFormat = errors.New("malformed invite token")
)

// InviteRegistry is the source of truth for invite tokens: which exist, who
// they belong to and whether they have been redeemed.
type InviteRegistry interface {
	Issue(email string) (string, error)
	Lookup(tokenID string) (*models.InviteToken, error)
	Redeem(tokenID, body string) (*models.FeedbackRecord, error)
	Feedbacks() ([]models.FeedbackRecord, error)
}

var _ InviteRegistry = (*Registry)(nil)

// Registry implements InviteRegistry on top of gorm. All mutations run in
// transactions; the unique index on the email column and the id primary key
// carry the concurrency guarantees, so no extra locking is needed.
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Issue creates a token for the email and returns its id. At most one token
// may ever exist per email; a concurrent duplicate loses on the unique index
// and is reported as ErrDuplicateInvite just like a sequential one.
func (r *Registry) Issue(email string) (string, error) {
	token := models.InviteToken{Email: email}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&token).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrDuplicateInvite
		}
		return "", err
	}

	return token.ID, nil
}

// Lookup returns the token for the id. Malformed ids are reported as
// ErrNotFound without touching storage.
func (r *Registry) Lookup(tokenID string) (*models.InviteToken, error) {
	if _, err := uuid.Parse(tokenID); err != nil {
		return nil, ErrNotFound
	}

	token, err := models.GetInviteTokenByID(r.db, tokenID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return token, nil
}

// Redeem consumes the token and stores the feedback body under the same id.
// The redeemed flip and the record insert commit together or not at all.
func (r *Registry) Redeem(tokenID, body string) (*models.FeedbackRecord, error) {
	var record models.FeedbackRecord

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var token models.InviteToken
		if err := tx.Where("id = ?", tokenID).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if token.Redeemed {
			return ErrAlreadyRedeemed
		}
		if body == "" {
			return ErrInvalidBody
		}
		if err := utils.ValidateEmailAddress(token.Email); err != nil {
			return ErrInvalidRecipient
		}

		// Guarded update: a concurrent redeem that committed between the
		// read above and here leaves zero rows to update.
		result := tx.Model(&models.InviteToken{}).
			Where("id = ? AND redeemed = ?", tokenID, false).
			Update("redeemed", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyRedeemed
		}

		record = models.FeedbackRecord{
			ID:    token.ID,
			Email: token.Email,
			Body:  body,
		}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRedeemed
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Feedbacks returns every stored record in submission order. The slice is
// non-nil even when empty so callers can hand it straight to a JSON encoder.
func (r *Registry) Feedbacks() ([]models.FeedbackRecord, error) {
	records := make([]models.FeedbackRecord, 0)
	if err := r.db.Order("created_at").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
