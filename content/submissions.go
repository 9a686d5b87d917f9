package content

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/rpupo63/newsroom-backend/database"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
)

// RecordStore is a write-once table.
type RecordStore[T any] interface {
	Add(ctx context.Context, row *T) error
	Count(ctx context.Context, scopes ...database.Scope) (int64, error)
}

// SubmissionService stores newsletter sign-ups and contact messages.
type SubmissionService struct {
	contacts    RecordStore[models.Contact]
	newsletters RecordStore[models.Newsletter]
	strict      *bluemonday.Policy
}

func NewSubmissionService(contacts RecordStore[models.Contact], newsletters RecordStore[models.Newsletter]) *SubmissionService {
	return &SubmissionService{contacts: contacts, newsletters: newsletters, strict: bluemonday.StrictPolicy()}
}

const alreadySubscribed = "This email is already subscribed."

// Subscribe adds an address to the newsletter. Addresses are compared
// case-insensitively and a repeat is reported as a validation error on email.
func (s *SubmissionService) Subscribe(ctx context.Context, in models.Newsletter) (*models.Newsletter, error) {
	sub := models.Newsletter{Email: strings.ToLower(strings.TrimSpace(in.Email))}
	if err := models.Validate(sub); err != nil {
		return nil, err
	}

	n, err := s.newsletters.Count(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("email = ?", sub.Email)
	})
	if err != nil {
		return nil, errs.NewDatabaseError("check", "newsletter", err)
	}
	if n > 0 {
		return nil, errs.NewFieldError("email", alreadySubscribed)
	}

	if err := s.newsletters.Add(ctx, &sub); err != nil {
		dbErr := errs.NewDatabaseError("create", "newsletter", err)
		// lost a race with an identical sign-up
		if errs.IsAlreadyExists(dbErr) {
			return nil, errs.NewFieldError("email", alreadySubscribed)
		}
		return nil, dbErr
	}
	return &sub, nil
}

// Contact stores a contact form message.
func (s *SubmissionService) Contact(ctx context.Context, in models.Contact) (*models.Contact, error) {
	msg := models.Contact{
		Name:    s.clean(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Subject: s.clean(in.Subject),
		Message: s.clean(in.Message),
	}
	if err := models.Validate(msg); err != nil {
		return nil, err
	}
	if err := s.contacts.Add(ctx, &msg); err != nil {
		return nil, errs.NewDatabaseError("create", "contact", err)
	}
	return &msg, nil
}

func (s *SubmissionService) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(text)))
}
