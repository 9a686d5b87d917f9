package content_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/newsroom-backend/content"
	"github.com/rpupo63/newsroom-backend/errs"
	"github.com/rpupo63/newsroom-backend/models"
	"github.com/rpupo63/newsroom-backend/testutil"
)

func TestSubscribe(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	subs := content.NewSubmissionService(db.ContactRepo(), db.NewsletterRepo())

	sub, err := subs.Subscribe(ctx, models.Newsletter{Email: "  Reader@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", sub.Email)

	t.Run("repeat address", func(t *testing.T) {
		_, err := subs.Subscribe(ctx, models.Newsletter{Email: "READER@example.com"})
		require.Error(t, err)
		assert.True(t, errs.IsValidation(err))
		assert.Contains(t, errs.FieldErrors(err), "email")
	})

	t.Run("invalid address", func(t *testing.T) {
		_, err := subs.Subscribe(ctx, models.Newsletter{Email: "nope"})
		assert.True(t, errs.IsValidation(err))
	})

	n, err := db.NewsletterRepo().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestContact(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	subs := content.NewSubmissionService(db.ContactRepo(), db.NewsletterRepo())

	msg, err := subs.Contact(ctx, models.Contact{
		Name:    "Sam",
		Email:   "sam@example.com",
		Subject: "Tip <i>inside</i>",
		Message: "Check the council minutes.",
	})
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "Tip inside", msg.Subject)

	_, err = subs.Contact(ctx, models.Contact{Name: "Sam"})
	require.Error(t, err)
	fields := errs.FieldErrors(err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "subject")
	assert.Contains(t, fields, "message")

	n, err := db.ContactRepo().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
