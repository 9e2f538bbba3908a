package stub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzansipay/wallet/internal/request/rules"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *time.Time) {
	now := baseTime
	svc := NewService(NewMemoryStore())
	svc.now = func() time.Time { return now }
	return svc, &now
}

func equalInput(total float64, participants int) *CreateInput {
	return &CreateInput{
		TotalAmount:     total,
		Description:     "Team dinner",
		MerchantID:      "m-cafe",
		SplitType:       rules.SplitTypeEqual,
		MaxParticipants: &participants,
		ExpiryDate:      baseTime.Add(24 * time.Hour),
	}
}

func TestCreateComputesSuggestedAmount(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.Create(context.Background(), "creator", equalInput(100, 4))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, rules.StatusActive, created.Status)
	assert.Equal(t, 25.0, created.SuggestedAmount)
	assert.Equal(t, 100.0, created.AmountRemaining)
	assert.Equal(t, 0.0, created.AmountPaid)
	require.NotNil(t, created.MaxParticipants)
	assert.Equal(t, 4, *created.MaxParticipants)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService()

	in := equalInput(0, 4)
	_, err := svc.Create(context.Background(), "creator", in)
	var verrs rules.Errors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.Create(context.Background(), "", equalInput(100, 4))
	assert.ErrorIs(t, err, ErrMissingCreator)
}

func TestContributionLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "creator", equalInput(100, 4))
	require.NoError(t, err)

	for i, user := range []string{"u1", "u2", "u3"} {
		updated, err := svc.Contribute(ctx, created.ID, user, 25, "")
		require.NoError(t, err)
		assert.Equal(t, rules.StatusActive, updated.Status)
		assert.Equal(t, float64(25*(i+1)), updated.AmountPaid)
	}

	final, err := svc.Contribute(ctx, created.ID, "u4", 25, "")
	require.NoError(t, err)
	assert.Equal(t, rules.StatusCompleted, final.Status)
	assert.Equal(t, 100.0, final.AmountPaid)
	assert.Equal(t, 0.0, final.AmountRemaining)
	assert.Equal(t, 4, final.ContributorCount)

	_, err = svc.Contribute(ctx, created.ID, "u5", 25, "")
	assert.ErrorIs(t, err, ErrRequestCompleted)
}

func TestContributeRejectsDuplicateUser(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "creator", equalInput(100, 4))
	require.NoError(t, err)

	_, err = svc.Contribute(ctx, created.ID, "u1", 25, "")
	require.NoError(t, err)

	_, err = svc.Contribute(ctx, created.ID, "u1", 25, "")
	assert.ErrorIs(t, err, ErrDuplicateContribution)
}

func TestContributeRejectsOverRemaining(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "creator", equalInput(100, 4))
	require.NoError(t, err)

	_, err = svc.Contribute(ctx, created.ID, "u1", 60, "")
	require.NoError(t, err)

	_, err = svc.Contribute(ctx, created.ID, "u2", 50, "")
	assert.ErrorIs(t, err, ErrOverRemaining)
}

func TestContributeRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "creator", equalInput(100, 4))
	require.NoError(t, err)

	_, err = svc.Contribute(ctx, created.ID, "u1", 0, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLazyExpiryOnRead(t *testing.T) {
	svc, now := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "creator", equalInput(100, 4))
	require.NoError(t, err)

	*now = baseTime.Add(25 * time.Hour)

	got, err := svc.Get(ctx, created.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, rules.StatusExpired, got.Status)
	assert.False(t, got.CanContribute)

	_, err = svc.Contribute(ctx, created.ID, "u1", 25, "")
	assert.ErrorIs(t, err, ErrRequestExpired)
}

func TestCompleteIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "creator", equalInput(100, 4))
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, created.ID))
	require.NoError(t, svc.Complete(ctx, created.ID))

	got, err := svc.Get(ctx, created.ID, "")
	require.NoError(t, err)
	assert.Equal(t, rules.StatusCompleted, got.Status)
}

func TestListings(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "creator", equalInput(100, 4))
	require.NoError(t, err)
	_, err = svc.Contribute(ctx, created.ID, "u1", 25, "")
	require.NoError(t, err)

	mine, err := svc.ListCreatedBy(ctx, "creator")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	contributed, err := svc.ListContributedBy(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, contributed, 1)
	assert.Equal(t, created.ID, contributed[0].ID)

	none, err := svc.ListContributedBy(ctx, "stranger")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetUnknownRequest(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Get(context.Background(), "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContributorCountIsDistinct(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "creator", &CreateInput{
		TotalAmount: 100,
		Description: "Open collection",
		MerchantID:  "m-cafe",
		SplitType:   rules.SplitTypeOpen,
		ExpiryDate:  baseTime.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Contribute(ctx, created.ID, "u1", 10, "")
	require.NoError(t, err)
	updated, err := svc.Contribute(ctx, created.ID, "u2", 20, "")
	require.NoError(t, err)

	assert.Equal(t, 2, updated.ContributorCount)
	assert.Equal(t, 30.0, updated.AmountPaid)
	assert.Equal(t, 70.0, updated.AmountRemaining)
}
