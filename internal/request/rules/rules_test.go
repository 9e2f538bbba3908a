package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func validInput() CreateInput {
	return CreateInput{
		TotalAmount:     100,
		Description:     "Team dinner",
		SplitType:       SplitTypeEqual,
		MaxParticipants: 4,
		ExpiryDate:      now.Add(24 * time.Hour),
	}
}

func TestValidateCreateValid(t *testing.T) {
	assert.NoError(t, ValidateCreate(validInput(), now))

	open := validInput()
	open.SplitType = SplitTypeOpen
	open.MaxParticipants = 0
	assert.NoError(t, ValidateCreate(open, now))
}

func TestValidateCreateViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{"zero amount", func(in *CreateInput) { in.TotalAmount = 0 }, "totalAmount"},
		{"negative amount", func(in *CreateInput) { in.TotalAmount = -5 }, "totalAmount"},
		{"excessive amount", func(in *CreateInput) { in.TotalAmount = 2_000_000 }, "totalAmount"},
		{"empty description", func(in *CreateInput) { in.Description = "   " }, "description"},
		{"short description", func(in *CreateInput) { in.Description = "abc" }, "description"},
		{"unknown split type", func(in *CreateInput) { in.SplitType = "HALF" }, "splitType"},
		{"equal with one participant", func(in *CreateInput) { in.MaxParticipants = 1 }, "maxParticipants"},
		{"equal with too many participants", func(in *CreateInput) { in.MaxParticipants = 101 }, "maxParticipants"},
		{"expiry in the past", func(in *CreateInput) { in.ExpiryDate = now.Add(-time.Hour) }, "expiryDate"},
		{"expiry exactly now", func(in *CreateInput) { in.ExpiryDate = now }, "expiryDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := ValidateCreate(in, now)
			var errs Errors
			assert.ErrorAs(t, err, &errs)
			assert.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateCreateCollectsAllViolations(t *testing.T) {
	in := CreateInput{
		TotalAmount:     0,
		Description:     "",
		SplitType:       SplitTypeEqual,
		MaxParticipants: 0,
		ExpiryDate:      now.Add(-time.Minute),
	}

	err := ValidateCreate(in, now)
	var errs Errors
	assert.ErrorAs(t, err, &errs)

	fields := make([]string, len(errs))
	for i, fe := range errs {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"totalAmount", "description", "maxParticipants", "expiryDate"}, fields)
}

func TestSuggestedAmount(t *testing.T) {
	assert.Equal(t, 25.0, SuggestedAmount(100, 4))
	assert.Equal(t, 33.33, SuggestedAmount(100, 3))
	assert.Equal(t, 0.0, SuggestedAmount(100, 0))
	assert.Equal(t, 0.0, SuggestedAmount(0, 4))
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name  string
		paid  float64
		total float64
		want  float64
	}{
		{"nothing paid", 0, 100, 0},
		{"half paid", 50, 100, 50},
		{"fully paid", 100, 100, 100},
		{"overpaid clamps", 150, 100, 100},
		{"zero total", 50, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Progress(tt.paid, tt.total))
		})
	}
}

func TestIsExpired(t *testing.T) {
	expiry := now
	assert.False(t, IsExpired(expiry, expiry.Add(-time.Millisecond)))
	assert.False(t, IsExpired(expiry, expiry))
	assert.True(t, IsExpired(expiry, expiry.Add(time.Millisecond)))
}

func TestCanContribute(t *testing.T) {
	expiry := now.Add(time.Hour)
	prior := []Contributor{
		{UserID: "u1", Paid: true},
		{UserID: "u2", Paid: false},
	}

	tests := []struct {
		name   string
		status Status
		expiry time.Time
		userID string
		want   bool
	}{
		{"active and fresh user", StatusActive, expiry, "u3", true},
		{"completed", StatusCompleted, expiry, "u3", false},
		{"expired status", StatusExpired, expiry, "u3", false},
		{"past expiry date", StatusActive, now.Add(-time.Hour), "u3", false},
		{"already paid", StatusActive, expiry, "u1", false},
		{"pending contribution does not block", StatusActive, expiry, "u2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanContribute(tt.status, tt.expiry, now, tt.userID, prior))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusActive.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusExpired.Terminal())
}
