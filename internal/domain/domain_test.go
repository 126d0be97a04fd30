package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/pulse/internal/domain"
)

// Intercept status machine: pending is the only state with outgoing edges.
func TestInterceptStatus_ValidTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from domain.InterceptStatus
		to   domain.InterceptStatus
		want bool
	}{
		{domain.InterceptStatusPending, domain.InterceptStatusApproved, true},
		{domain.InterceptStatusPending, domain.InterceptStatusBlocked, true},
		{domain.InterceptStatusPending, domain.InterceptStatusPending, false},

		{domain.InterceptStatusApproved, domain.InterceptStatusBlocked, false},
		{domain.InterceptStatusApproved, domain.InterceptStatusPending, false},
		{domain.InterceptStatusApproved, domain.InterceptStatusApproved, false},

		{domain.InterceptStatusBlocked, domain.InterceptStatusApproved, false},
		{domain.InterceptStatusBlocked, domain.InterceptStatusPending, false},
		{domain.InterceptStatusBlocked, domain.InterceptStatusBlocked, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.from.ValidTransition(tt.to))
		})
	}
}
