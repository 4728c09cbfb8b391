//go:build unit

package user_test

import (
	"testing"
	"time"

	"gin-clean-starter/internal/domain/user"
	"gin-clean-starter/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.UserBuilder)
	errIs  error
}

func TestUser(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewUserBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.True(t, actual.IsActive())
		assert.Nil(t, actual.LastLogin())
		assert.True(t, actual.HasRoomToClaim())
	})

	t.Run("email validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "valid email ok", mutate: func(b *builder.UserBuilder) { b.WithEmail("valid@example.com") }},
			{name: "empty email rejected", mutate: func(b *builder.UserBuilder) { b.WithEmail("") }, errIs: user.ErrInvalidEmail},
			{name: "malformed email rejected", mutate: func(b *builder.UserBuilder) { b.WithEmail("invalid-email") }, errIs: user.ErrInvalidEmail},
		})
	})

	t.Run("role validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "customer role ok", mutate: func(b *builder.UserBuilder) { b.WithRole("customer") }},
			{name: "admin role ok", mutate: func(b *builder.UserBuilder) { b.WithRole("admin") }},
			{name: "invalid role rejected", mutate: func(b *builder.UserBuilder) { b.WithRole("invalid_role") }, errIs: user.ErrInvalidRole},
		})
	})

	t.Run("claim limit validation", func(t *testing.T) {
		runCases(t, []testCase{
			{name: "positive limit ok", mutate: func(b *builder.UserBuilder) { b.WithLimit(5) }},
			{name: "zero limit rejected", mutate: func(b *builder.UserBuilder) { b.WithLimit(0) }, errIs: user.ErrNonPositiveLimit},
			{name: "negative limit rejected", mutate: func(b *builder.UserBuilder) { b.WithLimit(-1) }, errIs: user.ErrNonPositiveLimit},
		})
	})

	t.Run("HasRoomToClaim reflects claimed vs limit", func(t *testing.T) {
		now := time.Now()
		u, err := user.Hydrate(uuid.New(), mustEmail(t), "hash", user.RoleCustomer, 3, 3, false, true, nil, now, now)
		require.NoError(t, err)
		assert.False(t, u.HasRoomToClaim())

		u2, err := user.Hydrate(uuid.New(), mustEmail(t), "hash", user.RoleCustomer, 2, 3, false, true, nil, now, now)
		require.NoError(t, err)
		assert.True(t, u2.HasRoomToClaim())
	})

	t.Run("hydrate rejects claimed above limit", func(t *testing.T) {
		now := time.Now()
		_, err := user.Hydrate(uuid.New(), mustEmail(t), "hash", user.RoleCustomer, 4, 3, false, true, nil, now, now)
		require.ErrorIs(t, err, user.ErrClaimedExceedsLimit)
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewUserBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}

func mustEmail(t *testing.T) user.Email {
	t.Helper()
	e, err := user.NewEmail("test@example.com")
	require.NoError(t, err)
	return e
}
