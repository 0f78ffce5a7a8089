package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("Admin"))
	assert.Equal(t, RoleManager, ParseRole(" GESTOR "))
	assert.Equal(t, RoleClient, ParseRole("cliente"))
	assert.Equal(t, Role("visitante"), ParseRole("Visitante"))
}

func TestTiers(t *testing.T) {
	client := &Principal{UserID: 1, Role: RoleClient}
	supplier := &Principal{UserID: 2, Role: RoleSupplier}
	manager := &Principal{UserID: 3, Role: RoleManager}
	admin := &Principal{UserID: 4, Role: RoleAdmin}
	unknown := &Principal{UserID: 5, Role: ParseRole("visitante")}
	var anonymous *Principal

	cases := []struct {
		name      string
		principal *Principal
		tier      Tier
		allowed   bool
	}{
		{"client on client tier", client, TierClient, true},
		{"admin on client tier", admin, TierClient, false},
		{"supplier on supplier tier", supplier, TierSupplier, true},
		{"manager is staff", manager, TierStaff, true},
		{"admin is staff", admin, TierStaff, true},
		{"client is not staff", client, TierStaff, false},
		{"manager is not admin", manager, TierAdmin, false},
		{"admin on admin tier", admin, TierAdmin, true},
		{"unknown role is authenticated", unknown, TierAuthenticated, true},
		{"unknown role gets nothing else", unknown, TierClient, false},
		{"anonymous denied", anonymous, TierAuthenticated, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.principal.Allows(tc.tier))
		})
	}
}

func TestDenialMessagesAreUserFacing(t *testing.T) {
	for _, tier := range []Tier{TierAuthenticated, TierClient, TierSupplier, TierStaff, TierAdmin} {
		assert.NotEmpty(t, tier.DenialMessage())
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("segredo123")
	require.NoError(t, err)

	assert.NotEqual(t, "segredo123", hash)
	assert.True(t, CheckPassword(hash, "segredo123"))
	assert.False(t, CheckPassword(hash, "errada"))
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "segredo123"))
}
