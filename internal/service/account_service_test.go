package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountFixture struct {
	db       *memStore
	sessions *memSessions
	throttle *countingThrottle
	accounts *AccountService
}

func newAccountFixture() *accountFixture {
	db := newMemStore()
	db.addUserType("cliente")
	db.addUserType("admin")
	sessions := newMemSessions()
	throttle := &countingThrottle{}
	return &accountFixture{
		db:       db,
		sessions: sessions,
		throttle: throttle,
		accounts: NewAccountService(db, sessions, throttle, AccountOptions{
			SessionTTL:       time.Hour,
			LoginMaxAttempts: 3,
			LoginWindow:      time.Minute,
		}),
	}
}

func (f *accountFixture) register(t *testing.T, email string) {
	t.Helper()
	_, err := f.accounts.Register(context.Background(), RegisterInput{
		Name:            "Ana",
		Email:           email,
		NIF:             "123456789",
		Password:        "segredo",
		PasswordConfirm: "segredo",
	})
	require.NoError(t, err)
}

func TestRegisterAssignsClientRole(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	f.register(t, "ana@example.com")

	_, p, err := f.accounts.Login(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleClient, p.Role)
	assert.True(t, p.IsClient())

	u, err := f.accounts.Profile(ctx, p)
	require.NoError(t, err)
	assert.NotEqual(t, "segredo", u.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	f.register(t, "ana@example.com")

	valid := RegisterInput{Name: "Rui", Email: "rui@example.com", NIF: "987654321", Password: "x", PasswordConfirm: "x"}

	badNIF := valid
	badNIF.NIF = "98765432"
	_, err := f.accounts.Register(ctx, badNIF)
	assert.True(t, IsValidation(err))

	mismatch := valid
	mismatch.PasswordConfirm = "y"
	_, err = f.accounts.Register(ctx, mismatch)
	assert.True(t, IsValidation(err))

	missing := valid
	missing.Name = " "
	_, err = f.accounts.Register(ctx, missing)
	assert.True(t, IsValidation(err))

	dup := valid
	dup.Email = "ANA@example.com"
	_, err = f.accounts.Register(ctx, dup)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginAndSessions(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	f.register(t, "ana@example.com")

	_, _, err := f.accounts.Login(ctx, "ana@example.com", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.accounts.Login(ctx, "ninguem@example.com", "segredo")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, p, err := f.accounts.Login(ctx, " ana@example.com ", "segredo")
	require.NoError(t, err)
	assert.Zero(t, f.throttle.attempts["ana@example.com"], "successful login resets the throttle")

	got, err := f.accounts.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, got.UserID)

	require.NoError(t, f.accounts.Logout(ctx, token))
	_, err = f.accounts.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.accounts.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLoginThrottled(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	f.register(t, "ana@example.com")

	for i := 0; i < 3; i++ {
		_, _, err := f.accounts.Login(ctx, "ana@example.com", "errada")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// correct password is refused once the window is exhausted
	_, _, err := f.accounts.Login(ctx, "Ana@Example.com", "segredo")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestUpdateProfileRefreshesSession(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	f.register(t, "ana@example.com")
	f.register(t, "rui@example.com")

	token, p, err := f.accounts.Login(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)

	_, err = f.accounts.UpdateProfile(ctx, token, p, ProfileInput{Name: "Ana", Email: "ana@example.com", NIF: "12345"})
	assert.True(t, IsValidation(err))

	_, err = f.accounts.UpdateProfile(ctx, token, p, ProfileInput{Name: "Ana", Email: "rui@example.com", NIF: "123456789"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	updated, err := f.accounts.UpdateProfile(ctx, token, p, ProfileInput{Name: "Ana Silva", Email: "ana.silva@example.com", NIF: "111222333"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", updated.Name)
	assert.Equal(t, auth.RoleClient, updated.Role)

	session, err := f.accounts.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "ana.silva@example.com", session.Email)

	u, err := f.accounts.Profile(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "111222333", u.NIF)
}

func TestChangePassword(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	f.register(t, "ana@example.com")

	_, p, err := f.accounts.Login(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)

	assert.ErrorIs(t, f.accounts.ChangePassword(ctx, p, "errada", "nova", "nova"), ErrWrongPassword)
	assert.True(t, IsValidation(f.accounts.ChangePassword(ctx, p, "segredo", "nova", "outra")))
	assert.True(t, IsValidation(f.accounts.ChangePassword(ctx, p, "segredo", "", "")))

	require.NoError(t, f.accounts.ChangePassword(ctx, p, "segredo", "nova", "nova"))

	_, _, err = f.accounts.Login(ctx, "ana@example.com", "segredo")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.accounts.Login(ctx, "ana@example.com", "nova")
	assert.NoError(t, err)
}

func TestAdminUserManagement(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	types, err := f.accounts.ListUserTypes(ctx)
	require.NoError(t, err)
	var adminType int64
	for _, ut := range types {
		if ut.Label == "admin" {
			adminType = ut.ID
		}
	}
	require.NotZero(t, adminType)

	u, err := f.accounts.CreateUser(ctx, UserInput{
		Name: "Gestora", Email: "gestora@example.com", NIF: "555666777",
		UserTypeID: &adminType, Password: "pw", PasswordConfirm: "pw",
	})
	require.NoError(t, err)

	_, p, err := f.accounts.Login(ctx, "gestora@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())

	// blank password keeps the current one
	_, err = f.accounts.UpdateUser(ctx, u.ID, UserInput{Name: "Gestora", Email: "gestora@example.com", NIF: "555666777", UserTypeID: &adminType})
	require.NoError(t, err)
	_, _, err = f.accounts.Login(ctx, "gestora@example.com", "pw")
	require.NoError(t, err)

	_, err = f.accounts.UpdateUser(ctx, u.ID, UserInput{Name: "Gestora", Email: "gestora@example.com", NIF: "555666777", Password: "novo", PasswordConfirm: "novo"})
	require.NoError(t, err)
	_, _, err = f.accounts.Login(ctx, "gestora@example.com", "novo")
	require.NoError(t, err)

	_, err = f.accounts.UpdateUser(ctx, 9999, UserInput{Name: "X", Email: "x@example.com", NIF: "555666777"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, f.accounts.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, f.accounts.DeleteUser(ctx, u.ID), ErrUserNotFound)
}

func TestUserTypes(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	_, err := f.accounts.CreateUserType(ctx, "")
	assert.True(t, IsValidation(err))

	ut, err := f.accounts.CreateUserType(ctx, "gestor")
	require.NoError(t, err)

	require.NoError(t, f.accounts.UpdateUserType(ctx, ut.ID, "fornecedor"))
	got, err := f.accounts.GetUserType(ctx, ut.ID)
	require.NoError(t, err)
	assert.Equal(t, "fornecedor", got.Label)

	require.NoError(t, f.accounts.DeleteUserType(ctx, ut.ID))
	_, err = f.accounts.GetUserType(ctx, ut.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
