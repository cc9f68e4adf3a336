package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"jjc-attendance/internal/apperror"
	"jjc-attendance/internal/auth"
)

const secret = "s3cret"

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, Bcrypt{Cost: bcrypt.MinCost}, secret), store
}

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

func TestRegister(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, secret, "Siti", "Siti@Example.com ", "pw123", "")
	require.NoError(t, err)
	assert.Equal(t, "siti@example.com", u.Email)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.True(t, u.Active)
	assert.NotEqual(t, "pw123", u.PasswordHash)

	admin, err := svc.Register(ctx, secret, "Root", "root@example.com", "pw", "admin")
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, admin.Role)

	_, err = svc.Register(ctx, secret, "Dup", "SITI@example.com", "pw", "")
	assert.True(t, apperror.IsKind(err, apperror.Conflict))

	_, err = svc.Register(ctx, "wrong", "X", "x@example.com", "pw", "")
	assert.True(t, apperror.IsKind(err, apperror.Forbidden))

	_, err = svc.Register(ctx, secret, "X", "x@example.com", "", "")
	assert.True(t, apperror.IsKind(err, apperror.Validation))
}

func TestRegisterWithoutConfiguredSecret(t *testing.T) {
	svc := NewService(NewMemoryStore(), Bcrypt{Cost: bcrypt.MinCost}, "")
	_, err := svc.Register(context.Background(), "", "X", "x@example.com", "pw", "")
	assert.True(t, apperror.IsKind(err, apperror.Forbidden))
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, secret, "Siti", "siti@example.com", "pw123", "")
	require.NoError(t, err)

	id, err := svc.Authenticate(ctx, "SITI@example.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{ID: u.ID, Name: "Siti", Email: "siti@example.com", Role: auth.RoleUser}, id)

	_, err = svc.Authenticate(ctx, "siti@example.com", "nope")
	assert.True(t, apperror.IsKind(err, apperror.Auth))

	_, err = svc.Authenticate(ctx, "ghost@example.com", "pw123")
	assert.True(t, apperror.IsKind(err, apperror.Auth))

	_, err = svc.Authenticate(ctx, "", "pw123")
	assert.True(t, apperror.IsKind(err, apperror.Validation))
}

func TestAuthenticateInactive(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, _, err := svc.Create(ctx, "Budi", "budi@example.com", "pw", "")
	require.NoError(t, err)
	_, err = svc.Update(ctx, u.ID, Patch{Active: boolp(false)})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "budi@example.com", "pw")
	assert.Equal(t, "auth.invalidCredentials", apperror.KeyOf(err, ""))
}

func TestCreateGeneratesTempPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, temp, err := svc.Create(ctx, "Budi", "budi@example.com", "", "superuser")
	require.NoError(t, err)
	assert.Len(t, temp, TempPasswordLen)
	assert.Regexp(t, `^[0-9a-z]{8}$`, temp)
	assert.Equal(t, auth.RoleUser, u.Role)

	_, err = svc.Authenticate(ctx, "budi@example.com", temp)
	assert.NoError(t, err)

	_, temp, err = svc.Create(ctx, "Ani", "ani@example.com", "given", "admin")
	require.NoError(t, err)
	assert.Empty(t, temp)

	_, _, err = svc.Create(ctx, "", "x@example.com", "", "")
	assert.True(t, apperror.IsKind(err, apperror.Validation))
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _, err := svc.Create(ctx, "Ani", "ani@example.com", "pw", "")
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, "Budi", "budi@example.com", "pw", "")
	require.NoError(t, err)

	u, err := svc.Update(ctx, a.ID, Patch{Name: strp("Ani R."), Email: strp("ANI.R@example.com"), Role: strp("admin")})
	require.NoError(t, err)
	assert.Equal(t, "Ani R.", u.Name)
	assert.Equal(t, "ani.r@example.com", u.Email)
	assert.Equal(t, auth.RoleAdmin, u.Role)
	assert.True(t, u.Active)

	_, err = svc.Update(ctx, a.ID, Patch{Email: strp("Budi@example.com")})
	assert.True(t, apperror.IsKind(err, apperror.Conflict))

	_, err = svc.Update(ctx, "missing", Patch{Name: strp("x")})
	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, _, err := svc.Create(ctx, "Ani", "ani@example.com", "old", "")
	require.NoError(t, err)

	temp, err := svc.ResetPassword(ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, temp, TempPasswordLen)
	_, err = svc.Authenticate(ctx, "ani@example.com", temp)
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ani@example.com", "old")
	assert.Error(t, err)

	temp, err = svc.ResetPassword(ctx, u.ID, "chosen")
	require.NoError(t, err)
	assert.Empty(t, temp)
	_, err = svc.Authenticate(ctx, "ani@example.com", "chosen")
	assert.NoError(t, err)

	_, err = svc.ResetPassword(ctx, "missing", "")
	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, _, err := svc.Create(ctx, "Ani", "ani@example.com", "old", "")
	require.NoError(t, err)
	id := u.Identity()

	assert.True(t, apperror.IsKind(svc.ChangePassword(ctx, nil, "old", "new"), apperror.Auth))
	assert.True(t, apperror.IsKind(svc.ChangePassword(ctx, &id, "", "new"), apperror.Validation))

	err = svc.ChangePassword(ctx, &id, "wrong", "new")
	assert.Equal(t, "user.oldPasswordWrong", apperror.KeyOf(err, ""))

	require.NoError(t, svc.ChangePassword(ctx, &id, "old", "new"))
	_, err = svc.Authenticate(ctx, "ani@example.com", "new")
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	admin, _, err := svc.Create(ctx, "Root", "root@example.com", "pw", "admin")
	require.NoError(t, err)
	u, _, err := svc.Create(ctx, "Ani", "ani@example.com", "pw", "")
	require.NoError(t, err)
	caller := admin.Identity()

	err = svc.Delete(ctx, &caller, admin.ID)
	assert.True(t, apperror.IsKind(err, apperror.Validation))

	require.NoError(t, svc.Delete(ctx, &caller, u.ID))
	_, err = svc.Get(ctx, u.ID)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))

	err = svc.Delete(ctx, &caller, u.ID)
	assert.True(t, apperror.IsKind(err, apperror.NotFound))
}

func TestListNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := store.Create(ctx, User{Name: email, Email: email, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}
	svc := NewService(store, nil, "")

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "c@example.com", users[0].Email)
	assert.Equal(t, "a@example.com", users[2].Email)
}

func TestTempPasswordAlphabet(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p := TempPassword()
		assert.Regexp(t, `^[0-9a-z]{8}$`, p)
		seen[p] = true
	}
	assert.Greater(t, len(seen), 1)
}
