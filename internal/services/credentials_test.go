package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		in   string
		want Name
	}{
		{"Alice Smith", Name{First: "Alice", Last: "Smith"}},
		{"Mary Ann Lee", Name{First: "Mary", Middle: "Ann", Last: "Lee"}},
		{"Juan Carlos de la Cruz", Name{First: "Juan", Middle: "Carlos de la", Last: "Cruz"}},
		{"  Cher  ", Name{First: "Cher", Last: "Cher"}},
	}
	for _, tt := range tests {
		got, err := SplitName(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := SplitName("   ")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRegisterAuthenticate_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.creds.Register(ctx, "alice", "pw1", "Alice Smith", "a@x.io", models.RoleGeneral))

	id, err := f.creds.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, &models.Identity{Username: "alice", FullName: "Alice Smith", Role: models.RoleGeneral}, id)
}

func TestRegister_StoresNoPlaintextPII(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Register(ctx, "alice", "pw1", "Mary Ann Lee", "mary@x.io", models.RoleGeneral))

	var row string
	require.NoError(t, f.db.QueryRow(`SELECT password_hash || encrypted_first_name || encrypted_middle_name ||
		encrypted_last_name || encrypted_full_name || encrypted_email FROM users WHERE username = 'alice'`).Scan(&row))
	for _, pii := range []string{"Mary", "Ann", "Lee", "mary@x.io", "pw1"} {
		assert.NotContains(t, row, pii)
	}

	var keys int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM encryption_keys WHERE username = 'alice'`).Scan(&keys))
	assert.Equal(t, 1, keys)

	p, err := f.creds.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &models.Profile{
		Username: "alice", FirstName: "Mary", MiddleName: "Ann", LastName: "Lee",
		FullName: "Mary Ann Lee", Email: "mary@x.io", Role: models.RoleGeneral,
	}, p)
}

func TestAuthenticate_Failures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Register(ctx, "alice", "pw1", "Alice Smith", "a@x.io", models.RoleGeneral))

	for _, tc := range []struct{ user, pw string }{
		{"alice", "pw2"},
		{"bob", "pw1"},
		{"alice", ""},
		{"", "pw1"},
	} {
		id, err := f.creds.Authenticate(ctx, tc.user, tc.pw)
		assert.ErrorIs(t, err, common.ErrorUnauthorized, "%+v", tc)
		assert.Nil(t, id)
	}
}

func TestAuthenticate_MissingKeyIsCryptoError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Register(ctx, "alice", "pw1", "Alice Smith", "a@x.io", models.RoleGeneral))

	_, err := f.db.Exec(`DELETE FROM encryption_keys WHERE username = 'alice'`)
	require.NoError(t, err)

	_, err = f.creds.Authenticate(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, common.ErrCrypto)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)

	// a wrong password still reads as a plain authentication failure
	_, err = f.creds.Authenticate(ctx, "alice", "nope")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthenticate_CorruptKeyIsCryptoError(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Register(ctx, "alice", "pw1", "Alice Smith", "a@x.io", models.RoleGeneral))

	_, err := f.db.Exec(`UPDATE encryption_keys SET wrapped_user_key = 'Z2FyYmFnZQ==' WHERE username = 'alice'`)
	require.NoError(t, err)

	_, err = f.creds.Authenticate(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, common.ErrCrypto)
}

func TestRegister_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Register(ctx, "alice", "pw1", "Alice Smith", "a@x.io", models.RoleGeneral))

	var before string
	require.NoError(t, f.db.QueryRow(`SELECT wrapped_user_key FROM encryption_keys WHERE username = 'alice'`).Scan(&before))

	err := f.creds.Register(ctx, "alice", "pw2", "Other Person", "o@x.io", models.RoleAdmin)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	var after string
	require.NoError(t, f.db.QueryRow(`SELECT wrapped_user_key FROM encryption_keys WHERE username = 'alice'`).Scan(&after))
	assert.Equal(t, before, after, "key record untouched")

	id, err := f.creds.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", id.FullName)
	assert.Equal(t, models.RoleGeneral, id.Role)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.ErrorIs(t, f.creds.Register(ctx, "", "pw", "A B", "e", models.RoleGeneral), common.ErrValidation)
	assert.ErrorIs(t, f.creds.Register(ctx, "u", "", "A B", "e", models.RoleGeneral), common.ErrValidation)
	assert.ErrorIs(t, f.creds.Register(ctx, "u", "pw", " ", "e", models.RoleGeneral), common.ErrValidation)
	assert.ErrorIs(t, f.creds.Register(ctx, "u", "pw", "A B", "e", models.Role("superuser")), common.ErrInvalidRole)

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n))
	assert.Zero(t, n, "nothing written on invalid input")
}

func TestSetRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Register(ctx, "root", "pw", "Root Admin", "r@x.io", models.RoleAdmin))
	require.NoError(t, f.creds.Register(ctx, "alice", "pw", "Alice Smith", "a@x.io", models.RoleGeneral))

	assert.ErrorIs(t, f.creds.SetRole(ctx, "alice", models.Role("owner")), common.ErrInvalidRole)
	assert.ErrorIs(t, f.creds.SetRole(ctx, "ghost", models.RoleAdmin), common.ErrorNotFound)
	assert.ErrorIs(t, f.creds.SetRole(ctx, "root", models.RoleGeneral), common.ErrLastAdmin)

	require.NoError(t, f.creds.SetRole(ctx, "alice", models.RoleAdmin))
	id, err := f.creds.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, id.Role)

	require.NoError(t, f.creds.SetRole(ctx, "root", models.RoleGeneral), "another admin exists now")
}

func TestResetAndChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Register(ctx, "alice", "pw1", "Alice Smith", "a@x.io", models.RoleGeneral))

	require.NoError(t, f.creds.ResetPassword(ctx, "alice", "pw2"))
	_, err := f.creds.Authenticate(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = f.creds.Authenticate(ctx, "alice", "pw2")
	require.NoError(t, err)

	assert.ErrorIs(t, f.creds.ResetPassword(ctx, "ghost", "x"), common.ErrorNotFound)
	assert.ErrorIs(t, f.creds.ResetPassword(ctx, "alice", ""), common.ErrValidation)

	assert.ErrorIs(t, f.creds.ChangePassword(ctx, "alice", "wrong", "pw3"), common.ErrorUnauthorized)
	require.NoError(t, f.creds.ChangePassword(ctx, "alice", "pw2", "pw3"))
	_, err = f.creds.Authenticate(ctx, "alice", "pw3")
	require.NoError(t, err)
}

func TestDeleteUser_Cascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Register(ctx, "root", "pw", "Root Admin", "r@x.io", models.RoleAdmin))
	require.NoError(t, f.creds.Register(ctx, "alice", "pw1", "Alice Smith", "a@x.io", models.RoleGeneral))

	s1, err := f.sessions.Create(ctx, "alice", models.RoleGeneral)
	require.NoError(t, err)
	s2, err := f.sessions.Create(ctx, "alice", models.RoleGeneral)
	require.NoError(t, err)

	require.NoError(t, f.creds.DeleteUser(ctx, "alice"))

	for _, sid := range []string{s1, s2} {
		ok, _, err := f.sessions.Validate(ctx, sid)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	_, err = f.creds.Authenticate(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	var keys int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM encryption_keys WHERE username = 'alice'`).Scan(&keys))
	assert.Zero(t, keys)

	assert.ErrorIs(t, f.creds.DeleteUser(ctx, "alice"), common.ErrorNotFound)
}

func TestDeleteUser_LastAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.creds.Register(ctx, "root", "pw", "Root Admin", "r@x.io", models.RoleAdmin))

	assert.ErrorIs(t, f.creds.DeleteUser(ctx, "root"), common.ErrLastAdmin)

	_, err := f.creds.Authenticate(ctx, "root", "pw")
	require.NoError(t, err, "nothing removed")
}

func TestAddUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	pw, err := f.creds.AddUser(ctx, "carol", "Carol King", "c@x.io", models.RoleGeneral)
	require.NoError(t, err)
	assert.Len(t, pw, 12)
	assert.Equal(t, strings.ToLower(pw), pw)

	id, err := f.creds.Authenticate(ctx, "carol", pw)
	require.NoError(t, err)
	assert.Equal(t, "Carol King", id.FullName)

	_, err = f.creds.AddUser(ctx, "carol", "Carol King", "c@x.io", models.RoleGeneral)
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestCredentialService_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.db.Close())

	err := f.creds.Register(ctx, "alice", "pw1", "Alice Smith", "a@x.io", models.RoleGeneral)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)

	_, err = f.creds.Authenticate(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
}
