package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusfind/backend/internal/models"
	"github.com/nexusfind/backend/internal/storage"
)

var userIDPattern = regexp.MustCompile(`^user_\d+_[0-9a-f]{7}$`)

func TestIdentityState_UserIDIsStable(t *testing.T) {
	kv := storage.NewMemoryKV()
	state := NewIdentityState(kv)
	state.now = func() time.Time { return time.UnixMilli(1717171717171) }
	ctx := context.Background()

	first, err := state.UserID(ctx)
	require.NoError(t, err)
	assert.Regexp(t, userIDPattern, first)
	assert.Contains(t, first, "user_1717171717171_")

	second, err := state.UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A fresh state over the same medium sees the same id.
	again, err := NewIdentityState(kv).UserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestIdentityState_VerificationDefaults(t *testing.T) {
	v, err := NewIdentityState(storage.NewMemoryKV()).Verification(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Verification{}, v)
}

func TestIdentityState_SetVerified(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	state := NewIdentityState(kv)

	require.NoError(t, state.SetVerified(ctx, true, models.InstitutionIIITH))
	v, err := state.Verification(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Verification{Verified: true, Institution: models.InstitutionIIITH}, v)

	raw, _, _ := kv.Get(ctx, KeyIsVerified)
	assert.Equal(t, "true", raw)

	require.NoError(t, state.SetVerified(ctx, false, models.InstitutionIIITA))
	v, err = state.Verification(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Verification{}, v)

	_, present, _ := kv.Get(ctx, KeyVerifiedInstitution)
	assert.False(t, present, "unverifying drops the institution")
}

func TestIdentityState_SetVerifiedRejects(t *testing.T) {
	ctx := context.Background()
	state := NewIdentityState(storage.NewMemoryKV())

	assert.ErrorIs(t, state.SetVerified(ctx, true, ""), ErrInstitutionRequired)
	assert.ErrorIs(t, state.SetVerified(ctx, true, "MIT"), ErrUnknownInstitution)

	v, err := state.Verification(ctx)
	require.NoError(t, err)
	assert.False(t, v.Verified, "rejected calls leave state untouched")
}

func TestIdentityState_Unverify(t *testing.T) {
	ctx := context.Background()
	state := NewIdentityState(storage.NewMemoryKV())

	require.NoError(t, state.SetVerified(ctx, true, models.InstitutionIIITD))
	require.NoError(t, state.Unverify(ctx))

	id, err := state.Identity(ctx)
	require.NoError(t, err)
	assert.False(t, id.Verified)
	assert.Empty(t, id.Institution)
	assert.NotEmpty(t, id.UserID)
}

func TestIdentityState_MalformedStateReadsUnverified(t *testing.T) {
	tests := []struct {
		name  string
		state map[string]string
	}{
		{"garbage flag", map[string]string{KeyIsVerified: "yes please", KeyVerifiedInstitution: "IIITA"}},
		{"false flag", map[string]string{KeyIsVerified: "false", KeyVerifiedInstitution: "IIITA"}},
		{"missing institution", map[string]string{KeyIsVerified: "true"}},
		{"unknown institution", map[string]string{KeyIsVerified: "true", KeyVerifiedInstitution: "Hogwarts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := storage.NewMemoryKV()
			require.NoError(t, kv.Put(ctx, tt.state))

			v, err := NewIdentityState(kv).Verification(ctx)
			require.NoError(t, err)
			assert.Equal(t, models.Verification{}, v)
		})
	}
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Put(context.Context, map[string]string, ...string) error {
	return f.err
}

func TestIdentityState_StorageErrors(t *testing.T) {
	boom := errors.New("disk full")
	state := NewIdentityState(failingKV{err: boom})
	ctx := context.Background()

	_, err := state.UserID(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = state.Verification(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, state.SetVerified(ctx, true, models.InstitutionIIITA), boom)
}
