package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexusfind/backend/internal/models"
	"github.com/nexusfind/backend/internal/storage"
)

// Keys in the local key/value medium.
const (
	KeyUserID              = "userId"
	KeyIsVerified          = "isVerified"
	KeyVerifiedInstitution = "verifiedInstitution"
)

// IdentityState is the per-machine pseudo-identity and the self-asserted
// verification flag. Nothing here is validated against any credential.
type IdentityState struct {
	kv  storage.KV
	now func() time.Time

	mu sync.Mutex
}

func NewIdentityState(kv storage.KV) *IdentityState {
	return &IdentityState{kv: kv, now: time.Now}
}

// UserID returns the persisted user id, generating and persisting one on first
// use.
func (s *IdentityState) UserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok, err := s.kv.Get(ctx, KeyUserID)
	if err != nil {
		return "", fmt.Errorf("read user id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = newUserID(s.now())
	if err := s.kv.Put(ctx, map[string]string{KeyUserID: id}); err != nil {
		return "", fmt.Errorf("persist user id: %w", err)
	}
	return id, nil
}

// newUserID builds "user_<unix millis>_<7 chars>". Unique enough for one
// machine; not a secret.
func newUserID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return fmt.Sprintf("user_%d_%s", now.UnixMilli(), suffix)
}

// Verification reads the verification pair. Absent or malformed state, and a
// verified flag without a known institution, all read as unverified.
func (s *IdentityState) Verification(ctx context.Context) (models.Verification, error) {
	raw, ok, err := s.kv.Get(ctx, KeyIsVerified)
	if err != nil {
		return models.Verification{}, fmt.Errorf("read verification: %w", err)
	}
	if !ok {
		return models.Verification{}, nil
	}
	verified, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil || !verified {
		return models.Verification{}, nil
	}

	rawInst, ok, err := s.kv.Get(ctx, KeyVerifiedInstitution)
	if err != nil {
		return models.Verification{}, fmt.Errorf("read verified institution: %w", err)
	}
	inst, valid := models.ParseInstitution(rawInst)
	if !ok || !valid {
		return models.Verification{}, nil
	}
	return models.Verification{Verified: true, Institution: inst}, nil
}

// SetVerified records the outcome of the verification flow. Both keys change in
// one write. When status is false the institution argument is ignored and the
// stored institution is cleared.
func (s *IdentityState) SetVerified(ctx context.Context, status bool, institution models.Institution) error {
	if !status {
		if err := s.kv.Put(ctx, map[string]string{KeyIsVerified: "false"}, KeyVerifiedInstitution); err != nil {
			return fmt.Errorf("clear verification: %w", err)
		}
		return nil
	}

	if institution == "" {
		return ErrInstitutionRequired
	}
	if !institution.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownInstitution, institution)
	}

	err := s.kv.Put(ctx, map[string]string{
		KeyIsVerified:          "true",
		KeyVerifiedInstitution: string(institution),
	})
	if err != nil {
		return fmt.Errorf("persist verification: %w", err)
	}
	return nil
}

// Unverify returns the state to unverified.
func (s *IdentityState) Unverify(ctx context.Context) error {
	return s.SetVerified(ctx, false, "")
}

// Identity bundles the user id with the verification pair.
func (s *IdentityState) Identity(ctx context.Context) (models.Identity, error) {
	userID, err := s.UserID(ctx)
	if err != nil {
		return models.Identity{}, err
	}
	v, err := s.Verification(ctx)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{UserID: userID, Verification: v}, nil
}
