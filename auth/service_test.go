package auth_test

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pateldm/go-auth-service/auth"
	"github.com/pateldm/go-auth-service/auth/authfakes"
	"github.com/pateldm/go-auth-service/identity"
	"github.com/pateldm/go-auth-service/kvstore/storefakes"
	"github.com/pateldm/go-auth-service/token"
	"github.com/pateldm/go-auth-service/token/refresh"
	"github.com/stretchr/testify/require"
)

const (
	testUserEmail    = "a@example.com"
	testUserPassword = "Passw0rd!"
)

var testSecret = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

type testFixture struct {
	identity *authfakes.FakeIdentityService
	store    *storefakes.FakeStore
	codec    *token.Codec
	ledger   *refresh.Ledger
	service  *auth.Service
	userID   uuid.UUID
	now      *time.Time
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	now := time.Now()
	current := &now

	codec, err := token.NewCodec(token.Config{
		Secret:     testSecret,
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, token.WithNowFunc(func() time.Time { return *current }))
	require.NoError(t, err)

	store := storefakes.NewFakeStore()
	ledger, err := refresh.NewLedger(store, 24*time.Hour)
	require.NoError(t, err)

	identitySvc := authfakes.NewFakeIdentityService()
	userID := uuid.New()
	identitySvc.AddUser(testUserEmail, testUserPassword, userID)

	service, err := auth.NewService(identitySvc, codec, ledger)
	require.NoError(t, err)

	return &testFixture{
		identity: identitySvc,
		store:    store,
		codec:    codec,
		ledger:   ledger,
		service:  service,
		userID:   userID,
		now:      current,
	}
}

// advance moves the fixture clock so consecutive issues produce distinct
// token strings.
func (f *testFixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func TestLoginIssuesTokenPairAndRecordsRefreshToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	issued, err := f.service.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.Equal(t, "Bearer", issued.GrantType)
	require.NotEmpty(t, issued.AccessToken)
	require.NotEmpty(t, issued.RefreshToken)

	record, err := f.ledger.FindByUserID(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, issued.RefreshToken, record.Token)
}

func TestLoginWithWrongPassword(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), testUserEmail, "wrong")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestLoginWithUnknownUser(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Login(context.Background(), "nobody@example.com", testUserPassword)
	require.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestLoginSupersedesPreviousSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	first, err := f.service.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.advance(time.Second)
	second, err := f.service.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Exactly one live record per user, matching the most recent login.
	record, err := f.ledger.FindByUserID(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, second.RefreshToken, record.Token)

	// The superseded token is gone from the ledger and cannot refresh.
	stale, err := f.ledger.FindByToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.Nil(t, stale)

	_, err = f.service.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, token.ErrInvalid)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	issued, err := f.service.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	f.advance(time.Second)
	rotated, err := f.service.Refresh(ctx, issued.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, issued.RefreshToken, rotated.RefreshToken)

	record, err := f.ledger.FindByUserID(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, rotated.RefreshToken, record.Token)

	// Replaying the consumed token must fail permanently.
	_, err = f.service.Refresh(ctx, issued.RefreshToken)
	require.ErrorIs(t, err, token.ErrInvalid)
}

func TestRefreshWithTokenNeverIssued(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Refresh(context.Background(), "never-issued")
	require.ErrorIs(t, err, token.ErrInvalid)
}

func TestRefreshWithTamperedRecord(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	issued, err := f.service.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	// Overwrite the stored record with a different user id; the subject
	// check must reject the mismatch.
	require.NoError(t, f.store.Set(ctx, "refresh_token:"+issued.RefreshToken, refresh.Record{
		UserID: uuid.New(),
		Token:  issued.RefreshToken,
	}, 24*time.Hour))

	_, err = f.service.Refresh(ctx, issued.RefreshToken)
	require.ErrorIs(t, err, token.ErrInvalid)
}

func TestRefreshWithExpiredRefreshToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	issued, err := f.service.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	// The signed expiry has passed but the store entry still exists (the
	// fixture store clock is independent); verification must reject it.
	f.advance(25 * time.Hour)
	_, err = f.service.Refresh(ctx, issued.RefreshToken)
	require.ErrorIs(t, err, token.ErrInvalid)
}

func TestLogoutDeletesRecord(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	issued, err := f.service.Login(ctx, testUserEmail, testUserPassword)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, issued.RefreshToken))

	record, err := f.ledger.FindByUserID(ctx, f.userID)
	require.NoError(t, err)
	require.Nil(t, record)

	// Logout consumed the token; a second logout is invalid.
	require.ErrorIs(t, f.service.Logout(ctx, issued.RefreshToken), token.ErrInvalid)
}

func TestRegisterDelegatesToIdentityService(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	err := f.service.Register(ctx, identity.RegisterRequest{
		Email:    "new@example.com",
		Password: "Str0ngPass!",
		Name:     "New User",
	})
	require.NoError(t, err)

	created := f.identity.CreatedRequests()
	require.Len(t, created, 1)
	require.Equal(t, "new@example.com", created[0].Email)
}

func TestRegisterWithDuplicateEmail(t *testing.T) {
	f := setupTestFixture(t)

	err := f.service.Register(context.Background(), identity.RegisterRequest{
		Email:    testUserEmail,
		Password: "Str0ngPass!",
		Name:     "Duplicate",
	})
	require.ErrorIs(t, err, identity.ErrDuplicateEmail)
}
