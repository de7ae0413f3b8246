package refresh

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pateldm/go-auth-service/kvstore"
	"github.com/pkg/errors"
)

const (
	tokenKeyPrefix = "refresh_token:"
	userKeyPrefix  = "user_refresh_token:"
)

// Record is the durable unit of the ledger. The same record is stored under
// both a token key and a user key so either lookup is O(1); both keys carry
// the same TTL and expire together.
type Record struct {
	UserID uuid.UUID `json:"userId"`
	Token  string    `json:"token"`
}

// Ledger maps refresh tokens and user ids to each other, enforcing at most
// one live refresh token per user.
type Ledger struct {
	store kvstore.Store
	ttl   time.Duration
}

func NewLedger(store kvstore.Store, ttl time.Duration) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("[NewLedger] store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("[NewLedger] ttl must be positive")
	}
	return &Ledger{store: store, ttl: ttl}, nil
}

// Save writes the record under both keys with the refresh-token lifetime.
// A failure on either write leaves the ledger possibly inconsistent; callers
// must treat it as retryable and not proceed as if the save succeeded.
func (l *Ledger) Save(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	record := Record{UserID: userID, Token: refreshToken}

	if err := l.store.Set(ctx, tokenKey(refreshToken), record, l.ttl); err != nil {
		return errors.Wrap(err, "[Ledger.Save] write token key")
	}
	if err := l.store.Set(ctx, userKey(userID), record, l.ttl); err != nil {
		return errors.Wrap(err, "[Ledger.Save] write user key")
	}
	return nil
}

func (l *Ledger) FindByToken(ctx context.Context, refreshToken string) (*Record, error) {
	var record Record
	found, err := l.store.Get(ctx, tokenKey(refreshToken), &record)
	if err != nil {
		return nil, errors.Wrap(err, "[Ledger.FindByToken] get")
	}
	if !found {
		return nil, nil
	}
	return &record, nil
}

func (l *Ledger) FindByUserID(ctx context.Context, userID uuid.UUID) (*Record, error) {
	var record Record
	found, err := l.store.Get(ctx, userKey(userID), &record)
	if err != nil {
		return nil, errors.Wrap(err, "[Ledger.FindByUserID] get")
	}
	if !found {
		return nil, nil
	}
	return &record, nil
}

// DeleteRecord removes both keys for a record. Deleting a record that has
// already expired or been deleted is not an error.
func (l *Ledger) DeleteRecord(ctx context.Context, record Record) error {
	if _, err := l.store.Delete(ctx, tokenKey(record.Token)); err != nil {
		return errors.Wrap(err, "[Ledger.DeleteRecord] delete token key")
	}
	if _, err := l.store.Delete(ctx, userKey(record.UserID)); err != nil {
		return errors.Wrap(err, "[Ledger.DeleteRecord] delete user key")
	}
	return nil
}

func tokenKey(refreshToken string) string {
	return tokenKeyPrefix + refreshToken
}

func userKey(userID uuid.UUID) string {
	return userKeyPrefix + userID.String()
}
