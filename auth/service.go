// Package auth orchestrates login, refresh and logout over the token codec,
// the refresh-token ledger and the identity service.
package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/pateldm/go-auth-service/identity"
	"github.com/pateldm/go-auth-service/token"
	"github.com/pateldm/go-auth-service/token/refresh"
	"github.com/pkg/errors"
)

// defaultRole is the role claim stamped into every access token issued by
// the password login flow.
const defaultRole = "ROLE_USER"

// IdentityService is the slice of the identity service this package needs.
type IdentityService interface {
	ValidateCredentials(ctx context.Context, email, password string) (uuid.UUID, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, request identity.RegisterRequest) (identity.Profile, error)
}

// Service issues and rotates token pairs. Refresh tokens are strictly
// single-use: every successful refresh invalidates the presented token, and
// every login supersedes the user's previous session.
type Service struct {
	identity IdentityService
	codec    *token.Codec
	ledger   *refresh.Ledger
}

func NewService(identitySvc IdentityService, codec *token.Codec, ledger *refresh.Ledger) (*Service, error) {
	if identitySvc == nil {
		return nil, errors.New("[NewService] identity service is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] codec is required")
	}
	if ledger == nil {
		return nil, errors.New("[NewService] ledger is required")
	}

	return &Service{
		identity: identitySvc,
		codec:    codec,
		ledger:   ledger,
	}, nil
}

// Login validates the credentials with the identity service and issues a
// fresh token pair. Any live refresh token the user already holds is deleted
// first, so at most one refresh token is live per user.
func (s *Service) Login(ctx context.Context, email, password string) (token.Token, error) {
	userID, err := s.identity.ValidateCredentials(ctx, email, password)
	if err != nil {
		return token.Token{}, errors.Wrap(err, "[Service.Login] ValidateCredentials")
	}

	existing, err := s.ledger.FindByUserID(ctx, userID)
	if err != nil {
		return token.Token{}, errors.Wrap(err, "[Service.Login] FindByUserID")
	}
	if existing != nil {
		if err := s.ledger.DeleteRecord(ctx, *existing); err != nil {
			return token.Token{}, errors.Wrap(err, "[Service.Login] delete superseded record")
		}
	}

	return s.issueAndSave(ctx, userID)
}

// Refresh rotates a presented refresh token: the old record is deleted
// before the new pair is issued, so the presented token can never be used
// again even if replayed.
func (s *Service) Refresh(ctx context.Context, presented string) (token.Token, error) {
	record, err := s.verifyPresentedToken(ctx, presented)
	if err != nil {
		return token.Token{}, err
	}

	if err := s.ledger.DeleteRecord(ctx, *record); err != nil {
		return token.Token{}, errors.Wrap(err, "[Service.Refresh] delete rotated record")
	}

	return s.issueAndSave(ctx, record.UserID)
}

// Logout invalidates a presented refresh token without issuing anything.
func (s *Service) Logout(ctx context.Context, presented string) error {
	record, err := s.verifyPresentedToken(ctx, presented)
	if err != nil {
		return err
	}

	if err := s.ledger.DeleteRecord(ctx, *record); err != nil {
		return errors.Wrap(err, "[Service.Logout] delete record")
	}
	return nil
}

// Register delegates account creation to the identity service after the
// duplicate-email check.
func (s *Service) Register(ctx context.Context, request identity.RegisterRequest) error {
	exists, err := s.identity.EmailExists(ctx, request.Email)
	if err != nil {
		return errors.Wrap(err, "[Service.Register] EmailExists")
	}
	if exists {
		return identity.ErrDuplicateEmail
	}

	if _, err := s.identity.CreateUser(ctx, request); err != nil {
		return errors.Wrap(err, "[Service.Register] CreateUser")
	}
	return nil
}

// verifyPresentedToken looks the token up in the ledger and checks that its
// signature, expiry and subject still match the stored record. A token that
// verifies but was never recorded under this ledger entry, or whose record
// no longer matches, is invalid.
func (s *Service) verifyPresentedToken(ctx context.Context, presented string) (*refresh.Record, error) {
	record, err := s.ledger.FindByToken(ctx, presented)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.verifyPresentedToken] FindByToken")
	}
	if record == nil {
		return nil, token.ErrInvalid
	}

	subject, err := s.codec.VerifySubject(record.Token)
	if err != nil || subject != record.UserID {
		return nil, token.ErrInvalid
	}

	return record, nil
}

func (s *Service) issueAndSave(ctx context.Context, userID uuid.UUID) (token.Token, error) {
	issued, err := s.codec.Issue(userID, defaultRole)
	if err != nil {
		return token.Token{}, errors.Wrap(err, "[Service.issueAndSave] Issue")
	}

	if err := s.ledger.Save(ctx, userID, issued.RefreshToken); err != nil {
		return token.Token{}, errors.Wrap(err, "[Service.issueAndSave] Save")
	}

	return issued, nil
}
