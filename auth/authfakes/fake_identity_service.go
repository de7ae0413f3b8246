package authfakes

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pateldm/go-auth-service/auth"
	"github.com/pateldm/go-auth-service/identity"
)

var _ auth.IdentityService = (*FakeIdentityService)(nil)

// FakeIdentityService resolves credentials from an in-memory table keyed by
// email. Unknown emails fail with ErrUserNotFound, wrong passwords with
// ErrInvalidCredentials.
type FakeIdentityService struct {
	users   map[string]fakeUser
	created []identity.RegisterRequest
	lock    sync.Mutex
}

type fakeUser struct {
	id       uuid.UUID
	password string
}

func NewFakeIdentityService() *FakeIdentityService {
	return &FakeIdentityService{users: make(map[string]fakeUser)}
}

func (f *FakeIdentityService) AddUser(email, password string, id uuid.UUID) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.users[email] = fakeUser{id: id, password: password}
}

func (f *FakeIdentityService) ValidateCredentials(_ context.Context, email, password string) (uuid.UUID, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	user, ok := f.users[email]
	if !ok {
		return uuid.Nil, identity.ErrUserNotFound
	}
	if user.password != password {
		return uuid.Nil, identity.ErrInvalidCredentials
	}
	return user.id, nil
}

func (f *FakeIdentityService) EmailExists(_ context.Context, email string) (bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	_, ok := f.users[email]
	return ok, nil
}

func (f *FakeIdentityService) CreateUser(_ context.Context, request identity.RegisterRequest) (identity.Profile, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.users[request.Email] = fakeUser{id: uuid.New(), password: request.Password}
	f.created = append(f.created, request)
	return identity.Profile{Email: request.Email, Name: request.Name}, nil
}

// CreatedRequests returns the register requests forwarded so far.
func (f *FakeIdentityService) CreatedRequests() []identity.RegisterRequest {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]identity.RegisterRequest(nil), f.created...)
}
