package user

import (
	"context"
	"testing"

	"gamingrealm-backend/src/internal/config"
	"gamingrealm-backend/src/internal/credentials"
	"gamingrealm-backend/src/internal/models"
	"gamingrealm-backend/src/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRepository keeps users and follow edges in memory.
type fakeRepository struct {
	users   map[string]*User // keyed by hex id
	follows map[[2]string]bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users:   make(map[string]*User),
		follows: make(map[[2]string]bool),
	}
}

func (f *fakeRepository) Insert(_ context.Context, u *User) (*User, error) {
	u.ID = primitive.NewObjectID()
	f.users[u.ID.Hex()] = u
	return u, nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*User, error) {
	return f.users[id], nil
}

func (f *fakeRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) GetUsernameByID(_ context.Context, id string) (string, error) {
	if u := f.users[id]; u != nil {
		return u.Username, nil
	}
	return "", models.ErrRecordNotFound
}

func (f *fakeRepository) Follow(_ context.Context, userID, followsID string) error {
	key := [2]string{userID, followsID}
	if f.follows[key] {
		return models.ErrDuplicateRecord
	}
	f.follows[key] = true
	return nil
}

func (f *fakeRepository) Unfollow(_ context.Context, userID, followsID string) error {
	delete(f.follows, [2]string{userID, followsID})
	return nil
}

func (f *fakeRepository) IsFollowing(_ context.Context, userID, followsID string) (bool, error) {
	return f.follows[[2]string{userID, followsID}], nil
}

func (f *fakeRepository) CountFollowers(_ context.Context, userID string) (int64, error) {
	var n int64
	for key := range f.follows {
		if key[1] == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) CountFollowing(_ context.Context, userID string) (int64, error) {
	var n int64
	for key := range f.follows {
		if key[0] == userID {
			n++
		}
	}
	return n, nil
}

func testConfig() *config.Configuration {
	return &config.Configuration{
		Security: config.SecuritySettings{
			Argon2: config.Argon2Settings{
				Time:        1,
				MemoryKB:    8 * 1024,
				Parallelism: 1,
				SaltLength:  16,
				KeyLength:   32,
			},
			MinPasswordLength: 7,
		},
	}
}

func newTestService(t *testing.T) (Service, *fakeRepository, session.Store) {
	t.Helper()
	cfg := testConfig()
	repo := newFakeRepository()
	store := session.NewMemoryStore()
	svc := NewUserService(repo, store, credentials.NewHasher(&cfg.Security.Argon2), cfg)
	return svc, repo, store
}

func TestSignupCreatesAccountAndSession(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()

	sess, profile, err := svc.Signup(ctx, &SignupRequest{
		Username: "user1",
		Email:    "user1@example.com",
		Password: "password12",
	})
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, profile.ID, sess.UserID)

	stored := repo.users[profile.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "password12", stored.Password, "password must be stored hashed")

	exists, err := store.Contains(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSignupRejectsDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, &SignupRequest{Username: "user1", Email: "a@example.com", Password: "password12"})
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, &SignupRequest{Username: "user1", Email: "b@example.com", Password: "password12"})
	assert.ErrorIs(t, err, models.ErrDuplicateAccount)

	_, _, err = svc.Signup(ctx, &SignupRequest{Username: "user2", Email: "a@example.com", Password: "password12"})
	assert.ErrorIs(t, err, models.ErrDuplicateAccount)
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, &SignupRequest{Username: "no spaces!", Email: "a@example.com", Password: "password12"})
	assert.Error(t, err)

	_, _, err = svc.Signup(ctx, &SignupRequest{Username: "user1", Email: "a@example.com", Password: "short"})
	assert.Error(t, err)
}

func TestLoginDoesNotRevealWhichCredentialWasWrong(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, &SignupRequest{Username: "user1", Email: "a@example.com", Password: "password12"})
	require.NoError(t, err)

	_, _, unknownUser := svc.Login(ctx, &LoginRequest{Username: "nobody", Password: "password12"}, "")
	_, _, wrongPassword := svc.Login(ctx, &LoginRequest{Username: "user1", Password: "wrongwrong"}, "")

	assert.ErrorIs(t, unknownUser, models.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassword, models.ErrInvalidCredentials)
	assert.Equal(t, unknownUser, wrongPassword)
}

func TestLoginDeletesPresentedSession(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	old, _, err := svc.Signup(ctx, &SignupRequest{Username: "user1", Email: "a@example.com", Password: "password12"})
	require.NoError(t, err)

	sess, profile, err := svc.Login(ctx, &LoginRequest{Username: "user1", Password: "password12"}, old.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, sess.UserID)
	assert.NotEqual(t, old.ID, sess.ID)

	gone, err := store.Contains(ctx, old.ID)
	require.NoError(t, err)
	assert.False(t, gone, "session presented at login must be cleaned up")

	live, err := store.Contains(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, live)
}

func TestLogout(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	sess, _, err := svc.Signup(ctx, &SignupRequest{Username: "user1", Email: "a@example.com", Password: "password12"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, sess.ID))

	exists, err := store.Contains(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	// a second logout has nothing left to delete
	assert.ErrorIs(t, svc.Logout(ctx, sess.ID), models.ErrSessionNotFound)
}

func TestFollow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, u1, err := svc.Signup(ctx, &SignupRequest{Username: "user1", Email: "a@example.com", Password: "password12"})
	require.NoError(t, err)
	_, u2, err := svc.Signup(ctx, &SignupRequest{Username: "user2", Email: "b@example.com", Password: "password12"})
	require.NoError(t, err)

	assert.Error(t, svc.Follow(ctx, u1.ID, u1.ID), "self-follow must be rejected")
	assert.ErrorIs(t, svc.Follow(ctx, u1.ID, primitive.NewObjectID().Hex()), models.ErrRecordNotFound)

	require.NoError(t, svc.Follow(ctx, u1.ID, u2.ID))
	assert.ErrorIs(t, svc.Follow(ctx, u1.ID, u2.ID), models.ErrDuplicateRecord)

	following, err := svc.IsFollowing(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.True(t, following)

	_, followers, following2, err := svc.GetProfile(ctx, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
	assert.Equal(t, int64(0), following2)

	require.NoError(t, svc.Unfollow(ctx, u1.ID, u2.ID))
	following, err = svc.IsFollowing(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.False(t, following)
}
