package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meowpremium-bot/internal/domain/user"
)

// ----- Fake user repo -----

type fakeUserRepo struct {
	users map[int64]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) RegisterIfAbsent(ctx context.Context, u *user.User) error {
	if _, ok := r.users[u.ID]; ok {
		return nil
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) AddToBalance(ctx context.Context, id int64, delta int64) (int64, error) {
	u, ok := r.users[id]
	if !ok {
		return 0, user.ErrNotFound
	}
	if u.CoinBalance+delta < 0 {
		return 0, user.ErrBalanceRejected
	}
	u.CoinBalance += delta
	return u.CoinBalance, nil
}

func (r *fakeUserRepo) AddToTotalPurchase(ctx context.Context, id int64, amount int64) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.TotalPurchase += amount
	return nil
}

func (r *fakeUserRepo) SetBanned(ctx context.Context, id int64, banned bool) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Banned = banned
	return nil
}

func (r *fakeUserRepo) Touch(ctx context.Context, id int64, username, displayName string) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Username = username
	u.DisplayName = displayName
	return nil
}

func (r *fakeUserRepo) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeUserRepo) ListActiveIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for id, u := range r.users {
		if !u.Banned {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// ----- Tests -----

func TestResolveNumericID(t *testing.T) {
	svc := NewService(newFakeUserRepo(&user.User{ID: 42, Username: "meow"}), nil)

	id, err := svc.Resolve(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestResolveNumericIDMissing(t *testing.T) {
	svc := NewService(newFakeUserRepo(), nil)

	_, err := svc.Resolve(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveUsername(t *testing.T) {
	svc := NewService(newFakeUserRepo(&user.User{ID: 42, Username: "meow"}), nil)

	for _, identifier := range []string{"@meow", "meow", "@MeOw", "  meow  "} {
		id, err := svc.Resolve(context.Background(), identifier)
		require.NoError(t, err, identifier)
		assert.Equal(t, int64(42), id, identifier)
	}
}

func TestResolveEmpty(t *testing.T) {
	svc := NewService(newFakeUserRepo(), nil)

	_, err := svc.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDebitRejectedKeepsBalance(t *testing.T) {
	repo := newFakeUserRepo(&user.User{ID: 1, CoinBalance: 10})
	svc := NewService(repo, nil)

	_, err := svc.Debit(context.Background(), 1, 15)
	assert.ErrorIs(t, err, ErrBalanceRejected)

	u, err := svc.Find(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), u.CoinBalance)
}

func TestDebitAndCredit(t *testing.T) {
	repo := newFakeUserRepo(&user.User{ID: 1, CoinBalance: 20})
	svc := NewService(repo, nil)

	balance, err := svc.Debit(context.Background(), 1, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)

	balance, err = svc.Credit(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), balance)
}

func TestRegisterIfAbsentIsInsertOnly(t *testing.T) {
	repo := newFakeUserRepo(&user.User{ID: 1, Username: "old", DisplayName: "Old Name", CoinBalance: 7})
	svc := NewService(repo, nil)

	require.NoError(t, svc.RegisterIfAbsent(context.Background(), 1, "new", "New Name"))

	u, err := svc.Find(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "old", u.Username, "re-registering must not rename")
	assert.Equal(t, int64(7), u.CoinBalance)
}

func TestRecipientIDsExcludesAdminAndBanned(t *testing.T) {
	repo := newFakeUserRepo(
		&user.User{ID: 1},
		&user.User{ID: 2, Banned: true},
		&user.User{ID: 99}, // admin
	)
	svc := NewService(repo, nil)

	ids, err := svc.RecipientIDs(context.Background(), false, 99)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1}, ids)

	ids, err = svc.RecipientIDs(context.Background(), true, 99)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

// ----- Fake profile cache -----

type fakeProfileCache struct {
	byID             map[int64]*user.User
	invalidated      []int64
	invalidatedNames []string
}

func newFakeProfileCache() *fakeProfileCache {
	return &fakeProfileCache{byID: make(map[int64]*user.User)}
}

func (c *fakeProfileCache) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return c.byID[id], nil
}

func (c *fakeProfileCache) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range c.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (c *fakeProfileCache) Set(ctx context.Context, u *user.User) error {
	clone := *u
	c.byID[u.ID] = &clone
	return nil
}

func (c *fakeProfileCache) Invalidate(ctx context.Context, u *user.User) error {
	delete(c.byID, u.ID)
	c.invalidated = append(c.invalidated, u.ID)
	if u.Username != "" {
		c.invalidatedNames = append(c.invalidatedNames, u.Username)
	}
	return nil
}

func (c *fakeProfileCache) InvalidateID(ctx context.Context, id int64) error {
	delete(c.byID, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func TestAdjustDropsBothCacheKeys(t *testing.T) {
	repo := newFakeUserRepo(&user.User{ID: 1, Username: "meow", CoinBalance: 100})
	cache := newFakeProfileCache()
	svc := NewService(repo, cache)
	ctx := context.Background()

	// Prime the cache through a read, then mutate.
	_, err := svc.Find(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, cache.byID[1])

	_, err = svc.Adjust(ctx, 1, 50)
	require.NoError(t, err)

	assert.Nil(t, cache.byID[1])
	assert.Contains(t, cache.invalidatedNames, "meow",
		"the username key must go too, or Resolve serves the stale profile until the TTL")

	// The next read sees the mutated balance, not the cached one.
	u, err := svc.Find(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150), u.CoinBalance)
}

func TestSetBannedInvalidatesCachedProfile(t *testing.T) {
	repo := newFakeUserRepo(&user.User{ID: 2, Username: "tuna"})
	cache := newFakeProfileCache()
	svc := NewService(repo, cache)
	ctx := context.Background()

	_, err := svc.Find(ctx, 2)
	require.NoError(t, err)

	require.NoError(t, svc.SetBanned(ctx, 2, true))

	assert.Nil(t, cache.byID[2])
	assert.Contains(t, cache.invalidatedNames, "tuna")

	u, err := svc.Find(ctx, 2)
	require.NoError(t, err)
	assert.True(t, u.Banned)
}
