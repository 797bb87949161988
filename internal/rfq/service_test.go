package rfq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/rfq-client/internal/entitystore"
	"github.com/quotedesk/rfq-client/internal/retry"
	"github.com/quotedesk/rfq-client/pkg/model"
)

const (
	aliceAddr = "0xAbCdEf1234567890aBcDeF1234567890abcdef12"
	bobAddr   = "0x9999999999999999999999999999999999999999"
)

// --- Mock signer ---

type mockSigner struct {
	addr    string
	addrErr error
	signErr error
	signed  int
}

func (m *mockSigner) Address(context.Context) (string, error) {
	if m.addrErr != nil {
		return "", m.addrErr
	}
	return m.addr, nil
}

func (m *mockSigner) SignPayload(_ context.Context, payload []byte) (string, error) {
	m.signed++
	if m.signErr != nil {
		return "", m.signErr
	}
	return fmt.Sprintf("0xsig-%s-%d-%d", m.addr, len(payload), m.signed), nil
}

// --- Mock store ---

type mockStore struct {
	mu       sync.Mutex
	entities map[string]entitystore.Entity

	writeCalls  int
	getCalls    int
	deleteCalls int

	// writeFailures is consumed one error per Write call before writes succeed.
	writeFailures []error
}

func newMockStore() *mockStore {
	return &mockStore{entities: make(map[string]entitystore.Entity)}
}

func (m *mockStore) Write(_ context.Context, e entitystore.Entity) (entitystore.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	if len(m.writeFailures) > 0 {
		err := m.writeFailures[0]
		m.writeFailures = m.writeFailures[1:]
		return entitystore.Entity{}, err
	}
	now := time.Now().UnixMilli()
	e.CreatedAt, e.UpdatedAt = now, now
	if prev, ok := m.entities[e.Key]; ok {
		e.CreatedAt = prev.CreatedAt
	}
	m.entities[e.Key] = e
	return e, nil
}

func (m *mockStore) Get(_ context.Context, _, key string) (*entitystore.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	e, ok := m.entities[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *mockStore) Delete(_ context.Context, _, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	delete(m.entities, key)
	return nil
}

func (m *mockStore) Query(_ context.Context, _ entitystore.Query) (*entitystore.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := &entitystore.Result{}
	for _, e := range m.entities {
		res.Entities = append(res.Entities, e)
	}
	res.Total = len(res.Entities)
	return res, nil
}

func (m *mockStore) Watch(context.Context, entitystore.WatchOptions) (entitystore.UnsubscribeFunc, error) {
	return func() {}, nil
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entities)
}

// --- Helpers ---

func fastRetry() retry.Config {
	return retry.Config{MaxRetries: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffMultiplier: 2}
}

func newTestService(store entitystore.Store, addr string) *Service {
	return NewService(nil, store, &mockSigner{addr: addr}, fastRetry())
}

func validInput() model.CreateRFQInput {
	return model.CreateRFQInput{
		BaseToken:   model.TokenInfo{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", ChainID: 1},
		QuoteToken:  model.TokenInfo{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", ChainID: 1},
		BaseAmount:  "1000000000000000000",
		QuoteAmount: "2000000000",
		ExpiresIn:   time.Now().Unix() + 3600,
	}
}

// --- Create ---

func TestCreate_AssemblesOpenRecord(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, aliceAddr)

	got, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, model.StatusOpen, got.Status)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	assert.Equal(t, aliceAddr, got.Creator)
	assert.True(t, strings.HasPrefix(got.ID, "rfq-"+strings.ToLower(aliceAddr)+"-"))
	assert.Equal(t, 1, store.writeCalls)

	ent := store.entities[got.ID]
	assert.NotEmpty(t, ent.Signature, "mutation carries a signature over the payload")
}

func TestCreate_IDsAreDistinctWithinOneSecond(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, aliceAddr)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		got, err := svc.Create(context.Background(), validInput())
		require.NoError(t, err)
		assert.False(t, seen[got.ID], "duplicate id %s", got.ID)
		seen[got.ID] = true
	}
}

func TestCreate_ValidationFailsBeforeStoreCall(t *testing.T) {
	store := newMockStore()
	sig := &mockSigner{addr: aliceAddr}
	svc := NewService(nil, store, sig, fastRetry())

	in := validInput()
	in.BaseToken.Address = "invalid-address"

	_, err := svc.Create(context.Background(), in)
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Zero(t, store.writeCalls, "store must be untouched")
	assert.Zero(t, store.count())
	assert.Zero(t, sig.signed, "nothing is signed on invalid input")
}

func TestCreate_NoSignerFailsBeforeStoreCall(t *testing.T) {
	store := newMockStore()
	svc := NewService(nil, store, nil, fastRetry())

	_, err := svc.Create(context.Background(), validInput())
	var serr *model.SignatureError
	require.True(t, errors.As(err, &serr))
	assert.Zero(t, store.writeCalls)
}

func TestCreate_SigningFailure(t *testing.T) {
	store := newMockStore()
	svc := NewService(nil, store, &mockSigner{addr: aliceAddr, signErr: errors.New("hsm offline")}, fastRetry())

	_, err := svc.Create(context.Background(), validInput())
	var serr *model.SignatureError
	require.True(t, errors.As(err, &serr))
	assert.Zero(t, store.writeCalls)
}

func TestCreate_RetriesTransientWriteFailures(t *testing.T) {
	store := newMockStore()
	store.writeFailures = []error{errors.New("connection reset"), errors.New("connection reset")}
	svc := newTestService(store, aliceAddr)

	got, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, 3, store.writeCalls)
	assert.Equal(t, model.StatusOpen, got.Status)
}

func TestCreate_ExhaustionSurfacesNetworkError(t *testing.T) {
	store := newMockStore()
	store.writeFailures = []error{
		errors.New("timeout"), errors.New("timeout"), errors.New("timeout"), errors.New("timeout"),
	}
	svc := newTestService(store, aliceAddr)

	_, err := svc.Create(context.Background(), validInput())
	var nerr *model.NetworkError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, 4, nerr.Attempts)
}

// --- Get ---

func TestGet_AbsentIsNilNotError(t *testing.T) {
	svc := newTestService(newMockStore(), aliceAddr)

	got, err := svc.Get(context.Background(), "rfq-missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGet_InvalidID(t *testing.T) {
	svc := newTestService(newMockStore(), aliceAddr)

	_, err := svc.Get(context.Background(), "   ")
	var verr *model.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestGet_RoundTrip(t *testing.T) {
	svc := newTestService(newMockStore(), aliceAddr)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *created, *got)
}

// --- Update / Cancel ---

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(newMockStore(), aliceAddr)

	amount := "5"
	_, err := svc.Update(context.Background(), "rfq-unknown", model.UpdateRFQInput{BaseAmount: &amount})
	var nferr *model.RFQNotFoundError
	require.True(t, errors.As(err, &nferr))
	assert.Equal(t, "rfq-unknown", nferr.ID)
}

func TestUpdate_NonCreatorRejected(t *testing.T) {
	store := newMockStore()
	alice := newTestService(store, aliceAddr)
	bob := newTestService(store, bobAddr)

	created, err := alice.Create(context.Background(), validInput())
	require.NoError(t, err)

	amount := "5"
	_, err = bob.Update(context.Background(), created.ID, model.UpdateRFQInput{BaseAmount: &amount})
	var oerr *model.OwnershipError
	require.True(t, errors.As(err, &oerr))
}

func TestUpdate_CreatorCaseInsensitive(t *testing.T) {
	store := newMockStore()
	alice := newTestService(store, aliceAddr)

	created, err := alice.Create(context.Background(), validInput())
	require.NoError(t, err)

	// Same account, different checksum casing.
	aliceUpper := newTestService(store, "0x"+strings.ToUpper(strings.TrimPrefix(aliceAddr, "0x")))
	amount := "7"
	got, err := aliceUpper.Update(context.Background(), created.ID, model.UpdateRFQInput{BaseAmount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "7", got.BaseAmount)
}

func TestUpdate_NonOpenRejectedEvenForCreator(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, aliceAddr)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), created.ID)
	require.NoError(t, err)

	amount := "5"
	_, err = svc.Update(context.Background(), created.ID, model.UpdateRFQInput{BaseAmount: &amount})
	var oerr *model.OwnershipError
	require.True(t, errors.As(err, &oerr))
	assert.Contains(t, oerr.Reason, "CANCELLED")
}

func TestUpdate_MergesAndResigns(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, aliceAddr)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	sigBefore := store.entities[created.ID].Signature

	quote := "3000000000"
	updated, err := svc.Update(ctx, created.ID, model.UpdateRFQInput{QuoteAmount: &quote})
	require.NoError(t, err)

	assert.Equal(t, "3000000000", updated.QuoteAmount)
	assert.Equal(t, created.BaseAmount, updated.BaseAmount)
	assert.Equal(t, created.BaseToken, updated.BaseToken, "tokens are immutable")
	assert.Equal(t, created.Creator, updated.Creator)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Greater(t, updated.UpdatedAt, created.UpdatedAt)
	assert.NotEqual(t, sigBefore, store.entities[created.ID].Signature, "mutation carries a fresh signature")
}

func TestCancel_EquivalentToStatusUpdate(t *testing.T) {
	store := newMockStore()
	svc := newTestService(store, aliceAddr)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Greater(t, cancelled.UpdatedAt, created.UpdatedAt)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, got.Status)
}

// --- Delete ---

func TestDelete_OwnerOnlyAnyStatus(t *testing.T) {
	store := newMockStore()
	alice := newTestService(store, aliceAddr)
	bob := newTestService(store, bobAddr)
	ctx := context.Background()

	created, err := alice.Create(ctx, validInput())
	require.NoError(t, err)

	var oerr *model.OwnershipError
	err = bob.Delete(ctx, created.ID)
	require.True(t, errors.As(err, &oerr))

	// Cancelled records can still be deleted by the owner.
	_, err = alice.Cancel(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, alice.Delete(ctx, created.ID))

	got, err := alice.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete_NotFound(t *testing.T) {
	svc := newTestService(newMockStore(), aliceAddr)

	err := svc.Delete(context.Background(), "rfq-missing")
	var nferr *model.RFQNotFoundError
	assert.True(t, errors.As(err, &nferr))
}

// --- Query (against the real redis-backed store) ---

func TestQuery_TokenPairScenario(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	st := entitystore.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	svc := newTestService(st, aliceAddr)
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	// A second RFQ on a different pair must not match.
	other := validInput()
	other.BaseToken = model.TokenInfo{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", ChainID: 1}
	_, err = svc.Create(ctx, other)
	require.NoError(t, err)

	in := validInput()
	res, err := svc.Query(ctx, model.FilterByTokenPair(in.BaseToken, in.QuoteToken), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Total)
	require.Len(t, res.RFQs, 1)
	assert.Equal(t, created.ID, res.RFQs[0].ID)
	assert.False(t, res.HasMore)
}

func TestQuery_PaginationFlagsHasMore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	st := entitystore.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), nil)
	svc := newTestService(st, aliceAddr)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
	}

	res, err := svc.Query(ctx, model.QueryFilters{}, nil, &model.PaginationOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Len(t, res.RFQs, 2)
	assert.True(t, res.HasMore)
	require.NotEmpty(t, res.NextCursor)

	rest, err := svc.Query(ctx, model.QueryFilters{}, nil, &model.PaginationOptions{Limit: 3, Cursor: res.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.RFQs, 3)
	assert.False(t, rest.HasMore)
}
