package signer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/rfq-client/pkg/secrets"
)

// Well-known anvil/hardhat dev key #0.
const (
	devKey  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestLocalSigner_AddressDerivation(t *testing.T) {
	s, err := NewLocalSigner(devKey)
	require.NoError(t, err)

	addr, err := s.Address(context.Background())
	require.NoError(t, err)
	assert.Equal(t, devAddr, addr)

	// 0x prefix is optional.
	s2, err := NewLocalSigner(strings.TrimPrefix(devKey, "0x"))
	require.NoError(t, err)
	addr2, _ := s2.Address(context.Background())
	assert.Equal(t, addr, addr2)
}

func TestNewLocalSigner_RejectsGarbage(t *testing.T) {
	_, err := NewLocalSigner("not-a-key")
	assert.Error(t, err)

	_, err = NewLocalSigner("")
	assert.Error(t, err)
}

func TestSignPayload_RoundTrip(t *testing.T) {
	s, err := NewLocalSigner(devKey)
	require.NoError(t, err)

	payload := []byte(`{"id":"rfq-1","baseAmount":"1000000000000000000"}`)
	sig, err := s.SignPayload(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sig, "0x"))
	assert.Len(t, sig, 2+65*2, "65-byte signature hex encoded")

	ok, err := VerifyPayload(devAddr, payload, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	// Case-insensitive address comparison.
	ok, err = VerifyPayload(strings.ToLower(devAddr), payload, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	// Tampered payload does not verify.
	ok, err = VerifyPayload(devAddr, []byte(`{"id":"rfq-2"}`), sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPayload_BadSignature(t *testing.T) {
	_, err := VerifyPayload(devAddr, []byte("x"), "zzzz")
	assert.Error(t, err)

	_, err = VerifyPayload(devAddr, []byte("x"), "0xdead")
	assert.Error(t, err)
}

// --- KeyResolver ---

type mockProvider struct {
	values map[string]string
	err    error
	calls  int
}

func (m *mockProvider) GetSecret(_ context.Context, _ string) (map[string]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.values, nil
}

func TestKeyResolver_ResolvesAndCaches(t *testing.T) {
	provider := &mockProvider{values: map[string]string{"signing_key": devKey}}
	cache := secrets.NewCache[*LocalSigner](time.Minute)
	r := NewKeyResolver(nil, provider, cache, "rfq/signer", "signing_key")

	s, err := r.Resolve(context.Background())
	require.NoError(t, err)
	addr, _ := s.Address(context.Background())
	assert.Equal(t, devAddr, addr)

	_, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls, "second resolve served from cache")
}

func TestKeyResolver_MissingField(t *testing.T) {
	provider := &mockProvider{values: map[string]string{"other": "x"}}
	cache := secrets.NewCache[*LocalSigner](time.Minute)
	r := NewKeyResolver(nil, provider, cache, "rfq/signer", "signing_key")

	_, err := r.Resolve(context.Background())
	assert.Error(t, err)
}

func TestKeyResolver_ProviderFailure(t *testing.T) {
	provider := &mockProvider{err: errors.New("access denied")}
	cache := secrets.NewCache[*LocalSigner](time.Minute)
	r := NewKeyResolver(nil, provider, cache, "rfq/signer", "signing_key")

	_, err := r.Resolve(context.Background())
	assert.Error(t, err)
}
