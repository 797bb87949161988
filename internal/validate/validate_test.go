package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotedesk/rfq-client/pkg/model"
)

const (
	addrA = "0x1111111111111111111111111111111111111111"
	addrB = "0x2222222222222222222222222222222222222222"
)

func validInput() model.CreateRFQInput {
	return model.CreateRFQInput{
		BaseToken:   model.TokenInfo{Address: addrA, ChainID: 1},
		QuoteToken:  model.TokenInfo{Address: addrB, ChainID: 1},
		BaseAmount:  "1000000000000000000",
		QuoteAmount: "2000000000",
		ExpiresIn:   time.Now().Unix() + 3600,
	}
}

func TestAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "valid lowercase", addr: addrA},
		{name: "valid mixed case", addr: "0xAbCdEf1234567890aBcDeF1234567890abcdef12"},
		{name: "empty", addr: "", wantErr: true},
		{name: "missing prefix", addr: "1111111111111111111111111111111111111111", wantErr: true},
		{name: "too short", addr: "0x1111", wantErr: true},
		{name: "too long", addr: addrA + "ab", wantErr: true},
		{name: "non-hex chars", addr: "0xzz11111111111111111111111111111111111111", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Address("creator", tt.addr)
			if tt.wantErr {
				var verr *model.ValidationError
				require.Error(t, err)
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "creator", verr.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToken(t *testing.T) {
	require.NoError(t, Token("baseToken", model.TokenInfo{Address: addrA, ChainID: 137}))

	err := Token("baseToken", model.TokenInfo{Address: addrA, ChainID: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseToken.chainId")

	err = Token("baseToken", model.TokenInfo{Address: "bogus", ChainID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseToken.address")
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "positive integer", amount: "1"},
		{name: "wei-scale integer", amount: "1000000000000000000"},
		{name: "empty", amount: "", wantErr: true},
		{name: "literal zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-5", wantErr: true},
		{name: "decimal point", amount: "1.5", wantErr: true},
		{name: "leading plus", amount: "+10", wantErr: true},
		{name: "whitespace", amount: " 10", wantErr: true},
		{name: "hex digits", amount: "0x10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Amount("baseAmount", tt.amount)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpiration(t *testing.T) {
	now := time.Now().Unix()

	assert.NoError(t, Expiration("expiresIn", now+3600))
	assert.NoError(t, Expiration("expiresIn", now+MaxExpirationWindow-60))

	assert.Error(t, Expiration("expiresIn", 0))
	assert.Error(t, Expiration("expiresIn", -1))
	assert.Error(t, Expiration("expiresIn", now-10))
	assert.Error(t, Expiration("expiresIn", now+MaxExpirationWindow+3600))
}

func TestRFQID(t *testing.T) {
	assert.NoError(t, RFQID("rfq-0xabc-1700000000-9f3a"))
	assert.Error(t, RFQID(""))
	assert.Error(t, RFQID("   "))
}

func TestCreateInput(t *testing.T) {
	require.NoError(t, CreateInput(validInput()))

	tests := []struct {
		name      string
		mutate    func(in *model.CreateRFQInput)
		wantField string
	}{
		{
			name:      "bad base token address",
			mutate:    func(in *model.CreateRFQInput) { in.BaseToken.Address = "invalid-address" },
			wantField: "baseToken.address",
		},
		{
			name:      "bad quote chain",
			mutate:    func(in *model.CreateRFQInput) { in.QuoteToken.ChainID = -1 },
			wantField: "quoteToken.chainId",
		},
		{
			name:      "zero base amount",
			mutate:    func(in *model.CreateRFQInput) { in.BaseAmount = "0" },
			wantField: "baseAmount",
		},
		{
			name:      "garbage quote amount",
			mutate:    func(in *model.CreateRFQInput) { in.QuoteAmount = "12three" },
			wantField: "quoteAmount",
		},
		{
			name:      "expired",
			mutate:    func(in *model.CreateRFQInput) { in.ExpiresIn = time.Now().Unix() - 5 },
			wantField: "expiresIn",
		},
		{
			name:      "bad min fill amount",
			mutate:    func(in *model.CreateRFQInput) { in.MinFillAmount = "1.5" },
			wantField: "minFillAmount",
		},
		{
			name: "bad counterparty address",
			mutate: func(in *model.CreateRFQInput) {
				in.CounterpartyRestrictions = []string{addrA, "nope"}
			},
			wantField: "counterpartyRestrictions.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := CreateInput(in)
			var verr *model.ValidationError
			require.Error(t, err)
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}
