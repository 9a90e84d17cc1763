package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountIDValidate(t *testing.T) {
	valid := []AccountID{
		"alice",
		"bob.alice",
		"sub_account.with-dash.near",
		"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
	}
	for _, id := range valid {
		assert.NoError(t, id.Validate(), "id %q", id)
	}

	invalid := []AccountID{
		"",
		"a",
		"Alice",
		"alice..near",
		".alice",
		"alice.",
		"alice near",
		"_alice",
		"alice-",
		AccountID("a234567890123456789012345678901234567890123456789012345678901234x"),
	}
	for _, id := range invalid {
		assert.Error(t, id.Validate(), "id %q", id)
	}
}

func TestIsSubAccountOf(t *testing.T) {
	assert.True(t, AccountID("bob.alice").IsSubAccountOf("alice"))
	assert.True(t, AccountID("app.bob.alice").IsSubAccountOf("bob.alice"))

	assert.False(t, AccountID("bob.alice").IsSubAccountOf("bob"))
	assert.False(t, AccountID("app.bob.alice").IsSubAccountOf("alice"), "only direct children count")
	assert.False(t, AccountID("alice").IsSubAccountOf("alice"))
}

func TestBalanceNEAR(t *testing.T) {
	one := NEAR(1)
	require.Equal(t, "1000000000000000000000000", one.String())
	assert.Equal(t, "1", one.NEARString())

	v := NEAR(3).BigInt()
	half, err := BalanceFromBig(v.Div(v, big.NewInt(2)))
	require.NoError(t, err)
	assert.Equal(t, "1.5", half.NEARString())
}

func TestBalanceJSONRoundTrip(t *testing.T) {
	b := NEAR(42)
	data, err := b.MarshalJSON()
	require.NoError(t, err)

	var parsed Balance
	require.NoError(t, parsed.UnmarshalJSON(data))
	assert.Zero(t, b.Cmp(parsed))
}
