package checkout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepositCheckoutKey_Stable(t *testing.T) {
	k1 := DepositCheckoutKey("b-123", 4500, "EUR")
	k2 := DepositCheckoutKey("b-123", 4500, "EUR")
	assert.Equal(t, k1, k2)
}

func TestDepositCheckoutKey_FieldSensitivity(t *testing.T) {
	base := DepositCheckoutKey("b-123", 4500, "EUR")

	assert.NotEqual(t, base, DepositCheckoutKey("b-124", 4500, "EUR"))
	assert.NotEqual(t, base, DepositCheckoutKey("b-123", 4501, "EUR"))
	assert.NotEqual(t, base, DepositCheckoutKey("b-123", 4500, "USD"))
}

func TestDepositCheckoutKey_CurrencyCaseInsensitive(t *testing.T) {
	assert.Equal(t,
		DepositCheckoutKey("b-123", 4500, "eur"),
		DepositCheckoutKey("b-123", 4500, "EUR"),
	)
	assert.Equal(t,
		DepositCheckoutKey("b-123", 4500, " EUR "),
		DepositCheckoutKey("b-123", 4500, "eur"),
	)
}

func TestDeriveKey_OmitsEmptyFields(t *testing.T) {
	// An unset optional field must hash the same as an absent one.
	withEmpty := DeriveKey("p", []string{"a", "", "b"}, nil)
	without := DeriveKey("p", []string{"a", "b"}, nil)
	assert.Equal(t, without, withEmpty)
}

func TestDeriveKey_ExtraMapOrderIndependent(t *testing.T) {
	k1 := DeriveKey("p", []string{"x"}, map[string]string{"alpha": "1", "beta": "2", "gamma": "3"})
	k2 := DeriveKey("p", []string{"x"}, map[string]string{"gamma": "3", "alpha": "1", "beta": "2"})
	assert.Equal(t, k1, k2)

	// Empty extra values are skipped like empty fields.
	k3 := DeriveKey("p", []string{"x"}, map[string]string{"alpha": "1", "beta": "2", "gamma": "3", "unset": ""})
	assert.Equal(t, k1, k3)
}

func TestDeriveKey_Format(t *testing.T) {
	k := DeriveKey("deposit_checkout", []string{strings.Repeat("x", 500)}, nil)

	assert.True(t, strings.HasPrefix(k, "deposit_checkout-"))
	assert.Len(t, k, len("deposit_checkout-")+digestLen)
	assert.Less(t, len(k), 255)
}
