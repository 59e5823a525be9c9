package checkout

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// digestLen is the hex length of the key suffix. prefix + "-" + 32 hex
// chars stays far under the gateway's 255-byte key limit.
const digestLen = 32

// DeriveKey builds a deterministic idempotency key from a purpose and an
// ordered list of fields. Empty fields are skipped entirely rather than
// hashed as placeholders, so two calls that both omit an optional field
// produce the same key. Extra entries are folded in sorted-key order so
// map iteration order never leaks into the result.
func DeriveKey(purpose string, fields []string, extra map[string]string) string {
	parts := make([]string, 0, len(fields)+len(extra))
	for _, f := range fields {
		if f == "" {
			continue
		}
		parts = append(parts, f)
	}

	if len(extra) > 0 {
		keys := make([]string, 0, len(extra))
		for k := range extra {
			if extra[k] != "" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+extra[k])
		}
	}

	sum := sha256.Sum256([]byte(purpose + "\x00" + strings.Join(parts, "\x00")))
	return purpose + "-" + hex.EncodeToString(sum[:])[:digestLen]
}

// DepositCheckoutKey derives the key for a deposit checkout-session call.
// Currency is case-normalized so "eur" and "EUR" name the same operation.
func DepositCheckoutKey(bookingID string, amountCents int64, currency string) string {
	return DeriveKey("deposit_checkout", []string{
		bookingID,
		strconv.FormatInt(amountCents, 10),
		strings.ToUpper(strings.TrimSpace(currency)),
	}, nil)
}
