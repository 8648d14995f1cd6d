// Package idgen generates short hash-based work-item IDs.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/tdvu/chanwork/internal/types"
)

// base36Alphabet is the character set for base36 encoding (0-9, a-z).
const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// DefaultLength is the hash portion length of generated IDs.
const DefaultLength = 6

// kindPrefixes keys item IDs by kind so an ID alone reveals what it names.
var kindPrefixes = map[types.Kind]string{
	types.KindTrouble: "tr",
	types.KindIssue:   "is",
	types.KindPlan:    "pl",
	types.KindTask:    "ta",
}

// Prefix returns the two-letter ID prefix for a kind.
func Prefix(kind types.Kind) string {
	return kindPrefixes[kind]
}

// EncodeBase36 converts a byte slice to a base36 string of the given length,
// zero-padded on the left and truncated to the least significant digits.
func EncodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)

	base := big.NewInt(36)
	zero := big.NewInt(0)
	mod := new(big.Int)

	chars := make([]byte, 0, length)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}

	var result strings.Builder
	for i := len(chars) - 1; i >= 0; i-- {
		result.WriteByte(chars[i])
	}

	str := result.String()
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	if len(str) > length {
		str = str[len(str)-length:]
	}
	return str
}

// GenerateItemID creates a kind-prefixed hash ID for a work item, e.g.
// "ta-8bi3tk". The nonce lets callers retry on the rare store-level
// collision without changing any other input.
func GenerateItemID(kind types.Kind, channelID, title, creator string, timestamp time.Time, nonce int) string {
	content := fmt.Sprintf("%s|%s|%s|%d|%d", channelID, title, creator, timestamp.UnixNano(), nonce)
	hash := sha256.Sum256([]byte(content))

	// 4 bytes = 32 bits, enough for a 6-char base36 hash.
	return fmt.Sprintf("%s-%s", kindPrefixes[kind], EncodeBase36(hash[:4], DefaultLength))
}
