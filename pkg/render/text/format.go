package text

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// Shortening bounds. A string at or below the threshold is shown whole.
const (
	txidHead, txidTail = 8, 8
	addrHead, addrTail = 10, 6
)

const ellipsis = "…"

// ShortenTxid abbreviates a 64-char txid to its first and last hex digits.
func ShortenTxid(txid string) string {
	return shorten(txid, txidHead, txidTail)
}

// ShortenAddress abbreviates an address, keeping the prefix readable.
func ShortenAddress(addr string) string {
	return shorten(addr, addrHead, addrTail)
}

// ShortenOutpoint renders "txid:vout" with the txid abbreviated.
func ShortenOutpoint(txid string, vout uint32) string {
	return fmt.Sprintf("%s:%d", ShortenTxid(txid), vout)
}

func shorten(s string, head, tail int) string {
	if len(s) <= head+tail+len(ellipsis) {
		return s
	}
	return s[:head] + ellipsis + s[len(s)-tail:]
}

// FormatSats renders an amount as grouped satoshis, e.g. "12,345,678 sat".
func FormatSats(v btcutil.Amount) string {
	return groupDigits(int64(v)) + " sat"
}

// FormatFeerate renders a feerate with one decimal, e.g. "12.3 sat/vB".
func FormatFeerate(satPerVB float64) string {
	return strconv.FormatFloat(satPerVB, 'f', 1, 64) + " sat/vB"
}

// groupDigits inserts thousands separators into a decimal integer.
func groupDigits(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
