package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
)

const referenceCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode returns n characters from an unambiguous A-Z/2-9 alphabet,
// drawn with crypto/rand to avoid modulo bias.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid length")
	}
	var sb strings.Builder
	alphaLen := big.NewInt(int64(len(referenceCharset)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, alphaLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(referenceCharset[num.Int64()])
	}
	return sb.String(), nil
}

// GenerateReferenceCode builds a booking reference such as "BK240102-7QH4".
func GenerateReferenceCode(day time.Time) (string, error) {
	suffix, err := GenerateCode(4)
	if err != nil {
		return "", err
	}
	return "BK" + day.Format("060102") + "-" + suffix, nil
}

// InvoiceID formats the invoice number of a bill.
func InvoiceID(issued time.Time, billID uint) string {
	return fmt.Sprintf("INV-%s-%d", issued.Format("200601"), billID)
}

// RoundMoney rounds to two decimals.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
