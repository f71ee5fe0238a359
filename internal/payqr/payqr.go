// Package payqr builds VietQR bank-transfer image URLs. It only templates a
// URL; no payment is initiated or confirmed.
package payqr

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const baseURL = "https://img.vietqr.io/image"

var ErrNoAccount = errors.New("payqr: bank code and account number are required")

// Account is the beneficiary.
type Account struct {
	BankCode string // e.g. VCB, TCB, MB
	Number   string
	Name     string // optional
}

func (a Account) Valid() bool {
	return strings.TrimSpace(a.BankCode) != "" && strings.TrimSpace(a.Number) != ""
}

// ImageURL returns the qr_only image URL for amount (floored at 0) with info
// as the transfer description.
func ImageURL(a Account, amount int64, info string) (string, error) {
	if !a.Valid() {
		return "", ErrNoAccount
	}
	if amount < 0 {
		amount = 0
	}
	q := url.Values{}
	q.Set("amount", fmt.Sprint(amount))
	q.Set("addInfo", info)
	if name := strings.TrimSpace(a.Name); name != "" {
		q.Set("accountName", name)
	}
	return fmt.Sprintf("%s/%s-%s-qr_only.png?%s",
		baseURL,
		url.PathEscape(strings.TrimSpace(a.BankCode)),
		url.PathEscape(strings.TrimSpace(a.Number)),
		q.Encode()), nil
}
