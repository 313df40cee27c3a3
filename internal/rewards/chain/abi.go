package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// 4-byte selectors for the two contract calls this client makes.
const (
	selectorTransfer  = "a9059cbb" // transfer(address,uint256)
	selectorBalanceOf = "70a08231" // balanceOf(address)
)

// tokenDecimals matches the contract's 18-decimal fixed point.
var tokenUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ToBaseUnits converts whole coins to the contract's 18-decimal units.
func ToBaseUnits(coins int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(coins), tokenUnit)
}

// FromBaseUnits renders a base-unit balance as a whole-coin decimal
// string, trimming trailing zeros ("5", "2.5").
func FromBaseUnits(v *big.Int) string {
	q, r := new(big.Int).QuoRem(v, tokenUnit, new(big.Int))
	if r.Sign() == 0 {
		return q.String()
	}
	frac := strings.TrimRight(fmt.Sprintf("%018s", r.String()), "0")
	return q.String() + "." + frac
}

func padAddress(addr string) (string, error) {
	a := strings.TrimPrefix(strings.ToLower(addr), "0x")
	if len(a) != 40 {
		return "", fmt.Errorf("invalid address %q", addr)
	}
	for _, c := range a {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("invalid address %q", addr)
		}
	}
	return strings.Repeat("0", 24) + a, nil
}

func padUint(v *big.Int) string {
	h := v.Text(16)
	return strings.Repeat("0", 64-len(h)) + h
}

// encodeTransfer ABI-encodes transfer(to, amount) calldata.
func encodeTransfer(to string, amount *big.Int) (string, error) {
	addr, err := padAddress(to)
	if err != nil {
		return "", err
	}
	return "0x" + selectorTransfer + addr + padUint(amount), nil
}

// encodeBalanceOf ABI-encodes balanceOf(owner) calldata.
func encodeBalanceOf(owner string) (string, error) {
	addr, err := padAddress(owner)
	if err != nil {
		return "", err
	}
	return "0x" + selectorBalanceOf + addr, nil
}
