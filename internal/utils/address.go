package utils

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var hexAddressPattern = regexp.MustCompile("^(0x)?[0-9a-fA-F]{40}$")

// IsEvmAddress 20-byte hex address, with or without 0x
func IsEvmAddress(address string) bool {
	return hexAddressPattern.MatchString(strings.TrimSpace(address))
}

// NormalizeEvmAddress checksummed 0x form
func NormalizeEvmAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !IsEvmAddress(address) {
		return "", fmt.Errorf("invalid EVM address: %q", address)
	}
	if !strings.HasPrefix(strings.ToLower(address), "0x") {
		address = "0x" + address
	}
	return common.HexToAddress(address).Hex(), nil
}

// ParseRecordID decimal or 0x-prefixed hex identifier, must be non-negative
func ParseRecordID(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	id, ok := new(big.Int).SetString(s, 0)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid record id: %q", s)
	}
	return id, nil
}
