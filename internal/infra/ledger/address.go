// Package ledger implements the minting side of the transaction pipeline:
// authorization script derivation, transaction assembly, and signing.
// Fee calculation and input selection live here so the usecase layer only
// deals with collaborator interfaces.
package ledger

import (
	"fmt"

	"carmint/internal/domain"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const paymentKeyHashLen = 28

// decodeAddress returns the raw payload bytes of a bech32 payment address.
func decodeAddress(address string) ([]byte, error) {
	hrp, data, err := bech32.DecodeNoLimit(address)
	if err != nil {
		return nil, fmt.Errorf("%w: decode address: %v", domain.ErrIdentity, err)
	}
	if hrp != "addr" && hrp != "addr_test" {
		return nil, fmt.Errorf("%w: unexpected address prefix %q", domain.ErrIdentity, hrp)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: address payload: %v", domain.ErrIdentity, err)
	}
	if len(payload) < 1+paymentKeyHashLen {
		return nil, fmt.Errorf("%w: address payload too short", domain.ErrIdentity)
	}
	return payload, nil
}

// paymentKeyHash extracts the payment key-hash credential from an address.
// Addresses whose payment part is a script credential cannot satisfy a
// single-signature minting policy and are rejected.
func paymentKeyHash(address string) ([]byte, error) {
	payload, err := decodeAddress(address)
	if err != nil {
		return nil, err
	}
	// Header nibble: even address types carry a key payment credential,
	// odd types a script credential.
	addrType := payload[0] >> 4
	if addrType%2 == 1 {
		return nil, fmt.Errorf("%w: address has a script payment credential", domain.ErrIdentity)
	}
	hash := make([]byte, paymentKeyHashLen)
	copy(hash, payload[1:1+paymentKeyHashLen])
	return hash, nil
}
