package ledger

import (
	"fmt"

	"carmint/internal/domain"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// Native script constructor tag for a single required signature.
const scriptTagPubKey = 0

// Prefix byte distinguishing native scripts in the script-hash preimage.
const scriptHashNamespace = 0x00

type sigScript struct {
	_       struct{} `cbor:",toarray"`
	Tag     uint8
	KeyHash []byte
}

// buildSigScript serializes a native script requiring exactly one signature
// from the given payment key hash.
func buildSigScript(keyHash []byte) ([]byte, error) {
	raw, err := encMode.Marshal(sigScript{Tag: scriptTagPubKey, KeyHash: keyHash})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal script: %v", domain.ErrIdentity, err)
	}
	return raw, nil
}

// scriptHash computes the policy id: blake2b-224 over the namespace byte
// followed by the serialized script.
func scriptHash(scriptCBOR []byte) ([]byte, error) {
	h, err := blake2b.New(paymentKeyHashLen, nil)
	if err != nil {
		return nil, err
	}
	h.Write([]byte{scriptHashNamespace})
	h.Write(scriptCBOR)
	return h.Sum(nil), nil
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
}
