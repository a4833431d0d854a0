package ledger

import (
	"fmt"

	"carmint/internal/domain"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

type txInput struct {
	_      struct{} `cbor:",toarray"`
	TxHash []byte
	Index  uint32
}

// txValue encodes as a bare coin amount when no assets ride on the output,
// and as [coin, multiasset] otherwise.
type txValue struct {
	Coin   uint64
	Assets map[cbor.ByteString]map[cbor.ByteString]uint64
}

func (v txValue) MarshalCBOR() ([]byte, error) {
	if len(v.Assets) == 0 {
		return encMode.Marshal(v.Coin)
	}
	return encMode.Marshal([]any{v.Coin, v.Assets})
}

type txOutput struct {
	_       struct{} `cbor:",toarray"`
	Address []byte
	Value   txValue
}

type txBody struct {
	Inputs      []txInput                                     `cbor:"0,keyasint"`
	Outputs     []txOutput                                    `cbor:"1,keyasint"`
	Fee         uint64                                        `cbor:"2,keyasint"`
	AuxDataHash []byte                                        `cbor:"7,keyasint,omitempty"`
	Mint        map[cbor.ByteString]map[cbor.ByteString]int64 `cbor:"9,keyasint,omitempty"`
}

type vkeyWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

type witnessSet struct {
	VKeys         []vkeyWitness     `cbor:"0,keyasint,omitempty"`
	NativeScripts []cbor.RawMessage `cbor:"1,keyasint,omitempty"`
}

func marshalBody(body txBody) ([]byte, error) {
	raw, err := encMode.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal tx body: %w", err)
	}
	return raw, nil
}

// bodyHash is the transaction id preimage: blake2b-256 of the encoded body.
func bodyHash(bodyCBOR []byte) []byte {
	sum := blake2b.Sum256(bodyCBOR)
	return sum[:]
}

// marshalSignedTx produces the wire transaction:
// [body, witness_set, is_valid, auxiliary_data].
func marshalSignedTx(bodyCBOR []byte, witnesses witnessSet, auxCBOR []byte) ([]byte, error) {
	var aux any
	if len(auxCBOR) > 0 {
		aux = cbor.RawMessage(auxCBOR)
	}
	raw, err := encMode.Marshal([]any{
		cbor.RawMessage(bodyCBOR),
		witnesses,
		true,
		aux,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal signed tx: %w", err)
	}
	return raw, nil
}

// marshalAuxData serializes the metadata envelope as auxiliary data after
// checking it against the ledger's metadata constraints.
func marshalAuxData(env domain.MetadataEnvelope) ([]byte, error) {
	if err := validateMetadata(env); err != nil {
		return nil, err
	}
	raw, err := encMode.Marshal(map[uint64]any(env))
	if err != nil {
		return nil, fmt.Errorf("%w: marshal metadata: %v", domain.ErrInvalidMetadata, err)
	}
	return raw, nil
}

func auxDataHash(auxCBOR []byte) []byte {
	sum := blake2b.Sum256(auxCBOR)
	return sum[:]
}

const metadataMaxStringLen = 64

// validateMetadata walks the envelope and rejects values the ledger would
// refuse, before anything reaches the network.
func validateMetadata(env domain.MetadataEnvelope) error {
	for label, value := range env {
		if err := validateMetadataValue(value); err != nil {
			return fmt.Errorf("label %d: %w", label, err)
		}
	}
	return nil
}

func validateMetadataValue(value any) error {
	switch v := value.(type) {
	case string:
		if len(v) > metadataMaxStringLen {
			return fmt.Errorf("%w: string exceeds %d bytes", domain.ErrInvalidMetadata, metadataMaxStringLen)
		}
	case int, int64, uint64:
	case []string:
		for _, item := range v {
			if err := validateMetadataValue(item); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range v {
			if err := validateMetadataValue(item); err != nil {
				return err
			}
		}
	case map[string]any:
		for key, item := range v {
			if len(key) > metadataMaxStringLen {
				return fmt.Errorf("%w: key %q exceeds %d bytes", domain.ErrInvalidMetadata, key, metadataMaxStringLen)
			}
			if err := validateMetadataValue(item); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unsupported metadata type %T", domain.ErrInvalidMetadata, value)
	}
	return nil
}
