package ledger

import (
	"encoding/hex"
	"fmt"
	"sort"

	"carmint/internal/domain"

	"github.com/fxamacker/cbor/v2"
)

// witnessOverhead approximates the bytes a vkey witness, the native script,
// and the outer transaction framing add on top of the body when the fee is
// computed from the body size alone.
const witnessOverhead = 160

// Assembler builds one balanced, fee-paid unsigned minting transaction from
// a UTxO snapshot. Inputs are taken exclusively from the supplied snapshot,
// largest lovelace value first.
type Assembler struct {
	MinFeeA      uint64
	MinFeeB      uint64
	MinUTxOValue uint64
}

func NewAssembler(minFeeA, minFeeB, minUTxOValue uint64) *Assembler {
	return &Assembler{MinFeeA: minFeeA, MinFeeB: minFeeB, MinUTxOValue: minUTxOValue}
}

func (a *Assembler) Assemble(req domain.AssemblyRequest) (domain.UnsignedTx, error) {
	auxCBOR, err := marshalAuxData(req.Metadata)
	if err != nil {
		return domain.UnsignedTx{}, err
	}

	policyBytes, err := hex.DecodeString(req.Policy.ID)
	if err != nil {
		return domain.UnsignedTx{}, fmt.Errorf("%w: policy id: %v", domain.ErrIdentity, err)
	}
	tokenName, err := hex.DecodeString(req.TokenNameHex)
	if err != nil {
		return domain.UnsignedTx{}, fmt.Errorf("%w: token name: %v", domain.ErrIdentity, err)
	}
	changeAddr, err := decodeAddress(req.ChangeAddress)
	if err != nil {
		return domain.UnsignedTx{}, err
	}

	mint := map[cbor.ByteString]map[cbor.ByteString]int64{
		cbor.ByteString(policyBytes): {cbor.ByteString(tokenName): 1},
	}

	candidates := make([]domain.UTxO, len(req.UTxOs))
	copy(candidates, req.UTxOs)
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Value != candidates[j].Value {
			return candidates[i].Value > candidates[j].Value
		}
		if candidates[i].TxHash != candidates[j].TxHash {
			return candidates[i].TxHash < candidates[j].TxHash
		}
		return candidates[i].Index < candidates[j].Index
	})

	var (
		selected  []txInput
		totalCoin uint64
	)
	changeAssets := map[cbor.ByteString]map[cbor.ByteString]uint64{
		cbor.ByteString(policyBytes): {cbor.ByteString(tokenName): 1},
	}
	auxHash := auxDataHash(auxCBOR)

	for _, utxo := range candidates {
		input, err := toTxInput(utxo)
		if err != nil {
			return domain.UnsignedTx{}, err
		}
		selected = append(selected, input)
		totalCoin += utxo.Value
		if err := mergeAssets(changeAssets, utxo.Assets); err != nil {
			return domain.UnsignedTx{}, err
		}

		bodyCBOR, fee, err := a.balance(selected, changeAddr, totalCoin, changeAssets, mint, auxHash)
		if err != nil {
			return domain.UnsignedTx{}, err
		}
		if bodyCBOR == nil {
			continue // not enough value yet, take another input
		}

		return domain.UnsignedTx{
			Body:       bodyCBOR,
			BodyHash:   bodyHash(bodyCBOR),
			AuxData:    auxCBOR,
			ScriptCBOR: req.Policy.ScriptCBOR,
			KeyHash:    req.Policy.KeyHash,
			Fee:        fee,
		}, nil
	}

	return domain.UnsignedTx{}, fmt.Errorf("%w: %d lovelace available across %d utxos",
		domain.ErrInsufficientFunds, totalCoin, len(candidates))
}

// balance encodes the transaction with the change output absorbing whatever
// the fee leaves over. It returns a nil body when the selected inputs cannot
// cover fee plus the minimum change value.
func (a *Assembler) balance(
	inputs []txInput,
	changeAddr []byte,
	totalCoin uint64,
	changeAssets map[cbor.ByteString]map[cbor.ByteString]uint64,
	mint map[cbor.ByteString]map[cbor.ByteString]int64,
	auxHash []byte,
) ([]byte, uint64, error) {
	// Iterate until the fee written into the body matches the fee implied
	// by the body's size. Converges in two or three passes because only the
	// integer widths of fee and change can move.
	fee := a.MinFeeB
	for pass := 0; pass < 4; pass++ {
		if totalCoin < fee || totalCoin-fee < a.MinUTxOValue {
			return nil, 0, nil
		}
		body := txBody{
			Inputs: inputs,
			Outputs: []txOutput{{
				Address: changeAddr,
				Value:   txValue{Coin: totalCoin - fee, Assets: changeAssets},
			}},
			Fee:         fee,
			AuxDataHash: auxHash,
			Mint:        mint,
		}
		raw, err := marshalBody(body)
		if err != nil {
			return nil, 0, err
		}
		next := a.feeForSize(len(raw))
		if next <= fee {
			// The written fee already covers the encoded size.
			return raw, fee, nil
		}
		fee = next
	}
	return nil, 0, fmt.Errorf("fee calculation did not converge")
}

func (a *Assembler) feeForSize(bodyLen int) uint64 {
	return a.MinFeeA*uint64(bodyLen+witnessOverhead) + a.MinFeeB
}

func toTxInput(utxo domain.UTxO) (txInput, error) {
	hash, err := hex.DecodeString(utxo.TxHash)
	if err != nil {
		return txInput{}, fmt.Errorf("utxo %s#%d: %w", utxo.TxHash, utxo.Index, err)
	}
	return txInput{TxHash: hash, Index: utxo.Index}, nil
}

// mergeAssets folds the asset bundle of a consumed input into the change
// output so nothing but the fee leaves the wallet.
func mergeAssets(into map[cbor.ByteString]map[cbor.ByteString]uint64, assets map[string]uint64) error {
	for unit, qty := range assets {
		if len(unit) < policyIDHexLen {
			return fmt.Errorf("malformed asset unit %q", unit)
		}
		policy, err := hex.DecodeString(unit[:policyIDHexLen])
		if err != nil {
			return fmt.Errorf("asset unit %q: %w", unit, err)
		}
		name, err := hex.DecodeString(unit[policyIDHexLen:])
		if err != nil {
			return fmt.Errorf("asset unit %q: %w", unit, err)
		}
		byName := into[cbor.ByteString(policy)]
		if byName == nil {
			byName = make(map[cbor.ByteString]uint64)
			into[cbor.ByteString(policy)] = byName
		}
		byName[cbor.ByteString(name)] += qty
	}
	return nil
}

// policyIDHexLen is the hex length of a 28-byte policy id prefixing every
// asset unit.
const policyIDHexLen = 2 * paymentKeyHashLen
