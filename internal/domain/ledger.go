package domain

import "time"

// UTxO is one spendable output as reported by the indexer. Value is in
// lovelace; Assets maps asset units (policy id + asset name hex) to
// quantities riding on the same output.
type UTxO struct {
	TxHash string
	Index  uint32
	Value  uint64
	Assets map[string]uint64
}

// MintPolicy is the single-signature minting authorization derived from the
// wallet address. KeyHash is the payment credential the script requires;
// ScriptCBOR is the serialized native script attached as the mint witness.
type MintPolicy struct {
	ID         string
	KeyHash    []byte
	ScriptCBOR []byte
}

// AssemblyRequest carries everything the transaction assembler needs to
// build one unsigned minting transaction.
type AssemblyRequest struct {
	Policy        MintPolicy
	TokenNameHex  string
	Metadata      MetadataEnvelope
	ChangeAddress string
	UTxOs         []UTxO
}

// UnsignedTx is a balanced, fee-paid transaction body awaiting its witness
// set. It lives only for the duration of one mint request.
type UnsignedTx struct {
	Body       []byte
	BodyHash   []byte
	AuxData    []byte
	ScriptCBOR []byte
	KeyHash    []byte
	Fee        uint64
}

// SignedTx is the fully witnessed transaction ready for broadcast.
type SignedTx struct {
	CBOR []byte
	Hash string
}

// LabeledMetadata is one metadata entry attached to a transaction, as
// returned by the indexer.
type LabeledMetadata struct {
	Label        string `json:"label"`
	JSONMetadata any    `json:"json_metadata"`
}

// AssetInfo combines ledger-level asset attributes with the on-chain
// metadata stored at mint time.
type AssetInfo struct {
	Asset             string `json:"asset"`
	PolicyID          string `json:"policy_id"`
	AssetName         string `json:"asset_name"`
	Fingerprint       string `json:"fingerprint"`
	Quantity          string `json:"quantity"`
	InitialMintTxHash string `json:"initial_mint_tx_hash"`
	OnchainMetadata   any    `json:"onchain_metadata,omitempty"`
}

// MintReceipt records an issued identity so duplicate submissions for the
// same triple can be answered without assembling a second transaction.
type MintReceipt struct {
	AssetID        string
	PolicyID       string
	TokenName      string
	TxHash         string
	VehicleNumber  string
	InspectionDate string
	InspectorID    string
	CreatedAt      time.Time
}
