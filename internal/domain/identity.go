package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// MetadataLabel is the NFT metadata convention label (CIP-25).
const MetadataLabel = uint64(721)

// displayNamePrefix + token name forms the on-chain display name. The token
// name variant is used so the display name stays unique per asset even when
// the same vehicle is inspected more than once.
const displayNamePrefix = "CarInspection-"

// AssetIdentity is the derived on-chain identity of one inspection record.
// For a fixed (vehicle, date, inspector) triple and a fixed signing identity
// every field is identical across derivations.
type AssetIdentity struct {
	TokenName    string
	TokenNameHex string
	PolicyID     string
	AssetID      string
}

// TokenName derives the content-addressed token name: the first 32 hex
// characters of the SHA-256 digest of the hyphen-joined identity triple.
func TokenName(vehicleNumber, inspectionDate, inspectorID string) string {
	sum := sha256.Sum256([]byte(vehicleNumber + "-" + inspectionDate + "-" + inspectorID))
	return hex.EncodeToString(sum[:])[:32]
}

// TokenNameHex re-encodes the UTF-8 bytes of the token name as hex, the
// representation the ledger uses for asset names.
func TokenNameHex(tokenName string) string {
	return hex.EncodeToString([]byte(tokenName))
}

// DeriveIdentity computes the full asset identity for a record under the
// given policy id.
func DeriveIdentity(rec InspectionRecord, policyID string) AssetIdentity {
	name := TokenName(rec.VehicleNumber, rec.InspectionDate, rec.InspectorID)
	nameHex := TokenNameHex(name)
	return AssetIdentity{
		TokenName:    name,
		TokenNameHex: nameHex,
		PolicyID:     policyID,
		AssetID:      policyID + nameHex,
	}
}

// MetadataEnvelope is the label-keyed on-chain payload.
type MetadataEnvelope map[uint64]any

// metadataMaxStringLen is the ledger limit for a single metadata text value.
const metadataMaxStringLen = 64

// BuildMetadataEnvelope assembles the label-721 payload:
// 721 -> policyID -> tokenName -> record fields plus display name.
// Values longer than the ledger's 64-byte string limit are chunked into
// arrays of strings, per common CIP-25 practice for long URLs.
func BuildMetadataEnvelope(identity AssetIdentity, rec InspectionRecord) MetadataEnvelope {
	fields := map[string]any{
		"name":           displayNamePrefix + identity.TokenName,
		"vehicleNumber":  chunkMetadataString(rec.VehicleNumber),
		"inspectionDate": chunkMetadataString(rec.InspectionDate),
		"inspectorId":    chunkMetadataString(rec.InspectorID),
		"mileage":        chunkMetadataString(rec.Mileage),
		"status":         chunkMetadataString(rec.Status),
		"pdfUrl":         chunkMetadataString(rec.PDFURL),
	}
	return MetadataEnvelope{
		MetadataLabel: map[string]any{
			identity.PolicyID: map[string]any{
				identity.TokenName: fields,
			},
		},
	}
}

// chunkMetadataString splits only at rune boundaries so every chunk stays
// valid UTF-8 within the byte budget.
func chunkMetadataString(s string) any {
	if len(s) <= metadataMaxStringLen {
		return s
	}
	var parts []string
	start := 0
	for i, r := range s {
		if i+utf8.RuneLen(r)-start > metadataMaxStringLen {
			parts = append(parts, s[start:i])
			start = i
		}
	}
	parts = append(parts, s[start:])
	return parts
}
