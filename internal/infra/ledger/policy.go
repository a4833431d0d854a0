package ledger

import (
	"encoding/hex"
	"sync"

	"carmint/internal/domain"
)

// PolicyResolver derives the single-signature minting policy for a wallet
// address. Resolution is pure, so results are cached for the lifetime of
// the process.
type PolicyResolver struct {
	mu    sync.Mutex
	cache map[string]domain.MintPolicy
}

func NewPolicyResolver() *PolicyResolver {
	return &PolicyResolver{cache: make(map[string]domain.MintPolicy)}
}

func (r *PolicyResolver) Resolve(address string) (domain.MintPolicy, error) {
	r.mu.Lock()
	cached, ok := r.cache[address]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	keyHash, err := paymentKeyHash(address)
	if err != nil {
		return domain.MintPolicy{}, err
	}
	scriptCBOR, err := buildSigScript(keyHash)
	if err != nil {
		return domain.MintPolicy{}, err
	}
	hash, err := scriptHash(scriptCBOR)
	if err != nil {
		return domain.MintPolicy{}, err
	}

	policy := domain.MintPolicy{
		ID:         hex.EncodeToString(hash),
		KeyHash:    keyHash,
		ScriptCBOR: scriptCBOR,
	}
	r.mu.Lock()
	r.cache[address] = policy
	r.mu.Unlock()
	return policy, nil
}
