package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carmint/internal/config"
	"carmint/internal/domain"
	"carmint/internal/usecase"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPolicyID = "d6cfdbedd242056674c0e51ead01b105e8af58cc537e5c50fdc4a699"

type stubPolicy struct{}

func (stubPolicy) Resolve(string) (domain.MintPolicy, error) {
	return domain.MintPolicy{ID: testPolicyID, KeyHash: make([]byte, 28), ScriptCBOR: []byte{0x82, 0x00}}, nil
}

type stubUTxOs struct{ err error }

func (s stubUTxOs) ListUTxOs(context.Context, string) ([]domain.UTxO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.UTxO{{TxHash: "aa", Index: 0, Value: 5_000_000}}, nil
}

type stubAssembler struct{ err error }

func (s stubAssembler) Assemble(domain.AssemblyRequest) (domain.UnsignedTx, error) {
	if s.err != nil {
		return domain.UnsignedTx{}, s.err
	}
	return domain.UnsignedTx{Body: []byte{0xa0}, BodyHash: make([]byte, 32), Fee: 170000}, nil
}

type stubSigner struct{}

func (stubSigner) Sign(domain.UnsignedTx) (domain.SignedTx, error) {
	return domain.SignedTx{CBOR: []byte{0x84}, Hash: "cafe01"}, nil
}

type stubSubmitter struct{ err error }

func (s stubSubmitter) Submit(_ context.Context, signed domain.SignedTx) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return signed.Hash, nil
}

type stubQuerier struct {
	metadata []domain.LabeledMetadata
	asset    *domain.AssetInfo
	err      error
}

func (s stubQuerier) MetadataByTx(context.Context, string) ([]domain.LabeledMetadata, error) {
	return s.metadata, s.err
}

func (s stubQuerier) AssetInfo(context.Context, string) (*domain.AssetInfo, error) {
	return s.asset, s.err
}

type denyAfterLimiter struct {
	limit int
	seen  int
}

func (d *denyAfterLimiter) Allow(_ context.Context, _ string, limit int, _ time.Duration) (domain.RateLimitDecision, error) {
	d.seen++
	allowed := d.seen <= d.limit
	return domain.RateLimitDecision{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: d.limit - d.seen,
		ResetAt:   time.Now().Add(time.Minute),
	}, nil
}

func testConfig() config.Config {
	return config.Config{
		HTTPAddr:              ":0",
		RequestTimeoutSeconds: 5,
	}
}

func testServer(mintDeps *usecase.MintAsset, querier usecase.MetadataQuerier, limiter domain.RateLimiter, cfg config.Config) *Server {
	deps := ServerDeps{Mint: mintDeps, RateLimiter: limiter}
	if querier != nil {
		deps.Query = &usecase.QueryMetadata{Querier: querier}
	}
	return NewServerWithDeps(cfg, deps)
}

func defaultMint(assembleErr, submitErr error) *usecase.MintAsset {
	return &usecase.MintAsset{
		WalletAddress: "addr1vxtest",
		Policy:        stubPolicy{},
		UTxOs:         stubUTxOs{},
		Assembler:     stubAssembler{err: assembleErr},
		Signer:        stubSigner{},
		Submitter:     stubSubmitter{err: submitErr},
	}
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

const validMintBody = `{
	"vehicleNumber": "AB1234CD",
	"inspectionDate": "2025-03-19T10:30:00Z",
	"inspectorId": "12345",
	"mileage": "120000",
	"status": "passed",
	"pdfurl": "https://example.com/report.pdf"
}`

func TestHealthz(t *testing.T) {
	s := testServer(defaultMint(nil, nil), stubQuerier{}, nil, testConfig())
	w := doJSON(t, s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"no-db"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestMintSuccess(t *testing.T) {
	s := testServer(defaultMint(nil, nil), stubQuerier{}, nil, testConfig())
	w := doJSON(t, s, http.MethodPost, "/api/metadata", validMintBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp mintResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TxHash != "cafe01" {
		t.Fatalf("txHash = %s", resp.TxHash)
	}
	wantAsset := testPolicyID + domain.TokenNameHex(domain.TokenName("AB1234CD", "2025-03-19T10:30:00Z", "12345"))
	if resp.AssetID != wantAsset {
		t.Fatalf("assetId = %s, want %s", resp.AssetID, wantAsset)
	}
}

func TestMintMissingFieldIs400(t *testing.T) {
	s := testServer(defaultMint(nil, nil), stubQuerier{}, nil, testConfig())
	body := strings.Replace(validMintBody, `"120000"`, `""`, 1)
	w := doJSON(t, s, http.MethodPost, "/api/metadata", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "mileage") {
		t.Fatalf("body does not name the missing field: %s", w.Body.String())
	}
}

func TestMintInvalidJSONIs400(t *testing.T) {
	s := testServer(defaultMint(nil, nil), stubQuerier{}, nil, testConfig())
	w := doJSON(t, s, http.MethodPost, "/api/metadata", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestMintInsufficientFundsIs500(t *testing.T) {
	s := testServer(defaultMint(domain.ErrInsufficientFunds, nil), stubQuerier{}, nil, testConfig())
	w := doJSON(t, s, http.MethodPost, "/api/metadata", validMintBody)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestMintSubmissionFailureIs502(t *testing.T) {
	s := testServer(defaultMint(nil, domain.ErrSubmission), stubQuerier{}, nil, testConfig())
	w := doJSON(t, s, http.MethodPost, "/api/metadata", validMintBody)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestMetadataByTx(t *testing.T) {
	querier := stubQuerier{metadata: []domain.LabeledMetadata{{Label: "721", JSONMetadata: map[string]any{"k": "v"}}}}
	s := testServer(defaultMint(nil, nil), querier, nil, testConfig())
	w := doJSON(t, s, http.MethodGet, "/api/metadata/cafe01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var entries []domain.LabeledMetadata
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Label != "721" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestMetadataUpstreamStatusPassesThrough(t *testing.T) {
	querier := stubQuerier{err: &domain.QueryError{Status: 404, Message: "transaction not found"}}
	s := testServer(defaultMint(nil, nil), querier, nil, testConfig())
	w := doJSON(t, s, http.MethodGet, "/api/metadata/ffffff", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "transaction not found") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestAssetInfo(t *testing.T) {
	querier := stubQuerier{asset: &domain.AssetInfo{Asset: "d6cf00", Quantity: "1"}}
	s := testServer(defaultMint(nil, nil), querier, nil, testConfig())
	w := doJSON(t, s, http.MethodGet, "/api/nft/d6cf00", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"d6cf00"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestRateLimitReturns429(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitWindowSeconds = 60
	limiter := &denyAfterLimiter{limit: 1}
	s := testServer(defaultMint(nil, nil), stubQuerier{}, limiter, cfg)

	if w := doJSON(t, s, http.MethodPost, "/api/metadata", validMintBody); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w := doJSON(t, s, http.MethodPost, "/api/metadata", validMintBody)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestHealthzNotRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitWindowSeconds = 60
	limiter := &denyAfterLimiter{limit: 0}
	s := testServer(defaultMint(nil, nil), stubQuerier{}, limiter, cfg)

	w := doJSON(t, s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
