package auth

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"

	"catalog-report/internal/apperr"
)

// Credential keys as they appear in the credentials map of the configuration.
const (
	CredLookupPublic  = "lookup_public"
	CredLookupPrivate = "lookup_private"
	CredPublishKey    = "publish_key"
)

// FixedTimestamp is the "ts" value sent with every lookup request.
// The server verifies hash = md5(ts + private + public), so this literal must not change.
const FixedTimestamp = "1"

// Query parameter names of the lookup API's signing scheme.
const (
	ParamTimestamp = "ts"
	ParamAPIKey    = "apikey"
	ParamHash      = "hash"
)

// Signer holds the lookup API key pair and produces the request hash.
type Signer struct {
	publicKey  string
	privateKey string
}

// NewSigner builds a Signer from the credentials map. A missing key fails with
// apperr.ErrMissingValue, an empty one with apperr.ErrInvalidValue.
func NewSigner(credentials map[string]string) (*Signer, error) {
	pub, err := apperr.RequireCredential(credentials, CredLookupPublic)
	if err != nil {
		return nil, err
	}
	priv, err := apperr.RequireCredential(credentials, CredLookupPrivate)
	if err != nil {
		return nil, err
	}
	return &Signer{publicKey: pub, privateKey: priv}, nil
}

// PublicKey returns the key sent as the apikey parameter.
func (s *Signer) PublicKey() string {
	return s.publicKey
}

// Hash returns hex(md5(FixedTimestamp + privateKey + publicKey)).
func (s *Signer) Hash() string {
	return Hash(FixedTimestamp, s.privateKey, s.publicKey)
}

// Hash concatenates its parts in order and returns the hex MD5 of the result.
func Hash(parts ...string) string {
	hasher := md5.New()
	for _, p := range parts {
		_, _ = hasher.Write([]byte(p))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Apply adds ts, apikey and hash to q, replacing any existing values.
func (s *Signer) Apply(q url.Values) {
	q.Set(ParamTimestamp, FixedTimestamp)
	q.Set(ParamAPIKey, s.publicKey)
	q.Set(ParamHash, s.Hash())
}
