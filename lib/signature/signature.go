package signature

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"

	"github.com/egimarket/reserve/lib/errors"
	"golang.org/x/crypto/scrypt"
)

// keySalt is the fixed scrypt salt used to derive the signing seed from the
// configured secret. Changing it invalidates all previously issued
// signatures.
const keySalt = "reserve-certificate-v1"

// Signer signs and verifies canonical payloads with an Ed25519 key derived
// from a secret. The secret is read once at startup; key rotation is an
// operational concern handled by re-issuing certificates.
type Signer struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

// NewSigner derives the signing keypair from the provided secret.
func NewSigner(
	secret string,
) (*Signer, error) {
	if secret == "" {
		return nil, errors.Trace(
			errors.Newf("Cannot derive a signing key from an empty secret"))
	}

	seed, err := scrypt.Key(
		[]byte(secret), []byte(keySalt), 32768, 8, 1, ed25519.SeedSize)
	if err != nil {
		return nil, errors.Trace(err)
	}

	private := ed25519.NewKeyFromSeed(seed)
	return &Signer{
		private: private,
		public:  private.Public().(ed25519.PublicKey),
	}, nil
}

// Sign signs the canonical payload, returning the hex-encoded signature.
func (s *Signer) Sign(
	payload []byte,
) string {
	return hex.EncodeToString(ed25519.Sign(s.private, payload))
}

// Verify checks the hex-encoded signature against the canonical payload.
func (s *Signer) Verify(
	payload []byte,
	signature string,
) bool {
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return ed25519.Verify(s.public, payload, sig)
}

// PublicKey returns the hex-encoded public key, exposed so that third
// parties can re-verify certificates independently.
func (s *Signer) PublicKey() string {
	return hex.EncodeToString(s.public)
}

// ContextKey is the type of the key used with context to carry the
// contextual signer.
type ContextKey string

const (
	// signerKey the context.Context key to store the signer.
	signerKey ContextKey = "signature.signer"
)

// With stores the signer in the provided context.
func With(
	ctx context.Context,
	signer *Signer,
) context.Context {
	return context.WithValue(ctx, signerKey, signer)
}

// Get returns the signer currently stored in the context.
func Get(
	ctx context.Context,
) *Signer {
	return ctx.Value(signerKey).(*Signer)
}
