package sphincsplus

// import
import (
	"crypto"
	"crypto/subtle"
	"io"

	"github.com/zeebo/blake3"
)

// PublicKey is PK.seed || PK.root for one parameter set.
type PublicKey struct {
	params *ParameterSet
	seed   []byte
	root   []byte
}

// PrivateKey is SK.seed || SK.prf || PK.seed || PK.root.
type PrivateKey struct {
	pk     PublicKey
	skSeed []byte
	skPrf  []byte
}

// Params ...
func (pk *PublicKey) Params() *ParameterSet { return pk.params }

// Bytes returns the 2n byte encoding.
func (pk *PublicKey) Bytes() []byte {
	return multiSliceAppend(pk.seed, pk.root)
}

// MarshalBinary ...
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return pk.Bytes(), nil
}

// Equal reports whether x is a *PublicKey with the same set and encoding.
func (pk *PublicKey) Equal(x crypto.PublicKey) bool {
	o, ok := x.(*PublicKey)
	if !ok || o == nil || !pk.params.equal(o.params) {
		return false
	}
	return subtle.ConstantTimeCompare(pk.seed, o.seed)&subtle.ConstantTimeCompare(pk.root, o.root) == 1
}

// Fingerprint is the blake3-256 digest of the encoded public key.
func (pk *PublicKey) Fingerprint() [32]byte {
	return blake3.Sum256(pk.Bytes())
}

// Params ...
func (sk *PrivateKey) Params() *ParameterSet { return sk.pk.params }

// Bytes returns the 4n byte encoding.
func (sk *PrivateKey) Bytes() []byte {
	return multiSliceAppend(sk.skSeed, sk.skPrf, sk.pk.seed, sk.pk.root)
}

// MarshalBinary ...
func (sk *PrivateKey) MarshalBinary() ([]byte, error) {
	return sk.Bytes(), nil
}

// Public returns the *PublicKey of sk.
func (sk *PrivateKey) Public() crypto.PublicKey {
	pk := sk.pk
	return &pk
}

// Equal ...
func (sk *PrivateKey) Equal(x crypto.PrivateKey) bool {
	o, ok := x.(*PrivateKey)
	if !ok || o == nil || !sk.pk.Equal(&o.pk) {
		return false
	}
	return subtle.ConstantTimeCompare(sk.skSeed, o.skSeed)&subtle.ConstantTimeCompare(sk.skPrf, o.skPrf) == 1
}

// SignerOpts passes a context string through crypto.Signer.
type SignerOpts struct {
	Context []byte
}

// HashFunc returns 0: messages are signed as is.
func (SignerOpts) HashFunc() crypto.Hash { return 0 }

// Sign implements crypto.Signer. The message is signed directly, opts must
// not name a hash. A nil rand produces a deterministic signature.
func (sk *PrivateKey) Sign(rand io.Reader, message []byte, opts crypto.SignerOpts) ([]byte, error) {
	var ctx []byte
	switch o := opts.(type) {
	case nil:
	case SignerOpts:
		ctx = o.Context
	case *SignerOpts:
		ctx = o.Context
	default:
		if opts.HashFunc() != 0 {
			return nil, newError(KindMalformedInput, "prehashed signing is not supported")
		}
	}
	return NewInstance(sk.pk.params).Sign(rand, sk, message, ctx)
}

// Destroy overwrites the secret parts of sk. The key is unusable afterwards.
func (sk *PrivateKey) Destroy() {
	for i := range sk.skSeed {
		sk.skSeed[i] = 0
	}
	for i := range sk.skPrf {
		sk.skPrf[i] = 0
	}
	sk.skSeed, sk.skPrf = nil, nil
}

// ParsePublicKey decodes a 2n byte public key.
func ParsePublicKey(p *ParameterSet, b []byte) (*PublicKey, error) {
	switch {
	case p == nil:
		return nil, newError(KindInvalidParameterSet, "nil parameter set")
	case len(b) != p.PublicKeySize():
		return nil, newError(KindMalformedInput, "%s public key: got %d bytes, want %d", p.Name, len(b), p.PublicKeySize())
	}
	c := append([]byte(nil), b...)
	n := p.N
	return &PublicKey{params: p, seed: c[:n:n], root: c[n:]}, nil
}

// ParsePrivateKey decodes a 4n byte private key.
func ParsePrivateKey(p *ParameterSet, b []byte) (*PrivateKey, error) {
	switch {
	case p == nil:
		return nil, newError(KindInvalidParameterSet, "nil parameter set")
	case len(b) != p.PrivateKeySize():
		return nil, newError(KindMalformedInput, "%s private key: got %d bytes, want %d", p.Name, len(b), p.PrivateKeySize())
	}
	c := append([]byte(nil), b...)
	n := p.N
	return &PrivateKey{
		skSeed: c[:n:n],
		skPrf:  c[n : 2*n : 2*n],
		pk:     PublicKey{params: p, seed: c[2*n : 3*n : 3*n], root: c[3*n:]},
	}, nil
}
