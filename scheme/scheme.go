// Package scheme exposes every registered parameter set as a circl
// sign.Scheme.
package scheme

// import
import (
	"crypto"
	"crypto/rand"
	"io"

	"github.com/cloudflare/circl/sign"
	"github.com/elliotchance/orderedmap/v2"
	"paepcke.de/sphincsplus"
)

// var
var schemes = orderedmap.NewOrderedMap[string, sign.Scheme]()

func init() {
	for _, p := range sphincsplus.ParameterSets() {
		schemes.Set(p.Name, &scheme{in: sphincsplus.NewInstance(p)})
	}
}

// ByName returns the scheme for a parameter set name or short alias.
func ByName(name string) (sign.Scheme, error) {
	p, err := sphincsplus.ParameterSetByName(name)
	if err != nil {
		return nil, err
	}
	s, _ := schemes.Get(p.Name)
	return s, nil
}

// All returns the schemes in registry order.
func All() []sign.Scheme {
	out := make([]sign.Scheme, 0, schemes.Len())
	for el := schemes.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// New wraps a custom instance.
func New(in *sphincsplus.Instance) sign.Scheme {
	return &scheme{in: in}
}

type scheme struct {
	in *sphincsplus.Instance
}

// PublicKey ...
type PublicKey struct {
	s *scheme
	k *sphincsplus.PublicKey
}

// PrivateKey ...
type PrivateKey struct {
	s *scheme
	k *sphincsplus.PrivateKey
}

var (
	_ sign.Scheme     = (*scheme)(nil)
	_ sign.PublicKey  = (*PublicKey)(nil)
	_ sign.PrivateKey = (*PrivateKey)(nil)
)

func (s *scheme) Name() string { return s.in.Params.Name }
func (s *scheme) PublicKeySize() int { return s.in.Params.PublicKeySize() }
func (s *scheme) PrivateKeySize() int { return s.in.Params.PrivateKeySize() }
func (s *scheme) SignatureSize() int { return s.in.Params.SignatureSize() }
func (s *scheme) SeedSize() int { return s.in.Params.SeedSize() }
func (s *scheme) SupportsContext() bool { return true }

func (s *scheme) GenerateKey() (sign.PublicKey, sign.PrivateKey, error) {
	pk, sk, err := s.in.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return &PublicKey{s: s, k: pk}, &PrivateKey{s: s, k: sk}, nil
}

func (s *scheme) DeriveKey(seed []byte) (sign.PublicKey, sign.PrivateKey) {
	if len(seed) != s.SeedSize() {
		panic(sign.ErrSeedSize)
	}
	pk, sk, err := s.in.DeriveKey(seed)
	if err != nil {
		panic(err)
	}
	return &PublicKey{s: s, k: pk}, &PrivateKey{s: s, k: sk}
}

func (s *scheme) Sign(sk sign.PrivateKey, message []byte, opts *sign.SignatureOpts) []byte {
	priv, ok := sk.(*PrivateKey)
	if !ok || priv.s.Name() != s.Name() {
		panic(sign.ErrTypeMismatch)
	}
	var ctx []byte
	if opts != nil {
		if len(opts.Context) > sphincsplus.MaxContextSize {
			panic(sign.ErrContextTooLong)
		}
		ctx = []byte(opts.Context)
	}
	sig, err := s.in.Sign(rand.Reader, priv.k, message, ctx)
	if err != nil {
		panic(err)
	}
	return sig
}

func (s *scheme) Verify(pk sign.PublicKey, message, signature []byte, opts *sign.SignatureOpts) bool {
	pub, ok := pk.(*PublicKey)
	if !ok || pub.s.Name() != s.Name() {
		panic(sign.ErrTypeMismatch)
	}
	var ctx []byte
	if opts != nil {
		ctx = []byte(opts.Context)
	}
	return s.in.Verify(pub.k, message, signature, ctx)
}

func (s *scheme) UnmarshalBinaryPublicKey(b []byte) (sign.PublicKey, error) {
	if len(b) != s.PublicKeySize() {
		return nil, sign.ErrPubKeySize
	}
	pk, err := sphincsplus.ParsePublicKey(s.in.Params, b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{s: s, k: pk}, nil
}

func (s *scheme) UnmarshalBinaryPrivateKey(b []byte) (sign.PrivateKey, error) {
	if len(b) != s.PrivateKeySize() {
		return nil, sign.ErrPrivKeySize
	}
	sk, err := sphincsplus.ParsePrivateKey(s.in.Params, b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{s: s, k: sk}, nil
}

// Scheme ...
func (pk *PublicKey) Scheme() sign.Scheme { return pk.s }

// MarshalBinary ...
func (pk *PublicKey) MarshalBinary() ([]byte, error) { return pk.k.MarshalBinary() }

// Equal ...
func (pk *PublicKey) Equal(x crypto.PublicKey) bool {
	o, ok := x.(*PublicKey)
	return ok && o != nil && pk.k.Equal(o.k)
}

// Scheme ...
func (sk *PrivateKey) Scheme() sign.Scheme { return sk.s }

// MarshalBinary ...
func (sk *PrivateKey) MarshalBinary() ([]byte, error) { return sk.k.MarshalBinary() }

// Equal ...
func (sk *PrivateKey) Equal(x crypto.PrivateKey) bool {
	o, ok := x.(*PrivateKey)
	return ok && o != nil && sk.k.Equal(o.k)
}

// Public ...
func (sk *PrivateKey) Public() crypto.PublicKey {
	return &PublicKey{s: sk.s, k: sk.k.Public().(*sphincsplus.PublicKey)}
}

// Sign implements crypto.Signer. opts is crypto.Hash(0) or a *sphincsplus.SignerOpts.
func (sk *PrivateKey) Sign(rnd io.Reader, message []byte, opts crypto.SignerOpts) ([]byte, error) {
	return sk.k.Sign(rnd, message, opts)
}
