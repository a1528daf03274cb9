// Package sphincsplus provides stateless hashbased hypertree post-quantum
// secure signatures (SLH-DSA, FIPS 205).
package sphincsplus

// import
import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// const
const (
	// MaxContextSize is the longest context string accepted by Sign and Verify.
	MaxContextSize = 255
)

// Instance binds a parameter set to execution options. It holds no key
// material and is safe for concurrent use.
type Instance struct {
	Params *ParameterSet
	// Threads is the number of goroutines used to compute tree leaves.
	// Will use runtime.NumCPU() if set to 0.
	Threads int
}

// NewInstance ...
func NewInstance(p *ParameterSet) *Instance {
	return &Instance{Params: p}
}

// NewInstanceFromName ...
func NewInstanceFromName(name string) (*Instance, error) {
	p, err := ParameterSetByName(name)
	if err != nil {
		return nil, err
	}
	return NewInstance(p), nil
}

// GenerateKey draws a 3n byte seed from rand and derives a key pair from it.
func (in *Instance) GenerateKey(rand io.Reader) (*PublicKey, *PrivateKey, error) {
	if in.Params == nil {
		return nil, nil, newError(KindInvalidParameterSet, "nil parameter set")
	}
	seed := make([]byte, in.Params.SeedSize())
	defer wipe(seed)
	if _, err := io.ReadFull(rand, seed); err != nil {
		return nil, nil, fmt.Errorf("sphincsplus: read key seed: %w", err)
	}
	return in.DeriveKey(seed)
}

// DeriveKey derives a key pair from seed = SK.seed || SK.prf || PK.seed.
func (in *Instance) DeriveKey(seed []byte) (pk *PublicKey, sk *PrivateKey, err error) {
	p := in.Params
	switch {
	case p == nil:
		return nil, nil, newError(KindInvalidParameterSet, "nil parameter set")
	case len(seed) != p.SeedSize():
		return nil, nil, newError(KindMalformedInput, "%s seed: got %d bytes, want %d", p.Name, len(seed), p.SeedSize())
	}
	defer recoverHashFailure(&err)
	start := time.Now()
	n := p.N
	c := make([]byte, 4*n)
	copy(c, seed)
	sk = &PrivateKey{
		skSeed: c[:n:n],
		skPrf:  c[n : 2*n : 2*n],
		pk:     PublicKey{params: p, seed: c[2*n : 3*n : 3*n], root: c[3*n:]},
	}
	var top address
	top.setLayer(uint32(p.D - 1))
	xmssRoot(p, in.Threads, newTweakHash(p, sk.pk.seed), sk.pk.root, sk.skSeed, top)
	pk = &PublicKey{params: p, seed: sk.pk.seed, root: sk.pk.root}
	log().Debug("generated key pair",
		zap.String("params", p.Name),
		fingerprintField(pk),
		zap.Duration("took", time.Since(start)))
	return pk, sk, nil
}

// Sign signs msg under context ctx (at most MaxContextSize bytes). With a
// nil rand the signature is deterministic, otherwise n random bytes are
// mixed into the randomizer.
func (in *Instance) Sign(rand io.Reader, sk *PrivateKey, msg, ctx []byte) (sig []byte, err error) {
	p := in.Params
	switch {
	case p == nil:
		return nil, newError(KindInvalidParameterSet, "nil parameter set")
	case sk == nil || !p.equal(sk.pk.params):
		return nil, newError(KindInvalidParameterSet, "private key does not belong to %s", p.Name)
	case sk.skSeed == nil:
		return nil, newError(KindMalformedInput, "private key was destroyed")
	case len(ctx) > MaxContextSize:
		return nil, newError(KindMalformedInput, "context of %d bytes exceeds %d", len(ctx), MaxContextSize)
	}
	optRand := sk.pk.seed
	if rand != nil {
		optRand = make([]byte, p.N)
		if _, err := io.ReadFull(rand, optRand); err != nil {
			return nil, fmt.Errorf("sphincsplus: read randomizer: %w", err)
		}
	}
	defer recoverHashFailure(&err)
	sig = make([]byte, p.SignatureSize())
	if !in.signInternal(sig, frame(msg, ctx), optRand, sk) {
		log().Error("signature does not chain to public root",
			zap.String("params", p.Name),
			fingerprintField(&sk.pk))
		return nil, newError(KindMalformedInput, "private key is inconsistent with its public root")
	}
	return sig, nil
}

// signInternal is slh_sign_internal over the framed message.
func (in *Instance) signInternal(sig, msg, optRand []byte, sk *PrivateKey) bool {
	p, n := in.Params, in.Params.N
	th := newTweakHash(p, sk.pk.seed)
	r := sig[:n]
	th.prfMsg(r, sk.skPrf, optRand, msg)
	digest := make([]byte, p.M)
	th.hMsg(digest, r, sk.pk.root, msg)
	md, idxTree, idxLeaf := splitDigest(p, digest)
	var a address
	a.setTree(idxTree)
	a.setType(addrForsTree)
	a.setKeyPair(idxLeaf)
	forsPk := make([]byte, n)
	fs := p.forsSigSize()
	forsSign(p, in.Threads, th, sig[n:n+fs], forsPk, md, sk.skSeed, a)
	return htSign(p, in.Threads, th, sig[n+fs:], forsPk, sk.skSeed, sk.pk.root, idxTree, idxLeaf)
}

// Verify reports whether sig is a valid signature of msg under ctx.
// Malformed inputs yield false.
func (in *Instance) Verify(pk *PublicKey, msg, sig, ctx []byte) bool {
	return in.verify(pk, msg, sig, ctx) == nil
}

// verify returns ErrMalformedInput, ErrVerificationFailed or nil.
func (in *Instance) verify(pk *PublicKey, msg, sig, ctx []byte) (err error) {
	p := in.Params
	switch {
	case p == nil || pk == nil || !p.equal(pk.params):
		return ErrMalformedInput
	case len(sig) != p.SignatureSize():
		return ErrMalformedInput
	case len(ctx) > MaxContextSize:
		return ErrMalformedInput
	}
	defer recoverHashFailure(&err)
	n := p.N
	th := newTweakHash(p, pk.seed)
	m := frame(msg, ctx)
	digest := make([]byte, p.M)
	th.hMsg(digest, sig[:n], pk.root, m)
	md, idxTree, idxLeaf := splitDigest(p, digest)
	var a address
	a.setTree(idxTree)
	a.setType(addrForsTree)
	a.setKeyPair(idxLeaf)
	forsPk := make([]byte, n)
	fs := p.forsSigSize()
	forsPkFromSig(p, th, forsPk, sig[n:n+fs], md, a)
	if !htVerify(p, th, forsPk, sig[n+fs:], pk.root, idxTree, idxLeaf) {
		return ErrVerificationFailed
	}
	return nil
}

// frame builds 0x00 || len(ctx) || ctx || msg.
func frame(msg, ctx []byte) []byte {
	return multiSliceAppend([]byte{0, byte(len(ctx))}, ctx, msg)
}

// splitDigest splits the message digest into the fors input, the tree
// index and the leaf index.
func splitDigest(p *ParameterSet, digest []byte) ([]byte, uint64, uint32) {
	md := digest[:p.mdBytes]
	idxTree := toInt(digest[p.mdBytes : p.mdBytes+p.treeBytes])
	idxLeaf := toInt(digest[p.mdBytes+p.treeBytes : p.M])
	if bits := p.H - p.HP; bits < 64 {
		idxTree &= 1<<uint(bits) - 1
	}
	return md, idxTree, uint32(idxLeaf & (1<<uint(p.HP) - 1))
}

// toInt reads up to 8 bytes big-endian.
func toInt(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateKey generates a key pair for p using all cpus.
func GenerateKey(rand io.Reader, p *ParameterSet) (*PublicKey, *PrivateKey, error) {
	return NewInstance(p).GenerateKey(rand)
}

// Sign signs msg with an empty context. A nil rand selects deterministic signing.
func Sign(rand io.Reader, sk *PrivateKey, msg []byte) ([]byte, error) {
	if sk == nil {
		return nil, newError(KindMalformedInput, "nil private key")
	}
	return NewInstance(sk.pk.params).Sign(rand, sk, msg, nil)
}

// Verify takes a public key, message and signature and returns true if the
// signature is valid under an empty context.
func Verify(pk *PublicKey, msg, sig []byte) bool {
	if pk == nil {
		return false
	}
	return NewInstance(pk.params).Verify(pk, msg, sig, nil)
}
