package sphincsplus

// import
import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding"
	"encoding/binary"
	"hash"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// tweakHash is the keyed hash core bound to one public seed. Instances keep
// scratch state and must not be shared between goroutines; use clone.
type tweakHash interface {
	// prf derives a secret value from skSeed under adrs.
	prf(out, skSeed []byte, adrs *address)
	// f is the chaining function.
	f(out []byte, adrs *address, in []byte)
	// h compresses two nodes.
	h(out []byte, adrs *address, left, right []byte)
	// t compresses a sequence of n-byte values.
	t(out []byte, adrs *address, in []byte)
	// prfMsg derives the randomizer R.
	prfMsg(out, skPrf, optRand, msg []byte)
	// hMsg derives the m-byte digest of msg.
	hMsg(out, r, pkRoot, msg []byte)
	clone() tweakHash
}

// newTweakHash ...
func newTweakHash(p *ParameterSet, pkSeed []byte) tweakHash {
	switch p.Family {
	case FamilySHA2:
		return newSHA2Hash(p.N, pkSeed)
	case FamilySHAKE:
		return &xofHash{n: p.N, pkSeed: pkSeed, x: sha3.NewShake256(), newXOF: newShake}
	case FamilyBLAKE3:
		return &xofHash{n: p.N, pkSeed: pkSeed, x: newBlake3XOF(), newXOF: newBlake3XOF}
	default:
		panic("sphincsplus: internal error: newTweakHash: unknown family")
	}
}

func hashPanic(err error) {
	panic(hashFailure{err: err})
}

// sha2Hash follows FIPS 205 section 11.2. The padded public seed block is
// absorbed once and the digest state restored from its marshaled form.
type sha2Hash struct {
	n      int
	pkSeed []byte
	state  []byte // sha256 after PK.seed || 0^(64-n)
	stateX []byte // H/T hash after PK.seed block (sha512 for n > 16)
	newX   func() hash.Hash
	small  hash.Hash
	large  hash.Hash
	adrs   [22]byte
	sum    [sha512.Size]byte
}

func newSHA2Hash(n int, pkSeed []byte) *sha2Hash {
	s := &sha2Hash{n: n, pkSeed: pkSeed, newX: sha256.New}
	if n > 16 {
		s.newX = sha512.New
	}
	s.small = sha256.New()
	s.state = seededState(s.small, pkSeed, sha256.BlockSize)
	s.large = s.newX()
	s.stateX = seededState(s.large, pkSeed, s.large.BlockSize())
	return s
}

func seededState(h hash.Hash, pkSeed []byte, block int) []byte {
	var zero [sha512.BlockSize]byte
	h.Write(pkSeed)
	h.Write(zero[:block-len(pkSeed)])
	state, err := h.(encoding.BinaryMarshaler).MarshalBinary()
	if err != nil {
		hashPanic(err)
	}
	return state
}

func (s *sha2Hash) clone() tweakHash {
	c := *s
	c.small = sha256.New()
	c.large = s.newX()
	return &c
}

func (s *sha2Hash) start(large bool, adrs *address) hash.Hash {
	h, state := s.small, s.state
	if large {
		h, state = s.large, s.stateX
	}
	if err := h.(encoding.BinaryUnmarshaler).UnmarshalBinary(state); err != nil {
		hashPanic(err)
	}
	adrs.compressed(&s.adrs)
	h.Write(s.adrs[:])
	return h
}

func (s *sha2Hash) finish(out []byte, h hash.Hash) {
	copy(out[:s.n], h.Sum(s.sum[:0]))
}

func (s *sha2Hash) prf(out, skSeed []byte, adrs *address) {
	h := s.start(false, adrs)
	h.Write(skSeed)
	s.finish(out, h)
}

func (s *sha2Hash) f(out []byte, adrs *address, in []byte) {
	h := s.start(false, adrs)
	h.Write(in)
	s.finish(out, h)
}

func (s *sha2Hash) h(out []byte, adrs *address, left, right []byte) {
	h := s.start(s.n > 16, adrs)
	h.Write(left)
	h.Write(right)
	s.finish(out, h)
}

func (s *sha2Hash) t(out []byte, adrs *address, in []byte) {
	h := s.start(s.n > 16, adrs)
	h.Write(in)
	s.finish(out, h)
}

func (s *sha2Hash) prfMsg(out, skPrf, optRand, msg []byte) {
	mac := hmac.New(s.newX, skPrf)
	mac.Write(optRand)
	mac.Write(msg)
	copy(out[:s.n], mac.Sum(nil))
}

func (s *sha2Hash) hMsg(out, r, pkRoot, msg []byte) {
	h := s.newX()
	h.Write(r)
	h.Write(s.pkSeed)
	h.Write(pkRoot)
	h.Write(msg)
	mgf1(out, s.newX, multiSliceAppend(r, s.pkSeed, h.Sum(nil)))
}

// mgf1 is MGF1 from RFC 8017 over newHash.
func mgf1(out []byte, newHash func() hash.Hash, seed []byte) {
	var ctr [4]byte
	h := newHash()
	buf := make([]byte, 0, len(out)+h.Size())
	for c := uint32(0); len(buf) < len(out); c++ {
		binary.BigEndian.PutUint32(ctr[:], c)
		h.Reset()
		h.Write(seed)
		h.Write(ctr[:])
		buf = h.Sum(buf)
	}
	copy(out, buf)
}

// xof is an extendable output function that can be reused after Reset.
type xof interface {
	io.Writer
	io.Reader
	Reset()
}

func newShake() xof { return sha3.NewShake256() }

// blake3XOF reads the output of a blake3 hasher as an xof.
type blake3XOF struct{ h *blake3.Hasher }

func newBlake3XOF() xof { return &blake3XOF{h: blake3.New()} }
func (b *blake3XOF) Write(p []byte) (int, error) { return b.h.Write(p) }
func (b *blake3XOF) Read(p []byte) (int, error) { return b.h.Digest().Read(p) }
func (b *blake3XOF) Reset() { b.h.Reset() }

// xofHash follows FIPS 205 section 11.1 for any xof.
type xofHash struct {
	n      int
	pkSeed []byte
	x      xof
	newXOF func() xof
	adrs   [32]byte
}

func (s *xofHash) clone() tweakHash {
	c := *s
	c.x = s.newXOF()
	return &c
}

func (s *xofHash) sum(out []byte, in ...[]byte) {
	s.x.Reset()
	for _, b := range in {
		s.x.Write(b)
	}
	if _, err := io.ReadFull(s.x, out); err != nil {
		hashPanic(err)
	}
}

func (s *xofHash) prf(out, skSeed []byte, adrs *address) {
	adrs.bytes(&s.adrs)
	s.sum(out[:s.n], s.pkSeed, s.adrs[:], skSeed)
}

func (s *xofHash) f(out []byte, adrs *address, in []byte) {
	adrs.bytes(&s.adrs)
	s.sum(out[:s.n], s.pkSeed, s.adrs[:], in)
}

func (s *xofHash) h(out []byte, adrs *address, left, right []byte) {
	adrs.bytes(&s.adrs)
	s.sum(out[:s.n], s.pkSeed, s.adrs[:], left, right)
}

func (s *xofHash) t(out []byte, adrs *address, in []byte) {
	adrs.bytes(&s.adrs)
	s.sum(out[:s.n], s.pkSeed, s.adrs[:], in)
}

func (s *xofHash) prfMsg(out, skPrf, optRand, msg []byte) {
	s.sum(out[:s.n], skPrf, optRand, msg)
}

func (s *xofHash) hMsg(out, r, pkRoot, msg []byte) {
	s.sum(out, r, s.pkSeed, pkRoot, msg)
}
