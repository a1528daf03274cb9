package sphincsplus

// import
import (
	"math/bits"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
)

// Family selects the hash instantiation of a parameter set.
type Family uint8

// const
const (
	FamilySHA2 Family = iota
	FamilySHAKE
	// FamilyBLAKE3 is not part of FIPS 205.
	FamilyBLAKE3
)

// String ...
func (f Family) String() string {
	switch f {
	case FamilySHA2:
		return "SHA2"
	case FamilySHAKE:
		return "SHAKE"
	case FamilyBLAKE3:
		return "BLAKE3"
	}
	return "unknown"
}

// ParameterSet is an immutable SLH-DSA parameter set with all derived values.
type ParameterSet struct {
	Name   string
	Family Family
	N      int // security parameter, bytes
	H      int // total hypertree height
	D      int // hypertree layers
	HP     int // height of one xmss tree
	A      int // fors tree height
	K      int // number of fors trees
	LgW    int // bits per wots digit
	W      int
	Len1   int
	Len2   int
	Len    int
	M      int // message digest bytes

	mdBytes   int
	treeBytes int
	leafBytes int
}

// NewParameterSet validates and derives a parameter set. Custom sets are
// accepted as long as they are internally consistent.
func NewParameterSet(name string, family Family, n, h, d, a, k, lgw int) (*ParameterSet, error) {
	switch {
	case family > FamilyBLAKE3:
		return nil, newError(KindInvalidParameterSet, "%s: unknown hash family %d", name, family)
	case n != 16 && n != 24 && n != 32:
		return nil, newError(KindInvalidParameterSet, "%s: n=%d not in {16,24,32}", name, n)
	case lgw != 2 && lgw != 4 && lgw != 8:
		return nil, newError(KindInvalidParameterSet, "%s: lg_w=%d not in {2,4,8}", name, lgw)
	case d < 1 || h < d || h%d != 0:
		return nil, newError(KindInvalidParameterSet, "%s: h=%d not divisible into d=%d layers", name, h, d)
	case h/d > 16:
		return nil, newError(KindInvalidParameterSet, "%s: xmss height %d exceeds 16", name, h/d)
	case h-h/d > 64:
		return nil, newError(KindInvalidParameterSet, "%s: tree index needs %d bits", name, h-h/d)
	case a < 1 || a > 20 || k < 1:
		return nil, newError(KindInvalidParameterSet, "%s: fors a=%d k=%d out of range", name, a, k)
	case uint64(k)<<uint(a) > 1<<32:
		return nil, newError(KindInvalidParameterSet, "%s: fors index space k*2^a overflows", name)
	}
	p := &ParameterSet{Name: name, Family: family, N: n, H: h, D: d, HP: h / d, A: a, K: k, LgW: lgw}
	p.W = 1 << lgw
	p.Len1 = (8*n + lgw - 1) / lgw
	p.Len2 = (bits.Len(uint(p.Len1*(p.W-1)))-1)/lgw + 1
	p.Len = p.Len1 + p.Len2
	p.mdBytes = (k*a + 7) / 8
	p.treeBytes = (h - p.HP + 7) / 8
	p.leafBytes = (p.HP + 7) / 8
	p.M = p.mdBytes + p.treeBytes + p.leafBytes
	return p, nil
}

// PublicKeySize ...
func (p *ParameterSet) PublicKeySize() int { return 2 * p.N }

// PrivateKeySize ...
func (p *ParameterSet) PrivateKeySize() int { return 4 * p.N }

// SeedSize is the length of the seed accepted by DeriveKey.
func (p *ParameterSet) SeedSize() int { return 3 * p.N }

// SignatureSize ...
func (p *ParameterSet) SignatureSize() int {
	return p.N * (1 + p.K*(p.A+1) + p.H + p.D*p.Len)
}

// Standard reports whether the set is one of the FIPS 205 sets.
func (p *ParameterSet) Standard() bool {
	return p.Family != FamilyBLAKE3 && strings.HasPrefix(p.Name, "SLH-DSA-")
}

func (p *ParameterSet) forsSigSize() int { return p.K * (p.A + 1) * p.N }
func (p *ParameterSet) wotsSigSize() int { return p.Len * p.N }
func (p *ParameterSet) xmssSigSize() int { return (p.Len + p.HP) * p.N }

func (p *ParameterSet) equal(o *ParameterSet) bool {
	return p == o || (p != nil && o != nil && *p == *o)
}

// registry
var registry = orderedmap.NewOrderedMap[string, *ParameterSet]()
var aliases = orderedmap.NewOrderedMap[string, string]()

func init() {
	type shape struct {
		suffix             string
		n, h, d, a, k, lgw int
	}
	shapes := []shape{
		{"128s", 16, 63, 7, 12, 14, 4},
		{"128f", 16, 66, 22, 6, 33, 4},
		{"192s", 24, 63, 7, 14, 17, 4},
		{"192f", 24, 66, 22, 8, 33, 4},
		{"256s", 32, 64, 8, 14, 22, 4},
		{"256f", 32, 68, 17, 9, 35, 4},
	}
	families := []struct {
		prefix string
		family Family
	}{
		{"SLH-DSA-SHA2-", FamilySHA2},
		{"SLH-DSA-SHAKE-", FamilySHAKE},
		{"SPHINCS+-BLAKE3-", FamilyBLAKE3},
	}
	for _, f := range families {
		for _, s := range shapes {
			p, err := NewParameterSet(f.prefix+s.suffix, f.family, s.n, s.h, s.d, s.a, s.k, s.lgw)
			if err != nil {
				panic("sphincsplus: internal error: " + err.Error())
			}
			registry.Set(p.Name, p)
		}
	}
	for _, s := range shapes {
		aliases.Set(s.suffix, "SLH-DSA-SHA2-"+s.suffix)
		aliases.Set("sha2_"+s.suffix, "SLH-DSA-SHA2-"+s.suffix)
		aliases.Set("shake_"+s.suffix, "SLH-DSA-SHAKE-"+s.suffix)
	}
}

// ParameterSetByName looks up a registered set by name or short alias
// (e.g. "128s", "sha2_128s", "shake_256f").
func ParameterSetByName(name string) (*ParameterSet, error) {
	if full, ok := aliases.Get(name); ok {
		name = full
	}
	p, ok := registry.Get(name)
	if !ok {
		return nil, newError(KindInvalidParameterSet, "unknown parameter set %q", name)
	}
	return p, nil
}

// ParameterSets returns all registered sets in registration order.
func ParameterSets() []*ParameterSet {
	out := make([]*ParameterSet, 0, registry.Len())
	for el := registry.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}
