package sphincsplus

import "encoding/binary"

// genChain applies f steps times to in, starting at chain position start.
func genChain(th tweakHash, out, in []byte, start, steps uint32, adrs *address) {
	copy(out, in)
	for j := start; j < start+steps; j++ {
		adrs.setHash(j)
		th.f(out, adrs, out)
	}
}

// base2b splits x into len(out) big-endian digits of b bits each.
func base2b(out []uint32, x []byte, b int) {
	var total uint32
	var have, in int
	mask := uint32(1)<<uint(b) - 1
	for i := range out {
		for have < b {
			total = total<<8 | uint32(x[in])
			in++
			have += 8
		}
		have -= b
		out[i] = (total >> uint(have)) & mask
	}
}

// wotsDigits encodes an n-byte message plus checksum into len base-w digits.
func wotsDigits(p *ParameterSet, msg []byte) []uint32 {
	if len(msg) != p.N {
		panic("sphincsplus: internal error: wotsDigits: message length != n")
	}
	d := make([]uint32, p.Len)
	base2b(d[:p.Len1], msg, p.LgW)
	var csum uint32
	for _, v := range d[:p.Len1] {
		csum += uint32(p.W-1) - v
	}
	csum <<= uint((8 - (p.Len2*p.LgW)%8) % 8)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], csum)
	base2b(d[p.Len1:], buf[4-(p.Len2*p.LgW+7)/8:], p.LgW)
	return d
}

// wotsSecret derives the secret start of chain i for the key pair in adrs.
func wotsSecret(th tweakHash, out, skSeed []byte, adrs *address, i uint32) {
	skAdrs := *adrs
	skAdrs.setType(addrWotsPrf)
	skAdrs.copyKeyPair(adrs)
	skAdrs.setChain(i)
	th.prf(out, skSeed, &skAdrs)
}

// wotsCompress folds the chain ends into the wots public key.
func wotsCompress(th tweakHash, out, ends []byte, adrs *address) {
	pkAdrs := *adrs
	pkAdrs.setType(addrWotsPk)
	pkAdrs.copyKeyPair(adrs)
	th.t(out, &pkAdrs, ends)
}

// wotsPkGen computes the compressed wots public key for the key pair in adrs
// (type wots hash, key pair set).
func wotsPkGen(p *ParameterSet, th tweakHash, out, skSeed []byte, adrs *address) {
	n := p.N
	ends := make([]byte, p.Len*n)
	sk := make([]byte, n)
	for i := 0; i < p.Len; i++ {
		wotsSecret(th, sk, skSeed, adrs, uint32(i))
		adrs.setChain(uint32(i))
		genChain(th, ends[i*n:(i+1)*n], sk, 0, uint32(p.W-1), adrs)
	}
	wotsCompress(th, out, ends, adrs)
}

// wotsSign writes len*n bytes of chain values for msg into sig.
func wotsSign(p *ParameterSet, th tweakHash, sig, msg, skSeed []byte, adrs *address) {
	n := p.N
	sk := make([]byte, n)
	for i, d := range wotsDigits(p, msg) {
		wotsSecret(th, sk, skSeed, adrs, uint32(i))
		adrs.setChain(uint32(i))
		genChain(th, sig[i*n:(i+1)*n], sk, 0, d, adrs)
	}
}

// wotsPkFromSig completes every chain of sig and compresses the ends.
func wotsPkFromSig(p *ParameterSet, th tweakHash, out, sig, msg []byte, adrs *address) {
	n := p.N
	ends := make([]byte, p.Len*n)
	w1 := uint32(p.W - 1)
	for i, d := range wotsDigits(p, msg) {
		adrs.setChain(uint32(i))
		genChain(th, ends[i*n:(i+1)*n], sig[i*n:(i+1)*n], d, w1-d, adrs)
	}
	wotsCompress(th, out, ends, adrs)
}
