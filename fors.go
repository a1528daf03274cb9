package sphincsplus

// forsSkGen derives the fors secret at global leaf index idx.
func forsSkGen(th tweakHash, out, skSeed []byte, adrs *address, idx uint32) {
	skAdrs := *adrs
	skAdrs.setType(addrForsPrf)
	skAdrs.copyKeyPair(adrs)
	skAdrs.setTreeIndex(idx)
	th.prf(out, skSeed, &skAdrs)
}

// forsIndices splits the message digest into k leaf indices of a bits.
func forsIndices(p *ParameterSet, md []byte) []uint32 {
	idx := make([]uint32, p.K)
	base2b(idx, md, p.A)
	return idx
}

// forsTree builds fors tree i. adrs has type fors tree and the key pair set.
func forsTree(p *ParameterSet, threads int, th tweakHash, skSeed []byte, adrs address, i uint32) *merkleTree {
	t := newMerkleTree(p.A, p.N)
	base := i << uint(p.A)
	forLeaves(threads, 1<<p.A, th, func(th tweakHash, j uint32) {
		sk := make([]byte, p.N)
		forsSkGen(th, sk, skSeed, &adrs, base+j)
		la := adrs
		la.setTreeHeight(0)
		la.setTreeIndex(base + j)
		th.f(t.node(0, j), &la, sk)
	})
	t.reduce(th, &adrs, base)
	return t
}

// forsCompress folds the k tree roots into the fors public key.
func forsCompress(th tweakHash, out, roots []byte, adrs *address) {
	pkAdrs := *adrs
	pkAdrs.setType(addrForsRoots)
	pkAdrs.copyKeyPair(adrs)
	th.t(out, &pkAdrs, roots)
}

// forsSign writes the fors signature of md into sig and the public key it
// signs under into pk.
func forsSign(p *ParameterSet, threads int, th tweakHash, sig, pk, md, skSeed []byte, adrs address) {
	n := p.N
	roots := make([]byte, p.K*n)
	for i, idx := range forsIndices(p, md) {
		off := i * (p.A + 1) * n
		forsSkGen(th, sig[off:off+n], skSeed, &adrs, uint32(i)<<uint(p.A)+idx)
		t := forsTree(p, threads, th, skSeed, adrs, uint32(i))
		t.authPath(sig[off+n:off+(p.A+1)*n], idx)
		copy(roots[i*n:(i+1)*n], t.root())
	}
	forsCompress(th, pk, roots, &adrs)
}

// forsPkFromSig computes the candidate fors public key for sig on md.
func forsPkFromSig(p *ParameterSet, th tweakHash, out, sig, md []byte, adrs address) {
	n := p.N
	roots := make([]byte, p.K*n)
	leaf := make([]byte, n)
	for i, idx := range forsIndices(p, md) {
		off := i * (p.A + 1) * n
		base := uint32(i) << uint(p.A)
		la := adrs
		la.setTreeHeight(0)
		la.setTreeIndex(base + idx)
		th.f(leaf, &la, sig[off:off+n])
		climb(th, roots[i*n:(i+1)*n], leaf, idx, sig[off+n:off+(p.A+1)*n], p.A, n, base, &la)
	}
	forsCompress(th, out, roots, &adrs)
}
