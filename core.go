package sphincsplus

import "crypto/subtle"

// merkleTree keeps a full binary tree in heap order: root at index 1,
// leaf i at (1<<height)+i.
type merkleTree struct {
	height int
	n      int
	nodes  []byte
}

// newMerkleTree ...
func newMerkleTree(height, n int) *merkleTree {
	return &merkleTree{height: height, n: n, nodes: make([]byte, (2<<height)*n)}
}

// node returns node i at height z.
func (t *merkleTree) node(z int, i uint32) []byte {
	k := (1 << (t.height - z)) + int(i)
	return t.nodes[k*t.n : (k+1)*t.n]
}

// root ...
func (t *merkleTree) root() []byte {
	return t.node(t.height, 0)
}

// authPath writes the siblings of leaf idx from the bottom up.
func (t *merkleTree) authPath(dst []byte, idx uint32) {
	for z := 0; z < t.height; z++ {
		copy(dst[z*t.n:(z+1)*t.n], t.node(z, (idx>>z)^1))
	}
}

// reduce hashes all internal nodes. adrs carries the node type; the tree
// index of node j at height z is (base>>z)+j.
func (t *merkleTree) reduce(th tweakHash, adrs *address, base uint32) {
	for z := 1; z <= t.height; z++ {
		adrs.setTreeHeight(uint32(z))
		for j := uint32(0); j < 1<<(t.height-z); j++ {
			adrs.setTreeIndex(base>>z + j)
			th.h(t.node(z, j), adrs, t.node(z-1, 2*j), t.node(z-1, 2*j+1))
		}
	}
}

// climb recomputes a root from a leaf and its authentication path.
func climb(th tweakHash, out, leaf []byte, idx uint32, auth []byte, height, n int, base uint32, adrs *address) {
	copy(out[:n], leaf)
	for z := 0; z < height; z++ {
		sib := auth[z*n : (z+1)*n]
		adrs.setTreeHeight(uint32(z + 1))
		adrs.setTreeIndex((base + idx) >> (z + 1))
		switch {
		case (idx>>z)&1 == 0:
			th.h(out, adrs, out[:n], sib)
		default:
			th.h(out, adrs, sib, out[:n])
		}
	}
}

// xmssLeaf computes leaf i (a wots public key) of the xmss tree at base.
func xmssLeaf(p *ParameterSet, th tweakHash, out, skSeed []byte, base *address, i uint32) {
	a := *base
	a.setType(addrWotsHash)
	a.setKeyPair(i)
	wotsPkGen(p, th, out, skSeed, &a)
}

// treehash computes the xmss root at base keeping only one node per level.
func treehash(p *ParameterSet, th tweakHash, out, skSeed []byte, base *address) {
	n := p.N
	stack := make([]byte, (p.HP+1)*n)
	levels := make([]int, p.HP+1)
	nodeAdrs := *base
	nodeAdrs.setType(addrTree)
	var top int
	for i := uint32(0); i < 1<<p.HP; i++ {
		xmssLeaf(p, th, stack[top*n:(top+1)*n], skSeed, base, i)
		levels[top] = 0
		top++
		for top > 1 && levels[top-1] == levels[top-2] {
			z := levels[top-1] + 1
			nodeAdrs.setTreeHeight(uint32(z))
			nodeAdrs.setTreeIndex(i >> z)
			th.h(stack[(top-2)*n:(top-1)*n], &nodeAdrs, stack[(top-2)*n:(top-1)*n], stack[(top-1)*n:top*n])
			levels[top-2]++
			top--
		}
	}
	copy(out[:n], stack[:n])
}

// buildXMSS computes every node of the xmss tree at base. Leaves are spread
// over threads, internal nodes follow after the join.
func buildXMSS(p *ParameterSet, threads int, th tweakHash, skSeed []byte, base address) *merkleTree {
	t := newMerkleTree(p.HP, p.N)
	forLeaves(threads, 1<<p.HP, th, func(th tweakHash, i uint32) {
		xmssLeaf(p, th, t.node(0, i), skSeed, &base, i)
	})
	a := base
	a.setType(addrTree)
	t.reduce(th, &a, 0)
	return t
}

// xmssRoot returns the root of the xmss tree at base.
func xmssRoot(p *ParameterSet, threads int, th tweakHash, out, skSeed []byte, base address) {
	switch threads {
	case 1:
		treehash(p, th, out, skSeed, &base)
	default:
		copy(out, buildXMSS(p, threads, th, skSeed, base).root())
	}
}

// xmssSign writes the wots signature of msg and the auth path of leaf idx.
func xmssSign(p *ParameterSet, th tweakHash, t *merkleTree, sig, msg, skSeed []byte, base address, idx uint32) {
	a := base
	a.setType(addrWotsHash)
	a.setKeyPair(idx)
	wotsSign(p, th, sig[:p.wotsSigSize()], msg, skSeed, &a)
	t.authPath(sig[p.wotsSigSize():p.xmssSigSize()], idx)
}

// xmssPkFromSig computes the candidate xmss root for sig on msg.
func xmssPkFromSig(p *ParameterSet, th tweakHash, out []byte, idx uint32, sig, msg []byte, base address) {
	leaf := make([]byte, p.N)
	a := base
	a.setType(addrWotsHash)
	a.setKeyPair(idx)
	wotsPkFromSig(p, th, leaf, sig[:p.wotsSigSize()], msg, &a)
	a.setType(addrTree)
	climb(th, out, leaf, idx, sig[p.wotsSigSize():p.xmssSigSize()], p.HP, p.N, 0, &a)
}

// htSign signs msg on every hypertree layer starting at (idxTree, idxLeaf).
// It returns false if the top root does not match pkRoot.
func htSign(p *ParameterSet, threads int, th tweakHash, sig, msg, skSeed, pkRoot []byte, idxTree uint64, idxLeaf uint32) bool {
	root := make([]byte, p.N)
	copy(root, msg)
	xs := p.xmssSigSize()
	for j := 0; j < p.D; j++ {
		var a address
		a.setLayer(uint32(j))
		a.setTree(idxTree)
		t := buildXMSS(p, threads, th, skSeed, a)
		xmssSign(p, th, t, sig[j*xs:(j+1)*xs], root, skSeed, a, idxLeaf)
		copy(root, t.root())
		idxLeaf = uint32(idxTree & (1<<uint(p.HP) - 1))
		idxTree >>= uint(p.HP)
	}
	return subtle.ConstantTimeCompare(root, pkRoot) == 1
}

// htVerify walks the hypertree bottom up and compares the result with pkRoot.
func htVerify(p *ParameterSet, th tweakHash, msg, sig, pkRoot []byte, idxTree uint64, idxLeaf uint32) bool {
	node := make([]byte, p.N)
	next := make([]byte, p.N)
	copy(node, msg)
	xs := p.xmssSigSize()
	for j := 0; j < p.D; j++ {
		var a address
		a.setLayer(uint32(j))
		a.setTree(idxTree)
		xmssPkFromSig(p, th, next, idxLeaf, sig[j*xs:(j+1)*xs], node, a)
		node, next = next, node
		idxLeaf = uint32(idxTree & (1<<uint(p.HP) - 1))
		idxTree >>= uint(p.HP)
	}
	return subtle.ConstantTimeCompare(node, pkRoot) == 1
}

// multiSliceAppend ...
func multiSliceAppend(in ...[]byte) []byte {
	var size int
	for _, t := range in {
		size += len(t)
	}
	out := make([]byte, 0, size)
	for _, t := range in {
		out = append(out, t...)
	}
	return out
}
