package sphincsplus

import "encoding/binary"

// address types
const (
	addrWotsHash uint32 = iota
	addrWotsPk
	addrTree
	addrForsTree
	addrForsRoots
	addrWotsPrf
	addrForsPrf
)

// address is the structured tweak fed into every keyed hash call. It is
// serialized only at the hash boundary: 32 bytes for SHAKE/BLAKE3, 22 bytes
// (compressed) for SHA2.
type address struct {
	layer   uint32
	tree    uint64
	typ     uint32
	keyPair uint32
	word1   uint32 // chain address or tree height
	word2   uint32 // hash address or tree index
}

// setType changes the type and clears the type-specific words.
func (a *address) setType(t uint32) {
	a.typ = t
	a.keyPair = 0
	a.word1 = 0
	a.word2 = 0
}

func (a *address) setLayer(l uint32) { a.layer = l }
func (a *address) setTree(t uint64) { a.tree = t }
func (a *address) setKeyPair(k uint32) { a.keyPair = k }
func (a *address) setChain(c uint32) { a.word1 = c }
func (a *address) setHash(h uint32) { a.word2 = h }
func (a *address) setTreeHeight(z uint32) { a.word1 = z }
func (a *address) setTreeIndex(i uint32) { a.word2 = i }
func (a *address) treeIndex() uint32 { return a.word2 }
func (a *address) copyKeyPair(o *address) { a.keyPair = o.keyPair }
func (a *address) subtreeFrom(o *address) { a.layer, a.tree = o.layer, o.tree }

// bytes ...
func (a *address) bytes(out *[32]byte) {
	binary.BigEndian.PutUint32(out[0:], a.layer)
	binary.BigEndian.PutUint32(out[4:], 0)
	binary.BigEndian.PutUint64(out[8:], a.tree)
	binary.BigEndian.PutUint32(out[16:], a.typ)
	binary.BigEndian.PutUint32(out[20:], a.keyPair)
	binary.BigEndian.PutUint32(out[24:], a.word1)
	binary.BigEndian.PutUint32(out[28:], a.word2)
}

// compressed is ADRSc: layer and type shrink to one byte, the tree
// address keeps its low 8 bytes.
func (a *address) compressed(out *[22]byte) {
	out[0] = byte(a.layer)
	binary.BigEndian.PutUint64(out[1:], a.tree)
	out[9] = byte(a.typ)
	binary.BigEndian.PutUint32(out[10:], a.keyPair)
	binary.BigEndian.PutUint32(out[14:], a.word1)
	binary.BigEndian.PutUint32(out[18:], a.word2)
}
