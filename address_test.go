package sphincsplus

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressEncoding(t *testing.T) {
	t.Parallel()
	var a address
	a.setLayer(1)
	a.setTree(0x0102030405060708)
	a.setType(addrTree)
	a.setKeyPair(3)
	a.setTreeHeight(4)
	a.setTreeIndex(5)

	var full [32]byte
	a.bytes(&full)
	require.Equal(t, "0000000100000000010203040506070800000002000000030000000400000005", hex.EncodeToString(full[:]))

	var c [22]byte
	a.compressed(&c)
	require.Equal(t, "01010203040506070802000000030000000400000005", hex.EncodeToString(c[:]))
}

func TestAddressSetTypeClears(t *testing.T) {
	t.Parallel()
	var a address
	a.setLayer(7)
	a.setTree(99)
	a.setKeyPair(1)
	a.setChain(2)
	a.setHash(3)
	a.setType(addrForsPrf)
	require.Equal(t, address{layer: 7, tree: 99, typ: addrForsPrf}, a)

	var b address
	b.setKeyPair(11)
	a.copyKeyPair(&b)
	require.Equal(t, uint32(11), a.keyPair)
	a.setTreeIndex(42)
	require.Equal(t, uint32(42), a.treeIndex())
}
