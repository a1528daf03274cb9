package scheme

import (
	"crypto"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/cloudflare/circl/sign"
	"github.com/stretchr/testify/require"
	"paepcke.de/sphincsplus"
)

func tinyScheme(t *testing.T) sign.Scheme {
	p, err := sphincsplus.NewParameterSet("tiny", sphincsplus.FamilySHAKE, 16, 6, 2, 3, 4, 4)
	require.NoError(t, err)
	return New(sphincsplus.NewInstance(p))
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	all := All()
	require.Len(t, all, len(sphincsplus.ParameterSets()))
	for i, p := range sphincsplus.ParameterSets() {
		require.Equal(t, p.Name, all[i].Name())
		require.Equal(t, p.SignatureSize(), all[i].SignatureSize())
		require.Equal(t, 3*p.N, all[i].SeedSize())
		require.True(t, all[i].SupportsContext())
	}

	s, err := ByName("128s")
	require.NoError(t, err)
	require.Equal(t, "SLH-DSA-SHA2-128s", s.Name())
	require.Equal(t, 7856, s.SignatureSize())
	require.Equal(t, 32, s.PublicKeySize())
	require.Equal(t, 64, s.PrivateKeySize())

	_, err = ByName("nope")
	require.ErrorIs(t, err, sphincsplus.ErrInvalidParameterSet)
}

func TestScheme(t *testing.T) {
	t.Parallel()
	s := tinyScheme(t)
	message := []byte("hello world")
	pubKey, privKey, err := s.GenerateKey()
	require.NoError(t, err)

	signature := s.Sign(privKey, message, nil)
	require.Equal(t, len(signature), s.SignatureSize())
	require.True(t, s.Verify(pubKey, message, signature, nil))
	require.False(t, s.Verify(pubKey, message[1:], signature, nil))

	opts := &sign.SignatureOpts{Context: "app"}
	signature = s.Sign(privKey, message, opts)
	require.True(t, s.Verify(pubKey, message, signature, opts))
	require.False(t, s.Verify(pubKey, message, signature, nil))

	require.Panics(t, func() {
		s.Sign(privKey, message, &sign.SignatureOpts{Context: strings.Repeat("x", 256)})
	})
}

func TestSchemeBinaryUnmarshaler(t *testing.T) {
	t.Parallel()
	s := tinyScheme(t)
	message := []byte("hello world")
	pubKey, privKey, err := s.GenerateKey()
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.MarshalBinary()
	require.NoError(t, err)
	pubKey2, err := s.UnmarshalBinaryPublicKey(pubKeyBytes)
	require.NoError(t, err)
	require.True(t, pubKey.Equal(pubKey2))

	privKeyBytes, err := privKey.MarshalBinary()
	require.NoError(t, err)
	privKey2, err := s.UnmarshalBinaryPrivateKey(privKeyBytes)
	require.NoError(t, err)
	require.True(t, privKey.Equal(privKey2))
	require.True(t, pubKey.Equal(privKey2.Public()))

	signature := s.Sign(privKey2, message, nil)
	require.True(t, s.Verify(pubKey2, message, signature, nil))

	_, err = s.UnmarshalBinaryPublicKey(pubKeyBytes[1:])
	require.ErrorIs(t, err, sign.ErrPubKeySize)
	_, err = s.UnmarshalBinaryPrivateKey(privKeyBytes[1:])
	require.ErrorIs(t, err, sign.ErrPrivKeySize)
}

func TestSchemeDeriveKey(t *testing.T) {
	t.Parallel()
	s := tinyScheme(t)
	seed := make([]byte, s.SeedSize())
	pk1, sk1 := s.DeriveKey(seed)
	pk2, sk2 := s.DeriveKey(seed)
	require.True(t, pk1.Equal(pk2))
	require.True(t, sk1.Equal(sk2))
	require.Equal(t, s, pk1.Scheme())
	require.Equal(t, s, sk1.Scheme())

	require.PanicsWithValue(t, sign.ErrSeedSize, func() { s.DeriveKey(seed[1:]) })
}

func TestSchemeCryptoSigner(t *testing.T) {
	t.Parallel()
	s := tinyScheme(t)
	pubKey, privKey, err := s.GenerateKey()
	require.NoError(t, err)
	message := []byte("signer")

	signature, err := privKey.Sign(rand.Reader, message, crypto.Hash(0))
	require.NoError(t, err)
	require.True(t, s.Verify(pubKey, message, signature, nil))

	signature, err = privKey.Sign(nil, message, &sphincsplus.SignerOpts{Context: []byte("ctx")})
	require.NoError(t, err)
	require.True(t, s.Verify(pubKey, message, signature, &sign.SignatureOpts{Context: "ctx"}))
}

func TestSchemeTypeMismatch(t *testing.T) {
	t.Parallel()
	s := tinyScheme(t)
	other, err := ByName("SLH-DSA-SHAKE-128f")
	require.NoError(t, err)
	pubKey, privKey := other.DeriveKey(make([]byte, other.SeedSize()))

	require.Panics(t, func() { s.Sign(privKey, []byte("m"), nil) })
	require.Panics(t, func() { s.Verify(pubKey, []byte("m"), nil, nil) })
	require.False(t, other.Verify(pubKey, []byte("m"), make([]byte, other.SignatureSize()), nil))
}
