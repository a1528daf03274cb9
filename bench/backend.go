package bench

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign"
	"github.com/kasperdi/SPHINCSPLUS-golang/parameters"
	"github.com/kasperdi/SPHINCSPLUS-golang/sphincs"
	"paepcke.de/sphincsplus"
	"paepcke.de/sphincsplus/scheme"
)

// ErrUnsupportedSet is returned when a backend has no implementation of a
// parameter set.
var ErrUnsupportedSet = errors.New("bench: parameter set not supported by backend")

// Backend opens algorithms by parameter set name.
type Backend interface {
	Name() string
	Open(set string) (Algorithm, error)
}

// Algorithm is the part of a signature scheme the runner times.
type Algorithm interface {
	Name() string
	GenerateKey() (KeyPair, error)
	Sign(kp KeyPair, msg []byte) ([]byte, error)
	Verify(kp KeyPair, msg, sig []byte) (bool, error)
}

// KeyPair exposes the encoded key lengths.
type KeyPair interface {
	PublicKeySize() (int, error)
	PrivateKeySize() (int, error)
}

// NewBackend returns the backend registered under name.
func NewBackend(name string, threads int) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case BackendNative:
		return &nativeBackend{threads: threads}, nil
	case BackendReference:
		return referenceBackend{}, nil
	}
	return nil, fmt.Errorf("bench: unknown backend %q", name)
}

// native

type nativeBackend struct {
	threads int
}

func (b *nativeBackend) Name() string { return BackendNative }

func (b *nativeBackend) Open(set string) (Algorithm, error) {
	p, err := sphincsplus.ParameterSetByName(set)
	if err != nil {
		return nil, err
	}
	in := sphincsplus.NewInstance(p)
	in.Threads = b.threads
	return &nativeAlgorithm{s: scheme.New(in)}, nil
}

type nativeAlgorithm struct {
	s sign.Scheme
}

type nativeKeys struct {
	pk sign.PublicKey
	sk sign.PrivateKey
}

func (k *nativeKeys) PublicKeySize() (int, error) {
	b, err := k.pk.MarshalBinary()
	return len(b), err
}

func (k *nativeKeys) PrivateKeySize() (int, error) {
	b, err := k.sk.MarshalBinary()
	return len(b), err
}

func (a *nativeAlgorithm) Name() string { return a.s.Name() }

func (a *nativeAlgorithm) GenerateKey() (KeyPair, error) {
	pk, sk, err := a.s.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &nativeKeys{pk: pk, sk: sk}, nil
}

func (a *nativeAlgorithm) Sign(kp KeyPair, msg []byte) (sig []byte, err error) {
	k, ok := kp.(*nativeKeys)
	if !ok {
		return nil, sign.ErrTypeMismatch
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bench: sign: %v", r)
		}
	}()
	return a.s.Sign(k.sk, msg, nil), nil
}

func (a *nativeAlgorithm) Verify(kp KeyPair, msg, sig []byte) (bool, error) {
	k, ok := kp.(*nativeKeys)
	if !ok {
		return false, sign.ErrTypeMismatch
	}
	return a.s.Verify(k.pk, msg, sig, nil), nil
}

// reference: the round 3 SPHINCS+ library, simple tweaks only.

var referenceSets = map[string]func(bool) *parameters.Parameters{
	"SLH-DSA-SHA2-128s":  parameters.MakeSphincsPlusSHA256128sSimple,
	"SLH-DSA-SHA2-128f":  parameters.MakeSphincsPlusSHA256128fSimple,
	"SLH-DSA-SHA2-192s":  parameters.MakeSphincsPlusSHA256192sSimple,
	"SLH-DSA-SHA2-192f":  parameters.MakeSphincsPlusSHA256192fSimple,
	"SLH-DSA-SHA2-256s":  parameters.MakeSphincsPlusSHA256256sSimple,
	"SLH-DSA-SHA2-256f":  parameters.MakeSphincsPlusSHA256256fSimple,
	"SLH-DSA-SHAKE-128s": parameters.MakeSphincsPlusSHAKE256128sSimple,
	"SLH-DSA-SHAKE-128f": parameters.MakeSphincsPlusSHAKE256128fSimple,
	"SLH-DSA-SHAKE-192s": parameters.MakeSphincsPlusSHAKE256192sSimple,
	"SLH-DSA-SHAKE-192f": parameters.MakeSphincsPlusSHAKE256192fSimple,
	"SLH-DSA-SHAKE-256s": parameters.MakeSphincsPlusSHAKE256256sSimple,
	"SLH-DSA-SHAKE-256f": parameters.MakeSphincsPlusSHAKE256256fSimple,
}

type referenceBackend struct{}

func (referenceBackend) Name() string { return BackendReference }

func (referenceBackend) Open(set string) (Algorithm, error) {
	p, err := sphincsplus.ParameterSetByName(set)
	if err != nil {
		return nil, err
	}
	mk, ok := referenceSets[p.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSet, p.Name)
	}
	return &referenceAlgorithm{name: p.Name, params: mk(true)}, nil
}

type referenceAlgorithm struct {
	name   string
	params *parameters.Parameters
}

type referenceKeys struct {
	pk *sphincs.SPHINCS_PK
	sk *sphincs.SPHINCS_SK
}

func (k *referenceKeys) PublicKeySize() (int, error) {
	b, err := k.pk.SerializePK()
	return len(b), err
}

func (k *referenceKeys) PrivateKeySize() (int, error) {
	b, err := k.sk.SerializeSK()
	return len(b), err
}

func (a *referenceAlgorithm) Name() string { return a.name }

func (a *referenceAlgorithm) GenerateKey() (KeyPair, error) {
	sk, pk := sphincs.Spx_keygen(a.params)
	if sk == nil || pk == nil {
		return nil, errors.New("bench: reference key generation failed")
	}
	return &referenceKeys{pk: pk, sk: sk}, nil
}

func (a *referenceAlgorithm) Sign(kp KeyPair, msg []byte) ([]byte, error) {
	k, ok := kp.(*referenceKeys)
	if !ok {
		return nil, sign.ErrTypeMismatch
	}
	return sphincs.Spx_sign(a.params, msg, k.sk).SerializeSignature()
}

func (a *referenceAlgorithm) Verify(kp KeyPair, msg, sig []byte) (bool, error) {
	k, ok := kp.(*referenceKeys)
	if !ok {
		return false, sign.ErrTypeMismatch
	}
	s, err := sphincs.DeserializeSignature(a.params, sig)
	if err != nil {
		return false, err
	}
	return sphincs.Spx_verify(a.params, msg, s, k.pk), nil
}
