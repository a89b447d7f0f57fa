package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderValidate_BothProofsRequired(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("dddddddddddddddddddddddddddddddd"))
	verifier := VerifierKey(secret)

	good, err := GenerateProof(secret, [32]byte{1})
	require.NoError(t, err)
	bad := good
	bad.Payload = [32]byte{2}

	h := Header{Primary: good, Secondary: good}
	assert.NoError(t, h.Validate(verifier))

	h = Header{Primary: bad, Secondary: good}
	assert.Error(t, h.Validate(verifier), "a forged primary proof must not be enough to pass admission")

	h = Header{Primary: good, Secondary: bad}
	assert.Error(t, h.Validate(verifier), "a forged secondary proof must not be enough to pass admission")
}

func TestHeaderValidate_AdditionalProofChecked(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"))
	verifier := VerifierKey(secret)

	good, err := GenerateProof(secret, [32]byte{3})
	require.NoError(t, err)
	bad := good
	bad.Payload = [32]byte{4}

	h := Header{Primary: good, Secondary: good, Additional: &bad}
	assert.Error(t, h.Validate(verifier))
}

func TestHeaderShareID_Deterministic(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("ffffffffffffffffffffffffffffffff"))
	primary, err := GenerateProof(secret, [32]byte{5})
	require.NoError(t, err)
	secondary, err := GenerateProof(secret, [32]byte{6})
	require.NoError(t, err)

	h := Header{Primary: primary, Secondary: secondary}
	id1, err := h.ShareID()
	require.NoError(t, err)
	id2, err := h.ShareID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	h2 := Header{Primary: secondary, Secondary: primary}
	id3, err := h2.ShareID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3, "share id must depend on proof order")
}
