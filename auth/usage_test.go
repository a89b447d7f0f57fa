package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyUsageCertification(t *testing.T) {
	var ownershipKey [32]byte
	copy(ownershipKey[:], []byte("ownownownownownownownownownownow"))
	var usageKey [32]byte
	copy(usageKey[:], []byte("usgusgusgusgusgusgusgusgusgusgus"))

	credentialHash := [32]byte{7, 7, 7}
	ownershipProof, err := GenerateProof(ownershipKey, credentialHash)
	require.NoError(t, err)

	keygenID := [32]byte{9, 9, 9}
	ownershipVerifier := VerifierKey(ownershipKey)

	cert, err := IssueUsageCertification(ownershipVerifier, usageKey, keygenID, ownershipProof)
	require.NoError(t, err)

	usageVerifier := VerifierKey(usageKey)
	assert.NoError(t, VerifyUsageCertification(usageVerifier, keygenID, credentialHash, cert))
}

func TestIssueUsageCertification_RejectsInvalidOwnershipProof(t *testing.T) {
	var ownershipKey, otherKey, usageKey [32]byte
	copy(ownershipKey[:], []byte("ownownownownownownownownownownow"))
	copy(otherKey[:], []byte("otherotherotherotherotherotherot"))
	copy(usageKey[:], []byte("usgusgusgusgusgusgusgusgusgusgus"))

	forgedProof, err := GenerateProof(otherKey, [32]byte{1})
	require.NoError(t, err)

	_, err = IssueUsageCertification(VerifierKey(ownershipKey), usageKey, [32]byte{2}, forgedProof)
	assert.Error(t, err)
}

func TestVerifyUsageCertification_RejectsWrongKeygenID(t *testing.T) {
	var ownershipKey, usageKey [32]byte
	copy(ownershipKey[:], []byte("ownownownownownownownownownownow"))
	copy(usageKey[:], []byte("usgusgusgusgusgusgusgusgusgusgus"))

	credentialHash := [32]byte{1, 2, 3}
	ownershipProof, err := GenerateProof(ownershipKey, credentialHash)
	require.NoError(t, err)

	keygenID := [32]byte{4, 5, 6}
	cert, err := IssueUsageCertification(VerifierKey(ownershipKey), usageKey, keygenID, ownershipProof)
	require.NoError(t, err)

	wrongKeygenID := [32]byte{9, 9, 9}
	err = VerifyUsageCertification(VerifierKey(usageKey), wrongKeygenID, credentialHash, cert)
	assert.ErrorIs(t, err, ErrValidationFailed)
}
