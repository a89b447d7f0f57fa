package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skw-network/tss-node/internal/config"
)

func TestEmailOwnership_VerifyAndProve(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("0123456789abcdef0123456789abcdef"))
	var serviceKey [32]byte
	copy(serviceKey[:], []byte("svcsvcsvcsvcsvcsvcsvcsvcsvcsvcsv"))

	owner := NewEmailOwnership(&config.HOTPConfig{TimeDiscrepancy: 1}, secret)
	code, err := owner.IssueCode()
	require.NoError(t, err)

	proof, err := owner.VerifyAndProve(serviceKey, "user@example.com", code)
	require.NoError(t, err)
	assert.NoError(t, VerifyProof(VerifierKey(serviceKey), proof))
}

func TestEmailOwnership_RejectsBadCode(t *testing.T) {
	var secret [32]byte
	copy(secret[:], []byte("0123456789abcdef0123456789abcdef"))
	var serviceKey [32]byte
	copy(serviceKey[:], []byte("svcsvcsvcsvcsvcsvcsvcsvcsvcsvcsv"))

	owner := NewEmailOwnership(nil, secret)
	_, err := owner.VerifyAndProve(serviceKey, "user@example.com", "000000")
	assert.ErrorIs(t, err, ErrBadCode)
}
