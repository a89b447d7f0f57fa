package mpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skw-network/tss-node/payload"
)

func testHeader() payload.Header {
	return payload.Header{
		PayloadID: [32]byte{1},
		Kind:      payload.KindKeyGen,
		Peers: []payload.Peer{
			{ID: "alice", Addr: "127.0.0.1:9001"},
			{ID: "bob", Addr: "127.0.0.1:9002"},
			{ID: "carol", Addr: "127.0.0.1:9003"},
		},
		Sender: "alice",
		T:      2,
		N:      3,
	}
}

func TestPartyIDs_OnePerPeer(t *testing.T) {
	header := testHeader()
	parties := PartyIDs(header)
	assert.Len(t, parties, 3)
}

func TestLocalPartyID_FindsByPeerID(t *testing.T) {
	header := testHeader()
	parties := PartyIDs(header)

	id, err := LocalPartyID(parties, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", id.Id)
}

func TestLocalPartyID_UnknownPeer(t *testing.T) {
	header := testHeader()
	parties := PartyIDs(header)

	_, err := LocalPartyID(parties, "mallory")
	assert.Error(t, err)
}

func TestPartyIDAt_MatchesLocalIndex(t *testing.T) {
	header := testHeader()
	parties := PartyIDs(header)

	for _, p := range header.Peers {
		idx, err := header.LocalIndex(p.ID)
		require.NoError(t, err)
		id, err := PartyIDAt(parties, idx)
		require.NoError(t, err)
		assert.Equal(t, p.ID, id.Id)
	}
}

func TestPartyIDAt_OutOfRange(t *testing.T) {
	header := testHeader()
	parties := PartyIDs(header)

	_, err := PartyIDAt(parties, 99)
	assert.Error(t, err)
}
