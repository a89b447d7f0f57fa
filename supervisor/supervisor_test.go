package supervisor

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skw-network/tss-node/auth"
	"github.com/skw-network/tss-node/jobmanager"
	"github.com/skw-network/tss-node/payload"
)

// twoNodeFixture bootstraps two real Supervisors over loopback WebSocket
// connections, sharing one ownership-prover secret, mirroring spec.md §8's
// scenario fixtures (distinct Ed25519 seeds, fresh listen addresses).
func twoNodeFixture(t *testing.T) (a, b *Supervisor, header auth.Header, peers []payload.Peer) {
	t.Helper()

	var ownershipSecret [32]byte
	_, err := rand.Read(ownershipSecret[:])
	require.NoError(t, err)
	verifierKey := auth.VerifierKey(ownershipSecret)

	a, err = BootstrapNode(Config{
		IdentityKeyPath:      t.TempDir() + "/a.pem",
		PeerID:               "peer-a",
		ListenAddr:           "127.0.0.1:19301",
		OwnershipVerifierKey: verifierKey,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })

	b, err = BootstrapNode(Config{
		IdentityKeyPath:      t.TempDir() + "/b.pem",
		PeerID:               "peer-b",
		ListenAddr:           "127.0.0.1:19302",
		OwnershipVerifierKey: verifierKey,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Shutdown() })

	primary, err := auth.GenerateProof(ownershipSecret, [32]byte{1})
	require.NoError(t, err)
	secondary, err := auth.GenerateProof(ownershipSecret, [32]byte{2})
	require.NoError(t, err)
	header = auth.Header{Primary: primary, Secondary: secondary}

	peers = []payload.Peer{
		{ID: "peer-a", Addr: "127.0.0.1:19301"},
		{ID: "peer-b", Addr: "127.0.0.1:19302"},
	}
	return a, b, header, peers
}

// TestSupervisor_KeygenThenSign_EndToEnd exercises spec.md §8's S1/S2
// scenarios against the full stack: two real peers dial each other over
// WebSocket, jointly generate a 2-of-2 share with neither side ever seeing
// the other's secret material, persist it, then sign a message against the
// persisted shares.
func TestSupervisor_KeygenThenSign_EndToEnd(t *testing.T) {
	a, b, authHeader, peers := twoNodeFixture(t)

	shareID, err := authHeader.ShareID()
	require.NoError(t, err)

	keygenHeader := payload.Header{
		PayloadID: [32]byte{1},
		Kind:      payload.KindKeyGen,
		Peers:     peers,
		Sender:    "peer-a",
		T:         1,
		N:         2,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcomeA, err := a.MpcRequest(ctx, keygenHeader, authHeader, nil)
	require.NoError(t, err)
	assert.Equal(t, jobmanager.OutcomeKeyGen, outcomeA.Kind)
	assert.Equal(t, shareID, outcomeA.ShareID)
	assert.NotEmpty(t, outcomeA.LocalKey)

	// peer-b's half of the job was admitted via onStartJob and runs in the
	// background; its outcome lands in storage once the protocol finishes.
	require.Eventually(t, func() bool {
		_, err := b.store.Read(shareID)
		return err == nil
	}, 10*time.Second, 50*time.Millisecond, "peer-b never persisted its share")

	signHeader := payload.Header{
		PayloadID:   [32]byte{2},
		Kind:        payload.KindSignOffline,
		MessageHash: [32]byte{7},
		Peers:       peers,
		Sender:      "peer-a",
		T:           1,
		N:           2,
	}

	outcomeSign, err := a.MpcRequest(ctx, signHeader, authHeader, nil)
	require.NoError(t, err)
	assert.Equal(t, jobmanager.OutcomeSign, outcomeSign.Kind)
	assert.Equal(t, shareID, outcomeSign.ShareID)
	assert.NotEmpty(t, outcomeSign.Signature)
}

// TestSupervisor_MpcRequest_BadAuthHeaderRejectedLocally checks that the
// facade itself refuses a forged auth header before ever dialing a peer
// (spec.md §8 invariant 4: admission gating never creates job state).
func TestSupervisor_MpcRequest_BadAuthHeaderRejectedLocally(t *testing.T) {
	a, _, authHeader, peers := twoNodeFixture(t)

	forged := authHeader
	forged.Secondary.Payload[0] ^= 0xFF

	header := payload.Header{
		PayloadID: [32]byte{3},
		Kind:      payload.KindKeyGen,
		Peers:     peers,
		Sender:    "peer-a",
		T:         1,
		N:         2,
	}

	_, err := a.MpcRequest(context.Background(), header, forged, nil)
	assert.Error(t, err)
	assert.Zero(t, a.InFlightJobs())
}
