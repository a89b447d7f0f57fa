package transport

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skw-network/tss-node/auth"
	"github.com/skw-network/tss-node/payload"
)

func mustAuthHeader(t *testing.T, serviceKey [32]byte) *auth.Header {
	t.Helper()
	primary, err := auth.GenerateProof(serviceKey, sha32("primary"))
	require.NoError(t, err)
	secondary, err := auth.GenerateProof(serviceKey, sha32("secondary"))
	require.NoError(t, err)
	return &auth.Header{Primary: primary, Secondary: secondary}
}

func sha32(s string) [32]byte {
	var out [32]byte
	copy(out[:], s)
	return out
}

func validHeader(sender string) payload.Header {
	return payload.Header{
		Kind: payload.KindKeyGen,
		Peers: []payload.Peer{
			{ID: "peer-a", Addr: "127.0.0.1:9001"},
			{ID: "peer-b", Addr: "127.0.0.1:9002"},
		},
		Sender: sender,
		T:      1,
		N:      2,
	}
}

func newTestSwarm(t *testing.T, localPeerID string) (*Swarm, [32]byte) {
	t.Helper()
	var serviceKey [32]byte
	_, err := rand.Read(serviceKey[:])
	require.NoError(t, err)
	verifierKey := auth.VerifierKey(serviceKey)
	s := NewSwarm(Config{
		LocalPeerID: localPeerID,
		VerifierKey: verifierKey,
	})
	return s, serviceKey
}

func TestHandleStartJob_Accepts(t *testing.T) {
	s, serviceKey := newTestSwarm(t, "peer-b")
	h := validHeader("peer-a")
	raw, err := json.Marshal(h)
	require.NoError(t, err)

	req := &Request{
		Kind:       RequestStartJob,
		AuthHeader: mustAuthHeader(t, serviceKey),
		JobHeader:  raw,
	}
	resp := s.handleStartJob(context.Background(), req)
	assert.Equal(t, StatusOK, resp.Status)

	addr, ok := s.dials.AddrOf("peer-a")
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1:9001", addr)
}

func TestHandleStartJob_MissingAuthHeader(t *testing.T) {
	s, _ := newTestSwarm(t, "peer-b")
	h := validHeader("peer-a")
	raw, err := json.Marshal(h)
	require.NoError(t, err)

	resp := s.handleStartJob(context.Background(), &Request{Kind: RequestStartJob, JobHeader: raw})
	assert.Equal(t, StatusBadAuthHeader, resp.Status)
}

func TestHandleStartJob_BadSignature(t *testing.T) {
	s, _ := newTestSwarm(t, "peer-b")
	var otherKey [32]byte
	_, err := rand.Read(otherKey[:])
	require.NoError(t, err)

	h := validHeader("peer-a")
	raw, err := json.Marshal(h)
	require.NoError(t, err)

	req := &Request{
		Kind:       RequestStartJob,
		AuthHeader: mustAuthHeader(t, otherKey),
		JobHeader:  raw,
	}
	resp := s.handleStartJob(context.Background(), req)
	assert.Equal(t, StatusBadAuthHeader, resp.Status)
}

func TestHandleStartJob_SelfAdmissionLoop(t *testing.T) {
	s, serviceKey := newTestSwarm(t, "peer-a")
	h := validHeader("peer-a")
	raw, err := json.Marshal(h)
	require.NoError(t, err)

	req := &Request{
		Kind:       RequestStartJob,
		AuthHeader: mustAuthHeader(t, serviceKey),
		JobHeader:  raw,
	}
	resp := s.handleStartJob(context.Background(), req)
	assert.Equal(t, StatusBadAuthHeader, resp.Status)
}

func TestHandleStartJob_LocalPeerNotInList(t *testing.T) {
	s, serviceKey := newTestSwarm(t, "peer-z")
	h := validHeader("peer-a")
	raw, err := json.Marshal(h)
	require.NoError(t, err)

	req := &Request{
		Kind:       RequestStartJob,
		AuthHeader: mustAuthHeader(t, serviceKey),
		JobHeader:  raw,
	}
	resp := s.handleStartJob(context.Background(), req)
	assert.Equal(t, StatusUnknownPeers, resp.Status)
}

func TestHandleStartJob_CallbackRejects(t *testing.T) {
	s, serviceKey := newTestSwarm(t, "peer-b")
	s.cfg.OnStartJob = func(ctx context.Context, jobHeader payload.Header, authHeader auth.Header) error {
		return assert.AnError
	}
	h := validHeader("peer-a")
	raw, err := json.Marshal(h)
	require.NoError(t, err)

	req := &Request{
		Kind:       RequestStartJob,
		AuthHeader: mustAuthHeader(t, serviceKey),
		JobHeader:  raw,
	}
	resp := s.handleStartJob(context.Background(), req)
	assert.Equal(t, StatusUnknownPeers, resp.Status)
}

func TestHandleRawMessage_InvokesCallback(t *testing.T) {
	s, _ := newTestSwarm(t, "peer-b")
	var got []byte
	s.cfg.OnRawMessage = func(ctx context.Context, raw []byte) error {
		got = raw
		return nil
	}
	resp := s.handleRawMessage(context.Background(), &Request{Kind: RequestRawMessage, Payload: []byte("hello")})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, []byte("hello"), got)
}

func TestHandleRawMessage_NoCallback(t *testing.T) {
	s, _ := newTestSwarm(t, "peer-b")
	resp := s.handleRawMessage(context.Background(), &Request{Kind: RequestRawMessage, Payload: []byte("x")})
	assert.Equal(t, StatusOK, resp.Status)
}
