package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threePeerHeader(kind Kind) Header {
	return Header{
		PayloadID: [32]byte{1},
		Kind:      kind,
		Peers: []Peer{
			{ID: "p1", Addr: "ws://a"},
			{ID: "p2", Addr: "ws://b"},
			{ID: "p3", Addr: "ws://c"},
		},
		Sender: "p1",
		T:      2,
		N:      3,
	}
}

func TestHeader_ValidateOk(t *testing.T) {
	require.NoError(t, threePeerHeader(KindKeyGen).Validate())
	require.NoError(t, threePeerHeader(KindKeyRefresh).Validate())
	require.NoError(t, threePeerHeader(KindSignOffline).Validate())
	require.NoError(t, threePeerHeader(KindSignFinalize).Validate())
}

func TestHeader_ValidateRejectsBadThreshold(t *testing.T) {
	h := threePeerHeader(KindKeyGen)
	h.T = 3
	assert.Error(t, h.Validate())

	h.T = 0
	assert.Error(t, h.Validate())
}

func TestHeader_ValidateRejectsUnaddressablePeer(t *testing.T) {
	h := threePeerHeader(KindKeyGen)
	h.Peers[1].Addr = ""
	assert.Error(t, h.Validate())
}

func TestHeader_ValidateRejectsMissingSender(t *testing.T) {
	h := threePeerHeader(KindKeyGen)
	h.Sender = "not-a-peer"
	assert.Error(t, h.Validate())
}

func TestHeader_ValidateRejectsShortKeygenPeerList(t *testing.T) {
	h := threePeerHeader(KindKeyGen)
	h.Peers = h.Peers[:2]
	h.N = 3
	assert.Error(t, h.Validate())
}

func TestHeader_ValidateRejectsShortSignPeerList(t *testing.T) {
	h := threePeerHeader(KindSignOffline)
	h.Peers = h.Peers[:1]
	assert.Error(t, h.Validate())
}

func TestHeader_ValidateRejectsUnknownKind(t *testing.T) {
	h := threePeerHeader(Kind("bogus"))
	assert.Error(t, h.Validate())
}

func TestHeader_LocalIndex(t *testing.T) {
	h := threePeerHeader(KindKeyGen)

	idx, err := h.LocalIndex("p2")
	require.NoError(t, err)
	assert.Equal(t, uint16(2), idx)

	_, err = h.LocalIndex("ghost")
	assert.Error(t, err)
}

func TestHeader_PeerAt(t *testing.T) {
	h := threePeerHeader(KindKeyGen)

	p, err := h.PeerAt(1)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)

	p, err = h.PeerAt(3)
	require.NoError(t, err)
	assert.Equal(t, "p3", p.ID)

	_, err = h.PeerAt(0)
	assert.Error(t, err)

	_, err = h.PeerAt(4)
	assert.Error(t, err)
}

func TestRoundMessage_EncodeDecodeRoundTrip(t *testing.T) {
	to := uint16(2)
	rm := RoundMessage{
		Header:  threePeerHeader(KindKeyGen),
		Variant: VariantKeygen,
		From:    1,
		To:      &to,
		Body:    []byte{0xde, 0xad, 0xbe, 0xef},
	}

	raw, err := rm.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, rm.Header.PayloadID, decoded.Header.PayloadID)
	assert.Equal(t, rm.Variant, decoded.Variant)
	assert.Equal(t, rm.From, decoded.From)
	require.NotNil(t, decoded.To)
	assert.Equal(t, *rm.To, *decoded.To)
	assert.Equal(t, rm.Body, decoded.Body)
	assert.False(t, decoded.IsBroadcast())
}

func TestRoundMessage_BroadcastHasNoReceiver(t *testing.T) {
	rm := RoundMessage{Header: threePeerHeader(KindKeyGen), Variant: VariantKeygen, Body: []byte("x")}
	assert.True(t, rm.IsBroadcast())
}

func TestDecode_RejectsMissingVariant(t *testing.T) {
	rm := RoundMessage{Header: threePeerHeader(KindKeyGen), Body: []byte("x")}
	raw, err := rm.Encode()
	require.NoError(t, err)

	// Strip variant by re-encoding without it.
	rm.Variant = ""
	raw, err = rm.Encode()
	require.NoError(t, err)

	_, err = Decode(raw)
	assert.Error(t, err)
}
