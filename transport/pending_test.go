package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingTable_DeliverRoutesToWaiter(t *testing.T) {
	tbl := newPendingTable()
	ch := tbl.register("req-1")

	tbl.deliver("req-1", &Response{Kind: RequestStartJob, Status: StatusOK})

	select {
	case resp := <-ch:
		assert.Equal(t, StatusOK, resp.Status)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestPendingTable_DeliverUnknownIDIsNoop(t *testing.T) {
	tbl := newPendingTable()
	assert.NotPanics(t, func() {
		tbl.deliver("missing", &Response{Status: StatusOK})
	})
}

func TestPendingTable_CancelReleasesWaiter(t *testing.T) {
	tbl := newPendingTable()
	ch := tbl.register("req-1")
	tbl.cancel("req-1")

	tbl.deliver("req-1", &Response{Status: StatusOK})

	select {
	case resp := <-ch:
		t.Fatalf("unexpected delivery after cancel: %v", resp)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPendingTable_RegisterIsIndependentPerID(t *testing.T) {
	tbl := newPendingTable()
	ch1 := tbl.register("a")
	ch2 := tbl.register("b")
	require.NotEqual(t, ch1, ch2)

	tbl.deliver("a", &Response{Status: StatusOK})
	tbl.deliver("b", &Response{Status: StatusBadAuthHeader})

	assert.Equal(t, StatusOK, (<-ch1).Status)
	assert.Equal(t, StatusBadAuthHeader, (<-ch2).Status)
}
