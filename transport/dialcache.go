// Copyright (C) 2025 skw-network
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/singleflight"
)

// dialCache maps peer_id to (address, connected connection), enforcing
// spec.md §3's invariant of at most one outstanding dial per peer id: a
// concurrent second Dial for the same peer collapses onto the first's
// in-flight call via group, instead of opening a second connection, the
// same dedup pattern pkg/agent/handshake/server.go uses singleflight for
// on its pending-handshake path.
type dialCache struct {
	mu          sync.RWMutex
	conns       map[string]*websocket.Conn
	addrs       map[string]string
	group       singleflight.Group
	dialTimeout time.Duration
}

func newDialCache(dialTimeout time.Duration) *dialCache {
	return &dialCache{
		conns:       make(map[string]*websocket.Conn),
		addrs:       make(map[string]string),
		dialTimeout: dialTimeout,
	}
}

// AddrOf returns the last address seen for peerID, if any, populated either
// by a prior Dial or by touch.
func (c *dialCache) AddrOf(peerID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	addr, ok := c.addrs[peerID]
	return addr, ok
}

// Dial returns the cached connection for peerID, dialing addr if no
// connection exists yet. Concurrent callers for the same peerID share one
// in-flight dial and all receive its result.
func (c *dialCache) Dial(ctx context.Context, peerID, addr string) (*websocket.Conn, error) {
	if conn, ok := c.cachedConn(peerID); ok {
		return conn, nil
	}

	v, err, _ := c.group.Do(peerID, func() (interface{}, error) {
		if conn, ok := c.cachedConn(peerID); ok {
			return conn, nil
		}

		c.mu.Lock()
		c.addrs[peerID] = addr
		c.mu.Unlock()

		dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
		defer cancel()

		dialer := websocket.Dialer{HandshakeTimeout: c.dialTimeout}
		conn, resp, err := dialer.DialContext(dialCtx, addr, nil)
		if err != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, fmt.Errorf("%w: %v", ErrFailToDial, err)
		}

		c.mu.Lock()
		c.conns[peerID] = conn
		c.mu.Unlock()
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*websocket.Conn), nil
}

func (c *dialCache) cachedConn(peerID string) (*websocket.Conn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.conns[peerID]
	return conn, ok
}

// Set registers an already-established connection (e.g. one accepted by
// the server side) under peerID, so outbound traffic to that peer reuses it
// instead of dialing a second one.
func (c *dialCache) Set(peerID string, conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.conns[peerID]; ok {
		return
	}
	c.conns[peerID] = conn
}

// touch records peerID's address as an admission-time hint without dialing,
// so a later outbound send to that peer has an address on hand even if the
// job itself never talks back to it first (spec.md §4.2).
func (c *dialCache) touch(peerID, addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.addrs[peerID]; !ok {
		c.addrs[peerID] = addr
	}
}

// Drop removes peerID's cached connection, e.g. after a write failure.
func (c *dialCache) Drop(peerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, peerID)
}
