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

package store

import (
	"sync"
	"time"

	"github.com/skw-network/tss-node/internal/logger"
	"github.com/skw-network/tss-node/internal/metrics"
)

// opKind tags a request for logging/metrics; it never leaves this package.
type opKind string

const (
	opWrite    opKind = "write"
	opRead     opKind = "read"
	opDelete   opKind = "delete"
	opFlush    opKind = "flush"
	opShutdown opKind = "shutdown"
)

// request is the single request type the Engine's worker goroutine drains.
// Every request carries its own one-shot reply channel, mirroring the
// DBOpIn/DBOpOut split of the reference storage actor: a request enters, a
// reply leaves on the channel embedded in it, never on a shared one.
type request struct {
	kind  opKind
	key   [32]byte
	value []byte
	reply chan reply
}

type reply struct {
	value []byte
	err   error
}

// Engine is a single-writer storage worker: all Backend calls happen on one
// goroutine, so every operation observes a total order and a Write is never
// interleaved with another Write's flush.
type Engine struct {
	backend   Backend
	log       logger.Logger
	reqs      chan request
	done      chan struct{}
	closeReqs sync.Once
}

// NewEngine starts the Engine's worker goroutine over backend and returns
// immediately; callers issue operations via Write/Read/Delete/Flush/Shutdown.
func NewEngine(backend Backend, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewDefaultLogger()
	}
	e := &Engine{
		backend: backend,
		log:     log,
		reqs:    make(chan request),
		done:    make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	defer close(e.done)
	for req := range e.reqs {
		start := time.Now()
		switch req.kind {
		case opWrite:
			err := e.backend.Put(req.key, req.value)
			if err == nil {
				err = e.backend.Flush()
			}
			e.observe(opWrite, start, err)
			req.reply <- reply{err: err}

		case opRead:
			v, err := e.backend.Get(req.key)
			e.observe(opRead, start, err)
			req.reply <- reply{value: v, err: err}

		case opDelete:
			err := e.backend.Delete(req.key)
			e.observe(opDelete, start, err)
			req.reply <- reply{err: err}

		case opFlush:
			err := e.backend.Flush()
			e.observe(opFlush, start, err)
			req.reply <- reply{err: err}

		case opShutdown:
			err := e.backend.Flush()
			if cerr := e.backend.Close(); err == nil {
				err = cerr
			}
			e.observe(opShutdown, start, err)
			req.reply <- reply{err: err}
			return
		}
	}
}

func (e *Engine) observe(kind opKind, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == ErrNotFound:
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	metrics.StorageOps.WithLabelValues(string(kind), outcome).Inc()
	metrics.StorageOpDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil && err != ErrNotFound {
		e.log.Warn("storage op failed", logger.String("op", string(kind)), logger.Error(err))
	}
}

func (e *Engine) do(kind opKind, key [32]byte, value []byte) ([]byte, error) {
	select {
	case <-e.done:
		return nil, ErrClosed
	default:
	}

	reply := make(chan reply, 1)
	req := request{kind: kind, key: key, value: value, reply: reply}

	select {
	case e.reqs <- req:
	case <-e.done:
		return nil, ErrClosed
	}

	r := <-reply
	return r.value, r.err
}

// Write stores value under key and flushes before returning, per the
// write-then-flush-before-ack discipline.
func (e *Engine) Write(key [32]byte, value []byte) error {
	_, err := e.do(opWrite, key, value)
	return err
}

// Read returns the value stored under key, or ErrNotFound.
func (e *Engine) Read(key [32]byte) ([]byte, error) {
	return e.do(opRead, key, nil)
}

// Delete removes key, or returns ErrNotFound if absent.
func (e *Engine) Delete(key [32]byte) error {
	_, err := e.do(opDelete, key, nil)
	return err
}

// Flush forces a flush independent of any specific write.
func (e *Engine) Flush() error {
	_, err := e.do(opFlush, [32]byte{}, nil)
	return err
}

// Shutdown flushes, closes the backend, and stops the worker goroutine.
// After Shutdown returns, every further operation returns ErrClosed.
func (e *Engine) Shutdown() error {
	_, err := e.do(opShutdown, [32]byte{}, nil)
	e.closeReqs.Do(func() { close(e.reqs) })
	<-e.done
	return err
}
