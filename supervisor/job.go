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

package supervisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnb-chain/tss-lib/v2/ecdsa/keygen"

	"github.com/skw-network/tss-node/auth"
	"github.com/skw-network/tss-node/internal/logger"
	"github.com/skw-network/tss-node/internal/metrics"
	"github.com/skw-network/tss-node/jobmanager"
	"github.com/skw-network/tss-node/payload"
	"github.com/skw-network/tss-node/store"
)

// onStartJob is the transport.StartJobHandler a full peer registers: it runs
// for every job a remote peer admitted us into, after both ownership proofs
// already verified (spec.md §4.2's admission policy is the transport's job,
// not this one's). It derives share_id from the auth header, resolves
// whatever local key material this kind needs from storage, and accepts the
// job locally — mirroring spec.md §4.3's "full peer" acceptance path, the
// counterpart to the initiator's InitiateJob-then-accept sequence in
// MpcRequest.
func (s *Supervisor) onStartJob(ctx context.Context, header payload.Header, authHeader auth.Header) error {
	shareID, err := authHeader.ShareID()
	if err != nil {
		return fmt.Errorf("supervisor: derive share id: %w", err)
	}

	localKey, err := s.resolveLocalKey(shareID, header.Kind, nil)
	if err != nil {
		return err
	}

	outcomes, errs, err := s.dispatch(ctx, shareID, header, localKey)
	if err != nil {
		return err
	}
	s.watch(header, outcomes, errs)
	return nil
}

// MpcRequest is the core's single in-process command (spec.md §6): the
// caller (an HTTP front-end, or a local test) supplies the job and its auth
// header plus, for sign, the local key material it already holds.
// MpcRequest dials and admits every remote peer first (spec.md §4.3's
// "initiating a job" sequence); only after every remote acks does it accept
// the job locally and block for the terminal ClientOutcome or error.
func (s *Supervisor) MpcRequest(ctx context.Context, header payload.Header, authHeader auth.Header, maybeLocalKey []byte) (jobmanager.Outcome, error) {
	if err := header.Validate(); err != nil {
		return jobmanager.Outcome{}, err
	}
	if s.cfg.OwnershipVerifierKey != nil {
		if err := authHeader.Validate(s.cfg.OwnershipVerifierKey); err != nil {
			return jobmanager.Outcome{}, err
		}
	}

	shareID, err := authHeader.ShareID()
	if err != nil {
		return jobmanager.Outcome{}, fmt.Errorf("supervisor: derive share id: %w", err)
	}

	if err := s.jobs.InitiateJob(ctx, authHeader, header); err != nil {
		return jobmanager.Outcome{}, err
	}

	localKey, err := s.resolveLocalKey(shareID, header.Kind, maybeLocalKey)
	if err != nil {
		return jobmanager.Outcome{}, err
	}

	outcomes, errs, err := s.dispatch(ctx, shareID, header, localKey)
	if err != nil {
		return jobmanager.Outcome{}, err
	}

	done := s.track(header.PayloadID)
	defer done()
	start := time.Now()

	select {
	case outcome := <-outcomes:
		metrics.JobsCompleted.WithLabelValues(string(header.Kind), "success").Inc()
		metrics.JobDuration.WithLabelValues(string(header.Kind)).Observe(time.Since(start).Seconds())
		s.persist(outcome)
		return outcome, nil
	case err := <-errs:
		metrics.JobsCompleted.WithLabelValues(string(header.Kind), "failure").Inc()
		return jobmanager.Outcome{}, err
	case <-ctx.Done():
		return jobmanager.Outcome{}, ctx.Err()
	}
}

// dispatch accepts header locally against the right Job Manager entry
// point for its kind, using localKey where the kind needs one.
func (s *Supervisor) dispatch(ctx context.Context, shareID [32]byte, header payload.Header, localKey *keygen.LocalPartySaveData) (<-chan jobmanager.Outcome, <-chan error, error) {
	switch header.Kind {
	case payload.KindKeyGen:
		metrics.JobsStarted.WithLabelValues(string(header.Kind), role(header, s.cfg.PeerID)).Inc()
		outcomes, errs := s.jobs.AcceptKeygen(ctx, shareID, header)
		return outcomes, errs, nil

	case payload.KindSignOffline:
		if localKey == nil {
			return nil, nil, jobmanager.ErrLocalKeyMissing
		}
		metrics.JobsStarted.WithLabelValues(string(header.Kind), role(header, s.cfg.PeerID)).Inc()
		outcomes, errs := s.jobs.AcceptSign(ctx, shareID, header, *localKey, header.MessageHash)
		return outcomes, errs, nil

	case payload.KindKeyRefresh:
		metrics.JobsStarted.WithLabelValues(string(header.Kind), role(header, s.cfg.PeerID)).Inc()
		outcomes, errs := s.jobs.AcceptKeyRefresh(ctx, shareID, header, localKey)
		return outcomes, errs, nil

	default:
		return nil, nil, fmt.Errorf("supervisor: %q is not a job-initiating kind", header.Kind)
	}
}

// watch waits for a locally-accepted job's terminal outcome off the main
// request path (used for jobs a remote peer admitted us into, where no
// caller is blocked on the result) and persists it per spec.md §4.4:
// keygen and refresh outcomes replace the stored share; sign outcomes have
// nothing to persist, so they are only logged.
func (s *Supervisor) watch(header payload.Header, outcomes <-chan jobmanager.Outcome, errs <-chan error) {
	done := s.track(header.PayloadID)
	start := time.Now()
	go func() {
		defer done()
		select {
		case outcome := <-outcomes:
			metrics.JobsCompleted.WithLabelValues(string(header.Kind), "success").Inc()
			metrics.JobDuration.WithLabelValues(string(header.Kind)).Observe(time.Since(start).Seconds())
			s.persist(outcome)
		case err := <-errs:
			metrics.JobsCompleted.WithLabelValues(string(header.Kind), "failure").Inc()
			s.log.Error("job failed",
				logger.String("kind", string(header.Kind)),
				logger.Error(err))
		}
	}()
}

// persist writes a KeyGen or KeyRefresh outcome's share to storage under its
// share_id (spec.md's Open Question (a): refreshed shares replace the
// existing record in place rather than moving to a new key). Sign outcomes
// carry nothing to persist.
func (s *Supervisor) persist(outcome jobmanager.Outcome) {
	switch outcome.Kind {
	case jobmanager.OutcomeKeyGen, jobmanager.OutcomeKeyRefresh:
		if err := s.store.Write(outcome.ShareID, outcome.LocalKey); err != nil {
			s.log.Error("failed to persist share",
				logger.String("kind", string(outcome.Kind)),
				logger.Error(err))
			return
		}
		s.log.Info("share persisted",
			logger.String("kind", string(outcome.Kind)))
	case jobmanager.OutcomeSign:
		s.log.Info("sign completed")
	}
}

// resolveLocalKey decides what local key material, if any, a job of kind
// should run with. explicit (when non-nil) is the HTTP facade's
// maybe_local_key override (spec.md §6: "present for sign, absent for
// keygen/refresh"); otherwise the node's own stored share under share_id is
// used, which is how every remote full peer (no explicit override from a
// wire StartJob) and a rotator-role refresh resolve theirs. A missing key
// is only an error for SignOffline — KeyGen never has one yet, and a
// KeyRefresh joiner legitimately has none either.
func (s *Supervisor) resolveLocalKey(shareID [32]byte, kind payload.Kind, explicit []byte) (*keygen.LocalPartySaveData, error) {
	raw := explicit
	if raw == nil {
		stored, err := s.store.Read(shareID)
		switch {
		case err == nil:
			raw = stored
		case errors.Is(err, store.ErrNotFound):
			raw = nil
		default:
			return nil, fmt.Errorf("supervisor: read share: %w", err)
		}
	}

	if raw == nil {
		if kind == payload.KindSignOffline {
			return nil, jobmanager.ErrLocalKeyMissing
		}
		return nil, nil
	}

	var key keygen.LocalPartySaveData
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("supervisor: decode local key: %w", err)
	}
	return &key, nil
}

// role labels a metrics observation by whether this node originated header
// (its sender) or is merely participating, mirroring the
// JobsStarted{kind,role} label pair internal/metrics/jobs.go declares.
func role(header payload.Header, localPeerID string) string {
	if header.Sender == localPeerID {
		return "initiator"
	}
	return "participant"
}
