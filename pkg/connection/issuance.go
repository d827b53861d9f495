/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package connection

import (
	"context"
	"strings"

	"github.com/brendonion/fresh-blocks/pkg/ledger"
	"github.com/pkg/errors"
)

// IssuanceStep identifies one step of the identity-issuance sequence.
type IssuanceStep string

// The issuance steps, in execution order.
const (
	StepConnectAdmin        IssuanceStep = "connect-admin"
	StepRegisterParticipant IssuanceStep = "register-participant"
	StepIssueIdentity       IssuanceStep = "issue-identity"
	StepImportCard          IssuanceStep = "import-card"
	StepDisconnectAdmin     IssuanceStep = "disconnect-admin"
)

// IssuanceRequest describes a new identity to issue.
type IssuanceRequest struct {
	// AdminCardName names the privileged card used to drive the sequence.
	AdminCardName string
	// CardName is the card name the new user's card is imported under.
	CardName string
	// RegistryName is the participant registry the participant is added to.
	RegistryName string
	// Participant is the participant resource to register.
	Participant ledger.Resource
	// IdentityName is the logical identity name bound to the participant.
	IdentityName string
}

// IssuanceResult records how far an issuance sequence got. Completed
// steps are recorded even when the sequence fails, so a higher-level
// orchestrator can drive compensation: the sequence spans the store and
// the network, which cannot be transactionally joined, and no automatic
// rollback is attempted here.
type IssuanceResult struct {
	Completed []IssuanceStep
	Secret    string
}

func (r *IssuanceResult) completed(step IssuanceStep) {
	r.Completed = append(r.Completed, step)
}

// IssueIdentity runs the identity-issuance sequence: connect with the
// administrative card, register the participant, issue a network
// identity for it, import a new card carrying the one-time enrollment
// secret, and disconnect. An already-registered participant aborts the
// sequence before anything is written. The first failing step aborts the sequence;
// steps already completed are not rolled back (a registered participant
// stays registered if the card import fails) and are reported in the
// result for the caller to compensate.
func (m *Manager) IssueIdentity(ctx context.Context, req *IssuanceRequest) (*IssuanceResult, error) {
	result := &IssuanceResult{}
	if req.Participant == nil {
		return result, errors.New("participant resource is required")
	}

	conn, err := m.CreateConnection(ctx, req.AdminCardName)
	if err != nil {
		return result, stepError(StepConnectAdmin, err)
	}
	result.completed(StepConnectAdmin)

	registry, err := conn.ParticipantRegistry(ctx, req.RegistryName)
	if err != nil {
		m.releaseAdmin(ctx, conn)
		return result, stepError(StepRegisterParticipant, err)
	}
	exists, err := registry.Exists(ctx, req.Participant.Identifier())
	if err != nil {
		m.releaseAdmin(ctx, conn)
		return result, stepError(StepRegisterParticipant, err)
	}
	if exists {
		m.releaseAdmin(ctx, conn)
		return result, stepError(StepRegisterParticipant,
			errors.Errorf("participant %s is already registered", qualifiedID(req.Participant)))
	}
	if err := registry.Add(ctx, req.Participant); err != nil {
		m.releaseAdmin(ctx, conn)
		return result, stepError(StepRegisterParticipant, err)
	}
	result.completed(StepRegisterParticipant)

	issuance, err := conn.IssueIdentity(ctx, qualifiedID(req.Participant), req.IdentityName)
	if err != nil {
		m.releaseAdmin(ctx, conn)
		return result, stepError(StepIssueIdentity, err)
	}
	result.completed(StepIssueIdentity)
	result.Secret = issuance.UserSecret

	if err := m.ImportNewCard(ctx, req.CardName, issuance.UserSecret); err != nil {
		m.releaseAdmin(ctx, conn)
		return result, stepError(StepImportCard, err)
	}
	result.completed(StepImportCard)

	if err := conn.Disconnect(ctx); err != nil {
		return result, stepError(StepDisconnectAdmin, err)
	}
	result.completed(StepDisconnectAdmin)
	return result, nil
}

// releaseAdmin closes the administrative connection after an aborted
// sequence. The session is not domain state, so closing it is not a
// compensating action and failures only get logged.
func (m *Manager) releaseAdmin(ctx context.Context, conn *Connection) {
	if err := conn.Disconnect(ctx); err != nil {
		logger.Warnf("release of administrative connection failed: %s", err)
	}
}

func stepError(step IssuanceStep, err error) error {
	return errors.WithMessage(err, "identity issuance aborted at step "+string(step))
}

// qualifiedID builds the fully-qualified participant identifier the
// network expects, e.g. org.freshblocks.User#alice@example.com.
func qualifiedID(resource ledger.Resource) string {
	parts := []string{resource.Namespace(), ".", resource.Type()}
	if id := resource.Identifier(); id != "" {
		parts = append(parts, "#", id)
	}
	return strings.Join(parts, "")
}
