/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package status defines metadata for errors returned by the card
// subsystem. Status codes are divided by group, where each group
// represents a failing resource: the persistent store, the ledger
// network, or the client-side session.
package status

import (
	"fmt"

	"github.com/pkg/errors"
	grpcCodes "google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// Status provides additional information about an unsuccessful operation.
// Essentially, this object contains metadata about an error returned by
// the subsystem.
type Status struct {
	// Group status group
	Group Group
	// Code status code
	Code int32
	// Message status message
	Message string
	// Details any additional status details
	Details []interface{}
}

// Group of status to help users infer status codes from various components
type Group int32

const (
	// UnknownStatus unknown status group
	UnknownStatus Group = iota

	// StoreStatus defines the status returned by the persistent card store
	StoreStatus

	// NetworkStatus defines the status returned by the ledger network and
	// the transport layer of connections made to it
	NetworkStatus

	// ClientStatus defines the status inferred client-side, for example a
	// guard on a closed connection
	ClientStatus
)

// GroupName maps the groups in this package to human-readable strings
var GroupName = map[int32]string{
	0: "Unknown",
	1: "Card Store Status",
	2: "Ledger Network Status",
	3: "Client Status",
}

func (g Group) String() string {
	if s, ok := GroupName[int32(g)]; ok {
		return s
	}
	return UnknownStatus.String()
}

// FromError returns a Status representing err if available,
// otherwise it returns nil, false.
func FromError(err error) (s *Status, ok bool) {
	if err == nil {
		return &Status{Code: int32(OK)}, true
	}
	if s, ok := err.(*Status); ok {
		return s, true
	}
	unwrappedErr := errors.Cause(err)
	if s, ok := unwrappedErr.(*Status); ok {
		return s, true
	}

	return nil, false
}

func (s *Status) Error() string {
	return fmt.Sprintf("%s Code: (%d) %s. Description: %s", s.Group.String(), s.Code, CodeName[s.Code], s.Message)
}

// New returns a Status with the given parameters
func New(group Group, code int32, msg string, details []interface{}) *Status {
	return &Status{Group: group, Code: code, Message: msg, Details: details}
}

// NewFromGRPCStatus converts a gRPC status returned by the ledger
// transport. Deadline expiry maps to TransactionTimeout so callers can
// recognize the network's own timeout as a distinct failure kind.
func NewFromGRPCStatus(s *grpcstatus.Status) *Status {
	if s == nil {
		return nil
	}
	code := ConnectionError
	if s.Code() == grpcCodes.DeadlineExceeded {
		code = TransactionTimeout
	}
	return &Status{Group: NetworkStatus, Code: code.ToInt32(), Message: s.Message()}
}

// IsCode reports whether err carries a Status with the given code.
func IsCode(err error, code Code) bool {
	s, ok := FromError(err)
	if !ok {
		return false
	}
	return s.Code == code.ToInt32()
}
