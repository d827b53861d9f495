/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package status

import (
	"strconv"

	grpcCodes "google.golang.org/grpc/codes"
)

// Code represents a status code
type Code uint32

const (
	// OK is returned on success.
	OK Code = 0

	// Unknown represents status codes that are uncategorized or unknown to the subsystem
	Unknown Code = 1

	// CardNotFound is returned when no identity card exists under the
	// requested name, or when the backing store could not be reached.
	// The store does not distinguish the two at this layer.
	CardNotFound Code = 2

	// MalformedCard is returned when a persisted card record cannot be
	// decoded back into an identity card.
	MalformedCard Code = 3

	// ConnectionError is returned when a network session could not be
	// established (unreachable peers, authentication rejection).
	ConnectionError Code = 4

	// NotConnected is returned when an operation is attempted on a
	// connection that is closed or was never opened.
	NotConnected Code = 5

	// SerializationError is returned on a shape mismatch between a
	// document and a ledger-native resource.
	SerializationError Code = 6

	// TransactionTimeout is returned when the network did not acknowledge
	// a submitted transaction within its configured timeout.
	TransactionTimeout Code = 7

	// TransactionRejected is returned when the network rejected a
	// transaction during endorsement or validation.
	TransactionRejected Code = 8
)

// CodeName maps the codes in this package to human-readable strings
var CodeName = map[int32]string{
	0: "OK",
	1: "UNKNOWN",
	2: "CARD_NOT_FOUND",
	3: "MALFORMED_CARD",
	4: "CONNECTION_ERROR",
	5: "NOT_CONNECTED",
	6: "SERIALIZATION_ERROR",
	7: "TRANSACTION_TIMEOUT",
	8: "TRANSACTION_REJECTED",
}

// ToInt32 cast to int32
func (c Code) ToInt32() int32 {
	return int32(c)
}

// String representation of the code
func (c Code) String() string {
	if s, ok := CodeName[c.ToInt32()]; ok {
		return s
	}
	return strconv.Itoa(int(c))
}

// ToCardStatusCode cast to subsystem status code
func ToCardStatusCode(c int32) Code {
	return Code(c)
}

// ToGRPCStatusCode cast to gRPC status code
func ToGRPCStatusCode(c int32) grpcCodes.Code {
	return grpcCodes.Code(c)
}
