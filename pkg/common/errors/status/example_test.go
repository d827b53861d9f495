/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package status

import "fmt"

func Example() {
	// Status errors are returned for every failure kind of the card subsystem
	statusError := New(StoreStatus, CardNotFound.ToInt32(), "the business network card \"alice\" does not exist", nil)

	// Status errors implement the standard error interface and are returned as regular errors
	err := interface{}(statusError).(error)

	// A user can extract status information from a status
	status, ok := FromError(err)
	fmt.Println(ok)
	fmt.Println(status.Group)
	fmt.Println(Code(status.Code))
	fmt.Println(status.Message)

	// Output:
	// true
	// Card Store Status
	// CARD_NOT_FOUND
	// the business network card "alice" does not exist
}
