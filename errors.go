/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import "errors"

var (
	// ErrBadAlloc is returned when storage can not be obtained from the pool: size overflow or pool exhaustion
	ErrBadAlloc = errors.New("bad allocation")

	// ErrBadFunctionCall is returned when an empty Function is called
	ErrBadFunctionCall = errors.New("bad function call")

	// ErrPoolExhausted is returned by pools that can not satisfy a request
	ErrPoolExhausted = errors.New("pool exhausted")

	// ErrPointerLayout is returned by off-heap pools for element types holding Go pointers
	ErrPointerLayout = errors.New("layout holds Go pointers, off-heap pool can not store it")

	// ErrUnsupported is returned when a pool kind is not available on the platform
	ErrUnsupported = errors.New("not supported on this platform")
)
