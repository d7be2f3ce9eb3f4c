/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import "sync"

var (
	m              sync.Mutex = sync.Mutex{}
	blocksCounters []func() uint64
	isDebug        bool
	objAmounts     map[string]int     = map[string]int{}
	blockStacks    map[uintptr]string = map[uintptr]string{}
)
