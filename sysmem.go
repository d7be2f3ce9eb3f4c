/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

// used when the platform does not report its physical memory
const fallbackPhysicalMemory = uint64(1) << 40

var physicalMemory = func() uint64 {
	if res, err := readPhysicalMemory(); err == nil && res > 0 {
		return res
	}
	return fallbackPhysicalMemory
}()
