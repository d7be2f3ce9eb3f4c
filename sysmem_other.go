//go:build !linux && !darwin && !freebsd

/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

func readPhysicalMemory() (uint64, error) {
	return 0, ErrUnsupported
}
