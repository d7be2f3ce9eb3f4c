//go:build darwin || freebsd

/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func readPhysicalMemory() (uint64, error) {
	if runtime.GOOS == "darwin" {
		return unix.SysctlUint64("hw.memsize")
	}
	return unix.SysctlUint64("hw.physmem")
}
