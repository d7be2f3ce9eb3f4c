/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package extmem

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/exp/slices"
)

// GetBlocksInUse returns total amount of blocks taken from all pools but not freed
// useful in tests
func GetBlocksInUse() uint64 {
	res := uint64(0)
	m.Lock()
	for _, bc := range blocksCounters {
		res += bc()
	}
	m.Unlock()
	return res
}

// RegisterBlocksInUseCounter registers a blocks counter which will be considered by GetBlocksInUse()
// called automatically by NewArena() and NewMmapPool()
// custom IPool implementations may register their counter here to be considered as well
// note: func counter must be thread-safe
func RegisterBlocksInUseCounter(bc func() uint64) {
	m.Lock()
	blocksCounters = append(blocksCounters, bc)
	m.Unlock()
}

// PrintNonReleased prints stacktraces that explains where non-released blocks were allocated
// note: debug mode must be turned on by `extmem.SetDebug(true)` call
func PrintNonReleased(w io.Writer) {
	nr := getNonReleased()
	if len(nr) == 0 {
		return
	}
	stacks := make([]string, 0, len(nr))
	for st := range nr {
		stacks = append(stacks, st)
	}
	slices.Sort(stacks)
	fmt.Fprintln(w, "blocks allocated from pools but not released:")
	for _, st := range stacks {
		amount := nr[st]
		st = "\t" + strings.ReplaceAll(st, "\n", "\n\t")
		st = st[:len(st)-1]
		fmt.Fprintf(w, "%d not released allocated at:\n%s", amount, st)
	}
}

// SetDebug switches debug mode. In debug mode allocators track amounts of non-released blocks
// per each allocation source code point (for all pools)
// blocks allocated before the switch are not tracked
// use PrintNonReleased() to get explanations
// useful for investigations only, decreases performance
func SetDebug(IsDebug bool) {
	isDebug = IsDebug
}

// ReleaseAll releases each non-nil releaser in order
func ReleaseAll(releasers ...IReleaser) {
	for _, r := range releasers {
		if r != nil {
			r.Release()
		}
	}
}

// ReadMemory reads free bytes of the default heap and of the pool
func ReadMemory(pool IPool) MemoryReport {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	st := pool.Stats()
	return MemoryReport{
		HeapFree:      ms.HeapSys - ms.HeapAlloc,
		PoolFree:      st.FreeBytes,
		PoolUnbounded: st.Unbounded,
	}
}

func (r MemoryReport) String() string {
	poolFree := "unbounded"
	if !r.PoolUnbounded {
		poolFree = humanize.Bytes(r.PoolFree)
	}
	return fmt.Sprintf("free heap: %s, free pool: %s", humanize.Bytes(r.HeapFree), poolFree)
}

func trackBlock(p unsafe.Pointer) {
	st := getStackTrace().string()
	m.Lock()
	blockStacks[uintptr(p)] = st
	objAmounts[st]++
	m.Unlock()
}

func untrackBlock(p unsafe.Pointer) {
	m.Lock()
	if st, ok := blockStacks[uintptr(p)]; ok {
		delete(blockStacks, uintptr(p))
		objAmounts[st]--
	}
	m.Unlock()
}

func getNonReleased() map[string]int {
	m.Lock()
	res := map[string]int{}
	for k, v := range objAmounts {
		if v > 0 {
			res[k] = v
		}
	}
	m.Unlock()
	return res
}

func (st stackTrace) string() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for _, sf := range st {
		fmt.Fprintf(buf, "%s\n\t%s:%d\n", sf.fn, sf.file, sf.line)
	}
	return buf.String()
}

func getStackTrace() stackTrace {
	pc := make([]uintptr, 100) // can't estimate
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])
	st := stackTrace{}
	for {
		frame, more := frames.Next()
		st = append(st, stackFrame{
			fn:   frame.Function,
			file: frame.File,
			line: frame.Line,
		})
		if !more {
			break
		}
	}
	return st
}
