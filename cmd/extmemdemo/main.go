/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

// extmemdemo stores each container kind in the configured pool and reports free memory between steps
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/host6/extmem"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	pool, err := newPool(cfg)
	if err != nil {
		log.WithError(err).Fatal("create pool")
	}
	extmem.SetDebug(cfg.Debug)

	if err := run(log, pool); err != nil {
		log.WithError(err).Fatal("demo failed")
	}
	extmem.PrintNonReleased(os.Stdout)
}

func report(log *logrus.Logger, pool extmem.IPool, step string) {
	log.WithField("step", step).Info(extmem.ReadMemory(pool).String())
}

func run(log *logrus.Logger, pool extmem.IPool) error {
	report(log, pool, "start")

	v, err := extmem.NewVector(extmem.NewAllocator[int](pool), 1, 2, 3, 4, 5)
	if err != nil {
		return fmt.Errorf("vector: %w", err)
	}
	for value := range v.Values() {
		log.WithField("container", "vector").Info(value)
	}
	report(log, pool, "vector")
	v.Release()

	if err := skippable(log, runList(log, pool)); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	report(log, pool, "list")

	if err := skippable(log, runMap(log, pool)); err != nil {
		return fmt.Errorf("map: %w", err)
	}
	report(log, pool, "map")

	s, err := extmem.NewString(extmem.NewAllocator[byte](pool), "Hello from pool string!")
	if err != nil {
		return fmt.Errorf("string: %w", err)
	}
	log.WithField("container", "string").Info(s.String())
	report(log, pool, "string")
	s.Release()

	t := extmem.MakeTriple(42, 3.14, "Pool Tuple")
	log.WithFields(logrus.Fields{"int": t.First, "double": fmt.Sprintf("%.2f", t.Second), "string": t.Third}).
		Info("tuple")
	report(log, pool, "tuple")

	if err := runFunction(log, pool); err != nil {
		return fmt.Errorf("function: %w", err)
	}
	report(log, pool, "function")
	return nil
}

// skippable swallows the rejection of pointer-holding containers by off-heap pools
func skippable(log *logrus.Logger, err error) error {
	if errors.Is(err, extmem.ErrPointerLayout) {
		log.WithError(err).Warn("step skipped")
		return nil
	}
	return err
}

func runList(log *logrus.Logger, pool extmem.IPool) error {
	strAlloc := extmem.NewAllocator[byte](pool)
	l, err := extmem.NewList(extmem.NewAllocator[*extmem.String](pool))
	if err != nil {
		return err
	}
	defer func() {
		for s := range l.All() {
			s.Release()
		}
		l.Release()
	}()
	for _, word := range []string{"Hello", "from", "pool"} {
		s, err := extmem.NewString(strAlloc, word)
		if err != nil {
			return err
		}
		if err := l.PushBack(s); err != nil {
			s.Release()
			return err
		}
	}
	for s := range l.All() {
		log.WithField("container", "list").Info(s.String())
	}
	return nil
}

func runMap(log *logrus.Logger, pool extmem.IPool) error {
	strAlloc := extmem.NewAllocator[byte](pool)
	mp, err := extmem.NewMap(extmem.NewAllocator[extmem.Pair[int, *extmem.String]](pool))
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range mp.All() {
			s.Release()
		}
		mp.Release()
	}()
	for k, word := range map[int]string{1: "One", 2: "Two", 3: "Three"} {
		s, err := extmem.NewString(strAlloc, word)
		if err != nil {
			return err
		}
		if err := mp.Set(k, s); err != nil {
			s.Release()
			return err
		}
	}
	for k, s := range mp.All() {
		log.WithField("container", "map").Infof("%d: %s", k, s)
	}
	return nil
}

type adder struct {
	offset int
}

func (a adder) Call(x, y int) int {
	return x + y + a.offset
}

func runFunction(log *logrus.Logger, pool extmem.IPool) error {
	f, err := extmem.Wrap2[int, int, int](pool, adder{offset: 10})
	if err != nil {
		return err
	}
	g, err := f.Clone()
	if err != nil {
		f.Release()
		return err
	}
	defer g.Release()
	res, err := extmem.Call2(f, 3, 4)
	f.Release()
	if err != nil {
		return err
	}
	log.WithField("container", "function").Infof("f(3, 4) = %d", res)
	res, err = extmem.Call2(g, 5, 5)
	if err != nil {
		return err
	}
	log.WithField("container", "function").Infof("copy after original released: g(5, 5) = %d", res)
	if _, err := extmem.Call2(f, 1, 1); !errors.Is(err, extmem.ErrBadFunctionCall) {
		return fmt.Errorf("released function must not be callable, got %v", err)
	}
	return nil
}
