/*
 * Copyright (c) 2023-present unTill Pro, Ltd. and Contributors
 *
 * This source code is licensed under the MIT license found in the
 * LICENSE file in the root directory of this source tree.
 */

package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/host6/extmem"
)

const envPrefix = "extmem"

type config struct {
	Pool     string `envconfig:"POOL" default:"arena"`
	Capacity uint64 `envconfig:"CAPACITY" default:"4194304"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}

func newPool(cfg config) (extmem.IPool, error) {
	switch cfg.Pool {
	case "arena":
		return extmem.NewArena(cfg.Capacity), nil
	case "mmap":
		return extmem.NewMmapPool(cfg.Capacity)
	default:
		return nil, fmt.Errorf("unknown pool kind %q, want arena or mmap", cfg.Pool)
	}
}

func newLogger(cfg config) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.Level = level
	return log, nil
}
