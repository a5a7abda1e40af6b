/*
 * Copyright © 2025 The DataTrust Nexus Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/Bigboss298/DataTrust-Nexus/internal/nexus"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
)

type RC int

const (
	RC_OK   RC = 0
	RC_FAIL RC = 1
)

var nexusFactory = nexus.New

type instance struct {
	configFile string

	ctx       context.Context
	cancelCtx context.CancelFunc
	signals   chan os.Signal
	stopped   atomic.Bool
	started   chan nexus.Nexus
	done      chan struct{}
}

func newInstance(configFile string) *instance {
	i := &instance{
		configFile: configFile,
		signals:    make(chan os.Signal, 1),
		started:    make(chan nexus.Nexus, 1),
		done:       make(chan struct{}),
	}
	i.ctx, i.cancelCtx = context.WithCancel(log.WithLogField(context.Background(), "pid", strconv.Itoa(os.Getpid())))
	return i
}

func (i *instance) signalHandler() {
	signal.Notify(i.signals, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(i.signals)
	select {
	case sig := <-i.signals:
		log.L(i.ctx).Infof("Stopping due to signal %s", sig)
		i.cancelCtx()
	case <-i.ctx.Done():
	}
}

func (i *instance) run() RC {
	defer close(i.done)
	go i.signalHandler()

	conf, err := nxconf.Load(i.ctx, i.configFile)
	if err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	log.InitConfig(&conf.Log)

	n := nexusFactory(i.ctx, conf)
	// From this point need to ensure we stop everything we started
	defer n.Stop()

	err = n.Init()
	if err == nil {
		err = n.Start()
	}
	if err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	i.started <- n

	<-i.ctx.Done()
	return RC_OK
}

func (i *instance) stop() {
	if i.stopped.CompareAndSwap(false, true) {
		i.cancelCtx()
		<-i.done
	}
}
