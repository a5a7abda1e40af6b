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

package nexus

import (
	"context"

	"github.com/Bigboss298/DataTrust-Nexus/internal/access"
	"github.com/Bigboss298/DataTrust-Nexus/internal/accessrequest"
	"github.com/Bigboss298/DataTrust-Nexus/internal/api"
	"github.com/Bigboss298/DataTrust-Nexus/internal/audit"
	"github.com/Bigboss298/DataTrust-Nexus/internal/contracts"
	"github.com/Bigboss298/DataTrust-Nexus/internal/datarecord"
	"github.com/Bigboss298/DataTrust-Nexus/internal/domain"
	"github.com/Bigboss298/DataTrust-Nexus/internal/httpserver"
	"github.com/Bigboss298/DataTrust-Nexus/internal/institution"
	"github.com/Bigboss298/DataTrust-Nexus/internal/metrics"
	"github.com/Bigboss298/DataTrust-Nexus/internal/msgs"
	"github.com/Bigboss298/DataTrust-Nexus/internal/projector"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/abiregistry"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/ethclient"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/log"
	"github.com/Bigboss298/DataTrust-Nexus/pkg/nxconf"
	"github.com/hyperledger/firefly-common/pkg/i18n"
)

// Nexus owns the lifecycle of everything a running node needs: the chain client, the
// contract bindings, the domain services, and the API and metrics servers.
type Nexus interface {
	Init() error
	Start() error
	Stop()
	Services() *api.Services
	APIServer() httpserver.Server
}

type stoppable interface {
	Stop()
}

type nexus struct {
	bgCtx context.Context
	conf  *nxconf.NexusConfig

	metricsManager metrics.Metrics
	metricsServer  metrics.Server
	chain          ethclient.ChainClient
	contracts      *contracts.Contracts
	services       *api.Services
	apiServer      httpserver.Server

	started map[string]stoppable
}

func New(bgCtx context.Context, conf *nxconf.NexusConfig) Nexus {
	return &nexus{
		bgCtx:   log.WithComponent(bgCtx, "nexus"),
		conf:    conf,
		started: map[string]stoppable{},
	}
}

func (n *nexus) Init() (err error) {
	n.metricsManager = metrics.NewMetricsManager(n.bgCtx)
	n.metricsServer, err = metrics.NewServer(n.bgCtx, n.metricsManager.Registry(), &n.conf.Metrics)
	err = n.wrapIfErr(err, "metrics server")

	if err == nil {
		n.chain, err = ethclient.New(n.bgCtx, &n.conf.Blockchain, n.metricsManager)
		err = n.wrapIfErr(err, "chain client")
	}

	if err == nil {
		registry := abiregistry.New(n.conf.ABIs.Directory)
		proj := projector.New(&n.conf.Projector, n.chain)
		n.contracts, err = contracts.Bind(n.bgCtx, &n.conf.Contracts, registry, n.chain, proj)
		err = n.wrapIfErr(err, "contract bindings")
	}

	if err == nil {
		n.initServices()
		apiConf := n.conf.API
		if apiConf.Port == nil {
			apiConf.Port = nxconf.APIServerDefaults.Port
		}
		if apiConf.Address == nil {
			apiConf.Address = nxconf.APIServerDefaults.Address
		}
		n.apiServer, err = api.NewServer(n.bgCtx, &apiConf, n.services, httpserver.WithObserver(n.metricsManager))
		err = n.wrapIfErr(err, "API server")
	}
	return err
}

func (n *nexus) initServices() {
	tk := domain.NewToolkit(n.conf)
	institutions := institution.New(&n.conf.Institution, n.contracts.Institutions, n.chain.ChainID(), n.conf.Blockchain.ServerKey, tk)
	records := datarecord.New(n.contracts.DataVault, tk)
	n.services = &api.Services{
		Institutions: institutions,
		Records:      records,
		Access:       access.New(n.contracts.AccessControl, tk),
		Requests:     accessrequest.New(records, tk),
		Audit:        audit.New(n.contracts.AuditTrail, records, institutions, tk),
	}
}

func (n *nexus) Start() (err error) {
	err = n.metricsServer.Start()
	if err = n.addIfStarted("metrics_server", n.metricsServer, err); err != nil {
		return err
	}
	err = n.apiServer.Start()
	if err = n.addIfStarted("api_server", n.apiServer, err); err != nil {
		return err
	}
	log.L(n.bgCtx).Infof("Startup complete chainId=%d api=%s", n.chain.ChainID(), n.apiServer.Addr())
	return nil
}

func (n *nexus) wrapIfErr(err error, component string) error {
	if err != nil {
		return i18n.WrapError(n.bgCtx, err, msgs.MsgComponentInitFailed, component)
	}
	return nil
}

func (n *nexus) addIfStarted(desc string, c stoppable, err error) error {
	if err != nil {
		return n.wrapIfErr(err, desc)
	}
	n.started[desc] = c
	return nil
}

func (n *nexus) Stop() {
	log.L(n.bgCtx).Info("Stopping")
	for name, c := range n.started {
		log.L(n.bgCtx).Infof("Stopping %s", name)
		c.Stop()
		log.L(n.bgCtx).Debugf("Stopped %s", name)
	}
	n.started = map[string]stoppable{}
	log.L(n.bgCtx).Debug("Stopped")
}

func (n *nexus) Services() *api.Services {
	return n.services
}

func (n *nexus) APIServer() httpserver.Server {
	return n.apiServer
}
