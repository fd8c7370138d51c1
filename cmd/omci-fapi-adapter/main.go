/*
 * Copyright 2020-present Open Networking Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

//Package main -> this is the entry point of the OMCI FAPI adapter
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opencord/voltha-lib-go/v7/pkg/db"
	"github.com/opencord/voltha-lib-go/v7/pkg/db/kvstore"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-lib-go/v7/pkg/probe"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/opencord/voltha-omci-fapi-adapter-go/config/version"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/cfgstore"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/config"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/core"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/metrics"
)

// services reported by the probe
const (
	serviceKvStore      = "kv-store"
	serviceDeviceAttach = "device-attach"
)

type adapter struct {
	instanceID string
	config     *config.AdapterFlags
	kvClient   kvstore.Client
	registry   *prometheus.Registry
	openOnuAc  *core.OpenOnuFapiAC
}

func newAdapter(cf *config.AdapterFlags) *adapter {
	var a adapter
	a.instanceID = cf.InstanceID
	a.config = cf
	a.registry = prometheus.NewRegistry()
	return &a
}

func (a *adapter) start(ctx context.Context) error {
	logger.Info(ctx, "Starting Core Adapter components")

	if p := getProbe(ctx); p != nil {
		p.RegisterService(ctx, serviceKvStore, serviceDeviceAttach)
	}

	// Setup KV Client
	logger.Debugw(ctx, "create-kv-client", log.Fields{"kvstore": a.config.KVStoreType})
	if err := a.setKVClient(ctx); err != nil {
		return err
	}
	probe.UpdateStatusFromContext(ctx, serviceKvStore, probe.ServiceStatusRunning)

	kvbackend := &db.Backend{
		Client:     a.kvClient,
		StoreType:  a.config.KVStoreType,
		Address:    a.config.KVStoreAddress,
		Timeout:    a.config.KVStoreTimeout,
		PathPrefix: fmt.Sprintf("%s/%s", a.config.KVStorePathPrefix, a.config.DeviceID),
	}
	store := cfgstore.NewKVStore(kvbackend)

	a.registry.MustRegister(collectors.NewGoCollector())
	collector := metrics.New(a.registry)

	// no event bus in this deployment; alarms are logged only
	a.openOnuAc = core.NewOpenOnuFapiAC(ctx, store, nil, collector)
	if err := a.openOnuAc.Start(ctx); err != nil {
		return err
	}

	if err := a.attachSimulatedDevice(ctx); err != nil {
		return err
	}
	probe.UpdateStatusFromContext(ctx, serviceDeviceAttach, probe.ServiceStatusRunning)

	go a.checkKvStoreReadiness(ctx)
	return nil
}

func (a *adapter) attachSimulatedDevice(ctx context.Context) error {
	mode, err := fapi.ParsePonMode(a.config.SimulatedPonMode)
	if err != nil {
		return err
	}
	caps := fapi.Capabilities{
		Mode:            mode,
		GemPortCapacity: 4096,
		AllocIDCapacity: 1024,
	}
	if mode.IsTwdm() {
		caps.TwdmChannelMask = 0x0F
	}
	sim := fapi.NewSimulator(caps)
	dh, err := a.openOnuAc.Attach(ctx, a.config.DeviceID, sim, a.config.DeviceConfig())
	if err != nil {
		logger.Errorw(ctx, "device-attach-failed", log.Fields{"device-id": a.config.DeviceID, "err": err})
		return err
	}
	logger.Infow(ctx, "simulated-device-attached", log.Fields{"device-id": dh.GetDeviceID(),
		"mode": dh.GetPonMode().String()})
	return nil
}

func (a *adapter) stop(ctx context.Context) {
	if a.openOnuAc != nil {
		_ = a.openOnuAc.Stop(ctx)
	}
	// Cleanup - applies only if we had a kvClient
	if a.kvClient != nil {
		// Release all reservations
		if err := a.kvClient.ReleaseAllReservations(ctx); err != nil {
			logger.Infow(ctx, "fail-to-release-all-reservations", log.Fields{"error": err})
		}
		// Close the DB connection
		a.kvClient.Close(ctx)
	}
}

// #############################################
// Adapter Utility methods ##### begin #########

func getProbe(ctx context.Context) *probe.Probe {
	if value := ctx.Value(probe.ProbeContextKey); value != nil {
		if p, ok := value.(*probe.Probe); ok {
			return p
		}
	}
	return nil
}

func newKVClient(ctx context.Context, storeType, address string, timeout time.Duration) (kvstore.Client, error) {
	logger.Infow(ctx, "kv-store-type", log.Fields{"store": storeType})
	switch storeType {
	case "etcd":
		return kvstore.NewEtcdClient(ctx, address, timeout, log.FatalLevel)
	}
	return nil, errors.New("unsupported-kv-store")
}

func (a *adapter) setKVClient(ctx context.Context) error {
	client, err := newKVClient(ctx, a.config.KVStoreType, a.config.KVStoreAddress, a.config.KVStoreTimeout)
	if err != nil {
		a.kvClient = nil
		logger.Errorw(ctx, "error-starting-KVClient", log.Fields{"error": err})
		return err
	}
	a.kvClient = client
	return nil
}

/**
This function checks the liveliness and readiness of the kv-store service
and update the status in the probe.
*/
func (a *adapter) checkKvStoreReadiness(ctx context.Context) {
	// dividing the live probe interval by 2 to get updated status every 30s
	timeout := a.config.LiveProbeInterval / 2
	kvStoreChannel := make(chan bool, 1)

	// Default false to check the liveliness.
	kvStoreChannel <- false
	for {
		timeoutTimer := time.NewTimer(timeout)
		select {
		case <-ctx.Done():
			timeoutTimer.Stop()
			return
		case liveliness := <-kvStoreChannel:
			if !liveliness {
				// kv-store not reachable or down, updating the status to not ready state
				probe.UpdateStatusFromContext(ctx, serviceKvStore, probe.ServiceStatusNotReady)
				timeout = a.config.NotLiveProbeInterval
			} else {
				// kv-store is reachable , updating the status to running state
				probe.UpdateStatusFromContext(ctx, serviceKvStore, probe.ServiceStatusRunning)
				timeout = a.config.LiveProbeInterval / 2
			}
			// Check if the timer has expired or not
			if !timeoutTimer.Stop() {
				<-timeoutTimer.C
			}
		case <-timeoutTimer.C:
			// Check the status of the kv-store
			logger.Info(ctx, "kv-store liveliness-recheck")
			kvStoreChannel <- a.kvClient.IsConnectionUp(ctx)
		}
	}
}

// serve runs the probe and metrics listeners until ctx is done
func (a *adapter) serve(ctx context.Context, p *probe.Probe) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		p.ListenAndServe(egCtx, fmt.Sprintf("%s:%d", a.config.ProbeHost, a.config.ProbePort))
		return nil
	})
	eg.Go(func() error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: a.config.MetricsAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			<-egCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
		logger.Infow(ctx, "metrics-server-listening", log.Fields{"address": a.config.MetricsAddress})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return eg.Wait()
}

// Adapter Utility methods ##### end   #########
// #############################################

func printVersion(appName string) {
	fmt.Println(appName)
	fmt.Println(version.VersionInfo.String("  "))
}

func printBanner() {
	fmt.Println("   ___  __  __  ____ ___     _____ _    ____ ___ ")
	fmt.Println("  / _ \\|  \\/  |/ ___|_ _|   |  ___/ \\  |  _ \\_ _|")
	fmt.Println(" | | | | |\\/| | |    | |    | |_ / _ \\ | |_) | | ")
	fmt.Println(" | |_| | |  | | |___ | |    |  _/ ___ \\|  __/| | ")
	fmt.Println("  \\___/|_|  |_|\\____|___|   |_|/_/   \\_\\_|  |___|")
	fmt.Println("                                                  ")
}

func waitForExit(ctx context.Context) int {
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	select {
	case <-ctx.Done():
		logger.Infow(ctx, "Adapter run aborted due to internal errors", log.Fields{"context": "done"})
		return 2
	case s := <-signalChannel:
		logger.Infow(ctx, "closing-signal-received", log.Fields{"signal": s})
		return 0
	}
}

func main() {
	ctx := context.Background()
	start := time.Now()

	cf := config.NewAdapterFlags()
	defaultAppName := cf.InstanceID + "_" + version.GetCodeVersion()
	if err := cf.ParseCommandArguments(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	// Setup logging
	logLevel, err := log.StringToLogLevel(cf.LogLevel)
	if err != nil {
		logger.Fatalf(ctx, "Cannot setup logging, %s", err)
	}

	// Setup default logger - applies for packages that do not have specific logger set
	if _, err := log.SetDefaultLogger(log.JSON, logLevel, log.Fields{"instanceId": cf.InstanceID}); err != nil {
		logger.With(log.Fields{"error": err}).Fatal(ctx, "Cannot setup logging")
	}

	// Update all loggers (provisioned via init) with a common field
	if err := log.UpdateAllLoggers(log.Fields{"instanceId": cf.InstanceID}); err != nil {
		logger.With(log.Fields{"error": err}).Fatal(ctx, "Cannot setup logging")
	}

	log.SetAllLogLevel(logLevel)

	defer func() {
		_ = log.CleanUp()
	}()

	// Print version / build information and exit
	if cf.DisplayVersionOnly {
		printVersion(defaultAppName)
		return
	}
	logger.Infow(ctx, "config", log.Fields{"StartName": defaultAppName})
	logger.Infow(ctx, "config", log.Fields{"BuildVersion": version.VersionInfo.String("  ")})
	logger.Infow(ctx, "config", log.Fields{"Arguments": os.Args[1:]})

	// Print banner if specified
	if cf.Banner {
		printBanner()
	}

	logger.Infow(ctx, "config", log.Fields{"config": *cf})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ad := newAdapter(cf)

	p := &probe.Probe{}
	probeCtx := context.WithValue(ctx, probe.ProbeContextKey, p)

	go func() {
		if err := ad.serve(probeCtx, p); err != nil {
			logger.Errorw(ctx, "http-listener-failed", log.Fields{"error": err})
			cancel()
		}
	}()

	go func() {
		// If this operation returns an error
		// cancel all operations using this context
		if err := ad.start(probeCtx); err != nil {
			logger.Errorw(ctx, "adapter-start-failed", log.Fields{"error": err})
			cancel()
		}
	}()

	code := waitForExit(ctx)
	logger.Infow(ctx, "received-a-closing-signal", log.Fields{"code": code})

	// Cleanup before leaving
	ad.stop(ctx)
	cancel()

	elapsed := time.Since(start)
	logger.Infow(ctx, "run-time", log.Fields{"Name": "omci-fapi-adapter", "time": elapsed / time.Microsecond})
}
