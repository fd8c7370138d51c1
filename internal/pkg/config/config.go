/*
* Copyright 2018-present Open Networking Foundation

* Licensed under the Apache License, Version 2.0 (the "License");
* you may not use this file except in compliance with the License.
* You may obtain a copy of the License at

* http://www.apache.org/licenses/LICENSE-2.0

* Unless required by applicable law or agreed to in writing, software
* distributed under the License is distributed on an "AS IS" BASIS,
* WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
* See the License for the specific language governing permissions and
* limitations under the License.
 */

//Package config provides the Log, kvstore, probe and device default configuration
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/core"
)

// OMCI FAPI adapter default constants
const (
	etcdStoreName               = "etcd"
	defaultInstanceid           = "omci-fapi-adapter"
	defaultKvstoretype          = etcdStoreName
	defaultKvstoretimeout       = 5 * time.Second
	defaultKvstoreaddress       = "127.0.0.1:2379"
	defaultKvstorePathPrefix    = "service/voltha/omci_fapi_adapter"
	defaultLoglevel             = "WARN"
	defaultBanner               = false
	defaultDisplayVersionOnly   = false
	defaultProbeHost            = ""
	defaultProbePort            = 8080
	defaultLiveProbeInterval    = 60 * time.Second
	// Probe more frequently when not alive
	defaultNotLiveProbeInterval = 5 * time.Second
	defaultMetricsAddress       = ":9090"
	defaultDeviceID             = "onu-0"
	defaultSimulatedPonMode     = "xgspon"
	// defaultAlarmCheckInterval 0 disables the periodic alarm check, rechecks are then triggered by updates only
	defaultAlarmCheckInterval   = 10 * time.Second

	// optical thresholds taken when the OLT asks for the ONU defaults, in dBm
	defaultRxLowerThreshold = -28
	defaultRxUpperThreshold = -8
	defaultTxLowerThreshold = 0
	defaultTxUpperThreshold = 5

	defaultTodOffsetPs       = 0
	defaultTwdmTuningFloorMs = 100
	defaultOltInteropMask    = 0
)

// AdapterFlags represents the set of configurations used by the adapter service
type AdapterFlags struct {
	// Command line parameters
	InstanceID           string
	KVStoreType          string
	KVStoreTimeout       time.Duration
	KVStoreAddress       string
	KVStorePathPrefix    string
	LogLevel             string
	Banner               bool
	DisplayVersionOnly   bool
	ProbeHost            string
	ProbePort            int
	LiveProbeInterval    time.Duration
	// NotLiveProbeInterval applies while the kv store is not reachable
	NotLiveProbeInterval time.Duration
	MetricsAddress       string
	DeviceID             string
	SimulatedPonMode     string
	AlarmCheckInterval   time.Duration
	RxLowerThreshold     int
	RxUpperThreshold     int
	TxLowerThreshold     int
	TxUpperThreshold     int
	TodOffsetPs          int64
	TwdmTuningFloorMs    uint
	OltInteropMask       uint
}

// NewAdapterFlags returns a new adapter config
func NewAdapterFlags() *AdapterFlags {
	var adapterFlags = AdapterFlags{ // Default values
		InstanceID:           defaultInstanceid,
		KVStoreType:          defaultKvstoretype,
		KVStoreTimeout:       defaultKvstoretimeout,
		KVStoreAddress:       defaultKvstoreaddress,
		KVStorePathPrefix:    defaultKvstorePathPrefix,
		LogLevel:             defaultLoglevel,
		Banner:               defaultBanner,
		DisplayVersionOnly:   defaultDisplayVersionOnly,
		ProbeHost:            defaultProbeHost,
		ProbePort:            defaultProbePort,
		LiveProbeInterval:    defaultLiveProbeInterval,
		NotLiveProbeInterval: defaultNotLiveProbeInterval,
		MetricsAddress:       defaultMetricsAddress,
		DeviceID:             defaultDeviceID,
		SimulatedPonMode:     defaultSimulatedPonMode,
		AlarmCheckInterval:   defaultAlarmCheckInterval,
		RxLowerThreshold:     defaultRxLowerThreshold,
		RxUpperThreshold:     defaultRxUpperThreshold,
		TxLowerThreshold:     defaultTxLowerThreshold,
		TxUpperThreshold:     defaultTxUpperThreshold,
		TodOffsetPs:          defaultTodOffsetPs,
		TwdmTuningFloorMs:    defaultTwdmTuningFloorMs,
		OltInteropMask:       defaultOltInteropMask,
	}
	return &adapterFlags
}

// ParseCommandArguments parses the arguments when running the adapter service
func (so *AdapterFlags) ParseCommandArguments(args []string) error {
	fs := flag.NewFlagSet("omci-fapi-adapter", flag.ContinueOnError)

	help := fmt.Sprintf("KV store type")
	fs.StringVar(&(so.KVStoreType), "kv_store_type", defaultKvstoretype, help)

	help = fmt.Sprintf("The default timeout when making a kv store request")
	fs.DurationVar(&(so.KVStoreTimeout), "kv_store_request_timeout", defaultKvstoretimeout, help)

	help = fmt.Sprintf("KV store address")
	fs.StringVar(&(so.KVStoreAddress), "kv_store_address", defaultKvstoreaddress, help)

	help = fmt.Sprintf("KV store path prefix of the persisted device settings")
	fs.StringVar(&(so.KVStorePathPrefix), "kv_store_path_prefix", defaultKvstorePathPrefix, help)

	help = fmt.Sprintf("Log level")
	fs.StringVar(&(so.LogLevel), "log_level", defaultLoglevel, help)

	help = fmt.Sprintf("Show startup banner log lines")
	fs.BoolVar(&(so.Banner), "banner", defaultBanner, help)

	help = fmt.Sprintf("Show version information and exit")
	fs.BoolVar(&(so.DisplayVersionOnly), "version", defaultDisplayVersionOnly, help)

	help = fmt.Sprintf("The address on which to listen to answer liveness and readiness probe queries over HTTP.")
	fs.StringVar(&(so.ProbeHost), "probe_host", defaultProbeHost, help)

	help = fmt.Sprintf("The port on which to listen to answer liveness and readiness probe queries over HTTP.")
	fs.IntVar(&(so.ProbePort), "probe_port", defaultProbePort, help)

	help = fmt.Sprintf("Number of seconds for the default liveliness check")
	fs.DurationVar(&(so.LiveProbeInterval), "live_probe_interval", defaultLiveProbeInterval, help)

	help = fmt.Sprintf("Number of seconds for liveliness check if probe is not running")
	fs.DurationVar(&(so.NotLiveProbeInterval), "not_live_probe_interval", defaultNotLiveProbeInterval, help)

	help = fmt.Sprintf("The address on which the prometheus metrics are served.")
	fs.StringVar(&(so.MetricsAddress), "metrics_address", defaultMetricsAddress, help)

	help = fmt.Sprintf("ID of the device attached at startup")
	fs.StringVar(&(so.DeviceID), "device_id", defaultDeviceID, help)

	help = fmt.Sprintf("PON mode of the simulated hardware (gpon, xgpon, xgspon, ngpon2-2.5G, ngpon2-10G)")
	fs.StringVar(&(so.SimulatedPonMode), "simulated_pon_mode", defaultSimulatedPonMode, help)

	help = fmt.Sprintf("Interval of the periodic ANI-G alarm check, 0 disables it")
	fs.DurationVar(&(so.AlarmCheckInterval), "alarm_check_interval", defaultAlarmCheckInterval, help)

	help = fmt.Sprintf("Default lower optical receive threshold in dBm")
	fs.IntVar(&(so.RxLowerThreshold), "rx_lower_threshold", defaultRxLowerThreshold, help)

	help = fmt.Sprintf("Default upper optical receive threshold in dBm")
	fs.IntVar(&(so.RxUpperThreshold), "rx_upper_threshold", defaultRxUpperThreshold, help)

	help = fmt.Sprintf("Default lower transmit power threshold in dBm")
	fs.IntVar(&(so.TxLowerThreshold), "tx_lower_threshold", defaultTxLowerThreshold, help)

	help = fmt.Sprintf("Default upper transmit power threshold in dBm")
	fs.IntVar(&(so.TxUpperThreshold), "tx_upper_threshold", defaultTxUpperThreshold, help)

	help = fmt.Sprintf("Offset added to the time of day correction in ps")
	fs.Int64Var(&(so.TodOffsetPs), "tod_offset_ps", defaultTodOffsetPs, help)

	help = fmt.Sprintf("Lowest accepted TWDM downstream/upstream tuning timer in ms")
	fs.UintVar(&(so.TwdmTuningFloorMs), "twdm_tuning_floor_ms", defaultTwdmTuningFloorMs, help)

	help = fmt.Sprintf("OLT interoperability mask handed to the hardware")
	fs.UintVar(&(so.OltInteropMask), "olt_interop_mask", defaultOltInteropMask, help)

	if err := fs.Parse(args); err != nil {
		return err
	}
	containerName := getContainerInfo()
	if len(containerName) > 0 {
		so.InstanceID = containerName
	}
	return nil
}

// DeviceConfig returns the configuration snapshot handed to a device at attach
func (so *AdapterFlags) DeviceConfig() core.DeviceConfig {
	return core.DeviceConfig{
		RxLowerThresholdDbm: int32(so.RxLowerThreshold),
		RxUpperThresholdDbm: int32(so.RxUpperThreshold),
		TxLowerThresholdDbm: int32(so.TxLowerThreshold),
		TxUpperThresholdDbm: int32(so.TxUpperThreshold),
		TodOffsetPs:         so.TodOffsetPs,
		TwdmTuningFloorMs:   uint32(so.TwdmTuningFloorMs),
		OltInteropMask:      uint32(so.OltInteropMask),
		AlarmCheckInterval:  so.AlarmCheckInterval,
	}
}

func getContainerInfo() string {
	return os.Getenv("HOSTNAME")
}
