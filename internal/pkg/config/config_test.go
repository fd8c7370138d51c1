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

package config

import (
	"testing"
	"time"

	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cf := NewAdapterFlags()
	require.NoError(t, cf.ParseCommandArguments(nil))
	assert.Equal(t, defaultKvstoreaddress, cf.KVStoreAddress)
	assert.Equal(t, core.DeviceConfig{
		RxLowerThresholdDbm: -28,
		RxUpperThresholdDbm: -8,
		TxLowerThresholdDbm: 0,
		TxUpperThresholdDbm: 5,
		TwdmTuningFloorMs:   100,
		AlarmCheckInterval:  10 * time.Second,
	}, cf.DeviceConfig())
}

func TestParseCommandArguments(t *testing.T) {
	cf := NewAdapterFlags()
	require.NoError(t, cf.ParseCommandArguments([]string{
		"--log_level", "DEBUG",
		"--rx_lower_threshold", "-30",
		"--tod_offset_ps", "-1500",
		"--twdm_tuning_floor_ms", "250",
		"--olt_interop_mask", "6",
		"--alarm_check_interval", "0s",
	}))
	assert.Equal(t, "DEBUG", cf.LogLevel)
	dc := cf.DeviceConfig()
	assert.Equal(t, int32(-30), dc.RxLowerThresholdDbm)
	assert.Equal(t, int64(-1500), dc.TodOffsetPs)
	assert.Equal(t, uint32(250), dc.TwdmTuningFloorMs)
	assert.Equal(t, uint32(6), dc.OltInteropMask)
	assert.Equal(t, time.Duration(0), dc.AlarmCheckInterval)

	assert.Error(t, NewAdapterFlags().ParseCommandArguments([]string{"--no_such_flag"}))
}
