/*
 * Copyright 2020-2024 Open Networking Foundation (ONF) and the ONF Contributors
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

package tod

import (
	"context"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
)

const (
	nsPerSec = 1000000000
	psPerNs  = 1000
	// seconds and extended seconds form a 48 bit counter
	secondsMask = 1<<48 - 1
)

// modeParams holds the per-mode timing constants.
// asymmetry is n_down/(n_up+n_down) of the wavelength pair in use,
// eqUnitPs is the duration of one upstream bit, the unit of the equalization delay.
type modeParams struct {
	asymmetry float64
	eqUnitPs  float64
}

var paramsByMode = map[fapi.PonMode]modeParams{
	// 1490/1310 nm, 1.24416 Gbit/s
	fapi.ModeGpon: {asymmetry: 0.500085, eqUnitPs: 803.755144},
	// 1577/1270 nm, 2.48832 Gbit/s
	fapi.ModeXgpon: {asymmetry: 0.500153, eqUnitPs: 401.877572},
	// 1577/1270 nm, 9.95328 Gbit/s
	fapi.ModeXgspon: {asymmetry: 0.500153, eqUnitPs: 100.469393},
	// L/C band, 2.48832 Gbit/s
	fapi.ModeNgpon2Up2G5: {asymmetry: 0.500051, eqUnitPs: 401.877572},
	// L/C band, 9.95328 Gbit/s
	fapi.ModeNgpon2Up10G: {asymmetry: 0.500051, eqUnitPs: 100.469393},
}

// IsNull reports the all-zero record the OLT uses for "no time of day"
func IsNull(rec fapi.TodSync) bool {
	return rec.MultiframeCount == 0 && rec.Seconds == 0 && rec.ExtSeconds == 0 && rec.Nanoseconds == 0
}

// Delta returns the correction in ns to be subtracted from the OLT time:
// (equalization delay + response time) weighted by the path asymmetry, plus the configured offset.
func Delta(mode fapi.PonMode, eqDelTicks uint32, responseTimeNs uint32, offsetPs int64) (int64, error) {
	p, ok := paramsByMode[mode]
	if !ok {
		return 0, adperrors.NewErrDriver("no-tod-parameters-for-mode", log.Fields{"mode": mode.String()}, nil)
	}
	eqDelayPs := float64(eqDelTicks) * p.eqUnitPs
	respTimePs := float64(responseTimeNs) * psPerNs
	deltaPs := (eqDelayPs+respTimePs)*p.asymmetry + float64(offsetPs)
	return int64(deltaPs / psPerNs), nil
}

func seconds48(rec fapi.TodSync) uint64 {
	return uint64(rec.ExtSeconds)<<32 | uint64(rec.Seconds)
}

func setSeconds48(rec *fapi.TodSync, secs uint64) {
	secs &= secondsMask
	rec.ExtSeconds = uint16(secs >> 32)
	rec.Seconds = uint32(secs)
}

// decrementSecond borrows from the extended seconds when seconds is 0
func decrementSecond(rec *fapi.TodSync) {
	if rec.Seconds == 0 {
		rec.ExtSeconds--
	}
	rec.Seconds--
}

// incrementSecond carries into the extended seconds
func incrementSecond(rec *fapi.TodSync) {
	rec.Seconds++
	if rec.Seconds == 0 {
		rec.ExtSeconds++
	}
}

// Apply subtracts deltaNs from the record with borrow across nanoseconds,
// seconds and extended seconds. A negative delta advances the time.
func Apply(rec fapi.TodSync, deltaNs int64) fapi.TodSync {
	out := rec
	if out.Nanoseconds >= nsPerSec {
		setSeconds48(&out, seconds48(out)+uint64(out.Nanoseconds/nsPerSec))
		out.Nanoseconds %= nsPerSec
	}

	if deltaNs < 0 {
		adv := uint64(-deltaNs)
		setSeconds48(&out, seconds48(out)+adv/nsPerSec)
		out.Nanoseconds += uint32(adv % nsPerSec)
		if out.Nanoseconds >= nsPerSec {
			out.Nanoseconds -= nsPerSec
			incrementSecond(&out)
		}
		return out
	}

	d := uint64(deltaNs)
	setSeconds48(&out, seconds48(out)-d/nsPerSec)
	frac := uint32(d % nsPerSec)
	if frac <= out.Nanoseconds {
		out.Nanoseconds -= frac
	} else {
		out.Nanoseconds += nsPerSec - frac
		decrementSecond(&out)
	}
	return out
}

// Sync corrects the OLT supplied time of day by the ONU's equalization delay
// and response time and commits it to the hardware. A null record is ignored.
func Sync(ctx context.Context, client fapi.Client, offsetPs int64, rec fapi.TodSync) error {
	if IsNull(rec) {
		logger.Debugw(ctx, "null time of day - ignored", log.Fields{})
		return nil
	}
	st, err := client.GetGponStatus(ctx)
	if err != nil {
		return adperrors.FromFapi(fapi.OpGetGponStatus, log.Fields{"purpose": "tod"}, err)
	}
	deltaNs, err := Delta(st.Mode, st.EqDelay, st.OnuResponseTime, offsetPs)
	if err != nil {
		return err
	}
	corrected := Apply(rec, deltaNs)
	logger.Debugw(ctx, "time of day corrected", log.Fields{"delta-ns": deltaNs, "eq-delay": st.EqDelay,
		"response-time": st.OnuResponseTime, "seconds": corrected.Seconds, "nanoseconds": corrected.Nanoseconds})
	if err := client.SetTodSync(ctx, &corrected); err != nil {
		return adperrors.FromFapi(fapi.OpSetTodSync, log.Fields{"purpose": "tod"}, err)
	}
	return nil
}
