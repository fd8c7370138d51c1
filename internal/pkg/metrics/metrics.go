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

// Package metrics provides the Prometheus collectors of the adapter
package metrics

import (
	"errors"
	"strconv"
	"time"

	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "omci_fapi_adapter"

// Collector holds the adapter metrics
type Collector struct {
	meOperations    *prometheus.CounterVec
	meOperationTime *prometheus.HistogramVec
	hardwareErrors  *prometheus.CounterVec
	attachedDevices prometheus.Gauge
}

// New registers the adapter metrics on reg
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		meOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "me_operations_total",
				Help:      "Total number of managed entity operations by OMCI result",
			},
			[]string{"class", "op", "result"},
		),
		meOperationTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "me_operation_duration_seconds",
				Help:      "Time taken by managed entity operations including hardware calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"class", "op"},
		),
		hardwareErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hardware_errors_total",
				Help:      "Total number of failed hardware API calls",
			},
			[]string{"op", "status"},
		),
		attachedDevices: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "attached_devices",
				Help:      "Current number of attached devices",
			},
		),
	}
}

func resultLabel(res me.Results) string {
	switch res {
	case me.Success:
		return "success"
	case me.ProcessingError:
		return "processing_error"
	case me.NotSupported:
		return "not_supported"
	case me.ParameterError:
		return "parameter_error"
	case me.UnknownEntity:
		return "unknown_entity"
	case me.UnknownInstance:
		return "unknown_instance"
	case me.DeviceBusy:
		return "device_busy"
	case me.InstanceExists:
		return "instance_exists"
	}
	return strconv.Itoa(int(res))
}

// ObserveOperation records the outcome of one ME entry point; a nil collector records nothing
func (c *Collector) ObserveOperation(classID me.ClassID, op string, err error, took time.Duration) {
	if c == nil {
		return
	}
	class := strconv.Itoa(int(classID))
	c.meOperations.WithLabelValues(class, op, resultLabel(adperrors.ResultCode(err))).Inc()
	c.meOperationTime.WithLabelValues(class, op).Observe(took.Seconds())

	var hwErr *adperrors.ErrHardware
	if errors.As(err, &hwErr) {
		operation, _ := hwErr.Fields()["operation"].(string)
		c.hardwareErrors.WithLabelValues(operation, hwErr.Status.String()).Inc()
	}
}

// DeviceAttached counts an attached device
func (c *Collector) DeviceAttached() {
	if c != nil {
		c.attachedDevices.Inc()
	}
}

// DeviceDetached counts a detached device
func (c *Collector) DeviceDetached() {
	if c != nil {
		c.attachedDevices.Dec()
	}
}
