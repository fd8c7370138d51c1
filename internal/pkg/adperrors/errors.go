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

// Package adperrors implements the error taxonomy of the adapter core
package adperrors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
)

const (
	defaultLogAndReturnLevel = log.ErrorLevel
)

func copyFields(src log.Fields) log.Fields {
	dst := make(log.Fields, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func merge(one, two log.Fields) log.Fields {
	dst := make(log.Fields, len(one)+len(two))
	for k, v := range one {
		dst[k] = v
	}
	for k, v := range two {
		dst[k] = v
	}
	return dst
}

// LoggableError defined functions that can be used to log an object
type LoggableError interface {
	error
	Log() error
	LogAt(log.LogLevel) error
}

// ErrAdapter represents a basic adapter error that combines a name, field set
// and wrapped error
type ErrAdapter struct {
	name    string
	fields  log.Fields
	wrapped error
}

// NewErrAdapter constructs a new error with the given values
func NewErrAdapter(name string, fields log.Fields, wrapped error) LoggableError {
	return &ErrAdapter{
		name:    name,
		fields:  copyFields(fields),
		wrapped: wrapped,
	}
}

// Name returns the error name
func (e *ErrAdapter) Name() string {
	return e.name
}

// Fields returns the fields associated with the error
func (e *ErrAdapter) Fields() log.Fields {
	return e.fields
}

// Unwrap returns the wrapped or nested error
func (e *ErrAdapter) Unwrap() error {
	return e.wrapped
}

// Error returns a string representation of the error
func (e *ErrAdapter) Error() string {
	var buf strings.Builder
	buf.WriteString(e.name)
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i == 0 {
			buf.WriteString(": ")
		} else {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s=%v", k, e.fields[k])
	}
	if e.wrapped != nil {
		fmt.Fprintf(&buf, ": %s", e.wrapped.Error())
	}
	return buf.String()
}

// Log logs the error at the default level for log and return
func (e *ErrAdapter) Log() error {
	return e.LogAt(defaultLogAndReturnLevel)
}

// LogAt logs the error at the specified level and then returns the error
func (e *ErrAdapter) LogAt(level log.LogLevel) error {
	loggerFunc := logger.Debugw
	switch level {
	case log.InfoLevel:
		loggerFunc = logger.Infow
	case log.WarnLevel:
		loggerFunc = logger.Warnw
	case log.ErrorLevel:
		loggerFunc = logger.Errorw
	case log.FatalLevel:
		loggerFunc = logger.Fatalw
	}
	local := e.fields
	if e.wrapped != nil {
		local = merge(e.fields, log.Fields{"wrapped": e.wrapped})
	}
	loggerFunc(context.Background(), e.name, local)
	return e
}

// ErrInvalidValue represents an error condition with given value is not able to
// be processed
type ErrInvalidValue struct {
	ErrAdapter
}

// NewErrInvalidValue constructs a new error based on the given values
func NewErrInvalidValue(fields log.Fields, wrapped error) LoggableError {
	return &ErrInvalidValue{
		ErrAdapter{
			name:    "invalid-value",
			fields:  copyFields(fields),
			wrapped: wrapped,
		},
	}
}

// Log logs the error at the default level for log and return
func (e *ErrInvalidValue) Log() error {
	_ = e.ErrAdapter.Log()
	return e
}

// LogAt logs the error at the specified level and then returns the error
func (e *ErrInvalidValue) LogAt(level log.LogLevel) error {
	_ = e.ErrAdapter.LogAt(level)
	return e
}

// ErrInvalidArgument represents a missing or malformed required argument
type ErrInvalidArgument struct {
	ErrAdapter
}

// NewErrInvalidArgument constructs a new error based on the given values
func NewErrInvalidArgument(argument string, fields log.Fields) LoggableError {
	return &ErrInvalidArgument{
		ErrAdapter{
			name:   "invalid-argument",
			fields: merge(fields, log.Fields{"argument": argument}),
		},
	}
}

// Log logs the error at the default level for log and return
func (e *ErrInvalidArgument) Log() error {
	_ = e.ErrAdapter.Log()
	return e
}

// LogAt logs the error at the specified level and then returns the error
func (e *ErrInvalidArgument) LogAt(level log.LogLevel) error {
	_ = e.ErrAdapter.LogAt(level)
	return e
}

// ErrNotFound represents an error condition when a value can not be located
// given a field set of criteria
type ErrNotFound struct {
	ErrAdapter
}

// NewErrNotFound constructs a new error based on the given values
func NewErrNotFound(target string, fields log.Fields, wrapped error) LoggableError {
	return &ErrNotFound{
		ErrAdapter{
			name:    "not-found",
			fields:  merge(fields, log.Fields{"target": target}),
			wrapped: wrapped,
		},
	}
}

// Log logs the error at the default level for log and return
func (e *ErrNotFound) Log() error {
	_ = e.ErrAdapter.Log()
	return e
}

// LogAt logs the error at the specified level and then returns the error
func (e *ErrNotFound) LogAt(level log.LogLevel) error {
	_ = e.ErrAdapter.LogAt(level)
	return e
}

// ErrUnsupportedMode represents an operation invoked while the device is not
// in a compatible operating mode
type ErrUnsupportedMode struct {
	ErrAdapter
}

// NewErrUnsupportedMode constructs a new error based on the given values
func NewErrUnsupportedMode(operation string, mode fapi.PonMode, fields log.Fields) LoggableError {
	return &ErrUnsupportedMode{
		ErrAdapter{
			name:   "unsupported-mode",
			fields: merge(fields, log.Fields{"operation": operation, "mode": mode.String()}),
		},
	}
}

// Log logs the error at the default level for log and return
func (e *ErrUnsupportedMode) Log() error {
	_ = e.ErrAdapter.Log()
	return e
}

// LogAt logs the error at the specified level and then returns the error
func (e *ErrUnsupportedMode) LogAt(level log.LogLevel) error {
	_ = e.ErrAdapter.LogAt(level)
	return e
}

// ErrHardware represents a failed hardware API call
type ErrHardware struct {
	ErrAdapter
	Status fapi.Status
}

// NewErrHardware constructs a new error based on the given values
func NewErrHardware(operation string, status fapi.Status, fields log.Fields, wrapped error) LoggableError {
	return &ErrHardware{
		ErrAdapter: ErrAdapter{
			name:    "hardware-call-failed",
			fields:  merge(fields, log.Fields{"operation": operation, "status": status.String()}),
			wrapped: wrapped,
		},
		Status: status,
	}
}

// Log logs the error at the default level for log and return
func (e *ErrHardware) Log() error {
	_ = e.ErrAdapter.Log()
	return e
}

// LogAt logs the error at the specified level and then returns the error
func (e *ErrHardware) LogAt(level log.LogLevel) error {
	_ = e.ErrAdapter.LogAt(level)
	return e
}

// ErrDriver represents an internal driver condition preventing an operation,
// e.g. a PON mode without known timing parameters
type ErrDriver struct {
	ErrAdapter
}

// NewErrDriver constructs a new error based on the given values
func NewErrDriver(reason string, fields log.Fields, wrapped error) LoggableError {
	return &ErrDriver{
		ErrAdapter{
			name:    "driver-error",
			fields:  merge(fields, log.Fields{"reason": reason}),
			wrapped: wrapped,
		},
	}
}

// Log logs the error at the default level for log and return
func (e *ErrDriver) Log() error {
	_ = e.ErrAdapter.Log()
	return e
}

// LogAt logs the error at the specified level and then returns the error
func (e *ErrDriver) LogAt(level log.LogLevel) error {
	_ = e.ErrAdapter.LogAt(level)
	return e
}
