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
	"errors"

	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
)

// FromFapi translates the result of a hardware API call into the adapter
// taxonomy. A nil result stays nil; no hardware error is passed through untranslated.
func FromFapi(operation string, fields log.Fields, err error) error {
	if err == nil {
		return nil
	}
	var hwErr *fapi.Error
	if errors.As(err, &hwErr) {
		return NewErrHardware(operation, hwErr.Status, fields, err)
	}
	return NewErrHardware(operation, fapi.StatusErr, fields, err)
}

// ResultCode maps an adapter error onto the OMCI result reported to the OLT
func ResultCode(err error) me.Results {
	if err == nil {
		return me.Success
	}
	var (
		invalidValue *ErrInvalidValue
		invalidArg   *ErrInvalidArgument
		notFound     *ErrNotFound
		unsupported  *ErrUnsupportedMode
		hwErr        *ErrHardware
	)
	switch {
	case errors.As(err, &invalidValue), errors.As(err, &invalidArg):
		return me.ParameterError
	case errors.As(err, &notFound):
		return me.UnknownInstance
	case errors.As(err, &unsupported):
		return me.NotSupported
	case errors.As(err, &hwErr):
		switch hwErr.Status {
		case fapi.StatusNotSupported:
			return me.NotSupported
		case fapi.StatusBusy:
			return me.DeviceBusy
		case fapi.StatusInputErr:
			return me.ParameterError
		}
	}
	return me.ProcessingError
}
