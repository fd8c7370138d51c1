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

//Package common provides global definitions
package common

import (
	"context"

	me "github.com/opencord/omci-lib-go/v2/generated"
)

// ConfigStore is the durable configuration store the adapter appends settings to.
// A batch of related keys is made durable by the write carrying commit=true.
type ConfigStore interface {
	Write(ctx context.Context, section, subsection, key, value string, commit bool) error
}

// ConfigReader reads back committed configuration values
type ConfigReader interface {
	Read(ctx context.Context, section, subsection, key string) (string, error)
}

// AlarmNotifier is implemented by the OMCI stack to forward ME alarms to the OLT
type AlarmNotifier interface {
	SendAlarm(ctx context.Context, classID me.ClassID, instID uint16, alarmNo uint8, active bool)
}
