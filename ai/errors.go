// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import (
	"errors"
	"fmt"

	"github.com/poiesic/usecasegen/core"
)

// ErrNoChoices is the cause recorded when the model returns no completion.
var ErrNoChoices = errors.New("no choices returned from model")

// ServiceError reports a failed language model call.
type ServiceError struct {
	// Op names the call, e.g. "complete".
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", core.ErrService, e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Is reports whether target is core.ErrService.
func (e *ServiceError) Is(target error) bool { return target == core.ErrService }
