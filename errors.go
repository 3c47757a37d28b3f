// Copyright 2015 Google Inc. All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mscl

import (
	"errors"
	"fmt"
)

// ErrFilterMalformed is the sentinel wrapped whenever the preprocessed-
// output filter's reader fails or the stream ends before the PCH boundary
// is established. The filter runs over cl.exe's stdout after the process
// has exited, so a killed cl.exe is reported by the driver's exit-status
// handling rather than through this error.
var ErrFilterMalformed = errors.New("malformed preprocessed stream")

func wrapFilterMalformed(cause error) error {
	return fmt.Errorf("%w: %v", ErrFilterMalformed, cause)
}

// ErrToolchainResolution is the sentinel wrapped when no cl.exe can be
// resolved for a CommandInfo.
var ErrToolchainResolution = errors.New("toolchain resolution failed")

func wrapToolchainResolution(program string) error {
	return fmt.Errorf("%w: no cl.exe toolchain for %q", ErrToolchainResolution, program)
}
