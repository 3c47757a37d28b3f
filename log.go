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
	"bytes"
	"fmt"
	"sync"
)

var logMu sync.Mutex

// Logf prints a user-facing, command-line-visible announcement, such as an
// invocation that cannot be classified or a toolchain that cannot be
// resolved (cancellation notices go through Warn). This is
// the teacher's LogAlways, generalized from Makefile terminology to
// compiler-driver terminology; verbose internal tracing instead goes
// through glog.V(n), per SPEC_FULL.md §2.1.
func Logf(f string, a ...interface{}) {
	var buf bytes.Buffer
	buf.WriteString("*mscl*: ")
	buf.WriteString(f)
	buf.WriteByte('\n')
	logMu.Lock()
	fmt.Printf(buf.String(), a...)
	logMu.Unlock()
}

// Warn prints a driver-level warning attributed to a source file and line,
// the way the teacher's Warn attributes to a makefile and line.
func Warn(filename string, lineno int, f string, a ...interface{}) {
	f = fmt.Sprintf("%s:%d: warning: %s\n", filename, lineno, f)
	logMu.Lock()
	fmt.Printf(f, a...)
	logMu.Unlock()
}
