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
	"os"
)

// CommandInfo describes how to invoke cl.exe: the executable, its working
// directory, and the environment it should run in. program is also the
// cache key used by ToolchainHolder.
type CommandInfo struct {
	Program string
	Dir     string
	Env     []string
}

// String renders the command for log and error messages. Building the
// *exec.Cmd is left to the driver (driver.go); CommandInfo itself is just
// the immutable identity the toolchain cache keys on.
func (c CommandInfo) String() string {
	return fmt.Sprintf("%s (dir=%s)", c.Program, c.Dir)
}

// CompilationTask is immutable after construction; it lives for the
// duration of compiling a single source file (spec.md §3).
type CompilationTask struct {
	Command CommandInfo
	Args    []Argument
	// Language is the cl.exe /T letter: "c", "p", etc.
	Language string

	InputSource  string
	OutputObject string

	// InputPrecompiled, if set, names the .pch to consume (/Yu mode).
	InputPrecompiled string
	// OutputPrecompiled, if set, names the .pch to produce (/Yc mode).
	OutputPrecompiled string
	// MarkerPrecompiled, if set, is the header filename that denotes the
	// PCH boundary in the preprocessed stream.
	MarkerPrecompiled string
}

// Validate checks the invariants spec.md §3 places on a CompilationTask.
func (t *CompilationTask) Validate() error {
	if t.InputPrecompiled != "" && t.OutputPrecompiled != "" {
		return fmt.Errorf("task for %q sets both input and output precompiled header", t.InputSource)
	}
	if t.MarkerPrecompiled != "" && t.InputPrecompiled == "" && t.OutputPrecompiled == "" {
		return fmt.Errorf("task for %q sets a pch marker without a pch mode", t.InputSource)
	}
	fi, err := os.Stat(t.InputSource)
	if err != nil {
		return fmt.Errorf("input source %q: %w", t.InputSource, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("input source %q is not a regular file", t.InputSource)
	}
	return nil
}

// OutputInfo is the result of running a cl.exe invocation to completion.
type OutputInfo struct {
	// Status is the process exit code, or -1 when the process was
	// terminated by a signal. The driver always sets it; a process that
	// fails to start is reported as an error instead of an OutputInfo.
	Status *int
	Stdout []byte
	Stderr []byte
}

// Success reports whether the invocation exited zero.
func (o OutputInfo) Success() bool { return o.Status != nil && *o.Status == 0 }

// PreprocessResult is the outcome of the preprocess step: either the
// filtered preprocessed bytes, or a Failed OutputInfo (spec.md §3).
type PreprocessResult struct {
	ok      bool
	content *bytes.Buffer
	failed  OutputInfo
}

// PreprocessSuccess wraps the filtered preprocessed bytes.
func PreprocessSuccess(content *bytes.Buffer) PreprocessResult {
	return PreprocessResult{ok: true, content: content}
}

// PreprocessFailed wraps a non-zero preprocess exit.
func PreprocessFailed(info OutputInfo) PreprocessResult {
	return PreprocessResult{ok: false, failed: info}
}

// Ok reports whether preprocessing succeeded.
func (r PreprocessResult) Ok() bool { return r.ok }

// Content returns the filtered preprocessed bytes. Only valid when Ok().
func (r PreprocessResult) Content() *bytes.Buffer { return r.content }

// Failed returns the failure OutputInfo. Only valid when !Ok().
func (r PreprocessResult) Failed() OutputInfo { return r.failed }

// CompileStep is constructed by the driver from a CompilationTask, the
// filtered preprocessed bytes, and the compile-phase argv. It is consumed
// exactly once by Toolchain.CompileStep; the consumed guard makes that
// "consumed once" lifecycle explicit the way the original Rust's move
// semantics made it implicit (see SPEC_FULL.md §4).
type CompileStep struct {
	task         *CompilationTask
	preprocessed *bytes.Buffer
	args         []string
	useResponse  bool

	consumed bool
}

func newCompileStep(task *CompilationTask, preprocessed *bytes.Buffer, args []string, useResponse bool) *CompileStep {
	return &CompileStep{task: task, preprocessed: preprocessed, args: args, useResponse: useResponse}
}

// take marks the step consumed, panicking if it already was. It returns the
// fields the caller needs so Toolchain.CompileStep doesn't have to reach
// into unexported state.
func (s *CompileStep) take() (*CompilationTask, *bytes.Buffer, []string) {
	if s.consumed {
		panic("mscl: CompileStep consumed twice")
	}
	s.consumed = true
	return s.task, s.preprocessed, s.args
}
