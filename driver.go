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
	"context"
	"fmt"
	"os/exec"

	"github.com/golang/glog"
)

// Driver wires the argument partitioner and the toolchain cache together
// into the two-phase pipeline spec.md §4.D describes. It holds no
// per-task state; every method takes the task it operates on explicitly,
// so a Driver is safe to share across concurrently running tasks (spec.md
// §5).
type Driver struct {
	Partitioner ArgumentPartitioner
	Toolchains  *ToolchainHolder
}

// NewDriver builds a Driver with the default classifier and a fresh
// process-wide toolchain cache.
func NewDriver() *Driver {
	return &Driver{
		Partitioner: NewDefaultPartitioner(),
		Toolchains:  NewToolchainHolder(),
	}
}

// CreateTask resolves command's toolchain and classifies argv into a
// CompilationTask.
func (d *Driver) CreateTask(command CommandInfo, argv []string) (*CompilationTask, error) {
	if _, err := d.Toolchains.Resolve(command); err != nil {
		return nil, err
	}
	return d.Partitioner.CreateTask(command, argv)
}

// buildArgv folds task.Args into cl.exe switch syntax, keeping only the
// scopes in keep (in order), the way spec.md §4.D's "Preprocess step" and
// "Compile-prepare step" both describe: Flag -> "/<name>", Param ->
// "/<name><value>", Input and Output always dropped.
func buildArgv(args []Argument, keep map[Scope]bool) []string {
	var out []string
	for _, a := range args {
		if a.IsInput() || a.IsOutput() {
			continue
		}
		if !keep[a.Scope()] {
			continue
		}
		out = append(out, a.glued())
	}
	return out
}

// PreprocessStep runs cl.exe /E and returns the filtered preprocessed
// bytes, per spec.md §4.D "Preprocess step".
func (d *Driver) PreprocessStep(ctx context.Context, task *CompilationTask) (PreprocessResult, error) {
	keep := map[Scope]bool{ScopePreprocessor: true, ScopeShared: true}
	args := buildArgv(task.Args, keep)
	args = append(args,
		"/nologo",
		"/T"+task.Language,
		"/E",
		"/we4002", // C4002: too many actual parameters for macro 'identifier' — must stay fatal.
	)
	args = append(args, task.InputSource)
	// /Fo on the preprocess command so #import side files land correctly.
	args = append(args, "/Fo"+task.OutputObject)

	cmd := exec.CommandContext(ctx, task.Command.Program, args...)
	cmd.Dir = task.Command.Dir
	cmd.Env = task.Command.Env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	glog.V(1).Infof("preprocess %s: %v", task.InputSource, args)
	err := cmd.Run()
	status, runErr := exitStatus(ctx, task.InputSource, err)
	if runErr != nil {
		return PreprocessResult{}, runErr
	}

	if status != 0 {
		glog.Warningf("preprocess of %q exited %d", task.InputSource, status)
		s := status
		// Deliberately drop stdout: at this point it is partial expanded
		// source, not diagnostics, and would pollute the user's terminal.
		return PreprocessFailed(OutputInfo{Status: &s, Stdout: nil, Stderr: stderr.Bytes()}), nil
	}

	usesPCH := task.InputPrecompiled != "" || task.OutputPrecompiled != ""
	if !usesPCH {
		buf := bytes.NewBuffer(append([]byte(nil), stdout.Bytes()...))
		return PreprocessSuccess(buf), nil
	}

	filter := newPCHFilter(task.OutputPrecompiled == "", task.MarkerPrecompiled)
	var filtered bytes.Buffer
	if err := filter.run(&stdout, &filtered); err != nil {
		return PreprocessResult{}, err
	}
	return PreprocessSuccess(&filtered), nil
}

// CompilePrepareStep folds task.Args for the compile phase and appends the
// PCH-mode flags, per spec.md §4.D "Compile-prepare step".
func (d *Driver) CompilePrepareStep(task *CompilationTask, preprocessed *bytes.Buffer) (*CompileStep, error) {
	keep := map[Scope]bool{ScopeCompiler: true, ScopeShared: true}
	if task.OutputPrecompiled != "" {
		// PCH creation embeds include-path state into the .pch, so the
		// preprocessor-scope flags travel with it.
		keep[ScopePreprocessor] = true
	}
	args := buildArgv(task.Args, keep)
	args = append(args, "/nologo", "/T"+task.Language)
	if task.InputPrecompiled != "" {
		args = append(args, "/Yu", "/Fp"+task.InputPrecompiled)
	}
	if task.OutputPrecompiled != "" {
		args = append(args, "/Yc")
	}
	return newCompileStep(task, preprocessed, args, true), nil
}

// exitStatus extracts a process exit code from the error os/exec.Cmd.Run
// returns, following the teacher's own convention in worker.go of treating
// a non-nil *exec.ExitError as a normal (non-fatal) outcome and anything
// else as an I/O error the caller must propagate. A ctx that has already
// been cancelled takes priority: cl.exe was killed out from under us, so
// this reports the cancellation (spec.md §5 "Cancellation") via the same
// user-facing Warn cl.exe diagnostics never go through, rather than
// surfacing it as an ordinary exit code or spawn failure.
func exitStatus(ctx context.Context, source string, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if ctx.Err() != nil {
		Warn(source, 0, "task cancelled")
		return 0, ctx.Err()
	}
	if ee, ok := err.(*exec.ExitError); ok {
		if ee.ProcessState != nil {
			return ee.ProcessState.ExitCode(), nil
		}
		return -1, nil
	}
	return 0, fmt.Errorf("spawn cl.exe: %w", err)
}
