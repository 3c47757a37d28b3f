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
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/glog"
)

// Toolchain caches identity for a single discovered cl.exe path and owns
// the compile-phase subprocess invocation (spec.md §4.F). It lives for the
// lifetime of the driver process.
type Toolchain struct {
	Path    string
	TempDir string

	once       sync.Once
	identifier string
	identOK    bool
}

func newToolchain(path, tempDir string) *Toolchain {
	return &Toolchain{Path: path, TempDir: tempDir}
}

// Identifier returns the toolchain's version string, computed at most
// once even under concurrent readers; ok is false if probing failed (the
// Open Question in spec.md §9 decided to treat any probe failure as
// "None" rather than propagate an error).
func (t *Toolchain) Identifier() (string, bool) {
	t.once.Do(func() {
		t.identifier, t.identOK = probeIdentifier(t.Path)
	})
	return t.identifier, t.identOK
}

// probeIdentifier shells out to cl.exe with no arguments: cl.exe's
// documented behavior is to print its version banner to stderr and exit
// nonzero. Any spawn failure or unrecognized output shape is treated as
// "no identifier", per SPEC_FULL.md §4.
func probeIdentifier(path string) (string, bool) {
	cmd := exec.Command(path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run() // cl.exe with no args always exits nonzero; that's expected.

	for _, line := range strings.Split(stderr.String(), "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "Compiler Version") || strings.Contains(line, "Optimizing Compiler") {
			return line, true
		}
	}
	return "", false
}

// CompileStep materializes the preprocessed bytes into a temp file, runs
// cl.exe /c against it, and passes stdout through the diagnostic rewriter
// (spec.md §4.D "Compile step", §4.E). The temp file is removed on every
// exit path.
func (t *Toolchain) CompileStep(ctx context.Context, step *CompileStep) (OutputInfo, error) {
	task, preprocessed, args := step.take()

	temp, err := os.CreateTemp(t.TempDir, "mscl-*.i")
	if err != nil {
		return OutputInfo{}, err
	}
	tempPath := temp.Name()
	defer os.Remove(tempPath)

	if _, err := temp.Write(preprocessed.Bytes()); err != nil {
		temp.Close()
		return OutputInfo{}, err
	}
	if err := temp.Close(); err != nil {
		return OutputInfo{}, err
	}

	fullArgs := make([]string, 0, len(args)+6)
	fullArgs = append(fullArgs, "/c")
	fullArgs = append(fullArgs, args...)
	fullArgs = append(fullArgs, tempPath)
	fullArgs = append(fullArgs, "/Fo"+task.OutputObject)
	if task.OutputPrecompiled != "" {
		fullArgs = append(fullArgs, "/Fp"+task.OutputPrecompiled)
	}
	if task.InputPrecompiled != "" {
		fullArgs = append(fullArgs, "/Fp"+task.InputPrecompiled)
	}

	cmd := exec.CommandContext(ctx, task.Command.Program, fullArgs...)
	cmd.Dir = task.Command.Dir
	cmd.Env = task.Command.Env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	glog.V(1).Infof("compile %s: %v", task.InputSource, fullArgs)
	runErr := cmd.Run()
	status, err := exitStatus(ctx, task.InputSource, runErr)
	if err != nil {
		return OutputInfo{}, err
	}

	success := status == 0
	s := status
	rewritten := RewriteDiagnostics(stdout.Bytes(), filepath.Base(tempPath), success)
	return OutputInfo{Status: &s, Stdout: rewritten, Stderr: stderr.Bytes()}, nil
}

// ToolchainHolder is the process-wide, concurrent read-mostly cache spec.md
// §5 describes: resolution hashes command.Program and returns an existing
// handle or inserts a new one atomically. Grounded on the teacher's
// symtab.go get-or-insert pattern.
type ToolchainHolder struct {
	mu    sync.Mutex
	cache map[string]*Toolchain
	// TempDir is the hint passed to newly created Toolchains.
	TempDir string
}

// NewToolchainHolder returns an empty cache using os.TempDir() as the hint.
func NewToolchainHolder() *ToolchainHolder {
	return &ToolchainHolder{cache: make(map[string]*Toolchain), TempDir: os.TempDir()}
}

// Resolve returns the cached Toolchain for command.Program, discovering
// (stat-checking) it and inserting a new entry if this is the first call
// for that path.
func (h *ToolchainHolder) Resolve(command CommandInfo) (*Toolchain, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if tc, ok := h.cache[command.Program]; ok {
		return tc, nil
	}
	if _, err := exec.LookPath(command.Program); err != nil {
		if !filepath.IsAbs(command.Program) {
			return nil, wrapToolchainResolution(command.Program)
		}
		if _, statErr := os.Stat(command.Program); statErr != nil {
			return nil, wrapToolchainResolution(command.Program)
		}
	}
	tc := newToolchain(command.Program, h.TempDir)
	h.cache[command.Program] = tc
	return tc, nil
}
