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

// Command mscl drives cl.exe through the two-phase preprocess/compile
// pipeline implemented by github.com/mscldrv/mscl. It is the thin CLI
// surface spec.md §1 places outside the core: classify, preprocess, and
// compile one source file per invocation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/mscldrv/mscl"
)

var (
	clPath  string
	workDir string
	tempDir string
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mscl -- <original cl.exe argv>",
		Short: "Drive cl.exe through a cached/distributable preprocess+compile split",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCompile,
	}
	cmd.Flags().StringVar(&clPath, "cl", "cl.exe", "path to cl.exe")
	cmd.Flags().StringVar(&workDir, "dir", "", "working directory for cl.exe (default: current directory)")
	cmd.Flags().StringVar(&tempDir, "temp-dir", "", "directory for the intermediate .i file (default: os.TempDir())")
	// glog's own flags (-v, -logtostderr, ...) live on the stdlib flag set.
	cmd.Flags().AddGoFlagSet(flag.CommandLine)
	return cmd
}

func runCompile(cmd *cobra.Command, argv []string) error {
	driver := mscl.NewDriver()
	if tempDir != "" {
		driver.Toolchains.TempDir = tempDir
	}

	command := mscl.CommandInfo{Program: clPath, Dir: workDir, Env: os.Environ()}
	task, err := driver.CreateTask(command, argv)
	if err != nil {
		mscl.Logf("cannot classify invocation: %v", err)
		return err
	}

	toolchain, err := driver.Toolchains.Resolve(command)
	if err != nil {
		mscl.Logf("cannot resolve toolchain: %v", err)
		return err
	}
	if id, ok := toolchain.Identifier(); ok {
		glog.V(1).Infof("toolchain identifier: %s", id)
	}

	ctx := context.Background()
	pre, err := driver.PreprocessStep(ctx, task)
	if err != nil {
		return err
	}
	if !pre.Ok() {
		failed := pre.Failed()
		os.Stderr.Write(failed.Stderr)
		if failed.Status != nil {
			os.Exit(*failed.Status)
		}
		return fmt.Errorf("preprocess failed")
	}

	step, err := driver.CompilePrepareStep(task, pre.Content())
	if err != nil {
		return err
	}
	out, err := toolchain.CompileStep(ctx, step)
	if err != nil {
		return err
	}
	os.Stdout.Write(out.Stdout)
	os.Stderr.Write(out.Stderr)
	if !out.Success() && out.Status != nil {
		os.Exit(*out.Status)
	}
	return nil
}
