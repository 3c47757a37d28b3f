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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

// ArgumentPartitioner classifies an original cl.exe command line into a
// CompilationTask. spec.md §4.C describes this as an external collaborator
// that the core does not re-implement; clPartitioner below is a concrete,
// intentionally small classifier that exists only so the rest of this
// module is independently testable end to end (SPEC_FULL.md §5).
type ArgumentPartitioner interface {
	CreateTask(command CommandInfo, argv []string) (*CompilationTask, error)
}

// flagRule is one entry of the classifier's flag table: a prefix match
// against an original argument, same shape as the teacher's suffix-rule
// table in rule_parser.go (a slice of rules scanned in full; the longest
// matching prefix wins, and among equally long prefixes the earlier rule).
type flagRule struct {
	prefix   string
	scope    Scope
	hasValue bool // true if the remainder after prefix is a glued value
}

// clPartitioner classifies the cl.exe flags named in spec.md §6's "wire
// surface" plus the handful of scope-bearing flags spec.md's scenarios
// exercise (/I include paths, /D defines, /W warning level, and so on are
// Shared; /Fd, /FS are Compiler-only housekeeping cl.exe ignores during
// preprocessing). Grounded on original_source/src/vs/compiler.rs's own
// Arg/Scope matching.
type clPartitioner struct {
	rules []flagRule
}

// NewDefaultPartitioner returns the classifier grounded on
// original_source/src/vs/compiler.rs.
func NewDefaultPartitioner() ArgumentPartitioner {
	return &clPartitioner{
		rules: []flagRule{
			{prefix: "I", scope: ScopeShared, hasValue: true},
			{prefix: "D", scope: ScopeShared, hasValue: true},
			{prefix: "U", scope: ScopeShared, hasValue: true},
			{prefix: "FI", scope: ScopeShared, hasValue: true},
			{prefix: "W", scope: ScopeShared, hasValue: true},
			{prefix: "EH", scope: ScopeCompiler, hasValue: true},
			{prefix: "MD", scope: ScopeCompiler, hasValue: true},
			{prefix: "MT", scope: ScopeCompiler, hasValue: true},
			{prefix: "O", scope: ScopeCompiler, hasValue: true},
			{prefix: "GS", scope: ScopeCompiler, hasValue: true},
			{prefix: "Zi", scope: ScopeCompiler, hasValue: false},
			{prefix: "Z7", scope: ScopeCompiler, hasValue: false},
			{prefix: "Fd", scope: ScopeCompiler, hasValue: true},
			{prefix: "FS", scope: ScopeCompiler, hasValue: false},
			{prefix: "nologo", scope: ScopeIgnore, hasValue: false},
			{prefix: "c", scope: ScopeIgnore, hasValue: false},
			{prefix: "E", scope: ScopeIgnore, hasValue: false},
		},
	}
}

// CreateTask classifies argv (the original command-line tail, without the
// program name) into a CompilationTask. It recognizes /Tc<path> and
// /Tp<path> as the input source (and sets Language accordingly), /Fo<path>
// as the object output, /Yc<header> / /Yu<header> as PCH creation /
// consumption with the header as MarkerPrecompiled, and /Fp<path> as the
// PCH path for whichever mode is active.
func (p *clPartitioner) CreateTask(command CommandInfo, argv []string) (*CompilationTask, error) {
	task := &CompilationTask{Command: command, Language: "p"}
	var pchPath string

	for _, a := range argv {
		if !strings.HasPrefix(a, "/") && !strings.HasPrefix(a, "-") {
			if task.InputSource != "" {
				return nil, fmt.Errorf("multiple input sources: %q and %q", task.InputSource, a)
			}
			task.InputSource = a
			task.Args = append(task.Args, Input(a))
			continue
		}
		body := a[1:]

		switch {
		case strings.HasPrefix(body, "Tc"):
			task.InputSource = body[2:]
			task.Language = "c"
			task.Args = append(task.Args, Input(task.InputSource))
			continue
		case strings.HasPrefix(body, "Tp"):
			task.InputSource = body[2:]
			task.Language = "p"
			task.Args = append(task.Args, Input(task.InputSource))
			continue
		case strings.HasPrefix(body, "Fo"):
			task.OutputObject = body[2:]
			task.Args = append(task.Args, Output(OutputObject, task.OutputObject))
			continue
		case strings.HasPrefix(body, "Fp"):
			pchPath = body[2:]
			continue
		case strings.HasPrefix(body, "Yc"):
			// OutputPrecompiled is filled in below once /Fp is seen.
			task.MarkerPrecompiled = body[2:]
			task.Args = append(task.Args, Output(OutputPrecompiledCreate, ""))
			continue
		case strings.HasPrefix(body, "Yu"):
			task.MarkerPrecompiled = body[2:]
			task.Args = append(task.Args, Output(OutputPrecompiledUse, ""))
			continue
		}

		scope, name, value, hasValue := p.classifyFlag(body)
		if hasValue {
			task.Args = append(task.Args, Param(scope, name, value))
		} else {
			task.Args = append(task.Args, Flag(scope, name))
		}
		glog.V(1).Infof("classified %q as %s/%s", a, scope, name)
	}

	if pchPath != "" {
		if task.MarkerPrecompiled != "" {
			// Whichever of /Yc /Yu we saw determines which field the path
			// belongs to; /Yc was recorded with OutputPrecompiled empty
			// above as a placeholder, so resolve it now.
			for i, arg := range task.Args {
				if arg.IsOutput() && arg.OutputKind() == OutputPrecompiledCreate {
					task.OutputPrecompiled = pchPath
					task.Args[i] = Output(OutputPrecompiledCreate, pchPath)
				}
				if arg.IsOutput() && arg.OutputKind() == OutputPrecompiledUse {
					task.InputPrecompiled = pchPath
					task.Args[i] = Output(OutputPrecompiledUse, pchPath)
				}
			}
		}
	}

	if task.OutputObject == "" && task.InputSource != "" {
		task.OutputObject = strings.TrimSuffix(filepath.Base(task.InputSource), filepath.Ext(task.InputSource)) + ".obj"
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// classifyFlag matches body (the argument with its leading / or - stripped)
// against the rule table, longest prefix first, splitting a glued value
// off when the rule says to. hasValue tells the caller whether to build a
// Param (name+value) or a Flag (name only).
func (p *clPartitioner) classifyFlag(body string) (scope Scope, name, value string, hasValue bool) {
	matched := false
	best := -1
	for _, r := range p.rules {
		if strings.HasPrefix(body, r.prefix) && len(r.prefix) > best {
			best = len(r.prefix)
			scope = r.scope
			name = r.prefix
			hasValue = r.hasValue
			if r.hasValue {
				value = body[len(r.prefix):]
			}
			matched = true
		}
	}
	if !matched {
		// Unknown flags default to Shared: harmless for flags cl.exe
		// accepts in both phases (most do), and never silently drops
		// something the caller expected to take effect.
		return ScopeShared, body, "", false
	}
	return scope, name, value, hasValue
}
