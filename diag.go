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
	"regexp"
)

// c4628Pattern matches MSVC's "conversion operator redefinition" noise,
// ported from original_source/src/vs/compiler.rs's prepare_output, which
// used regex::bytes::Regex with the same (?m) multiline flag.
var c4628Pattern = regexp.MustCompile(`(?m)^\S+[^:]*\(\d+\) : warning C4628: .*$\n?`)

// RewriteDiagnostics post-filters cl.exe's compile-phase stdout, per
// spec.md §4.E: it strips the leading temp-file basename echo (and the
// blank line that follows), and — only on success — removes C4628 lines.
// Applying it twice to the same (basename, success) is a no-op, since
// neither the basename line nor a C4628 match remains after the first
// pass.
func RewriteDiagnostics(stdout []byte, tempBasename string, success bool) []byte {
	buf := stripBasenameEcho(stdout, tempBasename)
	if success {
		buf = c4628Pattern.ReplaceAll(buf, nil)
	}
	return buf
}

func stripBasenameEcho(stdout []byte, basename string) []byte {
	name := []byte(basename)
	if len(name) >= len(stdout) || !bytes.HasPrefix(stdout, name) || !isEOLByte(stdout[len(name)]) {
		return stdout
	}
	rest := stdout[len(name):]
	i := 0
	for i < len(rest) && isEOLByte(rest[i]) {
		i++
	}
	return rest[i:]
}

func isEOLByte(c byte) bool { return c == '\r' || c == '\n' }
