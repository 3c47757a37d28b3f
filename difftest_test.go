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
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// assertStringsEqual fails t with a human-readable diff when got != want,
// the same way run_test.go's check() reports a Make-vs-Kati mismatch: a
// semantic diff is far more readable than two long %q-quoted strings once
// the compared text runs more than a line or two.
func assertStringsEqual(t *testing.T, what, got, want string) {
	t.Helper()
	if got == want {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	t.Errorf("%s mismatch (red=want, green=got):\n%s", what, dmp.DiffPrettyText(diffs))
}

func assertBytesEqual(t *testing.T, what string, got, want []byte) {
	t.Helper()
	assertStringsEqual(t, what, string(got), string(want))
}
