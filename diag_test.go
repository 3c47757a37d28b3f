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

import "testing"

func TestRewriteDiagnosticsStripsBasenameEcho(t *testing.T) {
	in := "BLABLABLA\nfoo.c : warning C4411: ...\n"
	got := RewriteDiagnostics([]byte(in), "BLABLABLA", true)
	want := "foo.c : warning C4411: ...\n"
	assertBytesEqual(t, "RewriteDiagnostics", got, []byte(want))
}

func TestRewriteDiagnosticsC4628(t *testing.T) {
	in := "foo.c(42) : warning C4628: foo bar\nfoo.c : warning C4411: ...\n"
	for _, tc := range []struct {
		success bool
		want    string
	}{
		{success: true, want: "foo.c : warning C4411: ...\n"},
		{success: false, want: in},
	} {
		got := RewriteDiagnostics([]byte(in), "", tc.success)
		assertBytesEqual(t, "RewriteDiagnostics", got, []byte(tc.want))
	}
}

func TestRewriteDiagnosticsIdempotent(t *testing.T) {
	in := "BLABLABLA\nfoo.c(42) : warning C4628: foo bar\nfoo.c : warning C4411: ...\n"
	once := RewriteDiagnostics([]byte(in), "BLABLABLA", true)
	twice := RewriteDiagnostics(once, "BLABLABLA", true)
	assertBytesEqual(t, "RewriteDiagnostics applied twice", twice, once)
}

func TestRewriteDiagnosticsNoBasenamePrefix(t *testing.T) {
	in := "foo.c : warning C4411: ...\n"
	got := RewriteDiagnostics([]byte(in), "BLABLABLA", true)
	assertBytesEqual(t, "RewriteDiagnostics without matching basename", got, []byte(in))
}
