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
	"errors"
	"strings"
	"testing"
)

const filterSampleInput = `#line 1 "sample.cpp"
#line 1 "e:/inc/sample header.h"
# pragma once
void hello1();
void hello2();
#line 2 "sample.cpp"
int main() {}
`

func TestPCHFilterCreatorMode(t *testing.T) {
	var out bytes.Buffer
	f := newPCHFilter(false, "sample header.h")
	if err := f.run(strings.NewReader(filterSampleInput), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "#pragma hdrstop\n#line 2 \"sample.cpp\"\n") {
		t.Fatalf("creator output prefix = %q", got)
	}
	if !strings.HasSuffix(got, "int main() {}\n") {
		t.Fatalf("creator output suffix = %q", got)
	}
}

func TestPCHFilterConsumerMode(t *testing.T) {
	var out bytes.Buffer
	f := newPCHFilter(true, "sample header.h")
	if err := f.run(strings.NewReader(filterSampleInput), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := strings.Replace(filterSampleInput,
		"void hello2();\n#line 2 \"sample.cpp\"",
		"void hello2();\n#pragma hdrstop\n#line 2 \"sample.cpp\"",
		1)
	assertStringsEqual(t, "consumer output", out.String(), want)
}

func TestPCHFilterExplicitHdrStop(t *testing.T) {
	const in = "#line 1 \"sample.cpp\"\nprelude();\n# pragma  hdrstop\nafter();\n"
	var out bytes.Buffer
	f := newPCHFilter(true, "")
	if err := f.run(strings.NewReader(in), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	assertStringsEqual(t, "explicit hdrstop output (want input verbatim)", out.String(), in)
}

func TestPCHFilterMarkerSuffixAfterNormalization(t *testing.T) {
	in := "#line 1 \"sample.cpp\"\n" +
		"#line 1 \"e:\\\\inc\\\\sample header.h\"\n" +
		"decl();\n" +
		"#line 2 \"sample.cpp\"\n" +
		"tail();\n"
	var out bytes.Buffer
	f := newPCHFilter(false, "sample header.h")
	if err := f.run(strings.NewReader(in), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "#pragma hdrstop\n") {
		t.Errorf("backslash-path marker did not match: output = %q", out.String())
	}
}

func TestPCHFilterMalformedOnTruncatedStream(t *testing.T) {
	const in = `#line 1 "sample.cpp"
#line 1 "e:/inc/sample header.h"
decl();
`
	var out bytes.Buffer
	f := newPCHFilter(false, "sample header.h")
	err := f.run(strings.NewReader(in), &out)
	if !errors.Is(err, ErrFilterMalformed) {
		t.Fatalf("run() error = %v, want ErrFilterMalformed", err)
	}
}

func TestPCHFilterByteExactness(t *testing.T) {
	var out bytes.Buffer
	f := newPCHFilter(true, "sample header.h")
	if err := f.run(strings.NewReader(filterSampleInput), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	idx := strings.Index(out.String(), "#pragma hdrstop\n")
	if idx < 0 {
		t.Fatalf("injected hdrstop not found in %q", out.String())
	}
	before := out.String()[:idx]
	after := out.String()[idx+len("#pragma hdrstop\n"):]
	if !strings.HasPrefix(filterSampleInput, before) {
		t.Errorf("bytes before injection point are not a prefix of the input")
	}
	if !strings.HasSuffix(filterSampleInput, after) {
		t.Errorf("bytes after injection point are not the input's remainder verbatim")
	}
}
