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
	"bufio"
	"reflect"
	"strings"
	"testing"
)

func TestDirectiveLexerReadToken(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want []string
	}{
		{in: "foo", want: []string{"foo"}},
		{in: "123 bar", want: []string{"123", "bar"}},
		{in: `"quoted path.h"`, want: []string{"quoted path.h"}},
		{in: `"C:\\path\\to\\file.h"`, want: []string{`C:\path\to\file.h`}},
		{in: `"tab\there"`, want: []string{"tab\there"}},
		{in: "  leading   spaces", want: []string{"leading", "spaces"}},
	} {
		// Directive lines end in a newline; without one, readToken reports
		// the truncated stream as a read error.
		br := bufio.NewReader(strings.NewReader(tc.in + "\n"))
		lx := newDirectiveLexer(br)
		var raw []byte
		var got []string
		var hint *byte
		for {
			next, tok, err := lx.readToken(hint, &raw)
			if err != nil {
				break
			}
			if tok == nil {
				break
			}
			got = append(got, string(tok))
			hint = next
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("readToken(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDirectiveLexerRawAccumulates(t *testing.T) {
	in := `123 "a b.h" rest`
	br := bufio.NewReader(strings.NewReader(in))
	lx := newDirectiveLexer(br)
	var raw []byte
	var hint *byte
	for {
		next, tok, err := lx.readToken(hint, &raw)
		if err != nil || tok == nil {
			break
		}
		hint = next
	}
	// raw must reproduce everything consumed, byte for byte, up to the
	// first unconsumed byte (the \n that terminates "rest" here never
	// arrives, so the whole input should be accounted for).
	if string(raw) != in {
		t.Errorf("raw=%q, want %q", raw, in)
	}
}

func TestDirectiveLexerSkipLine(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("garbage trailing text\nnext line"))
	lx := newDirectiveLexer(br)
	var raw []byte
	if err := lx.skipLine(nil, &raw); err != nil {
		t.Fatalf("skipLine: %v", err)
	}
	if string(raw) != "garbage trailing text\n" {
		t.Errorf("raw=%q, want %q", raw, "garbage trailing text\n")
	}
	// The reader should now be positioned at "next line".
	rest, _ := lx.r.(*bufio.Reader).ReadByte()
	if rest != 'n' {
		t.Errorf("next byte after skipLine = %q, want 'n'", rest)
	}
}
