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
	"io"
	"strings"

	"github.com/golang/glog"
)

const hdrstopPragma = "#pragma hdrstop\n"

type directiveKind int

const (
	directiveLine directiveKind = iota
	directiveHdrStop
	directiveUnknown
)

type directive struct {
	kind directiveKind
	raw  []byte
	file string // only set for directiveLine
}

// pchFilter rewrites cl.exe's /E output to delimit the precompiled-header
// region, per spec.md §4.B. It is single-pass and bounded-state: at most
// one directive's worth of bytes is buffered at a time, so it never
// materializes the whole preprocessed stream (PCH headers can be tens of
// megabytes).
type pchFilter struct {
	keepHeaders bool
	marker      string // "" means no marker was supplied
}

func newPCHFilter(keepHeaders bool, marker string) *pchFilter {
	return &pchFilter{keepHeaders: keepHeaders, marker: marker}
}

// run streams r through the filter into w. It returns a FilterMalformed
// error if the stream ends before the PCH boundary is established, per
// the strict Open Question decision recorded in DESIGN.md.
func (f *pchFilter) run(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	lx := newDirectiveLexer(br)

	lineBegin := true
	haveEntryFile := false
	var entryFile string
	headerFound := false

	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return wrapFilterMalformed(io.ErrUnexpectedEOF)
			}
			return wrapFilterMalformed(err)
		}

		switch {
		case isDirectiveEOL(c):
			if f.keepHeaders {
				if _, werr := w.Write([]byte{c}); werr != nil {
					return werr
				}
			}
			lineBegin = true

		case isDirectiveSpace(c):
			if f.keepHeaders {
				if _, werr := w.Write([]byte{c}); werr != nil {
					return werr
				}
			}

		case c == '#' && lineBegin:
			d, derr := f.readDirective(lx, c)
			if derr != nil {
				return wrapFilterMalformed(derr)
			}
			done, werr := f.handleDirective(d, &haveEntryFile, &entryFile, &headerFound, w)
			if werr != nil {
				return werr
			}
			if done {
				_, err := io.Copy(w, br)
				return err
			}
			// readDirective consumes through the directive's trailing EOL,
			// so the next byte already starts a new line.
			lineBegin = true

		default:
			if f.keepHeaders {
				if _, werr := w.Write([]byte{c}); werr != nil {
					return werr
				}
			}
			lineBegin = false
		}
	}
}

// readDirective parses one directive after its leading '#' has already
// been consumed by the caller; raw starts with that '#'.
func (f *pchFilter) readDirective(lx *directiveLexer, hash byte) (directive, error) {
	raw := []byte{hash}
	next, ident, err := lx.readToken(nil, &raw)
	if err != nil {
		return directive{}, err
	}
	switch string(ident) {
	case "line":
		return f.readLineDirective(lx, next, raw)
	case "pragma":
		return f.readPragmaDirective(lx, next, raw)
	default:
		if err := lx.skipLine(next, &raw); err != nil {
			return directive{}, err
		}
		return directive{kind: directiveUnknown, raw: raw}, nil
	}
}

func (f *pchFilter) readLineDirective(lx *directiveLexer, hint *byte, raw []byte) (directive, error) {
	next1, _, err := lx.readToken(hint, &raw) // line number, discarded
	if err != nil {
		return directive{}, err
	}
	next2, file, err := lx.readToken(next1, &raw)
	if err != nil {
		return directive{}, err
	}
	if err := lx.skipLine(next2, &raw); err != nil {
		return directive{}, err
	}
	return directive{kind: directiveLine, raw: raw, file: string(file)}, nil
}

func (f *pchFilter) readPragmaDirective(lx *directiveLexer, hint *byte, raw []byte) (directive, error) {
	next, ident, err := lx.readToken(hint, &raw)
	if err != nil {
		return directive{}, err
	}
	if err := lx.skipLine(next, &raw); err != nil {
		return directive{}, err
	}
	if string(ident) == "hdrstop" {
		return directive{kind: directiveHdrStop, raw: raw}, nil
	}
	return directive{kind: directiveUnknown, raw: raw}, nil
}

func normalizeSlashes(s string) string { return strings.ReplaceAll(s, `\`, "/") }

// pathSuffixMatch reports whether file ends with marker as a path suffix,
// component-wise (so "x/sample header.h" matches marker "sample header.h"
// but "xsample header.h" does not).
func pathSuffixMatch(file, marker string) bool {
	return file == marker || strings.HasSuffix(file, "/"+marker)
}

// handleDirective applies §4.B's event handling. It returns done=true once
// the filter loop should terminate and the remainder of the stream should
// be copied verbatim.
func (f *pchFilter) handleDirective(d directive, haveEntryFile *bool, entryFile *string, headerFound *bool, w io.Writer) (bool, error) {
	switch d.kind {
	case directiveLine:
		file := normalizeSlashes(d.file)
		if !*haveEntryFile {
			*haveEntryFile = true
			*entryFile = file
			if f.keepHeaders {
				if _, err := w.Write(d.raw); err != nil {
					return false, err
				}
			}
			return false, nil
		}
		if *headerFound && file == *entryFile {
			if _, err := io.WriteString(w, hdrstopPragma); err != nil {
				return false, err
			}
			if _, err := w.Write(d.raw); err != nil {
				return false, err
			}
			return true, nil
		}
		if f.marker != "" {
			marker := normalizeSlashes(f.marker)
			if pathSuffixMatch(file, marker) {
				*headerFound = true
				glog.V(1).Infof("pch boundary header found: %q", file)
			}
		}
		if f.keepHeaders {
			if _, err := w.Write(d.raw); err != nil {
				return false, err
			}
		}
		return false, nil

	case directiveHdrStop:
		if _, err := w.Write(d.raw); err != nil {
			return false, err
		}
		return true, nil

	default: // directiveUnknown
		if f.keepHeaders {
			if _, err := w.Write(d.raw); err != nil {
				return false, err
			}
		}
		return false, nil
	}
}
