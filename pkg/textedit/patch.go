// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package textedit

import (
	"strings"

	"github.com/alibaba/opensandbox/fsd/pkg/vfs"
)

// Edit is one find/replace step. Edits apply in declaration order and each
// one matches against the content as already modified by its predecessors,
// so a later edit may target text a previous edit produced.
type Edit struct {
	OldText string
	NewText string
}

// ApplyEdits applies edits to content and returns the result. Line endings
// are normalized to LF on both sides before any comparison. Application is
// all-or-nothing: the first edit whose OldText cannot be located, exactly
// or fuzzily, fails the whole call and no partial result is returned.
func ApplyEdits(content string, edits []Edit) (string, error) {
	out := normalizeLineEndings(content)
	for i, edit := range edits {
		oldText := normalizeLineEndings(edit.OldText)
		newText := normalizeLineEndings(edit.NewText)

		// Exact pass takes precedence over any fuzzy candidate,
		// wherever in the file each would land.
		if strings.Contains(out, oldText) {
			out = strings.Replace(out, oldText, newText, 1)
			continue
		}

		replaced, ok := fuzzyReplace(out, oldText, newText)
		if !ok {
			return "", vfs.Errorf(vfs.KindEditNotFound, "edit %d: could not find match for:\n%s", i+1, edit.OldText)
		}
		out = replaced
	}
	return out, nil
}

func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// fuzzyReplace scans every window of content lines with oldText's line
// count and takes the first window that matches line-for-line after
// trimming surrounding whitespace from both sides. The replacement is
// spliced in with indentation preserved from the file, not from the edit.
func fuzzyReplace(content, oldText, newText string) (string, bool) {
	contentLines := strings.Split(content, "\n")
	oldLines := strings.Split(oldText, "\n")

	for start := 0; start+len(oldLines) <= len(contentLines); start++ {
		if !windowMatches(contentLines[start:start+len(oldLines)], oldLines) {
			continue
		}

		adjusted := indentReplacement(contentLines[start], oldLines, strings.Split(newText, "\n"))

		merged := make([]string, 0, len(contentLines)-len(oldLines)+len(adjusted))
		merged = append(merged, contentLines[:start]...)
		merged = append(merged, adjusted...)
		merged = append(merged, contentLines[start+len(oldLines):]...)
		return strings.Join(merged, "\n"), true
	}
	return "", false
}

func windowMatches(window, oldLines []string) bool {
	for i := range oldLines {
		if strings.TrimSpace(window[i]) != strings.TrimSpace(oldLines[i]) {
			return false
		}
	}
	return true
}

// indentReplacement re-indents newLines for splicing at a matched window.
// The first line adopts the file's indentation at the match site. Each
// later line keeps that base indentation plus the indent growth its edit
// declared relative to the corresponding old line, clamped at zero; lines
// where either side has no indentation are kept as written.
func indentReplacement(matchedLine string, oldLines, newLines []string) []string {
	baseIndent := leadingWhitespace(matchedLine)

	adjusted := make([]string, len(newLines))
	for i, line := range newLines {
		if i == 0 {
			adjusted[i] = baseIndent + strings.TrimLeft(line, " \t")
			continue
		}

		oldIndent := ""
		if i < len(oldLines) {
			oldIndent = leadingWhitespace(oldLines[i])
		}
		newIndent := leadingWhitespace(line)
		if oldIndent == "" || newIndent == "" {
			adjusted[i] = line
			continue
		}

		delta := len(newIndent) - len(oldIndent)
		if delta < 0 {
			delta = 0
		}
		adjusted[i] = baseIndent + strings.Repeat(" ", delta) + strings.TrimLeft(line, " \t")
	}
	return adjusted
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
