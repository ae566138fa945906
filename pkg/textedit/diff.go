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
	"fmt"
	"strings"
)

// contextLines is the number of unchanged lines captured on each side of
// a change run.
const contextLines = 3

// Unified renders a line-granularity diff of two whole-file texts. Lines
// are compared in lockstep by index: a changed line always renders as a
// full removal plus addition, and intra-line similarity is not detected.
func Unified(oldText, newText, label string) string {
	oldLines := strings.Split(oldText, "\n")
	newLines := strings.Split(newText, "\n")

	total := len(oldLines)
	if len(newLines) > total {
		total = len(newLines)
	}

	differs := func(i int) bool {
		if i >= len(oldLines) || i >= len(newLines) {
			return true
		}
		return oldLines[i] != newLines[i]
	}

	// Collect change runs, merging runs whose unchanged gap fits inside
	// the shared context window.
	type hunk struct{ start, end int }
	var hunks []hunk
	for i := 0; i < total; i++ {
		if !differs(i) {
			continue
		}
		if n := len(hunks); n > 0 && i-hunks[n-1].end <= 2*contextLines {
			hunks[n-1].end = i
			continue
		}
		hunks = append(hunks, hunk{start: i, end: i})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n", label, label)

	for _, h := range hunks {
		lo := h.start - contextLines
		if lo < 0 {
			lo = 0
		}
		hi := h.end + contextLines
		if hi > total-1 {
			hi = total - 1
		}

		var lines []string
		oldCount, newCount := 0, 0
		for i := lo; i <= hi; i++ {
			if !differs(i) {
				lines = append(lines, " "+oldLines[i])
				oldCount++
				newCount++
				continue
			}
			if i < len(oldLines) {
				lines = append(lines, "-"+oldLines[i])
				oldCount++
			}
			if i < len(newLines) {
				lines = append(lines, "+"+newLines[i])
				newCount++
			}
		}

		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", lo+1, oldCount, lo+1, newCount)
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// Fence wraps a diff in a backtick fence. The fence grows until the
// delimiter run no longer occurs inside the diff body, so a diff that
// itself contains fences cannot terminate the wrapper early.
func Fence(diff string) string {
	ticks := 3
	for strings.Contains(diff, strings.Repeat("`", ticks)) {
		ticks++
	}
	fence := strings.Repeat("`", ticks)
	return fmt.Sprintf("%sdiff\n%s%s\n\n", fence, diff, fence)
}
