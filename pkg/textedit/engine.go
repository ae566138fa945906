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
	"os"

	"github.com/alibaba/opensandbox/fsd/pkg/vfs"
)

// Engine applies edit requests to files inside the sandbox.
type Engine struct {
	resolver *vfs.Resolver
}

func NewEngine(resolver *vfs.Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// ApplyEdits resolves path, applies edits to the file's content, and
// returns the fenced unified diff of the change. Unless dryRun is set the
// new content is persisted with the file's current mode. The diff is
// returned in both modes so callers can preview before committing; a
// dry run followed by a real run against unchanged content yields the
// identical diff.
//
// There is no lock between the content read and the write: a concurrent
// writer in that window is simply overwritten.
func (e *Engine) ApplyEdits(path string, edits []Edit, dryRun bool) (string, error) {
	real, err := e.resolver.Validate(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(real)
	if err != nil {
		if os.IsNotExist(err) {
			return "", vfs.Errorf(vfs.KindNotFound, "file not found: %s", e.resolver.ToAliasPath(real))
		}
		return "", vfs.WrapIO("cannot stat file", err)
	}
	data, err := os.ReadFile(real)
	if err != nil {
		return "", vfs.WrapIO("cannot read file", err)
	}

	oldContent := normalizeLineEndings(string(data))
	newContent, err := ApplyEdits(oldContent, edits)
	if err != nil {
		return "", err
	}

	diff := Fence(Unified(oldContent, newContent, e.resolver.ToAliasPath(real)))

	if !dryRun {
		if err := os.WriteFile(real, []byte(newContent), info.Mode()); err != nil {
			return "", vfs.WrapIO("cannot write file", err)
		}
	}
	return diff, nil
}
