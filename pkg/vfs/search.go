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

package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	EntryTypeFile      = "file"
	EntryTypeDirectory = "directory"
)

// Entry is one search result in alias form.
type Entry struct {
	Path     string     `json:"path"`
	Type     string     `json:"type"`
	Size     *int64     `json:"size,omitempty"`
	Created  *time.Time `json:"created,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
}

// Planner translates glob requests against the virtual namespace into
// walks of the underlying roots. It has no state beyond its collaborators.
type Planner struct {
	reg *Registry
	res *Resolver
}

func NewPlanner(reg *Registry, res *Resolver) *Planner {
	return &Planner{reg: reg, res: res}
}

// Search expands pattern into entries. Without a cwd, a single-segment
// pattern matches alias names only (the root-union listing, no descent);
// a multi-segment pattern selects aliases with its first segment and globs
// the remainder inside each selected root. With a cwd, the pattern is
// globbed beneath the validated cwd. Results are always in alias form.
func (p *Planner) Search(pattern, cwd string, ignore []string, withMeta bool) ([]Entry, error) {
	if pattern == "" {
		pattern = "*"
	}
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, Errorf(KindInvalidArgument, "invalid glob pattern %q", pattern)
	}

	if cwd != "" {
		base, err := p.res.Validate(cwd)
		if err != nil {
			return nil, err
		}
		return p.glob(base, pattern, ignore, withMeta)
	}

	if p.reg == nil || p.reg.Empty() {
		return nil, Errorf(KindInvalidArgument, "no permitted roots configured")
	}

	head, rest, _ := strings.Cut(strings.Trim(pattern, "/"), "/")
	if rest == "" {
		return p.matchAliases(head)
	}

	entries := make([]Entry, 0, 16)
	matched := false
	for _, a := range p.reg.Aliases() {
		ok, err := doublestar.Match(head, a.Name)
		if err != nil {
			return nil, Errorf(KindInvalidArgument, "invalid glob pattern %q: %v", pattern, err)
		}
		if !ok {
			continue
		}
		matched = true
		sub, err := p.glob(a.RealRoot, rest, ignore, withMeta)
		if err != nil {
			return nil, err
		}
		entries = append(entries, sub...)
	}
	if !matched && !hasGlobMeta(head) {
		return nil, Errorf(KindUnknownAlias, "unknown alias %q in pattern %q", head, pattern)
	}
	return entries, nil
}

// matchAliases lists the root union filtered by pattern, directory-typed,
// without descending into any root.
func (p *Planner) matchAliases(pattern string) ([]Entry, error) {
	entries := make([]Entry, 0, len(p.reg.Aliases()))
	for _, a := range p.reg.Aliases() {
		ok, err := doublestar.Match(pattern, a.Name)
		if err != nil {
			return nil, Errorf(KindInvalidArgument, "invalid glob pattern %q: %v", pattern, err)
		}
		if ok {
			entries = append(entries, Entry{Path: a.Name, Type: EntryTypeDirectory})
		}
	}
	return entries, nil
}

func (p *Planner) glob(base, pattern string, ignore []string, withMeta bool) ([]Entry, error) {
	entries := make([]Entry, 0, 16)
	walkErr := doublestar.GlobWalk(os.DirFS(base), pattern, func(rel string, d fs.DirEntry) error {
		for _, ig := range ignore {
			ok, err := doublestar.Match(filepath.ToSlash(ig), rel)
			if err != nil {
				return err
			}
			if ok {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
		}

		entry := Entry{
			Path: p.res.ToAliasPath(filepath.Join(base, filepath.FromSlash(rel))),
			Type: EntryTypeFile,
		}
		if d.IsDir() {
			entry.Type = EntryTypeDirectory
		}
		if withMeta {
			if info, err := d.Info(); err == nil {
				size := info.Size()
				modified := info.ModTime()
				created := CreateTime(info)
				entry.Size = &size
				entry.Modified = &modified
				entry.Created = &created
			}
		}
		entries = append(entries, entry)
		return nil
	})
	if walkErr != nil {
		return nil, Errorf(KindInvalidArgument, "glob %q failed: %v", pattern, walkErr)
	}
	return entries, nil
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
