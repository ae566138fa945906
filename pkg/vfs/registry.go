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
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// RootName is the caller-facing name of the synthetic union of all
// aliases. It is listable but never directly addressable.
const RootName = "root"

var aliasNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Alias binds one caller-facing name to a real filesystem root.
type Alias struct {
	Name     string
	RealRoot string

	// normRoot is the case-folded, separator-normalized form of RealRoot.
	// Used only for prefix comparison, never for filesystem access.
	normRoot string
}

// Registry maps alias names to permitted roots. Populated once at startup
// and read-only afterwards, so it needs no locking.
type Registry struct {
	byName  map[string]*Alias
	ordered []*Alias
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Alias)}
}

// Register binds name to realRoot. The target must be an existing,
// accessible directory; this stat is the registry's only filesystem I/O.
func (r *Registry) Register(name, realRoot string) error {
	if !aliasNameRe.MatchString(name) {
		return Errorf(KindInvalidArgument, "alias %q: name must match [A-Za-z0-9_-]+", name)
	}
	if name == RootName {
		return Errorf(KindInvalidArgument, "alias %q is reserved for the root union", name)
	}
	if _, exists := r.byName[name]; exists {
		return Errorf(KindInvalidArgument, "alias %q is already registered", name)
	}

	abs, err := filepath.Abs(realRoot)
	if err != nil {
		return Errorf(KindInvalidArgument, "alias %q: cannot resolve %q to an absolute path: %v", name, realRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Errorf(KindNotFound, "alias %q: cannot access %q: %v", name, realRoot, err)
	}
	if !info.IsDir() {
		return Errorf(KindInvalidArgument, "alias %q: %q is not a directory", name, realRoot)
	}

	// Resolve symlinked roots up front so boundary checks compare
	// against the real location.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	alias := &Alias{Name: name, RealRoot: abs, normRoot: normalizePath(abs)}
	r.byName[name] = alias
	r.ordered = append(r.ordered, alias)
	return nil
}

// Resolve looks up an alias by name.
func (r *Registry) Resolve(name string) (*Alias, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// LongestPrefixMatch returns the alias whose normalized root is the
// longest prefix of the normalized candidate path. Roots of distinct
// aliases do not overlap by construction, so ties cannot matter.
func (r *Registry) LongestPrefixMatch(absPath string) (*Alias, bool) {
	norm := normalizePath(absPath)
	var best *Alias
	for _, a := range r.ordered {
		if !underNormRoot(norm, a.normRoot) {
			continue
		}
		if best == nil || len(a.normRoot) > len(best.normRoot) {
			best = a
		}
	}
	return best, best != nil
}

// Aliases returns the registered aliases in registration order.
func (r *Registry) Aliases() []*Alias {
	return r.ordered
}

// Names returns the alias names in registration order. This is all the
// root-union listing exposes: real roots are treated as sensitive.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, a := range r.ordered {
		names = append(names, a.Name)
	}
	return names
}

func (r *Registry) Empty() bool {
	return len(r.ordered) == 0
}

// normalizePath produces the comparison form of a path: cleaned,
// forward-slashed, case-folded. Never handed to the filesystem.
func normalizePath(p string) string {
	return strings.ToLower(filepath.ToSlash(filepath.Clean(p)))
}

// underNormRoot reports whether norm equals root or lies beneath it on a
// path-segment boundary, so /data-x does not pass for root /data.
func underNormRoot(norm, root string) bool {
	if norm == root {
		return true
	}
	if root == "/" {
		return strings.HasPrefix(norm, "/")
	}
	return strings.HasPrefix(norm, root+"/")
}
