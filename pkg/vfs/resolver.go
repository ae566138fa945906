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
	"strings"
)

// Resolver turns caller-supplied virtual paths into verified real paths.
//
// Verification is a point-in-time check: the filesystem can change between
// validation and use, and the resolver offers no lock or revalidation
// against that window. This is an accepted limitation.
type Resolver struct {
	reg *Registry

	// allowedRoots is the normalized legacy-mode allow-list. When empty,
	// the registry roots bound legacy paths, so absolute inputs cannot
	// widen the sandbox.
	allowedRoots []string
}

// NewResolver builds a resolver over reg. legacyRoots optionally supplies
// the explicit allow-list consulted for absolute and tilde paths.
func NewResolver(reg *Registry, legacyRoots ...string) *Resolver {
	r := &Resolver{reg: reg}
	for _, root := range legacyRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		r.allowedRoots = append(r.allowedRoots, normalizePath(abs))
	}
	return r
}

// Validate resolves a virtual or legacy path to a verified absolute real
// path. The returned path is symlink-resolved and guaranteed, at the time
// of the check, to lie under a permitted root, or under an existing parent
// beneath a permitted root when the target itself does not yet exist.
func (r *Resolver) Validate(path string) (string, error) {
	if path == "" {
		return "", Errorf(KindInvalidArgument, "path must not be empty")
	}

	aliasMode := r.reg != nil && !r.reg.Empty()
	legacyInput := strings.HasPrefix(path, "~") || filepath.IsAbs(path)

	if aliasMode && !legacyInput {
		return r.validateAliasPath(path)
	}
	return r.validateLegacyPath(path)
}

func (r *Resolver) validateAliasPath(path string) (string, error) {
	// The root union is listable, never directly addressable.
	if path == RootName || path == "/" {
		return "", Errorf(KindAccessDenied, "%q is a listing, not a file target; address a specific alias", path)
	}

	name, rest, _ := strings.Cut(strings.Trim(filepath.ToSlash(path), "/"), "/")
	alias, ok := r.reg.Resolve(name)
	if !ok {
		return "", Errorf(KindUnknownAlias, "unknown alias %q in path %q", name, path)
	}

	candidate := alias.RealRoot
	if rest != "" {
		candidate = filepath.Join(alias.RealRoot, filepath.FromSlash(rest))
	}
	return r.verify(candidate, r.aliasBounds)
}

func (r *Resolver) validateLegacyPath(path string) (string, error) {
	expanded := path
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", WrapIO("cannot expand ~", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", Errorf(KindInvalidArgument, "invalid path %q: %v", path, err)
	}

	bounds := r.legacyBounds
	if len(r.allowedRoots) == 0 {
		bounds = r.aliasBounds
	}
	return r.verify(abs, bounds)
}

// verify resolves symlinks on candidate and re-checks that the *resolved*
// target still lies within bounds. Checking only the unresolved candidate
// would let a symlink planted inside an allowed root point anywhere; the
// re-check after resolution is what closes that escape.
func (r *Resolver) verify(candidate string, within func(string) bool) (string, error) {
	resolved, err := filepath.EvalSymlinks(candidate)
	if err == nil {
		if !within(normalizePath(resolved)) {
			return "", Errorf(KindAccessDenied, "access denied: %q resolves outside the permitted roots", r.ToAliasPath(candidate))
		}
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", WrapIO("cannot resolve path", err)
	}

	// Target absent (write/create case): anchor the same check on the
	// parent directory instead.
	parent := filepath.Dir(candidate)
	resolvedParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		if os.IsNotExist(err) {
			return "", Errorf(KindNotFound, "neither %q nor its parent directory exists", r.ToAliasPath(candidate))
		}
		return "", WrapIO("cannot resolve parent directory", err)
	}
	if !within(normalizePath(resolvedParent)) {
		return "", Errorf(KindAccessDenied, "access denied: parent of %q resolves outside the permitted roots", r.ToAliasPath(candidate))
	}
	return filepath.Join(resolvedParent, filepath.Base(candidate)), nil
}

func (r *Resolver) aliasBounds(norm string) bool {
	if r.reg == nil {
		return false
	}
	for _, a := range r.reg.Aliases() {
		if underNormRoot(norm, a.normRoot) {
			return true
		}
	}
	return false
}

func (r *Resolver) legacyBounds(norm string) bool {
	for _, root := range r.allowedRoots {
		if underNormRoot(norm, root) {
			return true
		}
	}
	return false
}

// ToAliasPath maps a real path back into the virtual namespace using the
// longest-prefix alias. Every path shown to a caller goes through here so
// responses never leak real filesystem roots.
func (r *Resolver) ToAliasPath(absPath string) string {
	if r.reg == nil {
		return absPath
	}
	a, ok := r.reg.LongestPrefixMatch(absPath)
	if !ok {
		return absPath
	}
	rel, err := filepath.Rel(a.RealRoot, absPath)
	if err != nil || rel == "." {
		return a.Name
	}
	return a.Name + "/" + filepath.ToSlash(rel)
}
