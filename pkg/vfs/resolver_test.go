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
	"testing"
)

func newTestRegistry(t *testing.T, aliases ...string) (*Registry, map[string]string) {
	t.Helper()
	reg := NewRegistry()
	dirs := make(map[string]string, len(aliases))
	for _, name := range aliases {
		dir, err := filepath.EvalSymlinks(t.TempDir())
		if err != nil {
			t.Fatalf("eval tempdir: %v", err)
		}
		if err := reg.Register(name, dir); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
		dirs[name] = dir
	}
	return reg, dirs
}

func TestValidateAliasPathStaysInsideRoot(t *testing.T) {
	reg, dirs := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	sub := filepath.Join(dirs["docs"], "guides")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file := filepath.Join(sub, "intro.md")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	real, err := res.Validate("docs/guides/intro.md")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if real != file {
		t.Fatalf("resolved %q, want %q", real, file)
	}
	if filepath.Dir(filepath.Dir(real)) != dirs["docs"] {
		t.Fatalf("resolved path %q escaped root %q", real, dirs["docs"])
	}
}

func TestValidateRejectsEmptyPath(t *testing.T) {
	reg, _ := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	_, err := res.Validate("")
	if KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected KindInvalidArgument, got %v", err)
	}
}

func TestValidateRejectsRootUnion(t *testing.T) {
	reg, _ := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	for _, p := range []string{"root", "/"} {
		_, err := res.Validate(p)
		if KindOf(err) != KindAccessDenied {
			t.Fatalf("expected KindAccessDenied for %q, got %v", p, err)
		}
	}
}

func TestValidateUnknownAlias(t *testing.T) {
	reg, _ := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	_, err := res.Validate("nope/file.txt")
	if KindOf(err) != KindUnknownAlias {
		t.Fatalf("expected KindUnknownAlias, got %v", err)
	}
}

func TestValidateRejectsDotDotEscape(t *testing.T) {
	reg, _ := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	// "docs/.." cleans to the directory containing the root, which exists
	// but is outside the sandbox.
	_, err := res.Validate("docs/..")
	if KindOf(err) != KindAccessDenied {
		t.Fatalf("expected KindAccessDenied, got %v", err)
	}
}

func TestValidateRejectsSymlinkEscape(t *testing.T) {
	reg, dirs := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(secret, []byte("s"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	link := filepath.Join(dirs["docs"], "link")
	if err := os.Symlink(secret, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	_, err := res.Validate("docs/link")
	if KindOf(err) != KindAccessDenied {
		t.Fatalf("symlink out of the root must be denied, got %v", err)
	}
}

func TestValidateParentFallbackForNewFiles(t *testing.T) {
	reg, dirs := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	real, err := res.Validate("docs/new.txt")
	if err != nil {
		t.Fatalf("validate new file: %v", err)
	}
	want := filepath.Join(dirs["docs"], "new.txt")
	if real != want {
		t.Fatalf("resolved %q, want %q", real, want)
	}
}

func TestValidateMissingParentIsNotFound(t *testing.T) {
	reg, _ := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	_, err := res.Validate("docs/missing/deeper/new.txt")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestValidateLegacyAbsolutePath(t *testing.T) {
	reg, dirs := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	file := filepath.Join(dirs["docs"], "a.txt")
	if err := os.WriteFile(file, []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Absolute input inside a registered root is still permitted.
	real, err := res.Validate(file)
	if err != nil {
		t.Fatalf("validate absolute: %v", err)
	}
	if real != file {
		t.Fatalf("resolved %q, want %q", real, file)
	}

	// Absolute input outside every root is not.
	if _, err := res.Validate(filepath.Join(t.TempDir(), "b.txt")); KindOf(err) != KindAccessDenied {
		t.Fatalf("expected KindAccessDenied, got %v", err)
	}
}

func TestValidateLegacyAllowList(t *testing.T) {
	allowed, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval tempdir: %v", err)
	}
	res := NewResolver(NewRegistry(), allowed)

	file := filepath.Join(allowed, "f.txt")
	if err := os.WriteFile(file, []byte("f"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	real, err := res.Validate(file)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if real != file {
		t.Fatalf("resolved %q, want %q", real, file)
	}

	if _, err := res.Validate("/etc/passwd"); KindOf(err) != KindAccessDenied {
		t.Fatalf("expected KindAccessDenied, got %v", err)
	}
}

func TestToAliasPathRoundTrip(t *testing.T) {
	reg, dirs := newTestRegistry(t, "docs", "src")
	res := NewResolver(reg)

	sub := filepath.Join(dirs["src"], "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	file := filepath.Join(sub, "main.go")
	if err := os.WriteFile(file, []byte("m"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	real, err := res.Validate("src/pkg/main.go")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := res.ToAliasPath(real); got != "src/pkg/main.go" {
		t.Fatalf("round trip produced %q", got)
	}
	if got := res.ToAliasPath(dirs["docs"]); got != "docs" {
		t.Fatalf("root maps to %q, want alias name", got)
	}
}

func TestToAliasPathOutsideRootsFallsBack(t *testing.T) {
	reg, _ := newTestRegistry(t, "docs")
	res := NewResolver(reg)

	if got := res.ToAliasPath("/no/such/root/file"); got != "/no/such/root/file" {
		t.Fatalf("unexpected mapping %q", got)
	}
}
