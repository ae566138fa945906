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

func TestRegistryRegisterRejectsBadNames(t *testing.T) {
	reg := NewRegistry()
	dir := t.TempDir()

	for _, name := range []string{"", "a/b", "a b", "a:b", "..", "root"} {
		if err := reg.Register(name, dir); err == nil {
			t.Fatalf("expected registration of %q to fail", name)
		}
	}

	if err := reg.Register("docs_1-x", dir); err != nil {
		t.Fatalf("expected valid name to register: %v", err)
	}
}

func TestRegistryRegisterRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("docs", t.TempDir()); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := reg.Register("docs", t.TempDir()); err == nil {
		t.Fatal("expected duplicate alias to fail")
	}
}

func TestRegistryRegisterRequiresDirectory(t *testing.T) {
	reg := NewRegistry()
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := reg.Register("docs", file); err == nil {
		t.Fatal("expected non-directory target to fail")
	}
	if err := reg.Register("docs", filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected missing target to fail")
	}
}

func TestRegistryLongestPrefixMatch(t *testing.T) {
	reg := NewRegistry()
	outer := t.TempDir()
	inner := filepath.Join(outer, "nested")
	if err := os.Mkdir(inner, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := reg.Register("outer", outer); err != nil {
		t.Fatalf("register outer: %v", err)
	}
	if err := reg.Register("inner", inner); err != nil {
		t.Fatalf("register inner: %v", err)
	}

	a, ok := reg.LongestPrefixMatch(filepath.Join(inner, "file.txt"))
	if !ok || a.Name != "inner" {
		t.Fatalf("expected inner to win the prefix match, got %#v", a)
	}

	a, ok = reg.LongestPrefixMatch(filepath.Join(outer, "other.txt"))
	if !ok || a.Name != "outer" {
		t.Fatalf("expected outer match, got %#v", a)
	}

	if _, ok := reg.LongestPrefixMatch("/definitely/elsewhere"); ok {
		t.Fatal("expected no match outside every root")
	}
}

func TestRegistryPrefixMatchRespectsSegmentBoundaries(t *testing.T) {
	reg := NewRegistry()
	base := t.TempDir()
	root := filepath.Join(base, "data")
	sibling := filepath.Join(base, "data-x")
	for _, d := range []string{root, sibling} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := reg.Register("data", root); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, ok := reg.LongestPrefixMatch(filepath.Join(sibling, "f")); ok {
		t.Fatal("data-x must not match the data root")
	}
}

func TestRegistryNamesOmitRealRoots(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("docs", t.TempDir()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("src", t.TempDir()); err != nil {
		t.Fatalf("register: %v", err)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "docs" || names[1] != "src" {
		t.Fatalf("unexpected names: %v", names)
	}
}
