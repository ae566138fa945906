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

package controller

import (
	"github.com/alibaba/opensandbox/fsd/pkg/textedit"
	"github.com/alibaba/opensandbox/fsd/pkg/vfs"
)

// Sandbox bundles the virtual-namespace collaborators every controller
// needs. It is built once at startup around an immutable registry, so
// sharing it across requests needs no locking; tests build their own with
// synthetic roots instead of touching process state.
type Sandbox struct {
	Registry *vfs.Registry
	Resolver *vfs.Resolver
	Planner  *vfs.Planner
	Engine   *textedit.Engine
}

// NewSandbox wires the collaborators around reg. legacyRoots optionally
// supplies the allow-list for absolute and tilde paths.
func NewSandbox(reg *vfs.Registry, legacyRoots ...string) *Sandbox {
	resolver := vfs.NewResolver(reg, legacyRoots...)
	return &Sandbox{
		Registry: reg,
		Resolver: resolver,
		Planner:  vfs.NewPlanner(reg, resolver),
		Engine:   textedit.NewEngine(resolver),
	}
}

var defaultSandbox *Sandbox

// InitSandbox installs the process-wide sandbox used by handlers built
// from live gin contexts. Called once from main before serving.
func InitSandbox(s *Sandbox) {
	defaultSandbox = s
}
