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

package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/alibaba/opensandbox/fsd/pkg/flag"
	"github.com/alibaba/opensandbox/fsd/pkg/log"
	_ "github.com/alibaba/opensandbox/fsd/pkg/util/safego"
	"github.com/alibaba/opensandbox/fsd/pkg/vfs"
	"github.com/alibaba/opensandbox/fsd/pkg/web"
	"github.com/alibaba/opensandbox/fsd/pkg/web/controller"
)

// main initializes and starts the fsd server.
func main() {
	flag.InitFlags()

	log.SetLevel(flag.ServerLogLevel)

	registry := vfs.NewRegistry()
	for _, root := range flag.Roots {
		if err := registry.Register(root.Alias, root.Dir); err != nil {
			log.Error("failed to register root %s: %v", root.Alias, err)
			os.Exit(1)
		}
		log.Info("serving alias %s", root.Alias)
	}

	controller.InitSandbox(controller.NewSandbox(registry))

	engine := web.NewRouter(flag.ServerAccessToken)
	addr := fmt.Sprintf(":%d", flag.ServerPort)
	log.Info("fsd listening on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Error("failed to start fsd server: %v", err)
	}
}
