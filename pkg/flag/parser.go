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

package flag

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"strings"

	"github.com/alibaba/opensandbox/fsd/pkg/log"
)

const accessTokenEnv = "FSD_ACCESS_TOKEN"

// InitFlags registers CLI flags, applies env overrides, and parses the
// positional alias:directory root arguments. Malformed roots are fatal:
// no caller session exists yet, so there is nobody to return an error to.
func InitFlags() {
	// Set default values
	ServerPort = 44780
	ServerLogLevel = "info"
	ServerAccessToken = ""

	if tokenFromEnv := os.Getenv(accessTokenEnv); tokenFromEnv != "" {
		ServerAccessToken = tokenFromEnv
	}

	flag.IntVar(&ServerPort, "port", ServerPort, "Server listening port (default: 44780)")
	flag.StringVar(&ServerLogLevel, "log-level", ServerLogLevel, "Server log level: debug, info, warn or error (default: info)")
	flag.StringVar(&ServerAccessToken, "access-token", ServerAccessToken, "Server access token for API authentication")

	flag.Parse()

	if flag.NArg() == 0 {
		stdlog.Panic("no permitted roots given: expected at least one alias:directory argument")
	}

	for _, arg := range flag.Args() {
		spec, err := ParseRootSpec(arg)
		if err != nil {
			stdlog.Panicf("invalid root argument %q: %v", arg, err)
		}
		Roots = append(Roots, spec)
	}

	log.Info("parsed %d permitted root(s)", len(Roots))
}

// ParseRootSpec splits an alias:directory argument on its first colon, so
// directory values may themselves contain colons (Windows drive letters).
func ParseRootSpec(arg string) (RootSpec, error) {
	alias, dir, found := strings.Cut(arg, ":")
	if !found {
		return RootSpec{}, fmt.Errorf("expected alias:directory format")
	}
	if alias == "" {
		return RootSpec{}, fmt.Errorf("alias must not be empty")
	}
	if dir == "" {
		return RootSpec{}, fmt.Errorf("directory must not be empty")
	}
	return RootSpec{Alias: alias, Dir: dir}, nil
}
