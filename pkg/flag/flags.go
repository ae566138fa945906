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

var (
	// ServerPort controls the HTTP listener port.
	ServerPort int

	// ServerLogLevel controls the server log verbosity by zap level name.
	ServerLogLevel string

	// ServerAccessToken guards API entrypoints when set.
	ServerAccessToken string

	// Roots holds the permitted filesystem roots parsed from the
	// positional alias:directory arguments, in argument order.
	Roots []RootSpec
)

// RootSpec is one alias:directory pair from the command line.
type RootSpec struct {
	Alias string
	Dir   string
}
