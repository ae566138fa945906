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
	"errors"
	"fmt"
)

// Kind classifies sandbox failures. The set is closed: every error the
// virtual filesystem reports belongs to exactly one of these kinds, and
// they only convert to transport codes at the operation boundary.
type Kind int

const (
	KindInvalidArgument Kind = iota
	KindUnknownAlias
	KindAccessDenied
	KindNotFound
	KindEditNotFound
	KindIOFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindUnknownAlias:
		return "UnknownAlias"
	case KindAccessDenied:
		return "AccessDenied"
	case KindNotFound:
		return "NotFound"
	case KindEditNotFound:
		return "EditNotFound"
	default:
		return "IOFailure"
	}
}

// Error carries a kind plus a caller-facing description.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapIO labels an underlying filesystem error as an IOFailure.
func WrapIO(msg string, err error) *Error {
	return &Error{Kind: KindIOFailure, Msg: msg, Err: err}
}

// KindOf extracts the kind from err; unclassified errors count as IOFailure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIOFailure
}
