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

package model

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ApiAccessTokenHeader authenticates callers when an access token is set.
const ApiAccessTokenHeader = "X-Fsd-Access-Token"

// ErrorCode identifies a failure class in error responses.
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "InvalidRequest"
	ErrorCodeMissingQuery   ErrorCode = "MissingQuery"
	ErrorCodeUnknownAlias   ErrorCode = "UnknownAlias"
	ErrorCodeAccessDenied   ErrorCode = "AccessDenied"
	ErrorCodeFileNotFound   ErrorCode = "FileNotFound"
	ErrorCodeEditNotFound   ErrorCode = "EditNotFound"
	ErrorCodeRuntimeError   ErrorCode = "RuntimeError"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message,omitempty"`
}

// WriteFileRequest creates or overwrites a file at a virtual path.
type WriteFileRequest struct {
	Path    string `json:"path" validate:"required"`
	Content string `json:"content"`
}

func (r *WriteFileRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// EditItem is one find/replace step of an edit request.
type EditItem struct {
	OldText string `json:"old_text" validate:"required"`
	NewText string `json:"new_text"`
}

// EditFileRequest applies an ordered list of edits to one file. Edits are
// sequentially dependent: each matches against the content as already
// modified by its predecessors.
type EditFileRequest struct {
	Path   string     `json:"path" validate:"required"`
	Edits  []EditItem `json:"edits" validate:"required,min=1,dive"`
	DryRun bool       `json:"dry_run,omitempty"`
}

func (r *EditFileRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// EditFileResponse carries the fenced diff and a status line.
type EditFileResponse struct {
	Path    string `json:"path"`
	Applied bool   `json:"applied"`
	Status  string `json:"status"`
	Diff    string `json:"diff"`
}

// File management actions.
const (
	FileActionMove   = "move"
	FileActionRename = "rename"
	FileActionCopy   = "copy"
	FileActionDelete = "delete"

	DirActionCreate = "create"
	DirActionRename = "rename"
	DirActionDelete = "delete"
)

// ManageFileRequest moves, renames, copies or deletes one file.
type ManageFileRequest struct {
	Action string `json:"action" validate:"required,oneof=move rename copy delete"`
	Path   string `json:"path" validate:"required"`
	Dest   string `json:"dest,omitempty"`
}

func (r *ManageFileRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ManageDirRequest creates, renames or deletes one directory.
type ManageDirRequest struct {
	Action string `json:"action" validate:"required,oneof=create rename delete"`
	Path   string `json:"path" validate:"required"`
	Dest   string `json:"dest,omitempty"`
}

func (r *ManageDirRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ManageResponse confirms a management action in alias form.
type ManageResponse struct {
	Action string `json:"action"`
	Path   string `json:"path"`
	Dest   string `json:"dest,omitempty"`
}

// FileInfo is per-path metadata, path in alias form.
type FileInfo struct {
	Path       string    `json:"path"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	Mode       string    `json:"mode"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}
