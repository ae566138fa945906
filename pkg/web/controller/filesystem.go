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
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/fsd/pkg/textedit"
	"github.com/alibaba/opensandbox/fsd/pkg/vfs"
	"github.com/alibaba/opensandbox/fsd/pkg/web/model"
)

// FilesystemController handles the sandboxed filesystem operations.
type FilesystemController struct {
	*basicController
	sandbox *Sandbox
}

func NewFilesystemController(ctx *gin.Context) *FilesystemController {
	return &FilesystemController{basicController: newBasicController(ctx), sandbox: defaultSandbox}
}

// respondSandboxError converts a vfs error kind into the transport
// status/code pair. This is the only place the taxonomy is translated.
func (c *FilesystemController) respondSandboxError(err error) {
	switch vfs.KindOf(err) {
	case vfs.KindInvalidArgument:
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, err.Error())
	case vfs.KindUnknownAlias:
		c.RespondError(http.StatusNotFound, model.ErrorCodeUnknownAlias, err.Error())
	case vfs.KindAccessDenied:
		c.RespondError(http.StatusForbidden, model.ErrorCodeAccessDenied, err.Error())
	case vfs.KindNotFound:
		c.RespondError(http.StatusNotFound, model.ErrorCodeFileNotFound, err.Error())
	case vfs.KindEditNotFound:
		c.RespondError(http.StatusConflict, model.ErrorCodeEditNotFound, err.Error())
	default:
		c.RespondError(http.StatusInternalServerError, model.ErrorCodeRuntimeError, err.Error())
	}
}

// ReadFile returns the raw content of a file at a virtual path.
func (c *FilesystemController) ReadFile() {
	path := c.ctx.Query("path")
	if path == "" {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeMissingQuery,
			"missing query parameter 'path'",
		)
		return
	}

	real, err := c.sandbox.Resolver.Validate(path)
	if err != nil {
		c.respondSandboxError(err)
		return
	}

	data, err := os.ReadFile(real)
	if err != nil {
		if os.IsNotExist(err) {
			c.RespondError(
				http.StatusNotFound,
				model.ErrorCodeFileNotFound,
				fmt.Sprintf("file not found: %s", path),
			)
			return
		}
		c.RespondError(
			http.StatusInternalServerError,
			model.ErrorCodeRuntimeError,
			fmt.Sprintf("error reading %s. %v", path, err),
		)
		return
	}

	c.RespondText(string(data))
}

// WriteFile creates or overwrites a file at a virtual path.
func (c *FilesystemController) WriteFile() {
	var request model.WriteFileRequest
	if err := c.bindJSON(&request); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request, MAYBE invalid body format. %v", err),
		)
		return
	}
	if err := request.Validate(); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, err.Error())
		return
	}

	real, err := c.sandbox.Resolver.Validate(request.Path)
	if err != nil {
		c.respondSandboxError(err)
		return
	}

	if err := os.WriteFile(real, []byte(request.Content), 0o644); err != nil {
		c.RespondError(
			http.StatusInternalServerError,
			model.ErrorCodeRuntimeError,
			fmt.Sprintf("error writing %s. %v", request.Path, err),
		)
		return
	}

	c.RespondSuccess(map[string]any{
		"written": true,
		"path":    c.sandbox.Resolver.ToAliasPath(real),
		"size":    len(request.Content),
	})
}

// EditFile applies an ordered list of edits and returns the fenced diff.
func (c *FilesystemController) EditFile() {
	var request model.EditFileRequest
	if err := c.bindJSON(&request); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request, MAYBE invalid body format. %v", err),
		)
		return
	}
	if err := request.Validate(); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, err.Error())
		return
	}

	edits := make([]textedit.Edit, len(request.Edits))
	for i, item := range request.Edits {
		edits[i] = textedit.Edit{OldText: item.OldText, NewText: item.NewText}
	}

	diff, err := c.sandbox.Engine.ApplyEdits(request.Path, edits, request.DryRun)
	if err != nil {
		c.respondSandboxError(err)
		return
	}

	status := fmt.Sprintf("applied %d edit(s) to %s", len(edits), request.Path)
	if request.DryRun {
		status = fmt.Sprintf("previewed %d edit(s) against %s, nothing written", len(edits), request.Path)
	}

	c.RespondSuccess(model.EditFileResponse{
		Path:    request.Path,
		Applied: !request.DryRun,
		Status:  status,
		Diff:    diff,
	})
}

// ManageFile moves, renames, copies or deletes one file.
func (c *FilesystemController) ManageFile() {
	var request model.ManageFileRequest
	if err := c.bindJSON(&request); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request, MAYBE invalid body format. %v", err),
		)
		return
	}
	if err := request.Validate(); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, err.Error())
		return
	}

	src, err := c.sandbox.Resolver.Validate(request.Path)
	if err != nil {
		c.respondSandboxError(err)
		return
	}

	resp := model.ManageResponse{Action: request.Action, Path: c.sandbox.Resolver.ToAliasPath(src)}

	switch request.Action {
	case model.FileActionDelete:
		err = deleteFile(src)
	case model.FileActionMove, model.FileActionRename, model.FileActionCopy:
		if request.Dest == "" {
			c.RespondError(
				http.StatusBadRequest,
				model.ErrorCodeInvalidRequest,
				fmt.Sprintf("action %q requires a dest path", request.Action),
			)
			return
		}
		var dst string
		dst, err = c.sandbox.Resolver.Validate(request.Dest)
		if err != nil {
			c.respondSandboxError(err)
			return
		}
		resp.Dest = c.sandbox.Resolver.ToAliasPath(dst)
		if request.Action == model.FileActionCopy {
			err = copyFile(src, dst)
		} else {
			err = renamePath(src, dst)
		}
	}

	if err != nil {
		c.respondSandboxError(err)
		return
	}
	c.RespondSuccess(resp)
}

// ManageDir creates, renames or deletes one directory.
func (c *FilesystemController) ManageDir() {
	var request model.ManageDirRequest
	if err := c.bindJSON(&request); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request, MAYBE invalid body format. %v", err),
		)
		return
	}
	if err := request.Validate(); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, err.Error())
		return
	}

	real, err := c.sandbox.Resolver.Validate(request.Path)
	if err != nil {
		c.respondSandboxError(err)
		return
	}

	resp := model.ManageResponse{Action: request.Action, Path: c.sandbox.Resolver.ToAliasPath(real)}

	switch request.Action {
	case model.DirActionCreate:
		if mkErr := os.MkdirAll(real, 0o755); mkErr != nil {
			err = vfs.WrapIO("cannot create directory", mkErr)
		}
	case model.DirActionRename:
		if request.Dest == "" {
			c.RespondError(
				http.StatusBadRequest,
				model.ErrorCodeInvalidRequest,
				"action \"rename\" requires a dest path",
			)
			return
		}
		var dst string
		dst, err = c.sandbox.Resolver.Validate(request.Dest)
		if err != nil {
			c.respondSandboxError(err)
			return
		}
		resp.Dest = c.sandbox.Resolver.ToAliasPath(dst)
		err = renamePath(real, dst)
	case model.DirActionDelete:
		if rmErr := os.RemoveAll(real); rmErr != nil {
			err = vfs.WrapIO("cannot remove directory", rmErr)
		}
	}

	if err != nil {
		c.respondSandboxError(err)
		return
	}
	c.RespondSuccess(resp)
}

// Search expands a glob pattern against the virtual namespace.
func (c *FilesystemController) Search() {
	pattern := c.ctx.Query("pattern")
	cwd := c.ctx.Query("cwd")
	ignore := c.ctx.QueryArray("ignore")
	withMeta := c.ctx.Query("metadata") == "true"

	entries, err := c.sandbox.Planner.Search(pattern, cwd, ignore, withMeta)
	if err != nil {
		c.respondSandboxError(err)
		return
	}

	c.RespondSuccess(entries)
}

// GetFilesInfo retrieves metadata for the given virtual paths.
func (c *FilesystemController) GetFilesInfo() {
	paths := c.ctx.QueryArray("path")
	if len(paths) == 0 {
		c.RespondSuccess(make(map[string]model.FileInfo))
		return
	}

	resp := make(map[string]model.FileInfo)
	for _, path := range paths {
		real, err := c.sandbox.Resolver.Validate(path)
		if err != nil {
			c.respondSandboxError(err)
			return
		}
		info, err := os.Stat(real)
		if err != nil {
			if os.IsNotExist(err) {
				c.RespondError(
					http.StatusNotFound,
					model.ErrorCodeFileNotFound,
					fmt.Sprintf("file not found: %s", path),
				)
				return
			}
			c.RespondError(
				http.StatusInternalServerError,
				model.ErrorCodeRuntimeError,
				fmt.Sprintf("error accessing %s. %v", path, err),
			)
			return
		}

		alias := c.sandbox.Resolver.ToAliasPath(real)
		entryType := vfs.EntryTypeFile
		if info.IsDir() {
			entryType = vfs.EntryTypeDirectory
		}
		resp[alias] = model.FileInfo{
			Path:       alias,
			Type:       entryType,
			Size:       info.Size(),
			Mode:       fmt.Sprintf("%04o", info.Mode().Perm()),
			CreatedAt:  vfs.CreateTime(info),
			ModifiedAt: info.ModTime(),
		}
	}

	c.RespondSuccess(resp)
}

func deleteFile(real string) error {
	info, err := os.Stat(real)
	if err != nil {
		if os.IsNotExist(err) {
			return vfs.Errorf(vfs.KindNotFound, "file not found")
		}
		return vfs.WrapIO("cannot stat file", err)
	}
	if info.IsDir() {
		return vfs.Errorf(vfs.KindInvalidArgument, "path is a directory; use the directories endpoint")
	}
	if err := os.Remove(real); err != nil {
		return vfs.WrapIO("cannot remove file", err)
	}
	return nil
}

func renamePath(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return vfs.Errorf(vfs.KindNotFound, "source path not found")
		}
		return vfs.WrapIO("cannot stat source", err)
	}
	if _, err := os.Stat(dst); err == nil {
		return vfs.Errorf(vfs.KindInvalidArgument, "destination path already exists")
	}
	if err := os.Rename(src, dst); err != nil {
		return vfs.WrapIO("cannot rename", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return vfs.Errorf(vfs.KindNotFound, "source path not found")
		}
		return vfs.WrapIO("cannot stat source", err)
	}
	if info.IsDir() {
		return vfs.Errorf(vfs.KindInvalidArgument, "source is a directory; copy supports files only")
	}

	in, err := os.Open(src)
	if err != nil {
		return vfs.WrapIO("cannot open source", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return vfs.WrapIO("cannot create destination", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return vfs.WrapIO("copy failed", err)
	}
	return nil
}
