package slowserve

import (
	"errors"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"syscall"
)

// File error codes reported in 404 bodies.
const (
	CodeNotFound    = "ENOENT"
	CodePermission  = "EACCES"
	CodeIsDirectory = "EISDIR"
	CodeIO          = "EIO"
)

// Content is a file read into memory.
type Content struct {
	Data        []byte
	ContentType string
}

// FileError describes why a file could not be served.
// It is serialized as the body of 404 responses.
type FileError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path"`

	err error
}

func (e *FileError) Error() string {
	return e.Code + ": " + e.Message + ", path '" + e.Path + "'"
}

func (e *FileError) Unwrap() error {
	return e.err
}

// ReadContent reads the whole file at name.
// On failure it returns a *FileError whose Path is set to reqPath.
func ReadContent(name, reqPath string) (*Content, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, newFileError(err, reqPath)
	}
	return &Content{
		Data:        data,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
	}, nil
}

func newFileError(err error, reqPath string) *FileError {
	fe := &FileError{Code: CodeIO, Message: "i/o error", Path: reqPath, err: err}
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		fe.Code, fe.Message = CodeNotFound, "no such file or directory"
	case errors.Is(err, fs.ErrPermission):
		fe.Code, fe.Message = CodePermission, "permission denied"
	case errors.Is(err, syscall.EISDIR):
		fe.Code, fe.Message = CodeIsDirectory, "illegal operation on a directory"
	}
	return fe
}
