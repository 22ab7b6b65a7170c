package slowserve

import (
	"encoding/json"
	"errors"
	"net/http"
)

// WriteFileError writes a 404 response whose body is err serialized as JSON.
// Errors other than *FileError are reported with the EIO code.
func WriteFileError(w http.ResponseWriter, err error, reqPath string) {
	var fe *FileError
	if !errors.As(err, &fe) {
		fe = &FileError{Code: CodeIO, Message: err.Error(), Path: reqPath, err: err}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(fe)
}
