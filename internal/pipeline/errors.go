package pipeline

import (
	"errors"

	"github.com/banshee-data/landuse.report/internal/reporterr"
)

func asDataError(err error) *reporterr.DataError {
	var de *reporterr.DataError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

func ioError(op, path string, err error) error {
	return &reporterr.IOError{Op: op, Path: path, Err: err}
}
