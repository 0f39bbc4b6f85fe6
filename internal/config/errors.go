package config

import "errors"

// ErrTempDirUnavailable is returned when TEMP_DIR is unset and the host temp
// directory cannot be determined either.
var ErrTempDirUnavailable = errors.New("no usable temp directory")
