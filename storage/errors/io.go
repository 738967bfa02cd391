package errors

import "os"

// FileNotFound reports a missing local file or remote object.
func FileNotFound(path string) error {
	return New(ErrFileNotFound).
		Op("open_file").
		Path(path).
		Build()
}

// ReadFile wraps a failed whole-object read.
func ReadFile(path string, err error) error {
	code := ErrIO
	if os.IsNotExist(err) {
		code = ErrFileNotFound
	}
	return New(code).
		Op("read_file").
		Path(path).
		Wrap(err).
		Build()
}

// WriteFile wraps a failed whole-object write.
func WriteFile(path string, size int, err error) error {
	return New(ErrIO).
		Op("write_file").
		Path(path).
		Context("size", size).
		Wrap(err).
		Build()
}
