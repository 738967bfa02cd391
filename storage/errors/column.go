package errors

// IndexOutOfRange reports a row index past the column length.
func IndexOutOfRange(op string, index, length int) error {
	return New(ErrIndexOutOfRange).
		Op(op).
		Context("index", index).
		Context("length", length).
		Build()
}

// TypeMismatch reports a value whose kind disagrees with the column type.
func TypeMismatch(op string, expected, actual string) error {
	return New(ErrTypeMismatch).
		Op(op).
		Context("expected_type", expected).
		Context("actual_type", actual).
		Build()
}

// ValueOutOfRange reports a value of the right kind that does not fit the column.
func ValueOutOfRange(op string, dataType string, reason string) error {
	return New(ErrValueOutOfRange).
		Op(op).
		Context("data_type", dataType).
		Context("reason", reason).
		Build()
}
