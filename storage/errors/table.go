package errors

// DuplicateName reports a second column with an existing name.
func DuplicateName(op string, name string) error {
	return New(ErrDuplicateName).
		Op(op).
		Context("column", name).
		Build()
}

// RowCountMismatch reports a column whose length differs from the table's.
func RowCountMismatch(op string, name string, expected, actual int) error {
	return New(ErrRowCountMismatch).
		Op(op).
		Context("column", name).
		Context("expected_rows", expected).
		Context("actual_rows", actual).
		Build()
}

// ColumnNotFound reports a lookup of an absent column.
func ColumnNotFound(op string, column string, available []string) error {
	return New(ErrColumnNotFound).
		Op(op).
		Context("column", column).
		Context("available_columns", available).
		Build()
}
