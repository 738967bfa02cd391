package errors

// InvalidScale reports a decimal whose scale exceeds its precision.
func InvalidScale(op string, precision, scale int) error {
	return New(ErrInvalidScale).
		Op(op).
		Context("precision", precision).
		Context("scale", scale).
		Build()
}

// InvalidPrecision reports a decimal precision outside the supported range.
func InvalidPrecision(op string, precision, max int) error {
	return New(ErrInvalidPrecision).
		Op(op).
		Context("precision", precision).
		Context("max_precision", max).
		Build()
}

// NestingTooDeep reports list nesting beyond the configured limit.
func NestingTooDeep(op string, depth, max int) error {
	return New(ErrNestingTooDeep).
		Op(op).
		Context("depth", depth).
		Context("max_depth", max).
		Build()
}

// UnsupportedType reports a type name or tag that cannot be interpreted.
func UnsupportedType(op string, dataType string) error {
	return New(ErrUnsupportedType).
		Op(op).
		Context("data_type", dataType).
		Build()
}
