// Package parquetx exports tables as Parquet files through parquet-go's
// JSON writer.
package parquetx

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wzqhbustb/colfile/storage/arrow"
)

const rootTag = "name=parquet_go_root, repetitiontype=REQUIRED"

// jsonSchema is parquet-go's JSON schema form: a tag string per node.
type jsonSchema struct {
	Tag    string        `json:"Tag"`
	Fields []*jsonSchema `json:"Fields,omitempty"`
}

// fieldNames maps column names to Parquet field names. parquet-go
// addresses fields by Go identifier, so names that are not ASCII
// identifiers, or that collide once capitalized, become col_<index>.
func fieldNames(s *arrow.Schema) []string {
	names := make([]string, s.NumFields())
	seen := make(map[string]bool, s.NumFields())
	for i, f := range s.Fields() {
		name := f.Name
		if !isIdent(name) || seen[headToUpper(name)] {
			name = fmt.Sprintf("col_%d", i)
		}
		seen[headToUpper(name)] = true
		names[i] = name
	}
	return names
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func headToUpper(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SchemaJSON returns the parquet-go JSON schema for s.
func SchemaJSON(s *arrow.Schema) (string, error) {
	root := &jsonSchema{Tag: rootTag}
	for i, name := range fieldNames(s) {
		root.Fields = append(root.Fields, fieldSchema(name, s.Field(i).Type))
	}
	b, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}

func fieldSchema(name string, dt arrow.DataType) *jsonSchema {
	tags := []string{}
	if elem := arrow.ElemType(dt); elem != nil {
		tags = append(tags, "type=LIST", "name="+name, "repetitiontype=OPTIONAL")
		return &jsonSchema{
			Tag:    strings.Join(tags, ", "),
			Fields: []*jsonSchema{fieldSchema("Element", elem)},
		}
	}
	tags = append(tags, physicalTags(dt)...)
	tags = append(tags, "name="+name, "repetitiontype=OPTIONAL")
	return &jsonSchema{Tag: strings.Join(tags, ", ")}
}

// physicalTags picks the Parquet physical and converted type. Units without
// a converted type (nanoseconds, durations) are stored as plain INT64.
func physicalTags(dt arrow.DataType) []string {
	switch t := dt.(type) {
	case *arrow.BooleanType:
		return []string{"type=BOOLEAN"}
	case *arrow.Int8Type:
		return []string{"type=INT32", "convertedtype=INT_8"}
	case *arrow.Int16Type:
		return []string{"type=INT32", "convertedtype=INT_16"}
	case *arrow.Int32Type, *arrow.NullType:
		return []string{"type=INT32"}
	case *arrow.Int64Type, *arrow.DurationType:
		return []string{"type=INT64"}
	case *arrow.Uint8Type:
		return []string{"type=INT32", "convertedtype=UINT_8"}
	case *arrow.Uint16Type:
		return []string{"type=INT32", "convertedtype=UINT_16"}
	case *arrow.Uint32Type:
		return []string{"type=INT32", "convertedtype=UINT_32"}
	case *arrow.Uint64Type:
		return []string{"type=INT64", "convertedtype=UINT_64"}
	case *arrow.Float32Type:
		return []string{"type=FLOAT"}
	case *arrow.Float64Type:
		return []string{"type=DOUBLE"}
	case *arrow.DecimalType:
		decimalTags := []string{
			"convertedtype=DECIMAL",
			fmt.Sprintf("scale=%d", t.Scale()),
			fmt.Sprintf("precision=%d", t.Precision()),
		}
		switch arrow.DecimalByteWidth(t.Precision()) {
		case 4:
			return append([]string{"type=INT32"}, decimalTags...)
		case 8:
			return append([]string{"type=INT64"}, decimalTags...)
		default:
			return append([]string{"type=FIXED_LEN_BYTE_ARRAY", "length=16"}, decimalTags...)
		}
	case *arrow.StringType:
		return []string{"type=BYTE_ARRAY", "convertedtype=UTF8", "encoding=PLAIN"}
	case *arrow.BinaryType:
		// base64 text, the JSON writer only carries valid UTF-8
		return []string{"type=BYTE_ARRAY", "convertedtype=UTF8", "encoding=PLAIN"}
	case *arrow.DateType:
		return []string{"type=INT32", "convertedtype=DATE"}
	case *arrow.TimeType:
		switch t.Unit() {
		case arrow.Millisecond:
			return []string{"type=INT32", "convertedtype=TIME_MILLIS"}
		case arrow.Microsecond:
			return []string{"type=INT64", "convertedtype=TIME_MICROS"}
		}
		return []string{"type=INT64"}
	case *arrow.DatetimeType:
		switch t.Unit() {
		case arrow.Millisecond:
			return []string{"type=INT64", "convertedtype=TIMESTAMP_MILLIS"}
		case arrow.Microsecond:
			return []string{"type=INT64", "convertedtype=TIMESTAMP_MICROS"}
		}
		return []string{"type=INT64"}
	}
	return []string{"type=BYTE_ARRAY", "convertedtype=UTF8"}
}
