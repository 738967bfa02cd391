package arrow

import "fmt"

// LayoutKind is the physical shape of a column's value region.
type LayoutKind uint8

const (
	LayoutNone      LayoutKind = iota // no value region (Null)
	LayoutBits                        // one bit per row (Boolean)
	LayoutFixed                       // ByteWidth bytes per row
	LayoutVarBinary                   // u32 offsets + payload (String, Binary)
	LayoutList                        // u32 offsets + child column (List)
	LayoutFixedList                   // child column of n*ListSize rows (FixedSizeList)
)

func (k LayoutKind) String() string {
	switch k {
	case LayoutNone:
		return "None"
	case LayoutBits:
		return "Bits"
	case LayoutFixed:
		return "Fixed"
	case LayoutVarBinary:
		return "VarBinary"
	case LayoutList:
		return "List"
	case LayoutFixedList:
		return "FixedList"
	default:
		return fmt.Sprintf("LayoutKind(%d)", uint8(k))
	}
}

// PhysicalLayout describes how values of a logical type are stored.
type PhysicalLayout struct {
	Kind      LayoutKind
	ByteWidth int // LayoutFixed only
	ListSize  int // LayoutFixedList only
}

// HasOffsets reports whether the layout carries an n+1 offsets array.
func (l PhysicalLayout) HasOffsets() bool {
	return l.Kind == LayoutVarBinary || l.Kind == LayoutList
}

// HasChild reports whether the layout owns a child column.
func (l PhysicalLayout) HasChild() bool {
	return l.Kind == LayoutList || l.Kind == LayoutFixedList
}

// DecimalByteWidth is the storage width of the unscaled integer.
func DecimalByteWidth(precision uint8) int {
	switch {
	case precision <= 9:
		return 4
	case precision <= 18:
		return 8
	default:
		return 16
	}
}

// Layout maps a logical type to its physical encoding. It never fails.
func Layout(dt DataType) PhysicalLayout {
	switch dt.ID() {
	case NULL:
		return PhysicalLayout{Kind: LayoutNone}
	case BOOL:
		return PhysicalLayout{Kind: LayoutBits}
	case INT8, UINT8:
		return PhysicalLayout{Kind: LayoutFixed, ByteWidth: 1}
	case INT16, UINT16:
		return PhysicalLayout{Kind: LayoutFixed, ByteWidth: 2}
	case INT32, UINT32, FLOAT32, DATE:
		return PhysicalLayout{Kind: LayoutFixed, ByteWidth: 4}
	case INT64, UINT64, FLOAT64, TIME, DATETIME, DURATION:
		return PhysicalLayout{Kind: LayoutFixed, ByteWidth: 8}
	case DECIMAL:
		return PhysicalLayout{Kind: LayoutFixed, ByteWidth: DecimalByteWidth(dt.(*DecimalType).precision)}
	case STRING, BINARY:
		return PhysicalLayout{Kind: LayoutVarBinary}
	case LIST:
		return PhysicalLayout{Kind: LayoutList}
	case FIXED_SIZE_LIST:
		return PhysicalLayout{Kind: LayoutFixedList, ListSize: dt.(*FixedSizeListType).size}
	default:
		panic(fmt.Sprintf("arrow: no layout for %s", dt.ID()))
	}
}
