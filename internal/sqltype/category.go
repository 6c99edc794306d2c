package sqltype

// Category is the coarse semantic classification of a type code.
type Category int

const (
	CategoryNone Category = iota
	CategoryNumber
	CategoryString
	CategoryDate
	CategoryBoolean
	CategoryInteger
	CategoryBigNumber
	CategorySerializable
	CategoryBinary
	CategoryTimestamp
	CategoryTime
	CategoryInet
)

var categoryNames = [...]string{
	CategoryNone:         "NONE",
	CategoryNumber:       "NUMBER",
	CategoryString:       "STRING",
	CategoryDate:         "DATE",
	CategoryBoolean:      "BOOLEAN",
	CategoryInteger:      "INTEGER",
	CategoryBigNumber:    "BIGNUMBER",
	CategorySerializable: "SERIALIZABLE",
	CategoryBinary:       "BINARY",
	CategoryTimestamp:    "TIMESTAMP",
	CategoryTime:         "TIME",
	CategoryInet:         "INET",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "UNKNOWN"
	}
	return categoryNames[c]
}

// MarshalText renders the category by name in JSON and YAML output.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

var categories = map[Code]Category{
	Null: CategoryNone,

	Bit:     CategoryBoolean,
	Boolean: CategoryBoolean,

	TinyInt:  CategoryInteger,
	SmallInt: CategoryInteger,
	Integer:  CategoryInteger,

	BigInt:  CategoryBigNumber,
	Numeric: CategoryBigNumber,
	Decimal: CategoryBigNumber,

	Float:  CategoryNumber,
	Real:   CategoryNumber,
	Double: CategoryNumber,

	Char:         CategoryString,
	VarChar:      CategoryString,
	LongVarChar:  CategoryString,
	NChar:        CategoryString,
	NVarChar:     CategoryString,
	LongNVarChar: CategoryString,
	Clob:         CategoryString,
	NClob:        CategoryString,
	SQLXML:       CategoryString,
	RowID:        CategoryString,
	DataLink:     CategoryString,

	Date:                  CategoryDate,
	Time:                  CategoryTime,
	TimeWithTimezone:      CategoryTime,
	Timestamp:             CategoryTimestamp,
	TimestampWithTimezone: CategoryTimestamp,

	Binary:        CategoryBinary,
	VarBinary:     CategoryBinary,
	LongVarBinary: CategoryBinary,
	Blob:          CategoryBinary,

	JavaObject: CategorySerializable,
	Struct:     CategorySerializable,
	Distinct:   CategorySerializable,
	Array:      CategorySerializable,
	Ref:        CategorySerializable,
	RefCursor:  CategorySerializable,

	// drivers report network address types (inet, cidr) as OTHER
	Other: CategoryInet,
}

// Classify returns the semantic category of c. Unmapped codes are strings.
func Classify(c Code) Category {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return CategoryString
}
