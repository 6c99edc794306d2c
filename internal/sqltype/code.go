// Package sqltype holds the vendor-neutral SQL type codes that catalog drivers
// report for columns, and their coarse semantic categories.
//
// Code values are the java.sql.Types constants, the de-facto vendor-neutral
// numbering used by catalog APIs. All tables in this package are built once
// and only read afterwards.
package sqltype

import "strings"

// Code is a vendor-neutral SQL type code.
type Code int

const (
	Bit                   Code = -7
	TinyInt               Code = -6
	SmallInt              Code = 5
	Integer               Code = 4
	BigInt                Code = -5
	Float                 Code = 6
	Real                  Code = 7
	Double                Code = 8
	Numeric               Code = 2
	Decimal               Code = 3
	Char                  Code = 1
	VarChar               Code = 12
	LongVarChar           Code = -1
	Date                  Code = 91
	Time                  Code = 92
	Timestamp             Code = 93
	Binary                Code = -2
	VarBinary             Code = -3
	LongVarBinary         Code = -4
	Null                  Code = 0
	Other                 Code = 1111
	JavaObject            Code = 2000
	Distinct              Code = 2001
	Struct                Code = 2002
	Array                 Code = 2003
	Blob                  Code = 2004
	Clob                  Code = 2005
	Ref                   Code = 2006
	DataLink              Code = 70
	Boolean               Code = 16
	RowID                 Code = -8
	NChar                 Code = -15
	NVarChar              Code = -9
	LongNVarChar          Code = -16
	NClob                 Code = 2011
	SQLXML                Code = 2009
	RefCursor             Code = 2012
	TimeWithTimezone      Code = 2013
	TimestampWithTimezone Code = 2014
)

var codeNames = map[Code]string{
	Bit:                   "BIT",
	TinyInt:               "TINYINT",
	SmallInt:              "SMALLINT",
	Integer:               "INTEGER",
	BigInt:                "BIGINT",
	Float:                 "FLOAT",
	Real:                  "REAL",
	Double:                "DOUBLE",
	Numeric:               "NUMERIC",
	Decimal:               "DECIMAL",
	Char:                  "CHAR",
	VarChar:               "VARCHAR",
	LongVarChar:           "LONGVARCHAR",
	Date:                  "DATE",
	Time:                  "TIME",
	Timestamp:             "TIMESTAMP",
	Binary:                "BINARY",
	VarBinary:             "VARBINARY",
	LongVarBinary:         "LONGVARBINARY",
	Null:                  "NULL",
	Other:                 "OTHER",
	JavaObject:            "JAVA_OBJECT",
	Distinct:              "DISTINCT",
	Struct:                "STRUCT",
	Array:                 "ARRAY",
	Blob:                  "BLOB",
	Clob:                  "CLOB",
	Ref:                   "REF",
	DataLink:              "DATALINK",
	Boolean:               "BOOLEAN",
	RowID:                 "ROWID",
	NChar:                 "NCHAR",
	NVarChar:              "NVARCHAR",
	LongNVarChar:          "LONGNVARCHAR",
	NClob:                 "NCLOB",
	SQLXML:                "SQLXML",
	RefCursor:             "REF_CURSOR",
	TimeWithTimezone:      "TIME_WITH_TIMEZONE",
	TimestampWithTimezone: "TIMESTAMP_WITH_TIMEZONE",
}

var codesByName = func() map[string]Code {
	m := make(map[string]Code, len(codeNames))
	for c, n := range codeNames {
		m[n] = c
	}
	return m
}()

// String returns the standard name of the code, or "UNKNOWN".
func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "UNKNOWN"
}

// Known reports whether c is one of the standard codes.
func (c Code) Known() bool {
	_, ok := codeNames[c]
	return ok
}

// Lookup resolves a standard code name such as "VARCHAR" (case-insensitive).
func Lookup(name string) (Code, bool) {
	c, ok := codesByName[strings.ToUpper(strings.TrimSpace(name))]
	return c, ok
}

// IsTemporal reports whether values of c are dates, times or timestamps.
func IsTemporal(c Code) bool {
	switch c {
	case Date, Time, Timestamp, TimeWithTimezone, TimestampWithTimezone:
		return true
	}
	return false
}

// IsDecimal reports whether c carries a precision and a scale.
func IsDecimal(c Code) bool {
	switch c {
	case Float, Real, Double, Numeric, Decimal:
		return true
	}
	return false
}

// IsInteger reports whether c is an exact integer type.
func IsInteger(c Code) bool {
	switch c {
	case TinyInt, SmallInt, Integer, BigInt:
		return true
	}
	return false
}

// IsCharacter reports whether c is a character string type.
func IsCharacter(c Code) bool {
	switch c {
	case Char, VarChar, LongVarChar, NChar, NVarChar, LongNVarChar:
		return true
	}
	return false
}

// IsLargeObject reports whether c belongs to the binary, blob, clob, xml or
// rowid families, whose DDL carries no length.
func IsLargeObject(c Code) bool {
	switch c {
	case LongVarBinary, Blob, Clob, NClob, SQLXML, RowID:
		return true
	}
	return false
}
