package sqltype

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code Code
		want Category
	}{
		{Null, CategoryNone},
		{Bit, CategoryBoolean},
		{Boolean, CategoryBoolean},
		{TinyInt, CategoryInteger},
		{Integer, CategoryInteger},
		{BigInt, CategoryBigNumber},
		{Decimal, CategoryBigNumber},
		{Double, CategoryNumber},
		{VarChar, CategoryString},
		{Clob, CategoryString},
		{Date, CategoryDate},
		{Time, CategoryTime},
		{Timestamp, CategoryTimestamp},
		{TimestampWithTimezone, CategoryTimestamp},
		{Blob, CategoryBinary},
		{VarBinary, CategoryBinary},
		{JavaObject, CategorySerializable},
		{Other, CategoryInet},
		{Code(424242), CategoryString},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.code))
		})
	}
}

func TestCode_StringAndLookup(t *testing.T) {
	for c, name := range codeNames {
		got, ok := Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, c, got)
		assert.Equal(t, name, c.String())
	}

	c, ok := Lookup(" varchar ")
	assert.True(t, ok)
	assert.Equal(t, VarChar, c)

	_, ok = Lookup("GEOMETRY")
	assert.False(t, ok)
	assert.Equal(t, "UNKNOWN", Code(99999).String())
	assert.False(t, Code(99999).Known())
}

func TestFamilies(t *testing.T) {
	assert.True(t, IsTemporal(Timestamp))
	assert.False(t, IsTemporal(VarChar))
	assert.True(t, IsDecimal(Decimal))
	assert.True(t, IsDecimal(Float))
	assert.False(t, IsDecimal(Integer))
	assert.True(t, IsInteger(BigInt))
	assert.True(t, IsCharacter(NVarChar))
	assert.True(t, IsLargeObject(Blob))
	assert.False(t, IsLargeObject(VarBinary))
}

func TestCategory_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Category{"c": CategoryInet})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"c":"INET"}`, string(b))
	assert.Equal(t, "UNKNOWN", Category(-1).String())
}
