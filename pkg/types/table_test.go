// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", NullValue(), `null`},
		{"string", StringValue("Labeo rohita"), `"Labeo rohita"`},
		{"string not html escaped", StringValue("a<b>&c"), `"a<b>&c"`},
		{"int", IntValue(-42), `-42`},
		{"float", FloatValue(12.1), `12.1`},
		{"whole float keeps fraction", FloatValue(78), `78.0`},
		{"large float exponent", FloatValue(1e21), `1e+21`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestTableNil(t *testing.T) {
	var tbl *Table
	assert.Zero(t, tbl.Len())
	assert.False(t, tbl.HasColumn("id"))
}

func TestValueIsMissing(t *testing.T) {
	assert.True(t, NullValue().IsMissing())
	assert.True(t, StringValue("").IsMissing())
	assert.False(t, StringValue(" ").IsMissing())
	assert.False(t, IntValue(0).IsMissing())
	assert.False(t, FloatValue(0).IsMissing())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrorKindNone, KindOf(nil))
	assert.Equal(t, ErrorKindSource, KindOf(fmt.Errorf("opening: %w", ErrSourceAccess)))
	assert.Equal(t, ErrorKindSchema, KindOf(fmt.Errorf("x: %w", ErrSchema)))
	assert.Equal(t, ErrorKindDestination, KindOf(fmt.Errorf("x: %w", ErrDestinationAccess)))
	assert.Equal(t, ErrorKindUnknown, KindOf(errors.New("boom")))
}
