package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_JSONVariants(t *testing.T) {
	bag := map[string]Value{
		"label":   String("Shop now"),
		"sticky":  Bool(true),
		"tags":    List("sale", "new"),
		"tracker": Map(map[string]string{"event": "click"}),
	}

	data, err := json.Marshal(bag)
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Shop now","sticky":true,"tags":["sale","new"],"tracker":{"event":"click"}}`, string(data))

	var decoded map[string]Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, bag, decoded)

	s, ok := decoded["label"].AsString()
	assert.True(t, ok)
	assert.Equal(t, "Shop now", s)

	_, ok = decoded["label"].AsBool()
	assert.False(t, ok, "a string value is not a bool")
}

func TestValue_RejectsUnsupportedShapes(t *testing.T) {
	cases := []string{`42`, `[1,2]`, `{"a":1}`}
	for _, raw := range cases {
		var v Value
		err := json.Unmarshal([]byte(raw), &v)
		assert.ErrorIs(t, err, ErrInvalidValue, raw)
	}
}

func TestValue_CloneIsIndependent(t *testing.T) {
	orig := Map(map[string]string{"k": "v"})
	cp := orig.Clone()

	m, _ := cp.AsMap()
	m["k"] = "changed"

	got, _ := orig.AsMap()
	assert.Equal(t, "v", got["k"])
}
