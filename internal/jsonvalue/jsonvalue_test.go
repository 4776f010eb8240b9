package jsonvalue

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keurnel/lattice/pkg/value"
)

func TestParsePrint(t *testing.T) {
	c := New()
	v, err := c.Parse(`{"a":1,"b":[true,null,"s"]}`)
	require.NoError(t, err)
	out, err := c.Print(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":[true,null,"s"]}`, out)
}

func TestParseInvalidJSON(t *testing.T) {
	c := New()
	_, err := c.Parse(`{not json`)
	assert.Error(t, err)
}

func TestTypeOf(t *testing.T) {
	c := New()
	cases := map[string]value.Type{
		"null": value.Null, "true": value.Bool, "1": value.Number,
		`"s"`: value.String, "[]": value.Array, "{}": value.Object,
	}
	for raw, want := range cases {
		v, err := c.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, c.TypeOf(v), "TypeOf(%s)", raw)
	}
}

func TestNonFiniteNumberSentinels(t *testing.T) {
	c := New()
	nan := c.NewNumber(math.NaN())
	assert.Equal(t, value.Number, c.TypeOf(nan))
	assert.True(t, math.IsNaN(c.AsNumber(nan)))

	inf := c.NewNumber(math.Inf(1))
	printed, err := c.Print(inf)
	require.NoError(t, err)
	assert.Equal(t, "Infinity", printed)
}

func TestKeysPreservesOrder(t *testing.T) {
	c := New()
	v, err := c.Parse(`{"z":1,"a":2,"m":3}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, c.Keys(v))
}

func TestAppendAndSet(t *testing.T) {
	c := New()
	arr := c.NewArray()
	arr = c.Append(arr, c.NewNumber(1))
	arr = c.Append(arr, c.NewNumber(2))
	assert.Equal(t, 2, c.Len(arr))

	obj := c.NewObject()
	obj = c.Set(obj, "k", c.NewString("v"))
	got, ok := c.GetKey(obj, "k")
	require.True(t, ok)
	assert.Equal(t, "v", c.AsString(got))
}

func TestSetEscapesPathMetacharacters(t *testing.T) {
	c := New()
	obj := c.NewObject()
	obj = c.Set(obj, "a.b*c", c.NewNumber(5))
	got, ok := c.GetKey(obj, "a.b*c")
	require.True(t, ok)
	assert.Equal(t, float64(5), c.AsNumber(got))
}

func TestEqualScalarsAndContainerIdentity(t *testing.T) {
	c := New()
	a, _ := c.Parse("1")
	b, _ := c.Parse("1")
	assert.True(t, c.Equal(a, b))

	arr1 := c.NewArray()
	arr2 := c.Clone(arr1)
	assert.False(t, c.Equal(arr1, arr2), "cloned arrays are not identity-equal")
	assert.True(t, c.Equal(arr1, arr1))
}

func TestGetIndexOnStringReturnsByteSlice(t *testing.T) {
	c := New()
	s, _ := c.Parse(`"abc"`)
	v, ok := c.GetIndex(s, 1)
	require.True(t, ok)
	assert.Equal(t, "b", c.AsString(v))
	_, ok = c.GetIndex(s, 99)
	assert.False(t, ok)
}
