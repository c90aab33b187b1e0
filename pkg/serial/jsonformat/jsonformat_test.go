package jsonformat_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/serial/jsonformat"
	"github.com/lk2023060901/gosave/pkg/serial/serialutil"
)

func name(s string) serial.Name { return serial.NewName(s) }

type JSONSuite struct {
	suite.Suite
}

func TestJSONSuite(t *testing.T) {
	suite.Run(t, new(JSONSuite))
}

func (s *JSONSuite) TestScalarRoundTrip() {
	w := jsonformat.NewWriter()
	a, b, c, d := int32(400), uint32(123456789), float32(123.456789), true
	s.Require().NoError(w.Int32(name("a"), &a))
	s.Require().NoError(w.Uint32(name("b"), &b))
	s.Require().NoError(w.Float32(name("c"), &c))
	s.Require().NoError(w.Bool(name("d"), &d))

	raw, err := jsonformat.Marshal(w.Root())
	s.Require().NoError(err)

	node, err := jsonformat.Parse(string(raw))
	s.Require().NoError(err)
	r := jsonformat.NewReader(&node)

	var ra int32
	var rb uint32
	var rc float32
	var rd bool
	s.Require().NoError(r.Int32(name("a"), &ra))
	s.Require().NoError(r.Uint32(name("b"), &rb))
	s.Require().NoError(r.Float32(name("c"), &rc))
	s.Require().NoError(r.Bool(name("d"), &rd))
	s.Equal(int32(400), ra)
	s.Equal(uint32(123456789), rb)
	s.InDelta(float64(float32(123.456789)), float64(rc), 1e-6)
	s.True(rd)
}

func (s *JSONSuite) TestEmptyObjectElision() {
	w := jsonformat.NewWriter()
	s.Require().NoError(w.Object(name("empty"), func(serial.Serializer) error { return nil }))
	one := int32(1)
	s.Require().NoError(w.Int32(name("present"), &one))

	s.False(w.HasMember(name("empty")))
	s.True(w.HasMember(name("present")))

	raw, err := jsonformat.Marshal(w.Root())
	s.Require().NoError(err)
	node, err := jsonformat.Parse(string(raw))
	s.Require().NoError(err)
	r := jsonformat.NewReader(&node)
	s.False(r.HasMember(name("empty")))
}

func (s *JSONSuite) TestIterateOrderMatchesInsertion() {
	w := jsonformat.NewWriter()
	for _, n := range []string{"z", "a", "m"} {
		v := int32(1)
		s.Require().NoError(w.Int32(name(n), &v))
	}
	var order []string
	s.Require().NoError(w.Iterate(func(_ serial.Serializer, n serial.Name) (bool, error) {
		order = append(order, n.String())
		return true, nil
	}))
	s.Equal([]string{"z", "a", "m"}, order)
}

func (s *JSONSuite) TestArrayRoundTrip() {
	w := jsonformat.NewWriter()
	values := serialutil.NewDynamicArray([]int32{1, -2, 3, -4, 5})
	s.Require().NoError(w.Int32Array(name("v"), values))

	raw, err := jsonformat.Marshal(w.Root())
	s.Require().NoError(err)
	node, err := jsonformat.Parse(string(raw))
	s.Require().NoError(err)
	r := jsonformat.NewReader(&node)

	out := serialutil.NewDynamicArray([]int32(nil))
	s.Require().NoError(r.Int32Array(name("v"), out))
	s.Equal([]int32{1, -2, 3, -4, 5}, out.Values())
}

func (s *JSONSuite) TestScalarAsArraySynthesizesOneElement() {
	node, err := jsonformat.Parse(`{"n": 42}`)
	s.Require().NoError(err)
	r := jsonformat.NewReader(&node)

	arr := serialutil.NewDynamicArray([]int32(nil))
	s.Require().NoError(r.Int32Array(name("n"), arr))
	s.Equal([]int32{42}, arr.Values())
}

func (s *JSONSuite) TestArrayAsScalarDoesNotCollapse() {
	node, err := jsonformat.Parse(`{"arr": [1,2,3]}`)
	s.Require().NoError(err)
	r := jsonformat.NewReader(&node)

	got := int32(-1)
	s.Require().NoError(r.Int32(name("arr"), &got))
	s.Equal(int32(-1), got)
}

func (s *JSONSuite) TestInspectTypeInference() {
	node, err := jsonformat.Parse(`{"ints":[1,2,3],"floats":[1,2.5,3],"bools":[true,false],"strs":["a","b"],"empty":[],"obj":{"x":1}}`)
	s.Require().NoError(err)
	r := jsonformat.NewReader(&node)

	typ, inner, found := r.Inspect(name("ints"))
	s.True(found)
	s.Equal(serial.TypeArray, typ)
	s.Equal(serial.TypeInt, inner)

	typ, inner, found = r.Inspect(name("floats"))
	s.True(found)
	s.Equal(serial.TypeArray, typ)
	s.Equal(serial.TypeFloat, inner)

	typ, inner, found = r.Inspect(name("bools"))
	s.True(found)
	s.Equal(serial.TypeBool, inner)

	typ, inner, found = r.Inspect(name("strs"))
	s.True(found)
	s.Equal(serial.TypeString, inner)

	typ, inner, found = r.Inspect(name("empty"))
	s.True(found)
	s.Equal(serial.TypeArray, typ)
	s.Equal(serial.TypeNull, inner)

	typ, _, found = r.Inspect(name("obj"))
	s.True(found)
	s.Equal(serial.TypeObject, typ)
}

func (s *JSONSuite) TestWriteObjectArrayWithNullEntry() {
	w := jsonformat.NewWriter()
	s.Require().NoError(w.WriteObjectArray(name("items"), 3, func(sub serial.Serializer, i int) error {
		if i == 1 {
			return nil
		}
		v := int32(i)
		return sub.Int32(name("idx"), &v)
	}))

	raw, err := jsonformat.Marshal(w.Root())
	s.Require().NoError(err)
	node, err := jsonformat.Parse(string(raw))
	s.Require().NoError(err)
	r := jsonformat.NewReader(&node)

	n, ok := r.ObjectArraySize(name("items"))
	s.Require().True(ok)
	s.Equal(3, n)

	var seen []int32
	s.Require().NoError(r.ReadObjectArray(name("items"), func(sub serial.Serializer, i int) error {
		v := int32(-1)
		s.Require().NoError(sub.Int32(name("idx"), &v))
		seen = append(seen, v)
		return nil
	}))
	s.Equal([]int32{0, -1, 2}, seen)
}

func (s *JSONSuite) TestDeepNesting() {
	w := jsonformat.NewWriter()
	var writeChain func(ws serial.Serializer, depth int) error
	writeChain = func(ws serial.Serializer, depth int) error {
		v := int32(depth)
		if err := ws.Int32(name("aaa"), &v); err != nil {
			return err
		}
		if depth == 1 {
			return nil
		}
		return ws.Object(name("child"), func(inner serial.Serializer) error {
			return writeChain(inner, depth-1)
		})
	}
	s.Require().NoError(writeChain(w, 10))

	raw, err := jsonformat.Marshal(w.Root())
	s.Require().NoError(err)
	node, err := jsonformat.Parse(string(raw))
	s.Require().NoError(err)
	r := jsonformat.NewReader(&node)

	var readChain func(rs serial.Serializer, depth int) error
	readChain = func(rs serial.Serializer, depth int) error {
		var v int32
		s.Require().NoError(rs.Int32(name("aaa"), &v))
		s.Equal(int32(depth), v)
		if depth == 1 {
			return nil
		}
		return rs.Object(name("child"), func(inner serial.Serializer) error {
			return readChain(inner, depth-1)
		})
	}
	s.Require().NoError(readChain(r, 10))
}
