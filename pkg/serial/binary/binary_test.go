package binary_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/serial/binary"
	"github.com/lk2023060901/gosave/pkg/serial/serialutil"
	"github.com/lk2023060901/gosave/pkg/util/merr"
)

func name(s string) serial.Name { return serial.NewName(s) }

type BinarySuite struct {
	suite.Suite
}

func TestBinarySuite(t *testing.T) {
	suite.Run(t, new(BinarySuite))
}

// Scenario 1 (spec.md §8): {a:400, b:123456789u, c:123.456789f, d:true}.
func (s *BinarySuite) TestScalarRoundTrip() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	a, b, cc, d := int32(400), uint32(123456789), float32(123.456789), true
	s.Require().NoError(w.Int32(name("a"), &a))
	s.Require().NoError(w.Uint32(name("b"), &b))
	s.Require().NoError(w.Float32(name("c"), &cc))
	s.Require().NoError(w.Bool(name("d"), &d))
	w.Finish()

	r := binary.NewReader(c)
	var ra, rc int32
	var rbu uint32
	var rcf float32
	var rd bool
	s.Require().NoError(r.Int32(name("a"), &ra))
	s.Require().NoError(r.Uint32(name("b"), &rbu))
	s.Require().NoError(r.Float32(name("c"), &rcf))
	s.Require().NoError(r.Bool(name("d"), &rd))
	_ = rc
	s.Equal(int32(400), ra)
	s.Equal(uint32(123456789), rbu)
	s.InDelta(float64(float32(123.456789)), float64(rcf), 1e-6)
	s.True(rd)
}

// Scenario 2: 10-deep nested object chain.
func (s *BinarySuite) TestDeepNesting() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)

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
	w.Finish()

	r := binary.NewReader(c)
	var readChain func(rs serial.Serializer, depth int) error
	readChain = func(rs serial.Serializer, depth int) error {
		var v int32
		s.Require().NoError(rs.Int32(name("aaa"), &v))
		s.Equal(int32(depth), v)
		if depth == 1 {
			s.False(rs.HasMember(name("child")))
			return nil
		}
		s.True(rs.HasMember(name("child")))
		return rs.Object(name("child"), func(inner serial.Serializer) error {
			return readChain(inner, depth-1)
		})
	}
	s.Require().NoError(readChain(r, 10))
}

// Scenario 3: 1453-element signed-int array.
func (s *BinarySuite) TestLargeIntArrayRoundTrip() {
	const n = 1453
	values := make([]int32, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			values[i] = int32(i+1) * 1
		} else {
			values[i] = int32(i+1) * -1
		}
	}

	c := binary.NewContainer()
	w := binary.NewWriter(c)
	arr := serialutil.NewDynamicArray(values)
	s.Require().NoError(w.Int32Array(name("v"), arr))
	w.Finish()

	r := binary.NewReader(c)
	out := serialutil.NewDynamicArray([]int32(nil))
	s.Require().NoError(r.Int32Array(name("v"), out))
	s.Equal(values, out.Values())
}

// Scenario 4: override within one object scope.
func (s *BinarySuite) TestOverrideLastWriteWins() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)

	i1 := int32(-32)
	s.Require().NoError(w.Int32(name("i"), &i1))
	sv := []byte("test")
	s.Require().NoError(w.Bytes(name("i"), &sv))
	bv := true
	s.Require().NoError(w.Bool(name("i"), &bv))
	w.Finish()

	r := binary.NewReader(c)
	s.True(r.HasMember(name("i")))

	var got bool
	s.Require().NoError(r.Bool(name("i"), &got))
	s.True(got)

	count := 0
	s.Require().NoError(r.Iterate(func(_ serial.Serializer, n serial.Name) (bool, error) {
		if n.String() == "i" {
			count++
		}
		return true, nil
	}))
	s.Equal(1, count)
}

// Override preserves relative order of distinct names.
func (s *BinarySuite) TestOverridePreservesOtherNameOrder() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)

	one, two, three := int32(1), int32(2), int32(3)
	s.Require().NoError(w.Int32(name("a"), &one))
	s.Require().NoError(w.Int32(name("b"), &two))
	s.Require().NoError(w.Int32(name("a"), &three))
	four := int32(4)
	s.Require().NoError(w.Int32(name("c"), &four))
	w.Finish()

	r := binary.NewReader(c)
	var order []string
	s.Require().NoError(r.Iterate(func(_ serial.Serializer, n serial.Name) (bool, error) {
		order = append(order, n.String())
		return true, nil
	}))
	s.Equal([]string{"b", "a", "c"}, order)

	var a int32
	s.Require().NoError(r.Int32(name("a"), &a))
	s.Equal(int32(3), a)
}

// Scenario 5: sub-container memory-chunk escape.
func (s *BinarySuite) TestSubContainerEmbedding() {
	inner := binary.NewContainer()
	iw := binary.NewWriter(inner)
	f := float32(-30.42)
	s.Require().NoError(iw.Float32(name("f"), &f))
	sv := []byte("abc")
	s.Require().NoError(iw.Bytes(name("s"), &sv))
	iw.Finish()
	innerBytes := binary.Encode(inner)

	outer := binary.NewContainer()
	ow := binary.NewWriter(outer)
	s.Require().NoError(ow.WriteSubContainer(name("b"), innerBytes))
	ow.Finish()

	r := binary.NewReader(outer)
	blob, ok, err := r.ReadSubContainer(name("b"))
	s.Require().NoError(err)
	s.Require().True(ok)

	view, err := binary.Decode(blob)
	s.Require().NoError(err)
	ir := binary.NewViewReader(view)

	var gotF float32
	var gotS []byte
	s.Require().NoError(ir.Float32(name("f"), &gotF))
	s.Require().NoError(ir.Bytes(name("s"), &gotS))
	s.InDelta(float64(-30.42), float64(gotF), 1e-6)
	s.Equal("abc", string(gotS))
}

func (s *BinarySuite) TestEmptyObjectElision() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	s.Require().NoError(w.Object(name("empty"), func(serial.Serializer) error { return nil }))
	one := int32(1)
	s.Require().NoError(w.Int32(name("present"), &one))
	w.Finish()

	r := binary.NewReader(c)
	s.False(r.HasMember(name("empty")))
	s.True(r.HasMember(name("present")))
}

func (s *BinarySuite) TestWidening() {
	type pair struct {
		write func(w *binary.Writer) error
		check func(r *binary.Reader)
	}
	cases := []pair{
		{
			write: func(w *binary.Writer) error {
				v := int32(7)
				return w.Int32(name("x"), &v)
			},
			check: func(r *binary.Reader) {
				var f float32
				s.Require().NoError(r.Float32(name("x"), &f))
				s.Equal(float32(7), f)
				var b bool
				s.Require().NoError(r.Bool(name("x"), &b))
				s.True(b)
			},
		},
		{
			write: func(w *binary.Writer) error {
				v := float32(0)
				return w.Float32(name("x"), &v)
			},
			check: func(r *binary.Reader) {
				var b bool
				s.Require().NoError(r.Bool(name("x"), &b))
				s.False(b)
			},
		},
		{
			write: func(w *binary.Writer) error {
				v := true
				return w.Bool(name("x"), &v)
			},
			check: func(r *binary.Reader) {
				var i int32
				s.Require().NoError(r.Int32(name("x"), &i))
				s.Equal(int32(1), i)
				var u uint32
				s.Require().NoError(r.Uint32(name("x"), &u))
				s.Equal(uint32(1), u)
			},
		},
	}
	for _, tc := range cases {
		c := binary.NewContainer()
		w := binary.NewWriter(c)
		s.Require().NoError(tc.write(w))
		w.Finish()
		tc.check(binary.NewReader(c))
	}
}

func (s *BinarySuite) TestScalarAsArraySynthesizesOneElement() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	v := int32(42)
	s.Require().NoError(w.Int32(name("n"), &v))
	w.Finish()

	r := binary.NewReader(c)
	arr := serialutil.NewDynamicArray([]int32(nil))
	s.Require().NoError(r.Int32Array(name("n"), arr))
	s.Equal([]int32{42}, arr.Values())
}

func (s *BinarySuite) TestArrayAsScalarDoesNotCollapse() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	values := serialutil.NewDynamicArray([]int32{1, 2, 3})
	s.Require().NoError(w.Int32Array(name("arr"), values))
	w.Finish()

	r := binary.NewReader(c)
	got := int32(-1)
	s.Require().NoError(r.Int32(name("arr"), &got))
	s.Equal(int32(-1), got, "slot must be left untouched when reading an array as a scalar")
}

func (s *BinarySuite) TestMissingFieldLeavesSlotUntouched() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	w.Finish()

	r := binary.NewReader(c)
	v := int32(99)
	s.Require().NoError(r.Int32(name("absent"), &v))
	s.Equal(int32(99), v)
	s.False(r.HasMember(name("absent")))
}

func (s *BinarySuite) TestObjectArrayWithNullEntry() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	s.Require().NoError(w.WriteObjectArray(name("items"), 3, func(s2 serial.Serializer, i int) error {
		if i == 1 {
			return nil // null entry
		}
		v := int32(i)
		return s2.Int32(name("idx"), &v)
	}))
	w.Finish()

	r := binary.NewReader(c)
	n, ok := r.ObjectArraySize(name("items"))
	s.Require().True(ok)
	s.Equal(3, n)

	var seen []int32
	var hadMember []bool
	s.Require().NoError(r.ReadObjectArray(name("items"), func(s2 serial.Serializer, i int) error {
		hadMember = append(hadMember, s2.HasMember(name("idx")))
		var v int32 = -1
		s.Require().NoError(s2.Int32(name("idx"), &v))
		seen = append(seen, v)
		return nil
	}))
	s.Equal([]int32{0, -1, 2}, seen)
	s.Equal([]bool{true, false, true}, hadMember)
}

func (s *BinarySuite) TestWrongDirectionErrors() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	w.Finish()
	r := binary.NewReader(c)

	err := r.WriteObjectArray(name("x"), 0, func(serial.Serializer, int) error { return nil })
	s.Require().Error(err)
	s.True(merr.IsContractViolation(err))

	err = w.ReadObjectArray(name("x"), func(serial.Serializer, int) error { return nil })
	s.Require().Error(err)
	s.True(merr.IsContractViolation(err))
}

func (s *BinarySuite) TestNameTooLongIsContractViolation() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	long := make([]byte, 8192)
	for i := range long {
		long[i] = 'x'
	}
	v := int32(1)
	err := w.Int32(serial.NewName(string(long)), &v)
	s.Require().Error(err)
	s.True(merr.Code(err) == merr.Code(merr.ErrNameTooLong))
}

func (s *BinarySuite) TestBulkContractViolationDetected() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	err := w.Int32Array(name("arr"), &lyingBulkArray{})
	s.Require().Error(err)
	s.True(merr.IsContractViolation(err))
}

// lyingBulkArray claims SupportsBulk but GetAll disagrees with Len.
type lyingBulkArray struct{}

func (lyingBulkArray) Len() int            { return 3 }
func (lyingBulkArray) Get(i int) int32     { return 0 }
func (*lyingBulkArray) SetLen(n int)       {}
func (*lyingBulkArray) Set(i int, v int32) {}
func (lyingBulkArray) SupportsBulk() bool  { return true }
func (lyingBulkArray) GetAll() []int32     { return nil }
func (*lyingBulkArray) SetAll(v []int32)   {}

func (s *BinarySuite) TestCorruptedInputRefused() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	v := int32(1)
	s.Require().NoError(w.Int32(name("a"), &v))
	w.Finish()

	encoded := binary.Encode(c)
	truncated := encoded[:len(encoded)-2]
	_, err := binary.Decode(truncated)
	s.Require().Error(err)
	s.True(merr.Code(err) == merr.Code(merr.ErrCorruptedInput))
}

func (s *BinarySuite) TestEncodeDecodeRoundTrip() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	a := int32(10)
	s.Require().NoError(w.Int32(name("a"), &a))
	s.Require().NoError(w.Object(name("child"), func(sub serial.Serializer) error {
		bv := true
		return sub.Bool(name("flag"), &bv)
	}))
	w.Finish()

	encoded := binary.Encode(c)
	view, err := binary.Decode(encoded)
	s.Require().NoError(err)
	r := binary.NewViewReader(view)

	var got int32
	s.Require().NoError(r.Int32(name("a"), &got))
	s.Equal(int32(10), got)

	var flag bool
	s.Require().NoError(r.Object(name("child"), func(sub serial.Serializer) error {
		return sub.Bool(name("flag"), &flag)
	}))
	s.True(flag)
}

// TestConcurrentReadsAreSafe exercises the "readers are concurrency-safe by
// construction" property from spec.md directly: many goroutines read
// distinct elements out of the same *Container concurrently, with an
// errgroup.Group (instead of a hand-rolled done channel) collecting the
// first mismatch, if any, across the whole fan-out.
func (s *BinarySuite) TestConcurrentReadsAreSafe() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	for i := 0; i < 50; i++ {
		v := int32(i)
		s.Require().NoError(w.Int32(name(itoa(i)), &v))
	}
	w.Finish()

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		i := i
		g.Go(func() error {
			r := binary.NewReader(c)
			var v int32
			if err := r.Int32(name(itoa(i)), &v); err != nil {
				return err
			}
			if v != int32(i) {
				return fmt.Errorf("element %d: got %d, want %d", i, v, i)
			}
			return nil
		})
	}
	s.NoError(g.Wait())
}

func itoa(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var buf []byte
	for i > 0 {
		buf = append([]byte{digits[i%10]}, buf...)
		i /= 10
	}
	return "n" + string(buf)
}
