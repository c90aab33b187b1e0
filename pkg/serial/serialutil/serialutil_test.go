package serialutil_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/serial/serialutil"
)

type SerialUtilSuite struct {
	suite.Suite
}

func TestSerialUtilSuite(t *testing.T) {
	suite.Run(t, new(SerialUtilSuite))
}

// All 16 (source, target) pairs across {Int,UInt,Float,Bool} from spec.md §4.B.
func (s *SerialUtilSuite) TestWideningTable() {
	s.Equal(int32(7), serialutil.NumericInt(7).AsInt32())
	s.Equal(uint32(7), serialutil.NumericInt(7).AsUint32())
	s.Equal(float32(7), serialutil.NumericInt(7).AsFloat32())
	s.True(serialutil.NumericInt(7).AsBool())
	s.False(serialutil.NumericInt(0).AsBool())

	s.Equal(int32(7), serialutil.NumericUint(7).AsInt32())
	s.Equal(uint32(7), serialutil.NumericUint(7).AsUint32())
	s.Equal(float32(7), serialutil.NumericUint(7).AsFloat32())
	s.True(serialutil.NumericUint(7).AsBool())
	s.False(serialutil.NumericUint(0).AsBool())

	s.Equal(int32(7), serialutil.NumericFloat(7.9).AsInt32())
	s.Equal(uint32(7), serialutil.NumericFloat(7.9).AsUint32())
	s.Equal(float32(7.9), serialutil.NumericFloat(7.9).AsFloat32())
	s.True(serialutil.NumericFloat(0.5).AsBool())
	s.False(serialutil.NumericFloat(0).AsBool())

	s.Equal(int32(1), serialutil.NumericBool(true).AsInt32())
	s.Equal(int32(0), serialutil.NumericBool(false).AsInt32())
	s.Equal(uint32(1), serialutil.NumericBool(true).AsUint32())
	s.Equal(float32(1), serialutil.NumericBool(true).AsFloat32())
	s.True(serialutil.NumericBool(true).AsBool())
	s.False(serialutil.NumericBool(false).AsBool())
}

func (s *SerialUtilSuite) TestWidenRejectsNonNumericTarget() {
	_, ok := serialutil.Widen(serialutil.NumericInt(1), serial.TypeString)
	s.False(ok)
	_, ok = serialutil.Widen(serialutil.NumericInt(1), serial.TypeObject)
	s.False(ok)
}

func (s *SerialUtilSuite) TestDynamicArrayBulkContract() {
	a := serialutil.NewDynamicArray([]int32{1, 2, 3})
	s.True(a.SupportsBulk())
	s.Equal(3, a.Len())
	s.Equal(int32(2), a.Get(1))
	a.Set(1, 20)
	s.Equal([]int32{1, 20, 3}, a.GetAll())

	a.SetLen(5)
	s.Equal(5, a.Len())
	a.SetAll([]int32{9, 8, 7, 6, 5})
	s.Equal([]int32{9, 8, 7, 6, 5}, a.Values())
}

func (s *SerialUtilSuite) TestDynamicArrayGrowPreservesPrefix() {
	a := serialutil.NewDynamicArray([]int32{1, 2})
	a.SetLen(4)
	s.Equal([]int32{1, 2, 0, 0}, a.Values())
}

func (s *SerialUtilSuite) TestFixedArrayRespectsCapacity() {
	backing := make([]int32, 2, 4)
	loaded := 0
	a := serialutil.NewFixedArray(backing, &loaded)
	s.True(a.SupportsBulk())

	a.SetLen(4)
	s.Equal(4, loaded)
	s.Equal(4, a.Len())

	s.Panics(func() { a.SetLen(5) })
	s.Panics(func() { a.SetAll([]int32{1, 2, 3, 4, 5}) })
}

func (s *SerialUtilSuite) TestCloneValuesIsIndependent() {
	a := serialutil.NewDynamicArray([]int32{1, 2, 3})
	cloned := serialutil.CloneValues(a)
	cloned[0] = 99
	s.Equal(int32(1), a.Get(0))
}

func (s *SerialUtilSuite) TestNameArrayBulk() {
	a := serialutil.NewDynamicArray([]serial.Name{serial.NewName("a"), serial.NewName("b")})
	s.True(a.SupportsBulk())
	s.Equal(2, a.Len())
	s.Equal("b", a.Get(1).String())
}
