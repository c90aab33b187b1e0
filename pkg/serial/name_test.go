package serial_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/serial/binary"
	"github.com/lk2023060901/gosave/pkg/util/merr"
)

type NameSuite struct {
	suite.Suite
}

func TestNameSuite(t *testing.T) {
	suite.Run(t, new(NameSuite))
}

func (s *NameSuite) TestEqualityIsLengthThenBytes() {
	a := serial.NewName("abc")
	b := serial.NewName("abc")
	c := serial.NewName("abcd")
	d := serial.NewName("abd")
	s.True(a.Equal(b))
	s.False(a.Equal(c))
	s.False(a.Equal(d))
}

func (s *NameSuite) TestStaticNameDoesNotCopy() {
	backing := []byte("field")
	n := serial.StaticName(string(backing))
	s.True(n.Static)
	s.Equal("field", n.String())
}

func (s *NameSuite) TestNewNameCopies() {
	backing := []byte("field")
	n := serial.NewName(string(backing))
	backing[0] = 'X'
	s.Equal("field", n.String())
}

func (s *NameSuite) TestIsEmpty() {
	s.True(serial.NewName("").IsEmpty())
	s.False(serial.NewName("a").IsEmpty())
}

func (s *NameSuite) TestValueTypeString() {
	s.Equal("int", serial.TypeInt.String())
	s.Equal("object", serial.TypeObject.String())
	s.Equal("null", serial.TypeNull.String())
	s.True(serial.TypeInt.IsNumeric())
	s.True(serial.TypeUint.IsNumeric())
	s.True(serial.TypeFloat.IsNumeric())
	s.False(serial.TypeBool.IsNumeric())
	s.False(serial.TypeString.IsNumeric())
}

func (s *NameSuite) TestWriteOnlyWrappersRejectReader() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	w.Finish()
	r := binary.NewReader(c)

	err := serial.WriteInt32(r, serial.NewName("x"), 1)
	s.Require().Error(err)
	s.True(merr.IsContractViolation(err))

	err = serial.WriteBytes(r, serial.NewName("x"), []byte("y"))
	s.Require().Error(err)
	s.True(merr.IsContractViolation(err))
}

func (s *NameSuite) TestWriteOnlyWrappersWorkOnWriter() {
	c := binary.NewContainer()
	w := binary.NewWriter(c)
	s.Require().NoError(serial.WriteInt32(w, serial.NewName("x"), 42))
	s.Require().NoError(serial.WriteBool(w, serial.NewName("y"), true))
	w.Finish()

	r := binary.NewReader(c)
	var x int32
	var y bool
	s.Require().NoError(r.Int32(serial.NewName("x"), &x))
	s.Require().NoError(r.Bool(serial.NewName("y"), &y))
	s.Equal(int32(42), x)
	s.True(y)
}
