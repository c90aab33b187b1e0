// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	s.Equal(int32(1), Code(ErrWrongDirection))
	s.Equal(int32(2), Code(ErrArrayOfArray))
	s.Equal(int32(100), Code(ErrCorruptedInput))
	s.Zero(Code(nil))
	s.Zero(Code(errors.New("not a serialError")))
}

func (s *ErrSuite) TestWrappedCodeSurvives() {
	wrapped := errors.Wrap(ErrNameTooLong, "while writing field foo")
	s.Equal(int32(4), Code(wrapped))
	s.True(errors.Is(wrapped, ErrNameTooLong))
}

func (s *ErrSuite) TestIsMatchesByCode() {
	s.True(errors.Is(ErrWrongDirection, ErrWrongDirection))
	s.False(errors.Is(ErrWrongDirection, ErrArrayOfArray))

	wrapped := WithName(ErrArrayTooLarge, "positions")
	s.True(errors.Is(wrapped, ErrArrayTooLarge))
	s.False(errors.Is(wrapped, ErrBodyTooLarge))
}

func (s *ErrSuite) TestIsContractViolation() {
	s.True(IsContractViolation(ErrWrongDirection))
	s.True(IsContractViolation(ErrArrayOfArray))
	s.True(IsContractViolation(ErrNameTooLong))
	s.False(IsContractViolation(ErrCorruptedInput))
	s.False(IsContractViolation(ErrUnknownType))
	s.False(IsContractViolation(nil))
}

func (s *ErrSuite) TestIsRetryableErr() {
	s.False(IsRetryableErr(ErrCorruptedInput))
	s.False(IsRetryableErr(ErrWrongDirection))
	s.False(IsRetryableErr(nil))
}

func (s *ErrSuite) TestCombineNil() {
	s.Nil(Combine())
	s.Nil(Combine(nil, nil))
}

func (s *ErrSuite) TestCombineSingle() {
	combined := Combine(ErrCorruptedInput)
	s.ErrorIs(combined, ErrCorruptedInput)
}

func (s *ErrSuite) TestCombineMultiple() {
	combined := Combine(ErrNameTooLong, nil, ErrArrayTooLarge, ErrCorruptedInput)
	s.Require().NotNil(combined)
	s.True(errors.Is(combined, ErrNameTooLong))
	s.True(errors.Is(combined, ErrArrayTooLarge))
	s.True(errors.Is(combined, ErrCorruptedInput))
	s.False(errors.Is(combined, ErrUnknownType))
}

func (s *ErrSuite) TestWithDetail() {
	base := newSerialError("base message", 999, false, WithDetail("extra detail"))
	s.Equal("base message", base.Error())
	s.Equal("extra detail", base.Detail())
}

func (s *ErrSuite) TestErrorTypeString() {
	s.Equal("contract_error", ContractError.String())
	s.Equal("data_error", DataError.String())
}

func (s *ErrSuite) TestMustNoError() {
	s.NotPanics(func() { MustNoError(nil) })
	s.Panics(func() { MustNoError(ErrCorruptedInput) })
}

func TestErrSuite(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
