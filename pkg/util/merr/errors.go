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
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

type ErrorType int32

const (
	// ContractError marks a programmer-contract violation: the caller used the
	// Serializer interface in a way the contract forbids (wrong direction,
	// array-of-array, a bulk adapter that lied about SupportsBulk, a name or
	// array count over the binary format's limits).
	ContractError ErrorType = 0
	// DataError marks a problem with the bytes being read rather than with how
	// the contract was used (a corrupted or truncated binary stream).
	DataError ErrorType = 1
)

var errorTypeName = map[ErrorType]string{
	ContractError: "contract_error",
	DataError:     "data_error",
}

func (t ErrorType) String() string {
	return errorTypeName[t]
}

// Define leaf errors here.
// Name: Err + short description of the violated contract rule.
var (
	// Direction errors: a writer-only or reader-only operation called on the
	// wrong concrete Serializer.
	ErrWrongDirection = newSerialError("operation is only valid for the other direction (reader/writer)", 1, false, WithErrorType(ContractError))

	// Shape errors.
	ErrArrayOfArray         = newSerialError("cannot serialize an array of arrays; nest an object per element instead", 2, false, WithErrorType(ContractError))
	ErrBulkContractViolated = newSerialError("array adapter reported SupportsBulk but GetAll/SetAll did not agree with element access", 3, false, WithErrorType(ContractError))

	// Binary format limits (spec.md §6/§7: over-limit encoding is a contract violation, not a data error).
	ErrNameTooLong     = newSerialError("name exceeds the binary format's 8191-byte limit", 4, false, WithErrorType(ContractError))
	ErrTooManyStrings  = newSerialError("container already holds the maximum 8192 distinct strings", 5, false, WithErrorType(ContractError))
	ErrArrayTooLarge   = newSerialError("array element count exceeds the binary format's 536,870,911 limit", 6, false, WithErrorType(ContractError))
	ErrBodyTooLarge    = newSerialError("element body size exceeds the binary format's 4 GiB limit", 7, false, WithErrorType(ContractError))
	ErrNameIndexTooBig = newSerialError("name-table index exceeds the 13-bit header field", 8, false, WithErrorType(ContractError))

	// Corrupted input: the reader bounds-checked a header against the bytes
	// actually available and found they disagree.
	ErrCorruptedInput = newSerialError("binary stream is truncated or a header's size disagrees with the remaining bytes", 100, false, WithErrorType(DataError))
	ErrUnknownType    = newSerialError("binary stream contains an element header with an unrecognized type tag", 101, false, WithErrorType(DataError))

	// I/O wrapper errors (outside the core codec, see internal/ioutil).
	ErrUnrecoverableIO = newSerialError("unrecoverable I/O error, retrying will not help", 200, false, WithErrorType(DataError))
)

type errorOption func(err *serialError)

func WithDetail(detail string) errorOption {
	return func(err *serialError) {
		err.detail = detail
	}
}

func WithErrorType(etype ErrorType) errorOption {
	return func(err *serialError) {
		err.errType = etype
	}
}

type serialError struct {
	msg       string
	detail    string
	retriable bool
	errCode   int32
	errType   ErrorType
}

func newSerialError(msg string, code int32, retriable bool, options ...errorOption) serialError {
	err := serialError{
		msg:       msg,
		detail:    msg,
		retriable: retriable,
		errCode:   code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e serialError) Code() int32 {
	return e.errCode
}

func (e serialError) Type() ErrorType {
	return e.errType
}

func (e serialError) Error() string {
	return e.msg
}

func (e serialError) Detail() string {
	return e.detail
}

func (e serialError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(serialError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	if len(e.errs) == 2 {
		return e.errs[1]
	}
	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

// Combine folds zero or more errors (ignoring nils) into a single error.
func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}

// Code returns the error code for a known serialError, or 0 otherwise.
func Code(err error) int32 {
	if err == nil {
		return 0
	}
	if se, ok := errors.Cause(err).(serialError); ok {
		return se.Code()
	}
	return 0
}

// IsRetryableErr reports whether err carries the retriable flag.
func IsRetryableErr(err error) bool {
	if se, ok := errors.Cause(err).(serialError); ok {
		return se.retriable
	}
	return false
}

// IsContractViolation reports whether err is a programmer-contract violation,
// as opposed to a problem with the bytes being decoded.
func IsContractViolation(err error) bool {
	if se, ok := errors.Cause(err).(serialError); ok {
		return se.errType == ContractError
	}
	return false
}
