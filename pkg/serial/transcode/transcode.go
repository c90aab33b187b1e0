// Package transcode walks a decoded source container (binary or JSON) and
// re-drives the Serializer contract on a destination writer, generalizing
// original_source's one-directional binary_to_other into a bidirectional
// transcoder: FromBinary and FromJSON both accept any destination that
// implements serial.Serializer, so binary->JSON, JSON->binary, and
// same-format round trips all share one code path per direction.
package transcode

import (
	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/serial/binary"
	"github.com/lk2023060901/gosave/pkg/serial/jsonformat"
	"github.com/lk2023060901/gosave/pkg/serial/serialutil"
)

// FromBinary walks every field of src and writes it to dst, descending
// into nested objects and object arrays. dst need not itself be a
// *binary.Writer; transcoding into a jsonformat.Writer is how a binary
// container renders back out as JSON.
func FromBinary(src *binary.Reader, dst serial.Serializer) error {
	return src.Iterate(func(_ serial.Serializer, name serial.Name) (bool, error) {
		if err := transcodeBinaryField(src, dst, name); err != nil {
			return false, err
		}
		return true, nil
	})
}

func transcodeBinaryField(src *binary.Reader, dst serial.Serializer, name serial.Name) error {
	fk, found, err := src.Inspect(name)
	if err != nil || !found {
		return err
	}
	switch fk.Type {
	case serial.TypeInt:
		var v int32
		if err := src.Int32(name, &v); err != nil {
			return err
		}
		return dst.Int32(name, &v)
	case serial.TypeUint:
		var v uint32
		if err := src.Uint32(name, &v); err != nil {
			return err
		}
		return dst.Uint32(name, &v)
	case serial.TypeFloat:
		var v float32
		if err := src.Float32(name, &v); err != nil {
			return err
		}
		return dst.Float32(name, &v)
	case serial.TypeBool:
		var v bool
		if err := src.Bool(name, &v); err != nil {
			return err
		}
		return dst.Bool(name, &v)
	case serial.TypeString:
		var v []byte
		if err := src.Bytes(name, &v); err != nil {
			return err
		}
		return dst.Bytes(name, &v)
	case serial.TypeObject:
		return src.Object(name, func(s serial.Serializer) error {
			sub, ok := s.(*binary.Reader)
			if !ok {
				return nil
			}
			return dst.Object(name, func(d serial.Serializer) error {
				return FromBinary(sub, d)
			})
		})
	case serial.TypeArray:
		return transcodeBinaryArray(src, dst, name, fk.InnerType)
	default:
		return nil
	}
}

func transcodeBinaryArray(src *binary.Reader, dst serial.Serializer, name serial.Name, inner serial.ValueType) error {
	switch inner {
	case serial.TypeObject:
		n, ok := src.ObjectArraySize(name)
		if !ok {
			return nil
		}
		entries := make([]*binary.Reader, 0, n)
		if err := src.ReadObjectArray(name, func(s serial.Serializer, i int) error {
			sub, ok := s.(*binary.Reader)
			if !ok {
				return nil
			}
			entries = append(entries, sub)
			return nil
		}); err != nil {
			return err
		}
		return dst.WriteObjectArray(name, len(entries), func(d serial.Serializer, i int) error {
			return FromBinary(entries[i], d)
		})
	case serial.TypeNull:
		// Memory-chunk escape: only a binary.Writer can host an opaque
		// sub-container verbatim. Transcoding into jsonformat has no
		// representation for it, so it is dropped rather than forced.
		blob, ok, err := src.ReadSubContainer(name)
		if err != nil || !ok {
			return err
		}
		bw, ok := dst.(*binary.Writer)
		if !ok {
			return nil
		}
		return bw.WriteSubContainer(name, blob)
	case serial.TypeInt:
		arr := serialutil.NewDynamicArray([]int32(nil))
		if err := src.Int32Array(name, arr); err != nil {
			return err
		}
		return dst.Int32Array(name, arr)
	case serial.TypeUint:
		arr := serialutil.NewDynamicArray([]uint32(nil))
		if err := src.Uint32Array(name, arr); err != nil {
			return err
		}
		return dst.Uint32Array(name, arr)
	case serial.TypeFloat:
		arr := serialutil.NewDynamicArray([]float32(nil))
		if err := src.Float32Array(name, arr); err != nil {
			return err
		}
		return dst.Float32Array(name, arr)
	case serial.TypeBool:
		arr := serialutil.NewDynamicArray([]bool(nil))
		if err := src.BoolArray(name, arr); err != nil {
			return err
		}
		return dst.BoolArray(name, arr)
	case serial.TypeString:
		arr := serialutil.NewDynamicArray([]serial.Name(nil))
		if err := src.NameArray(name, arr); err != nil {
			return err
		}
		return dst.NameArray(name, arr)
	default:
		return nil
	}
}

// FromJSON walks every field of src and writes it to dst. Numeric fields
// are classified Int vs Float by whether the JSON number round-trips
// through an int64 (spec.md §4.F / SPEC_FULL.md §4.D): "12" transcodes as
// an Int field, "12.5" as a Float field.
func FromJSON(src *jsonformat.Reader, dst serial.Serializer) error {
	return src.Iterate(func(_ serial.Serializer, name serial.Name) (bool, error) {
		if err := transcodeJSONField(src, dst, name); err != nil {
			return false, err
		}
		return true, nil
	})
}

func transcodeJSONField(src *jsonformat.Reader, dst serial.Serializer, name serial.Name) error {
	typ, inner, found := src.Inspect(name)
	if !found {
		return nil
	}
	switch typ {
	case serial.TypeInt:
		var v int32
		if err := src.Int32(name, &v); err != nil {
			return err
		}
		return dst.Int32(name, &v)
	case serial.TypeFloat:
		var v float32
		if err := src.Float32(name, &v); err != nil {
			return err
		}
		return dst.Float32(name, &v)
	case serial.TypeBool:
		var v bool
		if err := src.Bool(name, &v); err != nil {
			return err
		}
		return dst.Bool(name, &v)
	case serial.TypeString:
		var v []byte
		if err := src.Bytes(name, &v); err != nil {
			return err
		}
		return dst.Bytes(name, &v)
	case serial.TypeObject:
		return src.Object(name, func(s serial.Serializer) error {
			sub, ok := s.(*jsonformat.Reader)
			if !ok {
				return nil
			}
			return dst.Object(name, func(d serial.Serializer) error {
				return FromJSON(sub, d)
			})
		})
	case serial.TypeArray:
		return transcodeJSONArray(src, dst, name, inner)
	default:
		return nil
	}
}

func transcodeJSONArray(src *jsonformat.Reader, dst serial.Serializer, name serial.Name, inner serial.ValueType) error {
	switch inner {
	case serial.TypeObject:
		n, ok := src.ObjectArraySize(name)
		if !ok {
			return nil
		}
		entries := make([]*jsonformat.Reader, 0, n)
		if err := src.ReadObjectArray(name, func(s serial.Serializer, i int) error {
			sub, ok := s.(*jsonformat.Reader)
			if !ok {
				return nil
			}
			entries = append(entries, sub)
			return nil
		}); err != nil {
			return err
		}
		return dst.WriteObjectArray(name, len(entries), func(d serial.Serializer, i int) error {
			return FromJSON(entries[i], d)
		})
	case serial.TypeInt:
		arr := serialutil.NewDynamicArray([]int32(nil))
		if err := src.Int32Array(name, arr); err != nil {
			return err
		}
		return dst.Int32Array(name, arr)
	case serial.TypeFloat:
		arr := serialutil.NewDynamicArray([]float32(nil))
		if err := src.Float32Array(name, arr); err != nil {
			return err
		}
		return dst.Float32Array(name, arr)
	case serial.TypeBool:
		arr := serialutil.NewDynamicArray([]bool(nil))
		if err := src.BoolArray(name, arr); err != nil {
			return err
		}
		return dst.BoolArray(name, arr)
	case serial.TypeString:
		arr := serialutil.NewDynamicArray([]serial.Name(nil))
		if err := src.NameArray(name, arr); err != nil {
			return err
		}
		return dst.NameArray(name, arr)
	default:
		// Empty array with no inferrable inner type: nothing to widen to,
		// write nothing rather than guess.
		return nil
	}
}
