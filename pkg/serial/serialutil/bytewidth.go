package serialutil

import "github.com/lk2023060901/gosave/pkg/serial"

// Int8, Uint8, Int16 and Uint16 round-trip a narrower integer through a
// temporary int32 slot, since the wire format only has four primitive
// types (spec.md §4.G). The same call works for both directions: a writer
// reads tmp from *v before the call and ignores the post-call value; a
// reader overwrites tmp and the result is copied back into *v.

func Int8(s serial.Serializer, name serial.Name, v *int8) error {
	tmp := int32(*v)
	if err := s.Int32(name, &tmp); err != nil {
		return err
	}
	*v = int8(tmp)
	return nil
}

func Uint8(s serial.Serializer, name serial.Name, v *uint8) error {
	tmp := uint32(*v)
	if err := s.Uint32(name, &tmp); err != nil {
		return err
	}
	*v = uint8(tmp)
	return nil
}

func Int16(s serial.Serializer, name serial.Name, v *int16) error {
	tmp := int32(*v)
	if err := s.Int32(name, &tmp); err != nil {
		return err
	}
	*v = int16(tmp)
	return nil
}

func Uint16(s serial.Serializer, name serial.Name, v *uint16) error {
	tmp := uint32(*v)
	if err := s.Uint32(name, &tmp); err != nil {
		return err
	}
	*v = uint16(tmp)
	return nil
}
