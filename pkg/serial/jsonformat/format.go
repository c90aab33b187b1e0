package jsonformat

import "strconv"

func intToString(v int64) string    { return strconv.FormatInt(v, 10) }
func uintToString(v uint64) string  { return strconv.FormatUint(v, 10) }
func floatToString(v float64) string { return strconv.FormatFloat(v, 'g', -1, 32) }
