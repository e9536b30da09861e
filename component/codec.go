package component

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// unsupportedText is what Encode produces for a kind it cannot render.
const unsupportedText = "<Data type not supported>"

// floatPrecision matches fixed notation with the default six decimals.
const floatPrecision = 6

// Encode renders the value v, interpreted as kind, as configuration text.
// Booleans render as "true"/"false", integers as decimal, floats in fixed
// notation with six decimals, and strings verbatim. A nil or empty string
// renders as "".
func Encode(kind Kind, v reflect.Value) string {
	if !v.IsValid() || KindOf(v.Type()) != kind {
		return unsupportedText
	}

	switch kind {
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(v.Int(), 10)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return strconv.FormatUint(v.Uint(), 10)
	case KindFloat32:
		return strconv.FormatFloat(v.Float(), 'f', floatPrecision, 32)
	case KindFloat64:
		return strconv.FormatFloat(v.Float(), 'f', floatPrecision, 64)
	case KindString:
		if v.IsNil() {
			return ""
		}
		return v.Elem().String()
	case KindConstString:
		return v.String()
	default:
		return unsupportedText
	}
}

// EncodeTo renders v into buf, truncating the text to cap(buf) bytes.
func EncodeTo(buf []byte, kind Kind, v reflect.Value) []byte {
	text := Encode(kind, v)
	if len(text) > cap(buf) {
		text = text[:cap(buf)]
	}
	return append(buf[:0], text...)
}

// Decode parses text into the settable value dst, interpreted as kind.
//
// Booleans accept exactly "true"/"1" and "false"/"0"; other text fails and
// leaves dst untouched. Numbers parse permissively: the longest numeric
// prefix is used, text without one yields 0, and integers wrap to the
// field width. Empty text stores the absent string; any other text stores an
// independent copy.
func Decode(dst reflect.Value, text string, kind Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("cannot decode kind %d; %w", kind, ErrInvalidFieldType)
	}
	if !dst.IsValid() || !dst.CanSet() || KindOf(dst.Type()) != kind {
		return fmt.Errorf("destination does not hold a settable %s; %w", kind, ErrInvalidFieldType)
	}

	switch kind {
	case KindBool:
		switch text {
		case "true", "1":
			dst.SetBool(true)
		case "false", "0":
			dst.SetBool(false)
		default:
			return fmt.Errorf("%q is not a boolean; %w", text, ErrInvalidValue)
		}
	case KindInt8, KindInt16, KindInt32, KindInt64:
		dst.SetInt(parseIntPrefix(text))
	case KindUint8, KindUint16, KindUint32, KindUint64:
		dst.SetUint(parseUintPrefix(text))
	case KindFloat32, KindFloat64:
		dst.SetFloat(parseFloatPrefix(text))
	case KindString:
		if text == "" {
			dst.SetZero()
			return nil
		}
		p := reflect.New(dst.Type().Elem())
		p.Elem().SetString(strings.Clone(text))
		dst.Set(p)
	case KindConstString:
		dst.SetString(strings.Clone(text))
	}

	return nil
}

// numericPrefix returns the leading [+-]digits run of s after whitespace.
func numericPrefix(s string) (prefix string, negative bool) {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		negative = s[end] == '-'
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return "", false
	}
	return s[:end], negative
}

// parseIntPrefix reads the leading decimal numeral of s; out of range values clamp.
func parseIntPrefix(s string) int64 {
	prefix, _ := numericPrefix(s)
	if prefix == "" {
		return 0
	}
	n, _ := strconv.ParseInt(prefix, 10, 64)
	return n
}

// parseUintPrefix keeps the full unsigned range; negative input wraps.
func parseUintPrefix(s string) uint64 {
	prefix, negative := numericPrefix(s)
	if prefix == "" {
		return 0
	}
	if negative {
		n, _ := strconv.ParseInt(prefix, 10, 64)
		return uint64(n)
	}
	n, _ := strconv.ParseUint(strings.TrimPrefix(prefix, "+"), 10, 64)
	return n
}

// parseFloatPrefix reads the longest float prefix of s, else 0.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	mantissa := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
	}
	if end == mantissa || s[mantissa:end] == "." {
		return 0
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		digits := exp
		for exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
			exp++
		}
		if exp > digits {
			end = exp
		}
	}

	f, _ := strconv.ParseFloat(s[:end], 64)
	return f
}
