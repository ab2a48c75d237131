package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// DomainRequest prefixes request hashes so they never collide with hashes
// of other payloads.
const DomainRequest = "reactorcalc/request/v1"

// MarshalCanonical produces deterministic JSON:
//   - object keys sorted
//   - no HTML escaping
//   - strings NFC normalized
//   - floats in the shortest form that round-trips
//   - null, NaN and infinities rejected
func MarshalCanonical(v any) ([]byte, error) {
	return marshalCanonical(v, -1)
}

// MarshalCanonicalRounded is MarshalCanonical with floats rounded to the
// given number of significant digits. Snapshots use it so results compare
// equal across platforms whose math libraries differ in the last ulp.
func MarshalCanonicalRounded(v any, digits int) ([]byte, error) {
	if digits <= 0 {
		return nil, fmt.Errorf("significant digits must be positive, got %d", digits)
	}
	return marshalCanonical(v, digits)
}

func marshalCanonical(v any, digits int) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case bool:
		return []byte(strconv.FormatBool(val)), nil
	case int:
		return []byte(strconv.Itoa(val)), nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	case float64:
		return marshalCanonicalFloat(val, digits)
	case []any:
		return marshalCanonicalArray(val, digits)
	case map[string]any:
		return marshalCanonicalObject(val, digits)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

func marshalCanonicalFloat(f float64, digits int) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float is forbidden in canonical JSON: %v", f)
	}
	if f == 0 {
		// Collapse -0.
		return []byte("0"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', digits, 64)), nil
}

// marshalCanonicalString NFC-normalizes s and encodes it without HTML
// escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	// Encoder appends a newline.
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func marshalCanonicalArray(arr []any, digits int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalCanonical(elem, digits)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any, digits int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range slices.Sorted(maps.Keys(obj)) {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')

		vb, err := marshalCanonical(obj[k], digits)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RequestHash returns a content-addressed identity for r: the SHA-256 of
// its canonical JSON, domain separated. Requests that differ only in
// unset fields or key order hash equal.
func RequestHash(r *Request) (string, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("RequestHash: failed to marshal: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return "", fmt.Errorf("RequestHash: failed to decode: %w", err)
	}
	canonical, err := MarshalCanonical(tree)
	if err != nil {
		return "", fmt.Errorf("RequestHash: failed to canonicalize: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainRequest))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
