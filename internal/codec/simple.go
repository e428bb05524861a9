package codec

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/vknys/ingot/pkg/ingot"
)

// textCodec passes strings through, truncating subvalues that exceed the
// field's configured maximum length. Truncation is never silent.
type textCodec struct{ reg *Registry }

func (c *textCodec) Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) ingot.FieldValue {
	values := c.reg.split(raw, def, row, rep)

	out := ingot.TextValue{ValueState: ingot.ValueState{Raw: values}}
	for _, v := range values {
		// Lengths count characters, not bytes; truncation must never
		// split a multibyte character.
		if length := utf8.RuneCountInString(v); def.MaxLength > 0 && length > def.MaxLength {
			rep.AddWarning(row, def.Name,
				"value is longer (%d characters) than allowed for that field (%d characters) and will be truncated",
				length, def.MaxLength)
			v = string([]rune(v)[:def.MaxLength])
		}
		out.Values = append(out.Values, v)
	}
	return out
}

// integerCodec parses integers strictly: any non-integer subvalue
// invalidates the field.
type integerCodec struct{ reg *Registry }

func (c *integerCodec) Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) ingot.FieldValue {
	values := c.reg.split(raw, def, row, rep)

	out := ingot.IntegerValue{ValueState: ingot.ValueState{Raw: values}}
	for _, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("value %q is not an integer", v)
			rep.AddError(row, def.Name, "value %q is not an integer", v)
			continue
		}
		out.Values = append(out.Values, n)
	}
	return out
}

// booleanCodec accepts exactly "1" and "0"; anything else is invalid.
type booleanCodec struct{ reg *Registry }

func (c *booleanCodec) Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) ingot.FieldValue {
	values := c.reg.split(raw, def, row, rep)

	out := ingot.BooleanValue{ValueState: ingot.ValueState{Raw: values}}
	for _, v := range values {
		switch v {
		case "1":
			out.Values = append(out.Values, true)
		case "0":
			out.Values = append(out.Values, false)
		default:
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("value %q is not a boolean; use 1 or 0", v)
			rep.AddError(row, def.Name, "value %q is not a boolean; use 1 or 0", v)
		}
	}
	return out
}
