package codec

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/vknys/ingot/pkg/ingot"
)

// createdDatePattern is the exact shape the remote system accepts for
// creation timestamps: ISO 8601 with an explicit UTC offset,
// e.g. "2020-11-15T23:49:22+00:00".
var createdDatePattern = regexp.MustCompile(`^\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d[+-]\d\d:\d\d$`)

// dateCodec parses creation timestamps. The format check and the
// past-date check are reported independently: a well-formed future date
// fails only the past check.
type dateCodec struct{ reg *Registry }

func (c *dateCodec) Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) ingot.FieldValue {
	values := c.reg.split(raw, def, row, rep)

	out := ingot.DateValue{ValueState: ingot.ValueState{Raw: values}}
	for _, v := range values {
		if !createdDatePattern.MatchString(v) {
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("date %q is not formatted properly; expected e.g. 2020-11-15T23:49:22+00:00", v)
			rep.AddError(row, def.Name, "date %q is not formatted properly; expected e.g. 2020-11-15T23:49:22+00:00", v)
			continue
		}

		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("date %q is not a valid timestamp", v)
			rep.AddError(row, def.Name, "date %q is not a valid timestamp", v)
			continue
		}

		if t.After(c.reg.clock()) {
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("date %q is in the future", v)
			rep.AddError(row, def.Name, "date %q is in the future", v)
			continue
		}

		out.Values = append(out.Values, t)
	}
	return out
}
