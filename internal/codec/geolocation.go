package codec

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vknys/ingot/pkg/ingot"
)

// geolocationCodec parses "lat,lng" pairs in decimal degrees. Spreadsheets
// escape a leading "+" with a backslash; a single leading backslash is
// stripped before numeric parsing.
type geolocationCodec struct{ reg *Registry }

func (c *geolocationCodec) Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) ingot.FieldValue {
	values := c.reg.split(raw, def, row, rep)

	out := ingot.GeolocationValue{ValueState: ingot.ValueState{Raw: values}}
	for _, v := range values {
		parts := strings.Split(v, ",")
		if len(parts) != 2 {
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("geolocation %q must have the form lat,lng", v)
			rep.AddError(row, def.Name, "geolocation %q must have the form lat,lng", v)
			continue
		}

		lat, latErr := parseCoordinate(parts[0], -90, 90)
		lng, lngErr := parseCoordinate(parts[1], -180, 180)
		if latErr != nil || lngErr != nil {
			out.Invalid = true
			out.Diagnostic = fmt.Sprintf("geolocation %q has an invalid coordinate", v)
			rep.AddError(row, def.Name, "geolocation %q has an invalid coordinate", v)
			continue
		}

		out.Points = append(out.Points, ingot.GeoPoint{Lat: lat, Lng: lng})
	}
	return out
}

func parseCoordinate(s string, min, max float64) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `\`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, fmt.Errorf("coordinate %g out of range [%g, %g]", v, min, max)
	}
	return v, nil
}

// linkCodec parses "uri%%title" pairs. When no title is present the URI
// doubles as the title.
type linkCodec struct{ reg *Registry }

func (c *linkCodec) Parse(ctx context.Context, raw string, def ingot.FieldDefinition, row int, rep *ingot.ValidationReport) ingot.FieldValue {
	values := c.reg.split(raw, def, row, rep)

	out := ingot.LinkValue{ValueState: ingot.ValueState{Raw: values}}
	for _, v := range values {
		uri, title, found := strings.Cut(v, "%%")
		if !found {
			title = uri
		}
		out.Links = append(out.Links, ingot.Link{
			URI:   strings.TrimSpace(uri),
			Title: strings.TrimSpace(title),
		})
	}
	return out
}
