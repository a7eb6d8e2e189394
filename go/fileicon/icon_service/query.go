package icon_service

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/malonaz/fileicon/go/fileicon"
)

// applyQuery overlays the query parameters onto opts. Absent parameters keep their value.
// Every malformed parameter is reported.
func applyQuery(opts *fileicon.Options, query url.Values) error {
	var result *multierror.Error
	str := func(name string, dst *string) {
		if query.Has(name) {
			*dst = query.Get(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if !query.Has(name) {
			return
		}
		value, err := strconv.ParseBool(query.Get(name))
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: invalid boolean %q", name, query.Get(name)))
			return
		}
		*dst = value
	}
	float := func(name string, dst *float64) {
		if !query.Has(name) {
			return
		}
		value, err := strconv.ParseFloat(query.Get(name), 64)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: invalid number %q", name, query.Get(name)))
			return
		}
		*dst = value
	}

	str("color", &opts.Color)
	if query.Has("extension") {
		opts.Extension = fileicon.String(query.Get("extension"))
	}
	boolean("fold", &opts.Fold)
	str("foldColor", &opts.FoldColor)
	str("glyphColor", &opts.GlyphColor)
	str("gradientColor", &opts.GradientColor)
	float("gradientOpacity", &opts.GradientOpacity)
	str("labelColor", &opts.LabelColor)
	str("labelTextColor", &opts.LabelTextColor)
	boolean("labelUppercase", &opts.LabelUppercase)
	float("radius", &opts.Radius)
	if query.Has("type") {
		opts.Type = fileicon.Type(query.Get("type"))
	}
	return result.ErrorOrNil()
}
