package render

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// reversedSuffix selects the reversed version of a named colormap.
const reversedSuffix = "_r"

// colormaps builds fresh instances since palette.ColorMap carries its own
// range. The diverging maps return palette.DivergingColorMap and are
// wrapped.
var colormaps = map[string]func() palette.ColorMap{
	"kindlmann":          moreland.Kindlmann,
	"extended_kindlmann": moreland.ExtendedKindlmann,
	"blackbody":          moreland.BlackBody,
	"extended_blackbody": moreland.ExtendedBlackBody,
	"coolwarm":           func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"blue_red":           func() palette.ColorMap { return moreland.SmoothBlueRed() },
	"blue_tan":           func() palette.ColorMap { return moreland.SmoothBlueTan() },
	"green_purple":       func() palette.ColorMap { return moreland.SmoothGreenPurple() },
	"green_red":          func() palette.ColorMap { return moreland.SmoothGreenRed() },
	"purple_orange":      func() palette.ColorMap { return moreland.SmoothPurpleOrange() },
	"RdBu":               func() palette.ColorMap { return palette.Reverse(moreland.SmoothBlueRed()) },
	"gray":               gray,
}

func gray() palette.ColorMap {
	cm, err := moreland.NewLuminance([]color.Color{color.Black, color.White})
	if err != nil {
		panic(fmt.Sprintf("render: gray colormap: %v", err))
	}
	return cm
}

// ColorMap returns the named colormap. A "_r" suffix reverses it.
func ColorMap(name string) (palette.ColorMap, error) {
	base, reversed := strings.CutSuffix(name, reversedSuffix)
	mk, ok := colormaps[base]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q", name)
	}
	cm := mk()
	if reversed {
		cm = palette.Reverse(cm)
	}
	return cm, nil
}

// ColorMapNames lists the registered colormaps, without reversed variants.
func ColorMapNames() []string {
	names := make([]string, 0, len(colormaps))
	for name := range colormaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
