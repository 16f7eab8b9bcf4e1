// Package render draws quadrilateral meshes of geographic fields onto map
// projections and composes them into figures with gonum/plot.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/geom/proj"
)

const deg2rad = math.Pi / 180

// Projection maps longitude/latitude in degrees to planar map coordinates.
type Projection interface {
	// Name identifies the projection.
	Name() string

	// Forward projects a point. ok is false when the point is not visible.
	Forward(lon, lat float64) (x, y float64, ok bool)

	// Extent is the planar bounding box of the whole projected globe.
	Extent() (xmin, xmax, ymin, ymax float64)

	// Outline is the closed boundary of the projected globe, or nil.
	Outline() [][2]float64
}

// ParseProjection resolves a projection name. An empty name or "ortho"
// selects Orthographic and "platecarree" selects PlateCarree, both centred
// on (lon, lat). Definitions starting with "+proj=" are proj4 strings.
func ParseProjection(name string, lon, lat float64) (Projection, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "", "ortho", "orthographic":
		return NewOrthographic(lon, lat)
	case "platecarree", "plate_carree", "eqc":
		return PlateCarree{CentralLon: lon}, nil
	}
	if strings.HasPrefix(name, "+proj=") {
		return NewProj4(name)
	}
	return nil, fmt.Errorf("unknown projection %q (expected ortho, platecarree or a +proj= definition)", name)
}

// Orthographic is the view of the globe from infinitely far away above
// (CentralLon, CentralLat), on a unit sphere.
type Orthographic struct {
	CentralLon float64
	CentralLat float64
}

// NewOrthographic validates the centre point.
func NewOrthographic(lon, lat float64) (*Orthographic, error) {
	if math.IsNaN(lon) || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("orthographic: invalid centre (%g, %g)", lon, lat)
	}
	return &Orthographic{CentralLon: lon, CentralLat: lat}, nil
}

func (o *Orthographic) Name() string {
	return fmt.Sprintf("ortho(%g,%g)", o.CentralLon, o.CentralLat)
}

func (o *Orthographic) Forward(lon, lat float64) (x, y float64, ok bool) {
	lam := (lon - o.CentralLon) * deg2rad
	phi := lat * deg2rad
	phi0 := o.CentralLat * deg2rad

	sinPhi, cosPhi := math.Sincos(phi)
	sinPhi0, cosPhi0 := math.Sincos(phi0)
	sinLam, cosLam := math.Sincos(lam)

	cosc := sinPhi0*sinPhi + cosPhi0*cosPhi*cosLam
	if cosc < 0 || math.IsNaN(cosc) {
		return 0, 0, false
	}
	x = cosPhi * sinLam
	y = cosPhi0*sinPhi - sinPhi0*cosPhi*cosLam
	return x, y, true
}

func (o *Orthographic) Extent() (xmin, xmax, ymin, ymax float64) {
	return -1, 1, -1, 1
}

func (o *Orthographic) Outline() [][2]float64 {
	const n = 360
	pts := make([][2]float64, n+1)
	for k := 0; k <= n; k++ {
		s, c := math.Sincos(2 * math.Pi * float64(k) / n)
		pts[k] = [2]float64{c, s}
	}
	return pts
}

// PlateCarree is the equirectangular projection with x = longitude and
// y = latitude, centred on CentralLon.
type PlateCarree struct {
	CentralLon float64
}

func (p PlateCarree) Name() string { return fmt.Sprintf("platecarree(%g)", p.CentralLon) }

func (p PlateCarree) Forward(lon, lat float64) (x, y float64, ok bool) {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return 0, 0, false
	}
	x = math.Mod(lon-p.CentralLon+180, 360)
	if x < 0 {
		x += 360
	}
	return x - 180, lat, true
}

func (p PlateCarree) Extent() (xmin, xmax, ymin, ymax float64) {
	return -180, 180, -90, 90
}

func (p PlateCarree) Outline() [][2]float64 {
	return [][2]float64{{-180, -90}, {180, -90}, {180, 90}, {-180, 90}, {-180, -90}}
}

// Proj4 projects through a proj4 definition string.
type Proj4 struct {
	def     string
	forward proj.Transformer
	extent  [4]float64
}

// NewProj4 parses def and prepares the transform from geographic
// coordinates.
func NewProj4(def string) (*Proj4, error) {
	src, err := proj.Parse("+proj=longlat +datum=WGS84 +no_defs")
	if err != nil {
		return nil, fmt.Errorf("proj4: while parsing source: %w", err)
	}
	dst, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("proj4: while parsing %q: %w", def, err)
	}
	tr, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("proj4: while creating transform: %w", err)
	}
	p := &Proj4{def: def, forward: tr}
	p.extent = p.sampleExtent()
	if math.IsInf(p.extent[0], 0) {
		return nil, fmt.Errorf("proj4: %q maps no point of the globe", def)
	}
	return p, nil
}

func (p *Proj4) Name() string { return p.def }

func (p *Proj4) Forward(lon, lat float64) (x, y float64, ok bool) {
	x, y, err := p.forward(lon, lat)
	if err != nil || math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, false
	}
	return x, y, true
}

func (p *Proj4) Extent() (xmin, xmax, ymin, ymax float64) {
	return p.extent[0], p.extent[1], p.extent[2], p.extent[3]
}

func (p *Proj4) Outline() [][2]float64 { return nil }

// sampleExtent bounds the projection of a 2 degree lattice.
func (p *Proj4) sampleExtent() [4]float64 {
	ext := [4]float64{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for lon := -180.0; lon <= 180; lon += 2 {
		for lat := -88.0; lat <= 88; lat += 2 {
			x, y, ok := p.Forward(lon, lat)
			if !ok {
				continue
			}
			ext[0] = math.Min(ext[0], x)
			ext[1] = math.Max(ext[1], x)
			ext[2] = math.Min(ext[2], y)
			ext[3] = math.Max(ext[3], y)
		}
	}
	return ext
}
