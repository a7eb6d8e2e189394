package raster

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/vector"
)

type point struct{ x, y float64 }

type segment struct {
	// op is one of M, L, Q, C or Z.
	op  byte
	pts []point
}

// subpath starts with an M segment.
type subpath []segment

// parsePath parses SVG path data into absolute subpaths. Arcs are flattened into lines.
// Supported commands are M, L, H, V, C, Q, A and Z, in both their absolute and relative forms.
func parsePath(d string) ([]subpath, error) {
	tokens, err := tokenize(d)
	if err != nil {
		return nil, err
	}
	p := &pathParser{tokens: tokens}
	if err := p.parse(); err != nil {
		return nil, fmt.Errorf("parsing path %q: %w", d, err)
	}
	return p.subpaths, nil
}

type token struct {
	command byte
	number  float64
}

func tokenize(d string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(d); {
		c := d[i]
		switch {
		case c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.IndexByte("MmLlHhVvCcQqAaZz", c) >= 0:
			tokens = append(tokens, token{command: c})
			i++
		default:
			n := scanNumber(d[i:])
			if n == 0 {
				return nil, fmt.Errorf("unexpected %q at offset %d", c, i)
			}
			value, err := strconv.ParseFloat(d[i:i+n], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing number at offset %d: %w", i, err)
			}
			tokens = append(tokens, token{number: value})
			i += n
		}
	}
	return tokens, nil
}

// scanNumber returns the length of the number at the start of s.
func scanNumber(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && s[j] >= '0' && s[j] <= '9' {
			for i = j; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			}
		}
	}
	return i
}

type pathParser struct {
	tokens   []token
	pos      int
	current  point
	start    point
	subpaths []subpath
}

func (p *pathParser) parse() error {
	var command byte
	for p.pos < len(p.tokens) {
		if t := p.tokens[p.pos]; t.command != 0 {
			command = t.command
			p.pos++
		} else if command == 0 {
			return fmt.Errorf("path data must start with a command")
		}
		next, err := p.apply(command)
		if err != nil {
			return err
		}
		command = next
	}
	return nil
}

// apply consumes the arguments of one command and returns the command implied by further bare numbers.
func (p *pathParser) apply(command byte) (byte, error) {
	relative := command >= 'a' && command <= 'z'
	upper := command &^ 0x20
	switch upper {
	case 'Z':
		if len(p.subpaths) > 0 {
			p.add(segment{op: 'Z'})
		}
		p.current = p.start
		return 0, nil
	case 'M':
		args, err := p.numbers(2)
		if err != nil {
			return 0, err
		}
		pt := p.point(args[0], args[1], relative)
		p.subpaths = append(p.subpaths, subpath{{op: 'M', pts: []point{pt}}})
		p.current, p.start = pt, pt
		if relative {
			return 'l', nil
		}
		return 'L', nil
	}
	if len(p.subpaths) == 0 {
		return 0, fmt.Errorf("%c before moveto", command)
	}

	switch upper {
	case 'L':
		args, err := p.numbers(2)
		if err != nil {
			return 0, err
		}
		p.lineTo(p.point(args[0], args[1], relative))
	case 'H':
		args, err := p.numbers(1)
		if err != nil {
			return 0, err
		}
		x := args[0]
		if relative {
			x += p.current.x
		}
		p.lineTo(point{x, p.current.y})
	case 'V':
		args, err := p.numbers(1)
		if err != nil {
			return 0, err
		}
		y := args[0]
		if relative {
			y += p.current.y
		}
		p.lineTo(point{p.current.x, y})
	case 'Q':
		args, err := p.numbers(4)
		if err != nil {
			return 0, err
		}
		control, end := p.point(args[0], args[1], relative), p.point(args[2], args[3], relative)
		p.add(segment{op: 'Q', pts: []point{control, end}})
		p.current = end
	case 'C':
		args, err := p.numbers(6)
		if err != nil {
			return 0, err
		}
		c1, c2 := p.point(args[0], args[1], relative), p.point(args[2], args[3], relative)
		end := p.point(args[4], args[5], relative)
		p.add(segment{op: 'C', pts: []point{c1, c2, end}})
		p.current = end
	case 'A':
		args, err := p.numbers(7)
		if err != nil {
			return 0, err
		}
		end := p.point(args[5], args[6], relative)
		for _, pt := range flattenArc(p.current, args[0], args[1], args[2], args[3] != 0, args[4] != 0, end) {
			p.add(segment{op: 'L', pts: []point{pt}})
		}
		p.current = end
	default:
		return 0, fmt.Errorf("unsupported command %c", command)
	}
	return command, nil
}

func (p *pathParser) numbers(n int) ([]float64, error) {
	if p.pos+n > len(p.tokens) {
		return nil, fmt.Errorf("expected %d numbers", n)
	}
	values := make([]float64, n)
	for i := range values {
		t := p.tokens[p.pos+i]
		if t.command != 0 {
			return nil, fmt.Errorf("expected a number, got %c", t.command)
		}
		values[i] = t.number
	}
	p.pos += n
	return values, nil
}

func (p *pathParser) point(x, y float64, relative bool) point {
	if relative {
		return point{p.current.x + x, p.current.y + y}
	}
	return point{x, y}
}

func (p *pathParser) lineTo(pt point) {
	p.add(segment{op: 'L', pts: []point{pt}})
	p.current = pt
}

func (p *pathParser) add(s segment) {
	last := len(p.subpaths) - 1
	p.subpaths[last] = append(p.subpaths[last], s)
}

// flattenArc approximates an elliptical arc with line segments, following the endpoint to center
// conversion of the SVG implementation notes. The returned points exclude from and end with to.
func flattenArc(from point, rx, ry, rotation float64, largeArc, sweep bool, to point) []point {
	if from == to {
		return nil
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return []point{to}
	}
	phi := rotation * math.Pi / 180
	sin, cos := math.Sincos(phi)

	dx, dy := (from.x-to.x)/2, (from.y-to.y)/2
	x1 := cos*dx + sin*dy
	y1 := -sin*dx + cos*dy
	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		rx, ry = rx*math.Sqrt(lambda), ry*math.Sqrt(lambda)
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := math.Sqrt(math.Max(0, num/den))
	if largeArc == sweep {
		coef = -coef
	}
	cx1, cy1 := coef*rx*y1/ry, -coef*ry*x1/rx
	cx := cos*cx1 - sin*cy1 + (from.x+to.x)/2
	cy := sin*cx1 + cos*cy1 + (from.y+to.y)/2

	theta := angle(1, 0, (x1-cx1)/rx, (y1-cy1)/ry)
	delta := angle((x1-cx1)/rx, (y1-cy1)/ry, (-x1-cx1)/rx, (-y1-cy1)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	n := int(math.Ceil(math.Abs(delta) / (math.Pi / 32)))
	pts := make([]point, 0, n)
	for i := 1; i < n; i++ {
		t := theta + delta*float64(i)/float64(n)
		ex, ey := rx*math.Cos(t), ry*math.Sin(t)
		pts = append(pts, point{cos*ex - sin*ey + cx, sin*ex + cos*ey + cy})
	}
	return append(pts, to)
}

func angle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}

// transform maps path coordinates to pixels.
type transform struct {
	scale, dx, dy float64
}

func (t transform) apply(p point) (float32, float32) {
	return float32((p.x + t.dx) * t.scale), float32((p.y + t.dy) * t.scale)
}

// fill adds the subpaths to z.
func (t transform) fill(z *vector.Rasterizer, subpaths ...subpath) {
	for _, sp := range subpaths {
		for _, s := range sp {
			switch s.op {
			case 'M':
				z.MoveTo(t.apply(s.pts[0]))
			case 'L':
				z.LineTo(t.apply(s.pts[0]))
			case 'Q':
				bx, by := t.apply(s.pts[0])
				cx, cy := t.apply(s.pts[1])
				z.QuadTo(bx, by, cx, cy)
			case 'C':
				bx, by := t.apply(s.pts[0])
				cx, cy := t.apply(s.pts[1])
				dx, dy := t.apply(s.pts[2])
				z.CubeTo(bx, by, cx, cy, dx, dy)
			case 'Z':
				z.ClosePath()
			}
		}
		// Fills close open subpaths.
		z.ClosePath()
	}
}
