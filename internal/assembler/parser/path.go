package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zeeshanhshaheen/sewing-prototype/internal/assembler/models"
)

// ============================================================
// Path Parser
// ============================================================

const (
	flatness     = 0.05 // допустимое отклонение хорды от кривой, в единицах SVG
	maxSubdivide = 12
	arcStep      = math.Pi / 16
)

// ParsePath разбирает атрибут d в список подпутей. Кривые и дуги
// аппроксимируются ломаными, каждый подпуть считается замкнутым.
func ParsePath(d string) ([][]models.Point, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, fmt.Errorf("empty path")
	}

	p := pathState{sc: &scanner{s: d}}
	if err := p.run(); err != nil {
		return nil, err
	}
	p.flush()
	return p.subpaths, nil
}

type pathState struct {
	sc       *scanner
	subpaths [][]models.Point
	current  []models.Point
	cur      models.Point
	start    models.Point
	ctrl     models.Point // последняя контрольная точка для S/T
	prev     byte
}

func (p *pathState) run() error {
	for {
		cmd, ok := p.sc.command()
		if !ok {
			if p.sc.done() {
				return nil
			}
			return fmt.Errorf("unexpected %q at %d", p.sc.peek(), p.sc.pos)
		}

		if err := p.exec(cmd); err != nil {
			return fmt.Errorf("command %c: %w", cmd, err)
		}
	}
}

func (p *pathState) exec(cmd byte) error {
	rel := cmd >= 'a' && cmd <= 'z'
	upper := cmd &^ 0x20

	if upper == 'Z' {
		p.flush()
		p.cur = p.start
		p.prev = 'Z'
		return nil
	}

	first := true
	for first || p.sc.hasNumber() {
		args, err := p.sc.numbers(arity(upper))
		if err != nil {
			return err
		}

		switch upper {
		case 'M':
			pt := p.abs(rel, args[0], args[1])
			if first {
				p.flush()
				p.start = pt
				p.current = []models.Point{pt}
				p.cur = pt
			} else {
				p.lineTo(pt)
			}

		case 'L':
			p.lineTo(p.abs(rel, args[0], args[1]))

		case 'H':
			x := args[0]
			if rel {
				x += p.cur.X
			}
			p.lineTo(models.Point{X: x, Y: p.cur.Y})

		case 'V':
			y := args[0]
			if rel {
				y += p.cur.Y
			}
			p.lineTo(models.Point{X: p.cur.X, Y: y})

		case 'C':
			c1 := p.abs(rel, args[0], args[1])
			c2 := p.abs(rel, args[2], args[3])
			end := p.abs(rel, args[4], args[5])
			p.cubicTo(c1, c2, end)

		case 'S':
			c1 := p.cur
			if p.prev == 'C' || p.prev == 'S' {
				c1 = reflect(p.ctrl, p.cur)
			}
			c2 := p.abs(rel, args[0], args[1])
			end := p.abs(rel, args[2], args[3])
			p.cubicTo(c1, c2, end)

		case 'Q':
			q := p.abs(rel, args[0], args[1])
			end := p.abs(rel, args[2], args[3])
			p.quadTo(q, end)

		case 'T':
			q := p.cur
			if p.prev == 'Q' || p.prev == 'T' {
				q = reflect(p.ctrl, p.cur)
			}
			end := p.abs(rel, args[0], args[1])
			p.quadTo(q, end)

		case 'A':
			end := p.abs(rel, args[5], args[6])
			p.arcTo(args[0], args[1], args[2], args[3] != 0, args[4] != 0, end)

		default:
			return fmt.Errorf("unsupported command")
		}

		p.prev = upper
		first = false
	}
	return nil
}

func arity(cmd byte) []argKind {
	switch cmd {
	case 'M', 'L', 'T':
		return []argKind{argNum, argNum}
	case 'H', 'V':
		return []argKind{argNum}
	case 'C':
		return []argKind{argNum, argNum, argNum, argNum, argNum, argNum}
	case 'S', 'Q':
		return []argKind{argNum, argNum, argNum, argNum}
	case 'A':
		return []argKind{argNum, argNum, argNum, argFlag, argFlag, argNum, argNum}
	}
	return nil
}

func (p *pathState) abs(rel bool, x, y float64) models.Point {
	if rel {
		return models.Point{X: p.cur.X + x, Y: p.cur.Y + y}
	}
	return models.Point{X: x, Y: y}
}

// begin открывает подпуть, если команда рисования пришла без M (например, после Z).
func (p *pathState) begin() {
	if p.current == nil {
		p.current = []models.Point{p.cur}
		p.start = p.cur
	}
}

func (p *pathState) lineTo(pt models.Point) {
	p.begin()
	p.current = append(p.current, pt)
	p.cur = pt
}

func (p *pathState) cubicTo(c1, c2, end models.Point) {
	p.begin()
	flattenCubic(p.cur, c1, c2, end, 0, &p.current)
	p.ctrl = c2
	p.cur = end
}

func (p *pathState) quadTo(q, end models.Point) {
	c1 := lerp(p.cur, q, 2.0/3)
	c2 := lerp(end, q, 2.0/3)
	p.begin()
	flattenCubic(p.cur, c1, c2, end, 0, &p.current)
	p.ctrl = q
	p.cur = end
}

func (p *pathState) arcTo(rx, ry, phiDeg float64, large, sweep bool, end models.Point) {
	p.begin()
	p.current = append(p.current, arcPoints(p.cur, rx, ry, phiDeg, large, sweep, end)...)
	p.cur = end
}

// flush закрывает текущий подпуть.
func (p *pathState) flush() {
	if pts := cleanContour(p.current); len(pts) >= 3 {
		p.subpaths = append(p.subpaths, pts)
	}
	p.current = nil
}

// ============================================================
// Curve flattening
// ============================================================

// flattenCubic делит кривую Безье по де Кастельжо, пока она не станет плоской.
func flattenCubic(p0, p1, p2, p3 models.Point, depth int, out *[]models.Point) {
	if depth >= maxSubdivide || (distToLine(p1, p0, p3) <= flatness && distToLine(p2, p0, p3) <= flatness) {
		*out = append(*out, p3)
		return
	}

	m01 := lerp(p0, p1, 0.5)
	m12 := lerp(p1, p2, 0.5)
	m23 := lerp(p2, p3, 0.5)
	m012 := lerp(m01, m12, 0.5)
	m123 := lerp(m12, m23, 0.5)
	mid := lerp(m012, m123, 0.5)

	flattenCubic(p0, m01, m012, mid, depth+1, out)
	flattenCubic(mid, m123, m23, p3, depth+1, out)
}

// arcPoints переводит эллиптическую дугу из endpoint- в center-параметризацию
// и возвращает точки после p0 включая end.
func arcPoints(p0 models.Point, rx, ry, phiDeg float64, large, sweep bool, end models.Point) []models.Point {
	if p0 == end {
		return nil
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return []models.Point{end}
	}

	sin, cos := math.Sincos(phiDeg * math.Pi / 180)
	dx2 := (p0.X - end.X) / 2
	dy2 := (p0.Y - end.Y) / 2
	x1 := cos*dx2 + sin*dy2
	y1 := -sin*dx2 + cos*dy2

	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if den > 0 {
		coef = math.Sqrt(math.Max(0, num/den))
	}
	if large == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1 / ry
	cyp := -coef * ry * x1 / rx

	cx := cos*cxp - sin*cyp + (p0.X+end.X)/2
	cy := sin*cxp + cos*cyp + (p0.Y+end.Y)/2

	theta := vecAngle(1, 0, (x1-cxp)/rx, (y1-cyp)/ry)
	delta := vecAngle((x1-cxp)/rx, (y1-cyp)/ry, (-x1-cxp)/rx, (-y1-cyp)/ry)
	if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	n := int(math.Ceil(math.Abs(delta) / arcStep))
	if n < 2 {
		n = 2
	}

	out := make([]models.Point, 0, n)
	for i := 1; i < n; i++ {
		t := theta + delta*float64(i)/float64(n)
		st, ct := math.Sincos(t)
		out = append(out, models.Point{
			X: cx + rx*ct*cos - ry*st*sin,
			Y: cy + rx*ct*sin + ry*st*cos,
		})
	}
	return append(out, end)
}

func vecAngle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}

func lerp(a, b models.Point, t float64) models.Point {
	return models.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

func reflect(ctrl, around models.Point) models.Point {
	return models.Point{X: 2*around.X - ctrl.X, Y: 2*around.Y - ctrl.Y}
}

func distToLine(p, a, b models.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / math.Hypot(dx, dy)
}

// ============================================================
// Scanner
// ============================================================

type argKind int

const (
	argNum argKind = iota
	argFlag
)

type scanner struct {
	s   string
	pos int
}

func (sc *scanner) skipSep() {
	for sc.pos < len(sc.s) {
		switch sc.s[sc.pos] {
		case ' ', '\t', '\n', '\r', ',':
			sc.pos++
		default:
			return
		}
	}
}

func (sc *scanner) done() bool {
	sc.skipSep()
	return sc.pos >= len(sc.s)
}

func (sc *scanner) peek() byte {
	if sc.pos >= len(sc.s) {
		return 0
	}
	return sc.s[sc.pos]
}

func (sc *scanner) command() (byte, bool) {
	sc.skipSep()
	c := sc.peek()
	if strings.IndexByte("MmLlHhVvCcSsQqTtAaZz", c) < 0 || c == 0 {
		return 0, false
	}
	sc.pos++
	return c, true
}

func (sc *scanner) hasNumber() bool {
	sc.skipSep()
	c := sc.peek()
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func (sc *scanner) numbers(kinds []argKind) ([]float64, error) {
	out := make([]float64, len(kinds))
	for i, k := range kinds {
		var err error
		if k == argFlag {
			out[i], err = sc.flag()
		} else {
			out[i], err = sc.number()
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (sc *scanner) flag() (float64, error) {
	sc.skipSep()
	switch sc.peek() {
	case '0':
		sc.pos++
		return 0, nil
	case '1':
		sc.pos++
		return 1, nil
	}
	return 0, fmt.Errorf("expected flag at %d", sc.pos)
}

func (sc *scanner) number() (float64, error) {
	sc.skipSep()
	start := sc.pos
	s := sc.s

	if sc.pos < len(s) && (s[sc.pos] == '-' || s[sc.pos] == '+') {
		sc.pos++
	}
	digits := 0
	for sc.pos < len(s) && isDigit(s[sc.pos]) {
		sc.pos++
		digits++
	}
	if sc.pos < len(s) && s[sc.pos] == '.' {
		sc.pos++
		for sc.pos < len(s) && isDigit(s[sc.pos]) {
			sc.pos++
			digits++
		}
	}
	if digits == 0 {
		sc.pos = start
		return 0, fmt.Errorf("expected number at %d", start)
	}
	if sc.pos < len(s) && (s[sc.pos] == 'e' || s[sc.pos] == 'E') {
		j := sc.pos + 1
		if j < len(s) && (s[j] == '-' || s[j] == '+') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			sc.pos = j
		}
	}

	v, err := strconv.ParseFloat(s[start:sc.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", s[start:sc.pos], err)
	}
	return v, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
