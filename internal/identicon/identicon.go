package identicon

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultSize is the grid edge used by account rows (4 cells, 2 text lines)
const DefaultSize = 4

// Cell values in the grid
const (
	CellBackground = 0
	CellColor      = 1
	CellSpot       = 2
)

// Identicon is a blockies-style avatar derived from an address
type Identicon struct {
	Size       int
	Grid       [][]int
	Color      colorful.Color
	Background colorful.Color
	Spot       colorful.Color
}

// seeded xorshift, the same generator blockies uses so avatars match other wallets
type prng struct {
	seed [4]int32
}

func newPRNG(s string) *prng {
	p := &prng{}
	for i := 0; i < len(s); i++ {
		j := i % 4
		p.seed[j] = (p.seed[j] << 5) - p.seed[j] + int32(s[i])
	}
	return p
}

func (p *prng) next() float64 {
	t := p.seed[0] ^ (p.seed[0] << 11)
	p.seed[0] = p.seed[1]
	p.seed[1] = p.seed[2]
	p.seed[2] = p.seed[3]
	p.seed[3] = p.seed[3] ^ (p.seed[3] >> 19) ^ t ^ (t >> 8)
	// unsigned view of the state over 2^31, so results fall in [0, 2)
	return float64(uint32(p.seed[3])) / float64(uint32(1)<<31)
}

func (p *prng) color() colorful.Color {
	h := math.Floor(p.next() * 360)
	s := (p.next()*60 + 40) / 100
	l := (p.next() + p.next() + p.next() + p.next()) * 25 / 100
	return colorful.Hsl(h, clamp01(s), clamp01(l)).Clamped()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// New builds the identicon for address; size below 1 uses DefaultSize
func New(address string, size int) Identicon {
	if size < 1 {
		size = DefaultSize
	}
	p := newPRNG(strings.ToLower(address))

	ic := Identicon{Size: size}
	ic.Color = p.color()
	ic.Background = p.color()
	ic.Spot = p.color()

	dataWidth := (size + 1) / 2
	mirrorWidth := size - dataWidth
	ic.Grid = make([][]int, size)
	for y := 0; y < size; y++ {
		row := make([]int, 0, size)
		for x := 0; x < dataWidth; x++ {
			row = append(row, int(math.Floor(p.next()*2.3)))
		}
		for x := mirrorWidth - 1; x >= 0; x-- {
			row = append(row, row[x])
		}
		ic.Grid[y] = row
	}
	return ic
}

func (ic Identicon) cellColor(v int) colorful.Color {
	// values above CellSpot can occur and draw as spot, as in blockies
	switch {
	case v == CellBackground:
		return ic.Background
	case v == CellColor:
		return ic.Color
	default:
		return ic.Spot
	}
}

// Render draws the grid with upper half blocks, two pixel rows per line
func (ic Identicon) Render() string {
	var lines []string
	for y := 0; y < ic.Size; y += 2 {
		var b strings.Builder
		for x := 0; x < ic.Size; x++ {
			top := ic.cellColor(ic.Grid[y][x])
			bottom := ic.Background
			if y+1 < ic.Size {
				bottom = ic.cellColor(ic.Grid[y+1][x])
			}
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(top.Hex())).
				Background(lipgloss.Color(bottom.Hex())).
				Render("▀"))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// Lines is the number of text lines Render produces
func (ic Identicon) Lines() int {
	return (ic.Size + 1) / 2
}
