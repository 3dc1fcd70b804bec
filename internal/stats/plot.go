package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelTop        = "max"
	axisLabelBottom     = "min"
	axisSeparator       = " │ "
	scaleNote           = "Scaled per series; see min/max below."
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var seriesColors = []string{"\x1b[36m", "\x1b[33m", "\x1b[35m", "\x1b[32m"}

// braille dot bits indexed by [row][column] within a 2x4 cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := runewidth.StringWidth(axisLabelTop) + runewidth.StringWidth(axisSeparator)
	if w := totalWidth - axisWidth; w > minPlotWidth {
		return w
	}
	return minPlotWidth
}

// PlotSeries renders a braille line plot, one color per series. A zero
// width fits the plot to the terminal.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	plotted := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			plotted = append(plotted, s)
		}
	}
	if len(plotted) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	grids := make([][][]uint8, len(plotted))
	ranges := make([][2]float64, len(plotted))
	for i, s := range plotted {
		values := resample(s.Values, width*2)
		lo, hi := minMax(values)
		if hi-lo < 1e-9 {
			lo--
			hi++
		}
		ranges[i] = [2]float64{lo, hi}
		grids[i] = drawSeries(values, lo, hi, width, height)
	}

	useColor := shouldUseColor(w, forceColor)
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	b.WriteString(scaleNote + "\n")
	for i, s := range plotted {
		fmt.Fprintf(&b, "%s: min=%.2f max=%.2f\n", s.Name, ranges[i][0], ranges[i][1])
	}
	labelWidth := runewidth.StringWidth(axisLabelTop)
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = axisLabelTop
		case height - 1:
			label = axisLabelBottom
		}
		b.WriteString(runewidth.FillLeft(label, labelWidth) + axisSeparator)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for si, grid := range grids {
				if grid[y][x] == 0 {
					continue
				}
				if owner < 0 {
					owner = si
				}
				mask |= grid[y][x]
			}
			ch := string(rune(0x2800 + int(mask)))
			if useColor && owner >= 0 {
				ch = seriesColors[owner%len(seriesColors)] + ch + colorReset
			}
			b.WriteString(ch)
		}
		b.WriteByte('\n')
	}
	b.WriteString(legend(plotted, useColor) + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// drawSeries plots values (two per cell column) and joins neighbours with
// vertical runs so steep changes stay connected.
func drawSeries(values []float64, lo, hi float64, width, height int) [][]uint8 {
	grid := make([][]uint8, height)
	for y := range grid {
		grid[y] = make([]uint8, width)
	}
	dotsHigh := height * 4
	prev := -1
	for x, v := range values {
		row := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(dotsHigh-1)))
		row = clampInt(row, 0, dotsHigh-1)
		from, to := row, row
		if prev >= 0 {
			from, to = min(prev, row), max(prev, row)
		}
		for dy := from; dy <= to; dy++ {
			grid[dy/4][x/2] |= brailleBits[dy%4][x%2]
		}
		prev = row
	}
	return grid
}

// resample stretches or averages values onto n points.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == 0 || n == 0:
		return out
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
		return out
	case len(values) > n:
		for i := range out {
			start := i * len(values) / n
			end := max((i+1)*len(values)/n, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	step := float64(len(values)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		idx := int(pos)
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		label := "⠉ " + s.Name
		if useColor {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
