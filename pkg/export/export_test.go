package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimetableJoinsDoubleBookedCells(t *testing.T) {
	grid := NewTimetable("Klasse 1a")
	grid.Put(1, 1, "REL (MUE) [A]")
	grid.Put(1, 1, "ETH (SCH) [B]")

	assert.Equal(t, "REL (MUE) [A] / ETH (SCH) [B]", grid.Cell(1, 1))
}

func TestCSVExporterRendersGrid(t *testing.T) {
	grid := NewTimetable("Klasse 1a")
	grid.Put(1, 1, "MA (MUE)")
	grid.Put(5, 2, "SP (SCH)")

	data, err := NewCSVExporter().Render(grid)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Stunde,Montag,Dienstag,Mittwoch,Donnerstag,Freitag", lines[0])
	assert.Equal(t, "1,MA (MUE),,,,", lines[1])
	assert.Equal(t, "2,,,,,SP (SCH)", lines[2])
}

func TestPDFExporterProducesDocument(t *testing.T) {
	grid := NewTimetable("Klasse 1a")
	grid.Put(2, 3, "MU (LEH)")

	data, err := NewPDFExporter().Render(grid)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"), "PDF magic header expected")
}
