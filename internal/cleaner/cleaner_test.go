package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemovePageNumbers(t *testing.T) {
	in := "Charging basics\npage 12\n42\n3/200\nPage | 13\nPlug in the cable."
	out := RemovePageNumbers(in)
	assert.Equal(t, "Charging basics\nPlug in the cable.", out)
}

func TestRemovePageNumbersKeepsInlineNumbers(t *testing.T) {
	in := "Charge to 80 percent for daily use."
	assert.Equal(t, in, RemovePageNumbers(in))
}

func TestDehyphenate(t *testing.T) {
	assert.Equal(t, "example", Dehyphenate("exam-\nple"))
	// a dangling hyphen not surrounded by word characters stays
	assert.Equal(t, "see -\n the manual", Dehyphenate("see -\n the manual"))
}

func TestRemoveHeadersFooters(t *testing.T) {
	in := "TESLA MODEL 3\nThe charge port is on the left rear side.\nPress the button to open it.\nPage 13"
	out := RemoveHeadersFooters(in)
	assert.Equal(t, "The charge port is on the left rear side.\nPress the button to open it.", out)
}

func TestRemoveHeadersFootersShortPagePassesThrough(t *testing.T) {
	in := "one\ntwo"
	assert.Equal(t, in, RemoveHeadersFooters(in))
}

func TestNormalizeWhitespace(t *testing.T) {
	in := "a  \r\nb\n\n\n\nc   "
	assert.Equal(t, "a\nb\n\nc", NormalizeWhitespace(in))
}

func TestCleanPageEmptyInput(t *testing.T) {
	assert.Equal(t, "", CleanPage("   \n  "))
}

func TestCleanPageIsPure(t *testing.T) {
	in := "HEADER\nSome body text about char-\nging the vehicle.\n\n\n\n42"
	first := CleanPage(in)
	second := CleanPage(in)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "charging")
	assert.NotContains(t, first, "42")
}
