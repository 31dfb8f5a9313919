package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
)

func TestHeadingCandidatesTOCStyle(t *testing.T) {
	got := HeadingCandidates("Autopilot Features......105\nbody text continues here with many more words than a heading")
	assert.Contains(t, got, "Autopilot Features")
}

func TestHeadingCandidatesAllCaps(t *testing.T) {
	got := HeadingCandidates("CHARGING EQUIPMENT\nPlug the mobile connector into a wall outlet before connecting it to the car.")
	assert.Contains(t, got, "Charging Equipment")
}

func TestHeadingCandidatesTitleCase(t *testing.T) {
	got := HeadingCandidates("Opening The Charge Port\nPress and release the button on the charge cable.")
	assert.Contains(t, got, "Opening The Charge Port")
}

func TestHeadingCandidatesIgnoresLongProse(t *testing.T) {
	got := HeadingCandidates("this long lowercase sentence spans well over six words and is clearly body prose")
	assert.Empty(t, got)
}

func TestDetectChapterTOCPageIsOverview(t *testing.T) {
	assert.Equal(t, "Overview", DetectChapter("Safety.....12\nCharging.....40"))
}

func TestDetectChapterByFrequency(t *testing.T) {
	text := "Charging the vehicle. Charging stops automatically. Safety first. charging equipment."
	assert.Equal(t, "Charging", DetectChapter(text))
}

func TestDetectChapterUnknown(t *testing.T) {
	assert.Equal(t, "", DetectChapter("nothing relevant here"))
}

func TestDetectChapterWholeWordOnly(t *testing.T) {
	assert.Equal(t, "", DetectChapter("supercharging rates improve yearly"))
}

func TestDetectChapterCaseInsensitive(t *testing.T) {
	assert.Equal(t, "Charging", DetectChapter("CHARGING equipment for the owner"))
}

func TestExtractSectionsFiltersBoilerplate(t *testing.T) {
	pages := []domain.Page{
		{Number: 1, Text: "OPENING THE CHARGE PORT\nPlug in the charging cable to start charging the battery.\nTesla Motors Inc"},
	}
	secs := ExtractSections(pages)
	for _, s := range secs {
		assert.NotContains(t, s.Heading, "Tesla")
		assert.NotContains(t, s.Heading, "Inc")
	}
	assert.NotEmpty(t, secs)
	assert.Equal(t, "Charging", secs[0].Chapter)
}

func TestMergeSectionSpans(t *testing.T) {
	pages := []domain.Page{
		{Number: 1, Text: "BASIC SAFETY RULES\nAlways wear the seat belt for safety. Safety matters. Safety."},
		{Number: 2, Text: "BASIC SAFETY RULES\nChild seats belong in the rear for safety. Safety. Safety systems."},
		{Number: 3, Text: "OPENING THE CHARGE PORT\nCharging begins when the cable locks. Charging. Charging."},
	}
	secs := ExtractSections(pages)

	var safety *domain.Section
	for i := range secs {
		if secs[i].Heading == "Basic Safety Rules" {
			safety = &secs[i]
		}
	}
	if assert.NotNil(t, safety) {
		assert.Equal(t, 1, safety.PageStart)
		assert.Equal(t, 2, safety.PageEnd)
	}
}
