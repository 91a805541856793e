package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLabeledSectionsBasic(t *testing.T) {
	text := "Here is what to do.\n" +
		"Step-by-Step Fix:\n" +
		"1. Open Word.\n" +
		"2. Click Repair.\n" +
		"Copilot Prompt:\n" +
		"Fix my document formatting."

	sections := SplitLabeledSections(text, []string{"Step-by-Step Fix", "Copilot Prompt"}, "Step-by-Step Fix")

	require.Len(t, sections, 2)
	assert.Equal(t, "1. Open Word.\n2. Click Repair.", sections["Step-by-Step Fix"])
	assert.Equal(t, "Fix my document formatting.", sections["Copilot Prompt"])
}

func TestSplitLabeledSectionsFallback(t *testing.T) {
	text := "  Just restart the app and try again.  "

	sections := SplitLabeledSections(text, []string{"Step-by-Step Fix", "Copilot Prompt"}, "Step-by-Step Fix")

	require.Len(t, sections, 1)
	assert.Equal(t, "Just restart the app and try again.", sections["Step-by-Step Fix"])
}

func TestSplitLabeledSectionsOrdinalAndColonVariants(t *testing.T) {
	text := "1) step-by-step fix\nDo the thing.\n2. COPILOT PROMPT:\nPaste this."

	sections := SplitLabeledSections(text, []string{"Step-by-Step Fix", "Copilot Prompt"}, "Step-by-Step Fix")

	require.Len(t, sections, 2)
	assert.Equal(t, "Do the thing.", sections["Step-by-Step Fix"])
	assert.Equal(t, "Paste this.", sections["Copilot Prompt"])
}

func TestSplitLabeledSectionsLabelInsideProseIsNotABoundary(t *testing.T) {
	text := "Step-by-Step Fix:\nThe Copilot Prompt: field is inside this sentence.\nKeep going."

	sections := SplitLabeledSections(text, []string{"Step-by-Step Fix", "Copilot Prompt"}, "Step-by-Step Fix")

	require.Len(t, sections, 1)
	assert.Contains(t, sections["Step-by-Step Fix"], "Copilot Prompt: field is inside")
}

func TestStepsToCardsRenumbers(t *testing.T) {
	text := "3. Open the file.\n1. Save it.\n- Close the app."

	cards := StepsToCards(text)

	require.Len(t, cards, 3)
	assert.Equal(t, 1, cards[0].Number)
	assert.Equal(t, 2, cards[1].Number)
	assert.Equal(t, 3, cards[2].Number)
	assert.Equal(t, "Open the file.", cards[0].Text)
	assert.Equal(t, "Close the app.", cards[2].Text)
}

func TestStepsToCardsContinuationAndBlankLines(t *testing.T) {
	text := "1. Open Excel.\nThen pick a workbook.\n\n2. Enter your data."

	cards := StepsToCards(text)

	require.Len(t, cards, 2)
	assert.Equal(t, "Open Excel.\nThen pick a workbook.", cards[0].Text)
	assert.Equal(t, "Enter your data.", cards[1].Text)
}

func TestStepsToCardsUnmarkedTextBecomesOneCard(t *testing.T) {
	text := "Restart Outlook.\nIt usually clears the cache."

	cards := StepsToCards(text)

	require.Len(t, cards, 1)
	assert.Equal(t, 1, cards[0].Number)
	assert.Equal(t, "Restart Outlook.\nIt usually clears the cache.", cards[0].Text)
}

func TestStepsToCardsEscapesHTML(t *testing.T) {
	cards := StepsToCards("1. Click <File> & save.")

	require.Len(t, cards, 1)
	assert.Equal(t, "Click &lt;File&gt; &amp; save.", cards[0].Text)
}

func TestStepsToCardsWarningFlag(t *testing.T) {
	text := "1. Warning: this deletes data.\n2. There were warnings earlier.\n3. All clear."

	cards := StepsToCards(text)

	require.Len(t, cards, 3)
	assert.True(t, cards[0].Flagged)
	// "warnings" is not the whole word "warning".
	assert.False(t, cards[1].Flagged)
	assert.False(t, cards[2].Flagged)
}

func TestStepsToCardsWarningOnContinuationLine(t *testing.T) {
	text := "1. Reset the view.\nWARNING this cannot be undone."

	cards := StepsToCards(text)

	require.Len(t, cards, 1)
	assert.True(t, cards[0].Flagged)
}

func TestStepsToCardsEmptyInput(t *testing.T) {
	assert.Empty(t, StepsToCards(""))
	assert.Empty(t, StepsToCards("   \n\n  "))
}
