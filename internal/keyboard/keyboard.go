// Package keyboard builds reply keyboard layouts for the dialogue.
//
// It owns the reserved control button labels and the pagination helper used
// by every listing step.
package keyboard

import "github.com/daftarche/bankbook/internal/models"

// Reserved control buttons, recognized verbatim by the step transition rules.
// They must stay distinct from each other and from any menu label.
const (
	HomeButton     = "🏠 Home"
	BackButton     = "🔙 Back"
	SkipButton     = "⏭️ Skip"
	NextPageButton = "Next page ▶️"
	PrevPageButton = "◀️ Previous page"
	FinishButton   = "✅ Finish sending"
	YesButton      = "✅ Yes"
	NoButton       = "❌ No"
	ContinueButton = "✅ Yes, continue"
	EditTextButton = "✏️ No, edit text"
)

// Paginate slices labels into the visible page and assembles the full
// keyboard: item rows chunked into columns, a control row with previous/next
// buttons when applicable, the given footer rows, and a final home row unless
// a footer row already carries the home button.
//
// A page beyond the last one yields no item rows, same as an empty label set.
func Paginate(labels []string, page, columns, pageSize int, footer models.Keyboard) models.Keyboard {
	start := page * pageSize
	end := start + pageSize
	if start > len(labels) {
		start = len(labels)
	}
	if end > len(labels) {
		end = len(labels)
	}
	visible := labels[start:end]

	var kb models.Keyboard
	for i := 0; i < len(visible); i += columns {
		j := i + columns
		if j > len(visible) {
			j = len(visible)
		}
		kb = append(kb, visible[i:j])
	}

	var controls []string
	if page > 0 {
		controls = append(controls, PrevPageButton)
	}
	if page*pageSize+pageSize < len(labels) {
		controls = append(controls, NextPageButton)
	}
	if len(controls) > 0 {
		kb = append(kb, controls)
	}

	hasHome := false
	for _, row := range footer {
		kb = append(kb, row)
		for _, b := range row {
			if b == HomeButton {
				hasHome = true
			}
		}
	}
	if !hasHome {
		kb = append(kb, []string{HomeButton})
	}
	return kb
}
