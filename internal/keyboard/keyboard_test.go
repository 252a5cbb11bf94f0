package keyboard

import (
	"fmt"
	"testing"

	"github.com/daftarche/bankbook/internal/models"
)

func makeLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("item %d", i)
	}
	return labels
}

func flatten(kb models.Keyboard) []string {
	var out []string
	for _, row := range kb {
		out = append(out, row...)
	}
	return out
}

func contains(kb models.Keyboard, label string) bool {
	for _, b := range flatten(kb) {
		if b == label {
			return true
		}
	}
	return false
}

func countItems(kb models.Keyboard) int {
	n := 0
	for _, b := range flatten(kb) {
		switch b {
		case HomeButton, BackButton, NextPageButton, PrevPageButton:
		default:
			n++
		}
	}
	return n
}

func TestPaginateFirstPage(t *testing.T) {
	kb := Paginate(makeLabels(25), 0, 2, 10, nil)
	if got := countItems(kb); got != 10 {
		t.Errorf("expected 10 items on page 0, got %d", got)
	}
	if !contains(kb, NextPageButton) {
		t.Error("expected next page control on page 0 of 25 labels")
	}
	if contains(kb, PrevPageButton) {
		t.Error("did not expect previous page control on page 0")
	}
}

func TestPaginateLastPage(t *testing.T) {
	kb := Paginate(makeLabels(25), 2, 2, 10, nil)
	if got := countItems(kb); got != 5 {
		t.Errorf("expected 5 items on page 2, got %d", got)
	}
	if !contains(kb, PrevPageButton) {
		t.Error("expected previous page control on page 2")
	}
	if contains(kb, NextPageButton) {
		t.Error("did not expect next page control on the last page")
	}
}

func TestPaginateSinglePage(t *testing.T) {
	kb := Paginate(makeLabels(5), 0, 2, 10, nil)
	if got := countItems(kb); got != 5 {
		t.Errorf("expected 5 items, got %d", got)
	}
	if contains(kb, NextPageButton) || contains(kb, PrevPageButton) {
		t.Error("did not expect any paging controls for a single page")
	}
}

func TestPaginateColumnChunking(t *testing.T) {
	kb := Paginate(makeLabels(5), 0, 2, 10, nil)
	if len(kb[0]) != 2 || len(kb[1]) != 2 || len(kb[2]) != 1 {
		t.Errorf("expected rows of 2,2,1 items, got %v", kb)
	}
}

func TestPaginateAppendsHome(t *testing.T) {
	kb := Paginate(makeLabels(3), 0, 2, 10, models.Keyboard{{BackButton}})
	last := kb[len(kb)-1]
	if len(last) != 1 || last[0] != HomeButton {
		t.Errorf("expected a trailing home row, got %v", last)
	}
}

func TestPaginateFooterWithHome(t *testing.T) {
	kb := Paginate(makeLabels(3), 0, 2, 10, models.Keyboard{{BackButton, HomeButton}})
	homes := 0
	for _, b := range flatten(kb) {
		if b == HomeButton {
			homes++
		}
	}
	if homes != 1 {
		t.Errorf("expected exactly one home button, got %d", homes)
	}
}

func TestPaginateEmptyLabels(t *testing.T) {
	kb := Paginate(nil, 0, 2, 10, models.Keyboard{{BackButton}})
	if got := countItems(kb); got != 0 {
		t.Errorf("expected no item rows for empty labels, got %d items", got)
	}
	if !contains(kb, BackButton) || !contains(kb, HomeButton) {
		t.Error("expected footer and home rows to survive empty labels")
	}
}

func TestPaginateBeyondLastPage(t *testing.T) {
	kb := Paginate(makeLabels(5), 9, 2, 10, nil)
	if got := countItems(kb); got != 0 {
		t.Errorf("expected no items beyond the last page, got %d", got)
	}
	if !contains(kb, PrevPageButton) {
		t.Error("expected previous page control beyond the last page")
	}
}
