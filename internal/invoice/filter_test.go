package invoice

import (
	"testing"

	"github.com/AptsNY/NEO1-MDS-Converter/internal/core"
)

func money(cents int64) *core.Money { return &core.Money{Cents: cents} }

func TestFilterPositive(t *testing.T) {
	txs := []core.SourceTransaction{
		{Index: 0, Amount: money(4500)},
		{Index: 1, Amount: money(-1250)},
		{Index: 2, Amount: nil},
		{Index: 3, Amount: money(1)},
		{Index: 4, Amount: money(0)},
	}

	res := FilterPositive(txs)

	if len(res.Kept)+len(res.Removed) != len(txs) {
		t.Errorf("filter is not count-conserving: %d + %d != %d",
			len(res.Kept), len(res.Removed), len(txs))
	}
	if len(res.Kept) != 2 {
		t.Fatalf("kept %d rows, want 2", len(res.Kept))
	}
	if res.Kept[0].Index != 0 || res.Kept[1].Index != 3 {
		t.Errorf("filter did not preserve order: indices %d, %d",
			res.Kept[0].Index, res.Kept[1].Index)
	}
	for _, tx := range res.Removed {
		if tx.Amount != nil && tx.Amount.Positive() {
			t.Errorf("removed row %d has a positive amount", tx.Index)
		}
	}
}

func TestFilterPositive_NegativeRowShrinksOutputByOne(t *testing.T) {
	txs := []core.SourceTransaction{
		{Index: 0, Amount: money(4500)},
		{Index: 1, Amount: money(-1250)},
		{Index: 2, Amount: money(700)},
	}

	res := FilterPositive(txs)
	if len(res.Kept) != len(txs)-1 {
		t.Errorf("output count = %d, want input - 1 = %d", len(res.Kept), len(txs)-1)
	}
}

func TestFilterPositive_Empty(t *testing.T) {
	res := FilterPositive(nil)
	if len(res.Kept) != 0 || len(res.Removed) != 0 {
		t.Errorf("filter of empty input produced %d/%d rows", len(res.Kept), len(res.Removed))
	}
}
