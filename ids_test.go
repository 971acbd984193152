package moneybook

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty table", nil, "CUR_001"},
		{"sequence continues", []string{"CUR_001", "CUR_002"}, "CUR_003"},
		{"gaps are not refilled", []string{"CUR_001", "CUR_005"}, "CUR_006"},
		{"foreign prefixes are ignored", []string{"RATE_009", "CUR_002"}, "CUR_003"},
		{"malformed ids are ignored", []string{"CUR_abc", "CUR_1x"}, "CUR_001"},
		{"wide suffix wins over padding", []string{"CUR_1000"}, "CUR_1001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			records := make([]Record, len(tt.ids))
			for i, id := range tt.ids {
				records[i] = Record{"id": id}
			}
			s.setTable("currencies", records)
			if got := s.NextID("currencies", "CUR"); got != tt.want {
				t.Errorf("NextID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextIDThroughOperations(t *testing.T) {
	s := NewStore()
	for i, code := range []string{"USD", "EUR", "GBP"} {
		rec, err := s.AddCurrency(Record{"code": code, "name": code})
		if err != nil {
			t.Fatalf("AddCurrency(%s) error = %v", code, err)
		}
		if want := fmt.Sprintf("CUR_%03d", i+1); rec.ID() != want {
			t.Errorf("AddCurrency(%s) id = %q, want %q", code, rec.ID(), want)
		}
	}

	// Deleting the highest record releases its number.
	if err := s.DeleteCurrency("CUR_003"); err != nil {
		t.Fatalf("DeleteCurrency() error = %v", err)
	}
	rec, err := s.AddCurrency(Record{"code": "JPY", "name": "Yen"})
	if err != nil {
		t.Fatalf("AddCurrency(JPY) error = %v", err)
	}
	if rec.ID() != "CUR_003" {
		t.Errorf("id after deleting the maximum = %q, want CUR_003", rec.ID())
	}
}

func TestNextTimeID(t *testing.T) {
	s := NewStore()

	first := s.NextTimeID("transactions", "TXN")
	if !strings.HasPrefix(first, "TXN") {
		t.Fatalf("NextTimeID() = %q, want TXN prefix", first)
	}
	if _, err := strconv.ParseInt(strings.TrimPrefix(first, "TXN"), 10, 64); err != nil {
		t.Fatalf("NextTimeID() suffix is not numeric: %v", err)
	}

	// An id equal to or newer than the clock forces a bump to max+1, so two
	// allocations in the same millisecond never collide.
	s.setTable("transactions", []Record{{"id": first}})
	second := s.NextTimeID("transactions", "TXN")
	if second <= first {
		t.Errorf("NextTimeID() = %q, want greater than %q", second, first)
	}

	far := "TXN99999999999999"
	s.setTable("transactions", []Record{{"id": far}})
	if got, want := s.NextTimeID("transactions", "TXN"), "TXN100000000000000"; got != want {
		t.Errorf("NextTimeID() after future id = %q, want %q", got, want)
	}
}

func TestNextIDForPanicsOnUnknownTable(t *testing.T) {
	s := NewStore()
	defer func() {
		if recover() == nil {
			t.Errorf("nextIDFor(accounts) did not panic, accounts use time ids")
		}
	}()
	s.nextIDFor("accounts")
}
