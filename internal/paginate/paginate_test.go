package paginate

import "testing"

func TestSliceScenario25Users(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i + 1
	}
	page := Slice(items, Query{Page: 3, PerPage: 10})
	if len(page.Items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(page.Items))
	}
	if page.From != 21 || page.To != 25 {
		t.Fatalf("expected from=21 to=25, got from=%d to=%d", page.From, page.To)
	}
	if page.LastPage != 3 {
		t.Fatalf("expected lastPage=3, got %d", page.LastPage)
	}
	if page.Items[0] != 21 || page.Items[4] != 25 {
		t.Fatalf("unexpected slice contents: %v", page.Items)
	}
}

func TestSliceInvariants(t *testing.T) {
	for perPage := 1; perPage <= 7; perPage++ {
		for total := 0; total <= 23; total++ {
			items := make([]int, total)
			lastPages := (total + perPage - 1) / perPage
			for p := 1; p <= lastPages+2; p++ {
				page := Slice(items, Query{Page: p, PerPage: perPage})
				if page.LastPage != lastPages {
					t.Fatalf("t=%d p=%d page=%d: lastPage=%d want %d", total, perPage, p, page.LastPage, lastPages)
				}
				if page.To > total {
					t.Fatalf("t=%d p=%d page=%d: to=%d exceeds total", total, perPage, p, page.To)
				}
				if page.From > 0 && page.From > page.To {
					t.Fatalf("t=%d p=%d page=%d: from=%d > to=%d", total, perPage, p, page.From, page.To)
				}
			}
		}
	}
}

func TestSliceOutOfRangePage(t *testing.T) {
	page := Slice([]string{"a", "b", "c"}, Query{Page: 9, PerPage: 10})
	if len(page.Items) != 0 {
		t.Fatalf("expected empty slice, got %v", page.Items)
	}
	if page.From != 0 || page.To != 0 {
		t.Fatalf("expected from=to=0, got from=%d to=%d", page.From, page.To)
	}
	if page.Total != 3 || page.LastPage != 1 || page.CurrentPage != 9 {
		t.Fatalf("view metadata invalid: %+v", page)
	}
}

func TestSliceNormalizesQuery(t *testing.T) {
	page := Slice([]int{1, 2, 3}, Query{Page: 0, PerPage: 0})
	if page.CurrentPage != 1 || page.PerPage != defaultPerPage {
		t.Fatalf("query not normalized: %+v", page)
	}
}

func TestFilterIdempotent(t *testing.T) {
	items := []string{"Alpha", "beta", "Gamma", "alphabet"}
	match := func(s, search string) bool { return MatchFold(search, s) }

	once := Filter(items, "ALPHA", match)
	twice := Filter(once, "ALPHA", match)
	if len(once) != 2 || len(twice) != len(once) {
		t.Fatalf("filter not idempotent: once=%v twice=%v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("filter changed contents on second pass: %v vs %v", once, twice)
		}
	}
}

func TestFilterEmptySearchCopies(t *testing.T) {
	items := []string{"a", "b"}
	out := Filter(items, "  ", nil)
	if len(out) != 2 {
		t.Fatalf("expected full copy, got %v", out)
	}
	out[0] = "mutated"
	if items[0] != "a" {
		t.Fatalf("filter aliased the input slice")
	}
}

func TestMatchFold(t *testing.T) {
	cases := []struct {
		search string
		fields []string
		want   bool
	}{
		{"ali", []string{"Alice", "alice@example.com"}, true},
		{"example", []string{"Alice", "alice@example.com"}, true},
		{"bob", []string{"Alice", "alice@example.com"}, false},
		{"", []string{"anything"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.search, func(t *testing.T) {
			if got := MatchFold(tc.search, tc.fields...); got != tc.want {
				t.Fatalf("MatchFold(%q, %v) = %v, want %v", tc.search, tc.fields, got, tc.want)
			}
		})
	}
}
