package controls

import (
	"math"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/marocz/launchdash/pkg/types"
	"github.com/marocz/launchdash/server/internal/config"
	"github.com/marocz/launchdash/server/internal/dataset"
)

func table(recs ...types.Record) *dataset.Table {
	if len(recs) == 0 {
		recs = []types.Record{
			{LaunchSite: "SiteA", PayloadMassKg: 500, Outcome: types.Success, BoosterCategory: "v1.0"},
			{LaunchSite: "SiteA", PayloadMassKg: 3000, Outcome: types.Failure, BoosterCategory: "FT"},
			{LaunchSite: "SiteB", PayloadMassKg: 5300, Outcome: types.Success, BoosterCategory: "FT"},
		}
	}
	return dataset.FromRecords(recs)
}

func TestOptions_SiteDropdown(t *testing.T) {
	opts := Options(table(), config.Default().Controls)
	want := []SiteOption{
		{Label: "All Sites", Value: "ALL"},
		{Label: "SiteA", Value: "SiteA"},
		{Label: "SiteB", Value: "SiteB"},
	}
	if diff := cmp.Diff(want, opts.Site.Options); diff != "" {
		t.Errorf("site options mismatch (-want +got):\n%s", diff)
	}
	if opts.Site.Value != "ALL" || opts.Site.AllValue != "ALL" {
		t.Errorf("value/all_value: got %q/%q, want ALL/ALL", opts.Site.Value, opts.Site.AllValue)
	}
	if opts.Site.Placeholder != "Select a Launch Site" || !opts.Site.Searchable {
		t.Errorf("placeholder/searchable: got %q/%v", opts.Site.Placeholder, opts.Site.Searchable)
	}
}

func TestOptions_SiteNamedALL(t *testing.T) {
	tbl := table(types.Record{LaunchSite: "ALL", PayloadMassKg: 1})
	opts := Options(tbl, config.Default().Controls)
	if opts.Site.AllValue != "ALL*" {
		t.Fatalf("all_value: got %q, want ALL*", opts.Site.AllValue)
	}
	if opts.Site.Options[1].Value != "ALL" {
		t.Errorf("real site option: got %q, want ALL", opts.Site.Options[1].Value)
	}
}

func TestOptions_PayloadSlider(t *testing.T) {
	opts := Options(table(), config.Default().Controls)
	s := opts.Payload
	if s.Min != 500 || s.Max != 5300 {
		t.Errorf("bounds: got (%v, %v), want (500, 5300)", s.Min, s.Max)
	}
	if s.Step != 1000 {
		t.Errorf("step: got %v, want 1000", s.Step)
	}
	if s.Value != [2]float64{500, 5300} {
		t.Errorf("value: got %v, want [500 5300]", s.Value)
	}
	want := []Mark{{0, "0 kg"}, {2000, "2000 kg"}, {4000, "4000 kg"}}
	if diff := cmp.Diff(want, s.Marks); diff != "" {
		t.Errorf("marks mismatch (-want +got):\n%s", diff)
	}
}

func TestMarks_IncludesMaxWhenOnInterval(t *testing.T) {
	got := marks(4000, 2000)
	if len(got) != 3 || got[2].Value != 4000 {
		t.Errorf("marks(4000, 2000): got %v", got)
	}
}

func TestMarks_CappedForWideRanges(t *testing.T) {
	cases := []struct {
		max, interval float64
	}{
		{1e9, 1},
		{1e18, 1},
		{9e15, 2000},
	}
	for _, tc := range cases {
		got := marks(tc.max, tc.interval)
		if len(got) == 0 || len(got) > maxMarks+1 {
			t.Errorf("marks(%g, %g): got %d marks, want 1..%d", tc.max, tc.interval, len(got), maxMarks+1)
			continue
		}
		if got[0].Value != 0 || got[len(got)-1].Value > tc.max {
			t.Errorf("marks(%g, %g): got span %v..%v", tc.max, tc.interval, got[0].Value, got[len(got)-1].Value)
		}
	}
	if got := marks(1e9, 1); got[1].Label != "20000000 kg" {
		t.Errorf("marks(1e9, 1)[1].Label: got %q, want \"20000000 kg\"", got[1].Label)
	}
}

func TestMarks_Degenerate(t *testing.T) {
	for _, tc := range [][2]float64{{-1, 1000}, {5000, 0}, {math.Inf(1), 1000}, {math.NaN(), 1000}} {
		if got := marks(tc[0], tc[1]); len(got) != 0 {
			t.Errorf("marks(%v, %v): got %v, want none", tc[0], tc[1], got)
		}
	}
}

func TestFromQuery_Defaults(t *testing.T) {
	st, err := FromQuery(url.Values{}, table())
	if err != nil {
		t.Fatalf("FromQuery: %v", err)
	}
	if !st.Site.IsAll() {
		t.Error("site: want all sites")
	}
	if st.Payload != (types.PayloadRange{Lo: 500, Hi: 5300}) {
		t.Errorf("payload: got %+v", st.Payload)
	}
}

func TestFromQuery_Values(t *testing.T) {
	q := url.Values{"site": {"SiteB"}, "payload_min": {"1000"}, "payload_max": {"2500.5"}}
	st, err := FromQuery(q, table())
	if err != nil {
		t.Fatalf("FromQuery: %v", err)
	}
	if s, ok := st.Site.Site(); !ok || s != "SiteB" {
		t.Errorf("site: got (%q, %v)", s, ok)
	}
	if st.Payload != (types.PayloadRange{Lo: 1000, Hi: 2500.5}) {
		t.Errorf("payload: got %+v", st.Payload)
	}
}

func TestFromQuery_InvertedRangeAccepted(t *testing.T) {
	q := url.Values{"payload_min": {"4000"}, "payload_max": {"1000"}}
	st, err := FromQuery(q, table())
	if err != nil {
		t.Fatalf("inverted range should not be rejected: %v", err)
	}
	if st.Payload.Lo != 4000 || st.Payload.Hi != 1000 {
		t.Errorf("payload: got %+v", st.Payload)
	}
}

func TestFromQuery_BadNumber(t *testing.T) {
	for _, q := range []url.Values{
		{"payload_min": {"heavy"}},
		{"payload_max": {"NaN"}},
		{"payload_max": {"+Inf"}},
	} {
		if _, err := FromQuery(q, table()); err == nil {
			t.Errorf("FromQuery(%v): expected error", q)
		}
	}
}

func TestState_QueryRoundTrip(t *testing.T) {
	tbl := table()
	st := State{Site: types.SiteEquals("SiteA"), Payload: types.PayloadRange{Lo: 0, Hi: 4000}}
	back, err := FromQuery(st.Query(tbl), tbl)
	if err != nil {
		t.Fatalf("FromQuery: %v", err)
	}
	if back != st {
		t.Errorf("round trip: got %+v, want %+v", back, st)
	}
}

func TestMessage_Apply(t *testing.T) {
	tbl := table()
	prev := Default(tbl)

	site := "SiteA"
	next, err := Message{Site: &site}.Apply(prev, tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	siteChanged, payloadChanged := Changes(prev, next)
	if !siteChanged || payloadChanged {
		t.Errorf("Changes: got (%v, %v), want (true, false)", siteChanged, payloadChanged)
	}

	next2, err := Message{Payload: []float64{1000, 2000}}.Apply(next, tbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	siteChanged, payloadChanged = Changes(next, next2)
	if siteChanged || !payloadChanged {
		t.Errorf("Changes: got (%v, %v), want (false, true)", siteChanged, payloadChanged)
	}

	all := "ALL"
	next3, _ := Message{Site: &all}.Apply(next2, tbl)
	if !next3.Site.IsAll() {
		t.Error("sentinel should select all sites")
	}
}

func TestMessage_ApplyBadPayload(t *testing.T) {
	tbl := table()
	prev := Default(tbl)
	got, err := Message{Payload: []float64{1000}}.Apply(prev, tbl)
	if err == nil {
		t.Fatal("expected error for one-element payload")
	}
	if got != prev {
		t.Errorf("state changed on error: got %+v", got)
	}
}
