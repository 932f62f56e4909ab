package wizard

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/lyricard/lyricard/internal/card"
	"github.com/lyricard/lyricard/internal/lrc"
	"github.com/lyricard/lyricard/internal/provider"
)

type mockSearcher struct {
	tracks  []provider.Track
	err     error
	queries []string
}

func (m *mockSearcher) ID() string { return "mock" }

func (m *mockSearcher) Search(_ context.Context, query string) ([]provider.Track, error) {
	m.queries = append(m.queries, query)
	return m.tracks, m.err
}

type mockFetcher struct {
	lines []lrc.Line
	err   error
	calls [][3]string
}

func (m *mockFetcher) ID() string { return "mock" }

func (m *mockFetcher) Fetch(_ context.Context, artist, track, album string) ([]lrc.Line, error) {
	m.calls = append(m.calls, [3]string{artist, track, album})
	return m.lines, m.err
}

var (
	imagine = provider.Track{ID: "1", Name: "Imagine", Artists: []string{"John Lennon"}, Album: "Imagine"}
	jealous = provider.Track{ID: "2", Name: "Jealous Guy", Artists: []string{"John Lennon"}, Album: "Imagine"}

	imagineLyrics = []lrc.Line{
		{Time: 12.3, Text: "Imagine there's no heaven"},
		{Time: 17.8, Text: "It's easy if you try"},
		{Time: 23.1, Text: "No hell below us"},
	}
)

func newMachine(s *mockSearcher, f *mockFetcher) *Machine {
	return New(Config{Searcher: s, Lyrics: f})
}

// run returns a function that executes the Op a transition produced.
func run(t *testing.T) func(Op, error) Outcome {
	t.Helper()
	return func(op Op, err error) Outcome {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if op == nil {
			t.Fatal("expected an op")
		}
		return op(context.Background())
	}
}

// toLyrics drives a machine to StepSelectLyrics with lyrics loaded.
func toLyrics(t *testing.T, m *Machine) {
	t.Helper()
	if !m.Apply(run(t)(m.Submit("imagine"))) {
		t.Fatal("search outcome rejected")
	}
	if !m.Apply(run(t)(m.SelectTrack(imagine))) {
		t.Fatal("lyrics outcome rejected")
	}
}

func TestInitialState(t *testing.T) {
	m := newMachine(&mockSearcher{}, &mockFetcher{})
	s := m.State()
	if s.Step != StepSearch || s.Loading || s.Err != "" || s.Lyrics != nil || len(s.SelectedLines) != 0 {
		t.Errorf("unexpected initial state: %+v", s)
	}
	if !reflect.DeepEqual(s.Customization, card.DefaultOptions()) {
		t.Errorf("customization = %+v", s.Customization)
	}
}

func TestCustomizationSeed(t *testing.T) {
	opts := card.DefaultOptions()
	opts.Font = card.FontSlab
	m := New(Config{Customization: opts})
	if m.State().Customization.Font != card.FontSlab {
		t.Error("configured customization ignored")
	}
}

func TestSubmitBlankQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		s := &mockSearcher{}
		m := newMachine(s, &mockFetcher{})
		op, err := m.Submit(q)
		if !errors.Is(err, ErrBlankQuery) {
			t.Errorf("Submit(%q) error = %v", q, err)
		}
		if op != nil {
			t.Errorf("Submit(%q) returned an op", q)
		}
		st := m.State()
		if st.Step != StepSearch || st.Loading || st.Query != "" {
			t.Errorf("Submit(%q) changed state: %+v", q, st)
		}
		if len(s.queries) != 0 {
			t.Errorf("searcher called for %q", q)
		}
	}
}

func TestSubmitSuccess(t *testing.T) {
	s := &mockSearcher{tracks: []provider.Track{imagine, jealous}}
	m := newMachine(s, &mockFetcher{})

	op, err := m.Submit("  imagine  ")
	if err != nil {
		t.Fatal(err)
	}
	st := m.State()
	if !st.Loading || st.Step != StepSearch || st.Query != "  imagine  " {
		t.Errorf("state after submit: %+v", st)
	}

	if !m.Apply(op(context.Background())) {
		t.Fatal("outcome rejected")
	}
	if !reflect.DeepEqual(s.queries, []string{"imagine"}) {
		t.Errorf("searched %q, want trimmed query", s.queries)
	}
	st = m.State()
	if st.Step != StepSelectSong || st.Loading || st.Err != "" || len(st.Results) != 2 {
		t.Errorf("state after search: %+v", st)
	}
}

func TestSubmitFailure(t *testing.T) {
	s := &mockSearcher{err: provider.ErrSearch}
	m := newMachine(s, &mockFetcher{})
	m.Apply(run(t)(m.Submit("imagine")))

	st := m.State()
	if st.Step != StepSearch || st.Loading || st.Err != MsgSearchFailed || len(st.Results) != 0 {
		t.Errorf("state after failed search: %+v", st)
	}

	// A later successful search clears the error.
	s.err = nil
	s.tracks = []provider.Track{imagine}
	m.Apply(run(t)(m.Submit("imagine")))
	if st := m.State(); st.Err != "" || st.Step != StepSelectSong {
		t.Errorf("state after retry: %+v", st)
	}
}

func TestSelectTrack(t *testing.T) {
	f := &mockFetcher{lines: imagineLyrics}
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, f)
	m.Apply(run(t)(m.Submit("imagine")))

	op, err := m.SelectTrack(imagine)
	if err != nil {
		t.Fatal(err)
	}
	st := m.State()
	if st.Step != StepSelectLyrics || !st.Loading || st.Lyrics != nil || st.Selected == nil || st.Selected.ID != "1" {
		t.Errorf("state while loading lyrics: %+v", st)
	}
	if err := m.ToggleLine("Imagine there's no heaven"); !errors.Is(err, ErrLyricsPending) {
		t.Errorf("toggle while loading = %v", err)
	}

	m.Apply(op(context.Background()))
	if !reflect.DeepEqual(f.calls, [][3]string{{"John Lennon", "Imagine", "Imagine"}}) {
		t.Errorf("fetch calls = %v", f.calls)
	}
	st = m.State()
	if st.Loading || st.Err != "" || !reflect.DeepEqual(st.Lyrics, imagineLyrics) {
		t.Errorf("state after lyrics: %+v", st)
	}
}

func TestLyricsOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		lines   []lrc.Line
		err     error
		wantErr string
		wantLen int
	}{
		{"found", imagineLyrics, nil, "", 3},
		{"not found", []lrc.Line{}, nil, MsgLyricsNotFound, 0},
		{"nil result", nil, nil, MsgLyricsNotFound, 0},
		{"failure", nil, provider.ErrLyrics, MsgLyricsFailed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, &mockFetcher{lines: tt.lines, err: tt.err})
			toLyrics(t, m)
			st := m.State()
			if st.Err != tt.wantErr {
				t.Errorf("Err = %q, want %q", st.Err, tt.wantErr)
			}
			if st.Lyrics == nil {
				t.Fatal("lyrics should be non-nil once fetched")
			}
			if len(st.Lyrics) != tt.wantLen {
				t.Errorf("len(Lyrics) = %d, want %d", len(st.Lyrics), tt.wantLen)
			}
			if st.Step != StepSelectLyrics || st.Loading {
				t.Errorf("unexpected state: %+v", st)
			}
		})
	}
}

func TestToggleLine(t *testing.T) {
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, &mockFetcher{lines: imagineLyrics})
	toLyrics(t, m)

	a, b := imagineLyrics[0].Text, imagineLyrics[2].Text
	if err := m.ToggleLine(b); err != nil {
		t.Fatal(err)
	}
	if err := m.ToggleLine(a); err != nil {
		t.Fatal(err)
	}
	if got := m.State().SelectedLines; !reflect.DeepEqual(got, []string{b, a}) {
		t.Errorf("selection order = %q, want insertion order", got)
	}

	if err := m.ToggleLine(b); err != nil {
		t.Fatal(err)
	}
	if got := m.State().SelectedLines; !reflect.DeepEqual(got, []string{a}) {
		t.Errorf("after removing %q: %q", b, got)
	}

	if err := m.ToggleLine("not a lyric"); !errors.Is(err, ErrUnknownLine) {
		t.Errorf("unknown line error = %v", err)
	}
}

func TestToggleTwiceRestoresSelection(t *testing.T) {
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, &mockFetcher{lines: imagineLyrics})
	toLyrics(t, m)
	m.ToggleLine(imagineLyrics[0].Text)
	before := m.State().SelectedLines

	m.ToggleLine(imagineLyrics[1].Text)
	m.ToggleLine(imagineLyrics[1].Text)
	if got := m.State().SelectedLines; !reflect.DeepEqual(got, before) {
		t.Errorf("selection = %q, want %q", got, before)
	}
}

func TestContinue(t *testing.T) {
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, &mockFetcher{lines: imagineLyrics})
	toLyrics(t, m)

	if err := m.Continue(); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("continue with no lines = %v", err)
	}
	if m.Step() != StepSelectLyrics {
		t.Fatal("step changed on rejected continue")
	}

	m.ToggleLine(imagineLyrics[1].Text)
	if err := m.Continue(); err != nil {
		t.Fatal(err)
	}
	if m.Step() != StepCustomize {
		t.Errorf("step = %s", m.Step())
	}

	spec, err := m.Card()
	if err != nil {
		t.Fatal(err)
	}
	if spec.Track.ID != imagine.ID || !reflect.DeepEqual(spec.Lines, []string{imagineLyrics[1].Text}) {
		t.Errorf("card spec = %+v", spec)
	}
}

func TestWrongStep(t *testing.T) {
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, &mockFetcher{lines: imagineLyrics})

	if _, err := m.SelectTrack(imagine); !IsWrongStep(err) {
		t.Errorf("SelectTrack in search = %v", err)
	}
	if err := m.ToggleLine("x"); !IsWrongStep(err) {
		t.Errorf("ToggleLine in search = %v", err)
	}
	if err := m.Continue(); !IsWrongStep(err) {
		t.Errorf("Continue in search = %v", err)
	}
	if err := m.SetCustomization(card.DefaultOptions()); !IsWrongStep(err) {
		t.Errorf("SetCustomization in search = %v", err)
	}
	if _, err := m.Card(); !IsWrongStep(err) {
		t.Errorf("Card in search = %v", err)
	}

	toLyrics(t, m)
	if _, err := m.Submit("again"); !IsWrongStep(err) {
		t.Errorf("Submit in lyrics = %v", err)
	}
}

func TestSetCustomization(t *testing.T) {
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, &mockFetcher{lines: imagineLyrics})
	toLyrics(t, m)
	m.ToggleLine(imagineLyrics[0].Text)
	m.Continue()

	opts := card.DefaultOptions().NextFont().NextEffect()
	opts.TextLight = false
	if err := m.SetCustomization(opts); err != nil {
		t.Fatal(err)
	}
	if got := m.State().Customization; !reflect.DeepEqual(got, opts) {
		t.Errorf("customization = %+v", got)
	}

	bad := opts
	bad.Size = "Gigantic"
	if err := m.SetCustomization(bad); !errors.Is(err, card.ErrInvalidOption) {
		t.Errorf("invalid options error = %v", err)
	}
	if got := m.State().Customization; !reflect.DeepEqual(got, opts) {
		t.Error("invalid options replaced customization")
	}
}

func TestBack(t *testing.T) {
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine, jealous}}, &mockFetcher{lines: imagineLyrics})
	toLyrics(t, m)
	m.ToggleLine(imagineLyrics[0].Text)
	m.Continue()

	m.Back()
	st := m.State()
	if st.Step != StepSelectLyrics || len(st.SelectedLines) != 1 || st.Selected == nil {
		t.Errorf("back from customize: %+v", st)
	}

	m.Back()
	st = m.State()
	if st.Step != StepSelectSong || st.Selected != nil || st.Lyrics != nil || len(st.SelectedLines) != 0 {
		t.Errorf("back from lyrics: %+v", st)
	}
	if len(st.Results) != 2 {
		t.Errorf("results should survive back from lyrics, got %d", len(st.Results))
	}

	m.Back()
	st = m.State()
	if st.Step != StepSearch || len(st.Results) != 0 || st.Query != "imagine" {
		t.Errorf("back from select song: %+v", st)
	}

	m.Back()
	if again := m.State(); again.Step != StepSearch || again.Query != "imagine" {
		t.Errorf("back from search should be a no-op: %+v", again)
	}
}

func TestBackClearsErrorAndLoading(t *testing.T) {
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, &mockFetcher{lines: []lrc.Line{}})
	toLyrics(t, m)
	if m.State().Err == "" {
		t.Fatal("expected not-found error")
	}
	m.Back()
	if st := m.State(); st.Err != "" || st.Loading {
		t.Errorf("back left error or loading: %+v", st)
	}
}

func TestStaleSearchOutcomeDiscarded(t *testing.T) {
	s := &mockSearcher{tracks: []provider.Track{imagine}}
	m := newMachine(s, &mockFetcher{})

	older, _ := m.Submit("imagine")
	newer, _ := m.Submit("jealous guy")
	staleOut := older(context.Background())
	s.tracks = []provider.Track{jealous}
	freshOut := newer(context.Background())
	if m.Apply(staleOut) {
		t.Error("superseded search applied")
	}
	if !m.Apply(freshOut) {
		t.Fatal("latest search rejected")
	}
	if st := m.State(); len(st.Results) != 1 || st.Results[0].ID != jealous.ID {
		t.Errorf("results = %+v", st.Results)
	}
}

func TestBackAtSearchIsNoOp(t *testing.T) {
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, &mockFetcher{})

	op, err := m.Submit("imagine")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	m.Back()
	if st := m.State(); st.Step != StepSearch || !st.Loading {
		t.Fatalf("back at search changed state: %+v", st)
	}
	if !m.Apply(op(context.Background())) {
		t.Fatal("in-flight search dropped by back at search")
	}
	if st := m.State(); st.Step != StepSelectSong || len(st.Results) != 1 {
		t.Errorf("state = %+v", st)
	}
}

func TestStaleLyricsOutcomeDiscarded(t *testing.T) {
	f := &mockFetcher{lines: imagineLyrics}
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine, jealous}}, f)
	m.Apply(run(t)(m.Submit("john lennon")))

	first, _ := m.SelectTrack(imagine)
	m.Back()
	second, _ := m.SelectTrack(jealous)

	f.lines = []lrc.Line{{Time: 1, Text: "I was dreaming of the past"}}
	if !m.Apply(second(context.Background())) {
		t.Fatal("current lyrics rejected")
	}
	f.lines = imagineLyrics
	if m.Apply(first(context.Background())) {
		t.Fatal("lyrics for a previously selected track applied")
	}
	st := m.State()
	if st.Selected.ID != jealous.ID || len(st.Lyrics) != 1 || st.Lyrics[0].Text != "I was dreaming of the past" {
		t.Errorf("state = %+v", st)
	}
}

func TestApplyNil(t *testing.T) {
	m := newMachine(&mockSearcher{}, &mockFetcher{})
	if m.Apply(nil) {
		t.Error("nil outcome applied")
	}
}

func TestStateIsACopy(t *testing.T) {
	m := newMachine(&mockSearcher{tracks: []provider.Track{imagine}}, &mockFetcher{lines: imagineLyrics})
	toLyrics(t, m)
	m.ToggleLine(imagineLyrics[0].Text)

	st := m.State()
	st.SelectedLines[0] = "mutated"
	st.Selected.Name = "mutated"
	st.Lyrics[0].Text = "mutated"

	again := m.State()
	if again.SelectedLines[0] == "mutated" || again.Selected.Name == "mutated" || again.Lyrics[0].Text == "mutated" {
		t.Error("State exposed internal storage")
	}
}

func TestStepString(t *testing.T) {
	want := []string{"Search", "Select Song", "Select Lyrics", "Customize"}
	for i, s := range Steps {
		if s.String() != want[i] {
			t.Errorf("Steps[%d] = %q, want %q", i, s, want[i])
		}
	}
	if Step(9).String() != "Unknown" {
		t.Error("out of range step")
	}
}
