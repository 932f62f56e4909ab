package wizard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lyricard/lyricard/internal/providers/itunes"
	"github.com/lyricard/lyricard/internal/providers/lrclib"
	"github.com/lyricard/lyricard/internal/wizard"
)

func TestImagineWithoutLyrics(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("term") != "Imagine" {
			t.Errorf("term = %q", r.URL.Query().Get("term"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"resultCount": 2,
			"results": []map[string]any{
				{
					"wrapperType":    "track",
					"kind":           "song",
					"trackId":        1440853776,
					"trackName":      "Imagine",
					"artistName":     "John Lennon",
					"collectionName": "Imagine",
					"artworkUrl100":  "https://is1.example/100x100bb.jpg",
				},
				{"wrapperType": "collection", "collectionName": "Imagine"},
			},
		})
	}))
	defer search.Close()

	lyrics := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":404,"name":"TrackNotFound"}`, http.StatusNotFound)
	}))
	defer lyrics.Close()

	m := wizard.New(wizard.Config{
		Searcher: itunes.New(itunes.Config{BaseURL: search.URL}),
		Lyrics:   lrclib.New(lrclib.Config{BaseURL: lyrics.URL}),
	})
	ctx := context.Background()

	op, err := m.Submit("Imagine")
	if err != nil {
		t.Fatal(err)
	}
	m.Apply(op(ctx))
	st := m.State()
	if st.Step != wizard.StepSelectSong || len(st.Results) != 1 {
		t.Fatalf("after search: %+v", st)
	}
	if st.Results[0].PrimaryImage() != "https://is1.example/600x600bb.jpg" {
		t.Errorf("artwork = %q", st.Results[0].PrimaryImage())
	}

	op, err = m.SelectTrack(st.Results[0])
	if err != nil {
		t.Fatal(err)
	}
	m.Apply(op(ctx))
	st = m.State()
	if st.Step != wizard.StepSelectLyrics {
		t.Fatalf("step = %s", st.Step)
	}
	if st.Lyrics == nil || len(st.Lyrics) != 0 {
		t.Errorf("lyrics = %#v, want empty", st.Lyrics)
	}
	if st.Err != wizard.MsgLyricsNotFound {
		t.Errorf("Err = %q", st.Err)
	}
	if err := m.Continue(); !errors.Is(err, wizard.ErrNothingSelected) {
		t.Errorf("Continue = %v", err)
	}
}

func TestLyricsServerError(t *testing.T) {
	search := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"wrapperType": "track", "kind": "song", "trackId": 1, "trackName": "Imagine", "artistName": "John Lennon"},
			},
		})
	}))
	defer search.Close()
	lyrics := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer lyrics.Close()

	m := wizard.New(wizard.Config{
		Searcher: itunes.New(itunes.Config{BaseURL: search.URL}),
		Lyrics:   lrclib.New(lrclib.Config{BaseURL: lyrics.URL}),
	})
	ctx := context.Background()
	op, _ := m.Submit("Imagine")
	m.Apply(op(ctx))
	op, _ = m.SelectTrack(m.State().Results[0])
	m.Apply(op(ctx))

	if st := m.State(); st.Err != wizard.MsgLyricsFailed || len(st.Lyrics) != 0 {
		t.Errorf("state = %+v", st)
	}
}
