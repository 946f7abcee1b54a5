package docparse

import (
	"testing"
)

func TestYearFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"2013_0.pdf", "2013"},
		{"un_contributions_2005.pdf", "2005"},
		{"sessions/2008/listing.pdf", "2008"},
		{"delegates rev2.pdf", "NA"},
		{"notes.txt", "NA"},
		{"", "NA"},
	}

	for _, tt := range tests {
		if got := YearFromFilename(tt.name); got != tt.want {
			t.Errorf("YearFromFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/pdfs/2013_0.pdf", "2013_0"},
		{"2013_0.pdf", "2013_0"},
		{"debug_raw_text_2005.txt", "debug_raw_text_2005"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		if got := Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	pages := []Page{
		{Number: 1, Markdown: "first batch"},
		{Number: 11, Markdown: "second batch"},
	}
	if got := Text(pages); got != "first batch\nsecond batch" {
		t.Errorf("Text() = %q", got)
	}

	if got := Text(nil); got != "" {
		t.Errorf("Text(nil) = %q, want empty", got)
	}
}

func TestBatchRanges(t *testing.T) {
	tests := []struct {
		pages int
		batch int
		want  []pageRange
	}{
		{25, 10, []pageRange{{1, 10}, {11, 20}, {21, 25}}},
		{10, 10, []pageRange{{1, 10}}},
		{3, 10, []pageRange{{1, 3}}},
		{0, 10, nil},
		{5, 0, []pageRange{{1, 5}}},
	}

	for _, tt := range tests {
		got := batchRanges(tt.pages, tt.batch)
		if len(got) != len(tt.want) {
			t.Errorf("batchRanges(%d, %d) = %v, want %v", tt.pages, tt.batch, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("batchRanges(%d, %d)[%d] = %v, want %v", tt.pages, tt.batch, i, got[i], tt.want[i])
			}
		}
	}
}

func TestNewParser(t *testing.T) {
	t.Run("hosted requires api key", func(t *testing.T) {
		if _, err := NewParser(Config{Mode: ModeHosted}); err == nil {
			t.Fatal("NewParser() without api key succeeded, want error")
		}
	})

	t.Run("hosted", func(t *testing.T) {
		p, err := NewParser(Config{Mode: ModeHosted, APIKey: "test-key"})
		if err != nil {
			t.Fatalf("NewParser() error = %v", err)
		}
		if p.Name() != HostedParserName {
			t.Errorf("Name() = %q, want %q", p.Name(), HostedParserName)
		}
	})

	t.Run("empty mode defaults to hosted", func(t *testing.T) {
		p, err := NewParser(Config{APIKey: "test-key"})
		if err != nil {
			t.Fatalf("NewParser() error = %v", err)
		}
		if _, ok := p.(*HostedClient); !ok {
			t.Errorf("NewParser() returned %T, want *HostedClient", p)
		}
	})

	t.Run("local", func(t *testing.T) {
		p, err := NewParser(Config{Mode: ModeLocal})
		if err != nil {
			t.Fatalf("NewParser() error = %v", err)
		}
		if _, ok := p.(*LocalClient); !ok {
			t.Errorf("NewParser() returned %T, want *LocalClient", p)
		}
	})

	t.Run("text", func(t *testing.T) {
		p, err := NewParser(Config{Mode: ModeText})
		if err != nil {
			t.Fatalf("NewParser() error = %v", err)
		}
		if _, ok := p.(*TextLoader); !ok {
			t.Errorf("NewParser() returned %T, want *TextLoader", p)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		if _, err := NewParser(Config{Mode: "carrier-pigeon"}); err == nil {
			t.Fatal("NewParser() with unknown mode succeeded, want error")
		}
	})
}
