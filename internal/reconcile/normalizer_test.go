package reconcile

import "testing"

func TestNormalizeBare(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(false, DefaultPrefixes, DefaultAbbreviations)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "diacritics dropped", in: "Ümraniyespor", want: "umraniyespor"},
		{name: "turkish cedilla and s", in: "Beşiktaş", want: "besiktas"},
		{name: "uppercase with accent", in: "FENERBAHÇE", want: "fenerbahce"},
		{name: "portuguese tilde", in: "São Paulo", want: "sao paulo"},
		{name: "prefixes untouched when disabled", in: "Club Atletico Lanus", want: "club atletico lanus"},
		{name: "abbreviations untouched when disabled", in: "Alianza (Pan)", want: "alianza (pan)"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Fatalf("unexpected key: got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestNormalizeStripMode(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(true, DefaultPrefixes, DefaultAbbreviations)

	tests := []struct {
		name string
		in   string
		want string
	}{
		// "Club" precedes "Club Atletico" in the prefix list and only one
		// prefix is ever removed.
		{name: "first listed prefix wins", in: "Club Atletico Lanus", want: "atletico lanus"},
		{name: "one prefix only", in: "Club Deportivo Guadalajara", want: "deportivo guadalajara"},
		{name: "two letter prefix", in: "CA Boca Juniors", want: "boca juniors"},
		{name: "word prefix", in: "Atletico Madrid", want: "madrid"},
		{name: "accented prefix still stripped", in: "Atlético Tucuman", want: "tucuman"},
		{name: "prefix requires following space", in: "Casla", want: "casla"},
		{name: "trailing token is not a prefix", in: "Barcelona SC", want: "barcelona sc"},
		{name: "country code expanded", in: "Alianza (Pan)", want: "alianza panama"},
		{name: "country code case insensitive", in: "Alianza (PAN)", want: "alianza panama"},
		{name: "prefix then country code", in: "CD Olimpia (Par)", want: "olimpia paraguay"},
		{name: "no prefix no code", in: "Galatasaray", want: "galatasaray"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Fatalf("unexpected key: got=%q want=%q", got, tt.want)
			}
		})
	}
}

func TestNormalizeProviderSpellingsConverge(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(false, nil, nil)

	if a, b := n.Normalize("Beşiktaş"), n.Normalize("Besiktas"); a != b {
		t.Fatalf("spellings did not converge: %q vs %q", a, b)
	}
}
