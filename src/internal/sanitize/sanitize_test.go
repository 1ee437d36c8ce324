package sanitize

import "testing"

func TestCleanString(t *testing.T) {
	if got := CleanString("  hello\x00world  ", 0); got != "helloworld" {
		t.Fatalf("control chars: %q", got)
	}
	if got := CleanString("abcdef", 3); got != "abc" {
		t.Fatalf("truncate: %q", got)
	}
	if got := CleanString("", 10); got != "" {
		t.Fatalf("empty: %q", got)
	}
}

func TestStripTeXBraces(t *testing.T) {
	if got := StripTeX("The {TeX}book"); got != "The TeXbook" {
		t.Fatalf("braces: %q", got)
	}
	if got := StripTeX("{Towards {Better} Systems}"); got != "Towards Better Systems" {
		t.Fatalf("nested: %q", got)
	}
}

func TestStripTeXAccents(t *testing.T) {
	cases := map[string]string{
		`G{\"o}del`:         "Godel",
		`\'etude`:           "etude",
		`Fran\c{c}ois`:      "Francois",
		`Erd\H{o}s`:         "Erdos",
		`M{\"u}ller~et~al.`: "Muller et al.",
	}
	for in, want := range cases {
		if got := StripTeX(in); got != want {
			t.Fatalf("StripTeX(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripTeXCommands(t *testing.T) {
	if got := StripTeX(`\emph{Important} work`); got != "Important work" {
		t.Fatalf("named command: %q", got)
	}
	if got := StripTeX(`Fish \& Chips at 100\%`); got != "Fish & Chips at 100%" {
		t.Fatalf("escapes: %q", got)
	}
}
