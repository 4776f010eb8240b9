package directive

import "testing"

func TestTokenizeSpanAndSub(t *testing.T) {
	raws, err := Tokenize("hi ${name}!")
	if err != nil {
		t.Fatalf("Tokenize error: %s", err.Error())
	}
	if len(raws) != 3 {
		t.Fatalf("got %d raws, want 3: %+v", len(raws), raws)
	}
	if raws[0].Kind != Span || raws[0].Text != "hi " {
		t.Errorf("raws[0] = %+v", raws[0])
	}
	if raws[1].Kind != SubRaw || raws[1].Expr1 == nil {
		t.Errorf("raws[1] = %+v", raws[1])
	}
	if raws[2].Kind != Span || raws[2].Text != "!" {
		t.Errorf("raws[2] = %+v", raws[2])
	}
}

func TestTokenizeDollarEscape(t *testing.T) {
	raws, err := Tokenize("a$$b")
	if err != nil {
		t.Fatalf("Tokenize error: %s", err.Error())
	}
	if len(raws) != 1 || raws[0].Text != "a$b" {
		t.Fatalf("got %+v, want a single span %q", raws, "a$b")
	}
}

func TestTokenizeCommentIsDropped(t *testing.T) {
	raws, err := Tokenize("a$(dropped)b")
	if err != nil {
		t.Fatalf("Tokenize error: %s", err.Error())
	}
	if len(raws) != 2 || raws[0].Text != "a" || raws[1].Text != "b" {
		t.Fatalf("got %+v", raws)
	}
}

func TestTokenizeInclude(t *testing.T) {
	raws, err := Tokenize("$<partial.tmpl>")
	if err != nil {
		t.Fatalf("Tokenize error: %s", err.Error())
	}
	if len(raws) != 1 || raws[0].Kind != Include || raws[0].Text != "partial.tmpl" {
		t.Fatalf("got %+v", raws)
	}
}

func TestTokenizeForRangeExclusiveAndInclusive(t *testing.T) {
	raws, err := Tokenize("$for i from 0..3:$end")
	if err != nil {
		t.Fatalf("Tokenize error: %s", err.Error())
	}
	if raws[0].Kind != ForRangeExc || raws[0].Ident != "i" {
		t.Fatalf("got %+v", raws[0])
	}

	raws, err = Tokenize("$for i from 0..=3:$end")
	if err != nil {
		t.Fatalf("Tokenize error: %s", err.Error())
	}
	if raws[0].Kind != ForRangeInc {
		t.Fatalf("got %+v", raws[0])
	}
}

func TestTokenizeForIter(t *testing.T) {
	raws, err := Tokenize("$for v in items:$end")
	if err != nil {
		t.Fatalf("Tokenize error: %s", err.Error())
	}
	if raws[0].Kind != ForIter || raws[0].Ident != "v" || raws[0].Expr1 == nil {
		t.Fatalf("got %+v", raws[0])
	}
}

func TestTokenizeUnknownKeywordIsError(t *testing.T) {
	if _, err := Tokenize("$bogus:"); err == nil {
		t.Fatal("expected a syntax error for an unknown directive")
	}
}

func TestTokenizeUnterminatedIncludeIsError(t *testing.T) {
	if _, err := Tokenize("$<oops"); err == nil {
		t.Fatal("expected a syntax error for an unterminated include")
	}
}
