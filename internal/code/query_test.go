package code

import "testing"

func TestParseQuery(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		wantText   string
		wantPrefix string
		wantNumber string
		wantOK     bool
	}{
		{"code with space", "ABC 123", "ABC-123", "ABC", "123", true},
		{"trailing words", "abc 00123 some title", "abc-00123", "abc", "00123", true},
		{"full width", "ＡＢＣ　１２３", "ABC-123", "ABC", "123", true},
		{"second token not numeric", "hello world", "hello world", "", "", false},
		{"single token", "ABC-123", "ABC-123", "", "", false},
		{"empty", "", "", "", "", false},
		{"whitespace only", "   ", "   ", "", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			text, tok, ok := ParseQuery(c.in)
			if ok != c.wantOK {
				t.Fatalf("ok=%v，期望 %v", ok, c.wantOK)
			}
			if text != c.wantText {
				t.Fatalf("effective=%q，期望 %q", text, c.wantText)
			}
			if tok.Prefix != c.wantPrefix || tok.Number != c.wantNumber {
				t.Fatalf("token=%+v，期望 {%s %s}", tok, c.wantPrefix, c.wantNumber)
			}
		})
	}
}

func TestParseQuery_TokenStable(t *testing.T) {
	_, a, _ := ParseQuery("ABC 123")
	_, b, _ := ParseQuery("ABC 123")
	if a != b || a.String() != "ABC-123" {
		t.Fatalf("同一输入应派生相同 Token：%v vs %v", a, b)
	}
}
