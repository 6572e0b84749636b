package http1

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/", "/"},
		{"//", "/"},
		{"/foo", "/foo"},
		{"/foo/", "/foo"},
		{"/foo///", "/foo"},
		{"/a/b/", "/a/b"},
		{"/%2F/", "/%2F"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizePath(c.in); got != c.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSplitTarget(t *testing.T) {
	cases := []struct{ in, path, query string }{
		{"/x", "/x", ""},
		{"/x?", "/x", ""},
		{"/x?a=1", "/x", "a=1"},
		{"/x?a=1?b=2", "/x", "a=1?b=2"},
	}
	for _, c := range cases {
		p, q := SplitTarget(c.in)
		if p != c.path || q != c.query {
			t.Errorf("SplitTarget(%q) = %q, %q", c.in, p, q)
		}
	}
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery("a=1&b=2&c")
	if len(q) != 2 || q["a"] != "1" || q["b"] != "2" {
		t.Fatalf("query=%v", q)
	}
	q = ParseQuery("k=%20v&=empty&e=")
	if q["k"] != "%20v" || q[""] != "empty" || q["e"] != "" || len(q) != 3 {
		t.Fatalf("query=%v", q)
	}
	if len(ParseQuery("")) != 0 {
		t.Fatal("empty query should be empty map")
	}
}
