package browser

import (
	"strings"
	"testing"
)

func TestJSStringEscaping(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`#login`, `"#login"`},
		{`a"b`, `"a\"b"`},
		{"line\nbreak", `"line\nbreak"`},
		{`</script>`, `"</script>"`},
	}
	for _, tt := range tests {
		if got := jsString(tt.in); got != tt.want {
			t.Errorf("jsString(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSelectScriptsEmbedEscapedArguments(t *testing.T) {
	script := selectByTextScript(`select[name="country"]`, `O'Brien "special"`)
	if !strings.Contains(script, `"select[name=\"country\"]"`) {
		t.Errorf("selector not escaped:\n%s", script)
	}
	if !strings.Contains(script, `"O'Brien \"special\""`) {
		t.Errorf("text not escaped:\n%s", script)
	}
}

func TestQueryElementsScriptLimit(t *testing.T) {
	script := queryElementsScript("a", 7)
	if !strings.Contains(script, "Math.min(els.length, 7)") {
		t.Errorf("limit not embedded:\n%s", script)
	}
}

func TestSelectByIndexScript(t *testing.T) {
	script := selectByIndexScript("#sel", 3)
	if !strings.Contains(script, "el.selectedIndex = 3") {
		t.Errorf("index not embedded:\n%s", script)
	}
}
