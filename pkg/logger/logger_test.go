package logger

import "testing"

func TestInitLevels(t *testing.T) {
	cases := map[string]string{
		"debug":   "debug",
		"DEBUG":   "debug",
		"warn":    "warn",
		"warning": "warn",
		"error":   "error",
		"fatal":   "fatal",
		"":        "info",
		"bogus":   "info",
	}
	for in, want := range cases {
		Init(in)
		if got := LevelString(); got != want {
			t.Fatalf("Init(%q): got level %q, want %q", in, got, want)
		}
	}
	Init("info")
}

func TestShouldLog(t *testing.T) {
	Init("warn")
	if shouldLog(LevelDebug) || shouldLog(LevelInfo) {
		t.Fatalf("debug/info should be suppressed at warn level")
	}
	if !shouldLog(LevelWarn) || !shouldLog(LevelError) {
		t.Fatalf("warn/error should pass at warn level")
	}
	Init("info")
}
