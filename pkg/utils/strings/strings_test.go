package strings_test

import (
	"testing"

	kstr "github.com/idtrace/traceability-controller/pkg/utils/strings"
)

func TestTrimPrefixAll(t *testing.T) {
	for name, testcase := range map[string]struct {
		s      string
		prefix string
		want   string
	}{
		"single prefix":   {"/path", "/", "path"},
		"repeated prefix": {"///path", "/", "path"},
		"no prefix":       {"path", "/", "path"},
		"empty string":    {"", "/", ""},
	} {
		t.Run(name, func(t *testing.T) {
			if got := kstr.TrimPrefixAll(testcase.s, testcase.prefix); got != testcase.want {
				t.Errorf("unmatch: %s, expected: %s", got, testcase.want)
			}
		})
	}
}

func TestSupplySuffix(t *testing.T) {
	for name, testcase := range map[string]struct {
		text   string
		suffix string
		want   string
	}{
		"suffix is added":   {"http://agent:8020", "/", "http://agent:8020/"},
		"suffix is kept":    {"http://agent:8020/", "/", "http://agent:8020/"},
		"empty text":        {"", "/", "/"},
	} {
		t.Run(name, func(t *testing.T) {
			if got := kstr.SupplySuffix(testcase.text, testcase.suffix); got != testcase.want {
				t.Errorf("unmatch: %s, expected: %s", got, testcase.want)
			}
		})
	}
}
