package changelog

import (
	"fmt"
	"strings"
	"testing"
)

func largeChangelog(releases int) string {
	var b strings.Builder
	b.WriteString("# Changelog\n\n## [Unreleased]\n### Added\n- Pending\n")
	for i := releases; i > 0; i-- {
		fmt.Fprintf(&b, "\n## [%d.%d.0] - 2023-%02d-01\n", i/10, i%10, i%12+1)
		b.WriteString("### Added\n- Feature one\n- Feature two\n### Fixed\n- A fix\n")
	}
	return b.String()
}

func BenchmarkParse(b *testing.B) {
	text := largeChangelog(500)
	for b.Loop() {
		if _, err := Parse(text); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	text := largeChangelog(500)
	for b.Loop() {
		if _, err := Evaluate(text, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
