package subtitles

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleASS = `[Script Info]
Title: sample

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:03.50,Default,,0,0,0,,{\i1}Hello{\i0} there
Dialogue: 0,0:00:04.00,0:00:05.00,Default,,0,0,0,,First line\NSecond line
Dialogue: 0,0:00:06.00,0:00:07.00,Default,,0,0,0,Scroll up,Credits
Dialogue: 0,0:00:08.00,0:00:09.00,Default,,0,0,0,,Repeated
Dialogue: 0,0:00:09.00,0:00:10.00,Default,,0,0,0,,Repeated
`

func convert(t *testing.T, opts ConvertOptions) string {
	t.Helper()
	dir := t.TempDir()
	assPath := filepath.Join(dir, "movie.ass")
	srtPath := filepath.Join(dir, "movie.srt")
	if err := os.WriteFile(assPath, []byte(sampleASS), 0o644); err != nil {
		t.Fatalf("write ass: %v", err)
	}
	if err := ConvertASS(assPath, srtPath, opts); err != nil {
		t.Fatalf("convert: %v", err)
	}
	out, err := os.ReadFile(srtPath)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	return string(out)
}

func TestConvertASSStripsOverrideTags(t *testing.T) {
	out := convert(t, ConvertOptions{})
	if !strings.Contains(out, "Hello there") {
		t.Fatalf("override tags should be stripped:\n%s", out)
	}
	if strings.Contains(out, `{\i1}`) {
		t.Fatalf("tag leaked into output:\n%s", out)
	}
}

func TestConvertASSTimestamps(t *testing.T) {
	out := convert(t, ConvertOptions{})
	if !strings.Contains(out, "00:00:01,000 --> 00:00:03,500") {
		t.Fatalf("unexpected timestamps:\n%s", out)
	}
}

func TestConvertASSLineBreaks(t *testing.T) {
	out := convert(t, ConvertOptions{})
	if !strings.Contains(out, "First line\nSecond line") {
		t.Fatalf("expected hard line break:\n%s", out)
	}
}

func TestConvertASSRemoveEffects(t *testing.T) {
	withEffects := convert(t, ConvertOptions{})
	if !strings.Contains(withEffects, "Credits") {
		t.Fatalf("effect line should survive by default:\n%s", withEffects)
	}
	without := convert(t, ConvertOptions{RemoveEffects: true})
	if strings.Contains(without, "Credits") {
		t.Fatalf("effect line should be dropped:\n%s", without)
	}
}

func TestConvertASSMergeDuplicates(t *testing.T) {
	merged := convert(t, ConvertOptions{MergeDuplicates: true})
	if strings.Count(merged, "Repeated") != 1 {
		t.Fatalf("duplicates should merge:\n%s", merged)
	}
	if !strings.Contains(merged, "00:00:08,000 --> 00:00:10,000") {
		t.Fatalf("merged entry should span both events:\n%s", merged)
	}
}
