package subtitles

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ConvertOptions controls ASS to SRT conversion.
type ConvertOptions struct {
	// RemoveEffects drops dialogue events that carry an effect (scrolls,
	// banners) or consist purely of drawing commands.
	RemoveEffects bool
	// MergeDuplicates collapses consecutive events with identical text into
	// one entry spanning their combined time range.
	MergeDuplicates bool
}

type dialogueEvent struct {
	start  time.Duration
	end    time.Duration
	text   string
	effect string
}

var overrideTagPattern = regexp.MustCompile(`\{[^}]*\}`)

// ConvertASS reads an ASS subtitle file and writes the SRT rendition to
// srtPath. Styling override tags are stripped; only the dialogue text and
// timing survive.
func ConvertASS(assPath, srtPath string, opts ConvertOptions) error {
	file, err := os.Open(assPath)
	if err != nil {
		return fmt.Errorf("open ass file: %w", err)
	}
	defer file.Close()

	events, err := parseEvents(file)
	if err != nil {
		return fmt.Errorf("parse %q: %w", assPath, err)
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].start < events[j].start })

	var kept []dialogueEvent
	for _, event := range events {
		text := cleanDialogueText(event.text)
		if text == "" {
			continue
		}
		if opts.RemoveEffects && (event.effect != "" || isDrawing(event.text)) {
			continue
		}
		event.text = text
		if opts.MergeDuplicates && len(kept) > 0 && kept[len(kept)-1].text == text {
			if event.end > kept[len(kept)-1].end {
				kept[len(kept)-1].end = event.end
			}
			continue
		}
		kept = append(kept, event)
	}

	var sb strings.Builder
	for i, event := range kept {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(event.start), srtTimestamp(event.end), event.text)
	}

	if err := os.WriteFile(srtPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write srt file: %w", err)
	}
	return nil
}

func parseEvents(file *os.File) ([]dialogueEvent, error) {
	var (
		events    []dialogueEvent
		inEvents  bool
		fieldIdx  map[string]int
		numFields int
	)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		switch {
		case strings.HasPrefix(line, "["):
			inEvents = strings.EqualFold(line, "[Events]")
		case inEvents && strings.HasPrefix(line, "Format:"):
			names := strings.Split(strings.TrimPrefix(line, "Format:"), ",")
			fieldIdx = make(map[string]int, len(names))
			for i, name := range names {
				fieldIdx[strings.ToLower(strings.TrimSpace(name))] = i
			}
			numFields = len(names)
		case inEvents && strings.HasPrefix(line, "Dialogue:"):
			if fieldIdx == nil {
				continue
			}
			values := strings.SplitN(strings.TrimPrefix(line, "Dialogue:"), ",", numFields)
			if len(values) < numFields {
				continue
			}
			event, ok := buildEvent(values, fieldIdx)
			if ok {
				events = append(events, event)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func buildEvent(values []string, fieldIdx map[string]int) (dialogueEvent, bool) {
	field := func(name string) string {
		idx, ok := fieldIdx[name]
		if !ok || idx >= len(values) {
			return ""
		}
		return strings.TrimSpace(values[idx])
	}

	start, okStart := parseASSTime(field("start"))
	end, okEnd := parseASSTime(field("end"))
	if !okStart || !okEnd || end < start {
		return dialogueEvent{}, false
	}
	return dialogueEvent{
		start:  start,
		end:    end,
		text:   field("text"),
		effect: field("effect"),
	}, true
}

// parseASSTime decodes H:MM:SS.cc timestamps.
func parseASSTime(value string) (time.Duration, bool) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, false
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	return total, true
}

func srtTimestamp(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int(d/time.Minute) % 60
	seconds := int(d/time.Second) % 60
	millis := int(d/time.Millisecond) % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func cleanDialogueText(text string) string {
	text = overrideTagPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\N`, "\n")
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\h`, " ")
	return strings.TrimSpace(text)
}

// isDrawing reports whether the raw event text enables ASS drawing mode,
// which produces shapes rather than readable dialogue.
func isDrawing(raw string) bool {
	return strings.Contains(raw, `\p1`) || strings.Contains(raw, `\p2`) || strings.Contains(raw, `\p4`)
}
