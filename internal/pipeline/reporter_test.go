package pipeline

import (
	"fmt"
	"sync"
	"testing"

	"submerge/internal/scan"
)

func TestReporterConcurrentRecord(t *testing.T) {
	reporter := NewReporter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kind := OutcomeMerged
			if i%5 == 0 {
				kind = OutcomeFailed
			}
			reporter.Record(Outcome{
				Video: scan.VideoFile{Path: fmt.Sprintf("/v/m%02d.mkv", i)},
				Kind:  kind,
			})
		}(i)
	}
	wg.Wait()

	stats := reporter.Stats()
	if stats.Total != 50 || stats.Merged != 40 || stats.Failed != 10 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Elapsed <= 0 {
		t.Fatalf("elapsed = %v", stats.Elapsed)
	}
}

func TestReporterOutcomesSortedByPath(t *testing.T) {
	reporter := NewReporter()
	for _, path := range []string{"/v/c.mkv", "/v/a.mkv", "/v/b.mkv"} {
		reporter.Record(Outcome{Video: scan.VideoFile{Path: path}, Kind: OutcomeMerged})
	}
	outcomes := reporter.Outcomes()
	for i, want := range []string{"/v/a.mkv", "/v/b.mkv", "/v/c.mkv"} {
		if outcomes[i].Video.Path != want {
			t.Fatalf("outcomes[%d] = %q, want %q", i, outcomes[i].Video.Path, want)
		}
	}
}
