// tactest runs the Markdown golden cases under testdata/ through the
// compiler and compares listings and error kinds.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/xplshn/tacc/pkg/casefile"
)

type CaseResult struct {
	Name     string        `json:"name"`
	Line     int           `json:"line"`
	Status   string        `json:"status"` // PASS, FAIL, ERROR
	Diff     string        `json:"diff,omitempty"`
	Duration time.Duration `json:"duration"`
}

type FileTestResult struct {
	File    string        `json:"file"`
	Hash    string        `json:"hash"`
	Status  string        `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message string        `json:"message,omitempty"`
	Cases   []*CaseResult `json:"cases,omitempty"`
	Updated int           `json:"updated,omitempty"`
}

type TestSuiteResults map[string]*FileTestResult

var (
	testFiles  = flag.String("test-files", "testdata/*.md", "Glob pattern(s) for case files (space-separated).")
	skipFiles  = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON = flag.String("output", ".tactest_results.json", "Output file for the JSON test report.")
	jobs       = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose    = flag.Bool("v", false, "List every case, not only failures.")
	useCache   = flag.Bool("cached", false, "Skip files whose content passed in the previous report.")
	update     = flag.Bool("update", false, "Rewrite tac fences with the current compiler output.")
	filter     = flag.String("run", "", "Only run cases whose name contains this substring.")
)

const (
	statusPass  = "PASS"
	statusFail  = "FAIL"
	statusSkip  = "SKIP"
	statusError = "ERROR"
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	ctx := context.Background()
	if *verbose {
		ctx = tlog.ContextWithSpan(ctx, tlog.Root())
	}

	files, err := caseFiles(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Printf("no case files match %q\n", *testFiles)
		return
	}

	previous := make(TestSuiteResults)
	if data, err := os.ReadFile(*outputJSON); err == nil && json.Unmarshal(data, &previous) != nil {
		log.Printf("%s[WARN]%s ignoring unreadable report %s\n", cYellow, cNone, *outputJSON)
		previous = make(TestSuiteResults)
	}

	skip := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		if abs, err := filepath.Abs(f); err == nil {
			skip[abs] = true
		}
	}

	queue := make(chan string, len(files))
	done := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup
	for w := 0; w < max(*jobs, 1); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range queue {
				done <- testFile(ctx, file, previous)
			}
		}()
	}
	for _, file := range files {
		if skip[file] {
			done <- &FileTestResult{File: file, Status: statusSkip, Message: "skipped by -skip-files"}
			continue
		}
		queue <- file
	}
	close(queue)
	wg.Wait()
	close(done)

	var results []*FileTestResult
	for r := range done {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })

	printSummary(results)
	if hasFailures(writeJSONReport(results, previous)) {
		os.Exit(1)
	}
}

func hashContent(data []byte) string {
	return fmt.Sprintf("%x", xxhash.Sum64(data))
}

func testFile(ctx context.Context, file string, previousResults TestSuiteResults) *FileTestResult {
	src, err := os.ReadFile(file)
	if err != nil {
		return &FileTestResult{File: file, Status: statusError, Message: fmt.Sprintf("Could not read file: %v", err)}
	}
	hash := hashContent(src)

	if *useCache && !*update && *filter == "" {
		if prev, ok := previousResults[file]; ok && prev.Hash == hash && prev.Status == statusPass {
			return &FileTestResult{File: file, Hash: hash, Status: statusSkip, Message: "Unchanged since last passing run"}
		}
	}

	cases, err := casefile.Extract(src)
	if err != nil {
		return &FileTestResult{File: file, Hash: hash, Status: statusError, Message: err.Error()}
	}

	res := &FileTestResult{File: file, Hash: hash, Status: statusPass}
	rewrites := make(map[*casefile.Block]string)
	for _, c := range cases {
		if *filter != "" && !strings.Contains(c.Name, *filter) {
			continue
		}
		start := time.Now()
		out := c.Run(ctx)
		cr := &CaseResult{Name: c.Name, Line: c.Line, Status: statusPass, Duration: time.Since(start)}

		if *update && out.Err == nil && c.TAC != nil && out.Output != "" {
			if strings.TrimRight(out.Output, "\n") != c.TAC.Content {
				rewrites[c.TAC] = out.Output
			}
		} else if out.Err != nil {
			cr.Status, cr.Diff = statusError, out.Err.Error()
		} else if diff := c.Diff(out); diff != "" {
			cr.Status, cr.Diff = statusFail, diff
		}

		switch cr.Status {
		case statusError:
			res.Status = statusError
		case statusFail:
			if res.Status == statusPass {
				res.Status = statusFail
			}
		}
		res.Cases = append(res.Cases, cr)
	}

	if len(rewrites) > 0 {
		updated := casefile.Replace(src, rewrites)
		if err := os.WriteFile(file, updated, 0644); err != nil {
			return &FileTestResult{File: file, Hash: hash, Status: statusError, Message: fmt.Sprintf("Could not update file: %v", err)}
		}
		res.Hash = hashContent(updated)
		res.Updated = len(rewrites)
	}

	res.Message = fmt.Sprintf("%d case(s)", len(res.Cases))
	if res.Updated > 0 {
		res.Message += fmt.Sprintf(", %d updated", res.Updated)
	}
	return res
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%6dus", d.Microseconds())
	}
	return fmt.Sprintf("%6dms", d.Milliseconds())
}

var statusColor = map[string]string{
	statusPass: cGreen, statusFail: cRed, statusSkip: cYellow, statusError: cRed,
}

func tag(status string) string {
	return "[" + statusColor[status] + status + cNone + "]"
}

func printSummary(results []*FileTestResult) {
	counts := make(map[string]int)
	var ncases int
	var elapsed time.Duration

	for _, r := range results {
		counts[r.Status]++
		fmt.Printf("%s %s%s%s: %s\n", tag(r.Status), cCyan, filepath.Base(r.File), cNone, r.Message)

		for _, c := range r.Cases {
			ncases++
			elapsed += c.Duration
			switch {
			case c.Status == statusFail:
				fmt.Printf("  %s %s (line %d)\n", tag(c.Status), c.Name, c.Line)
				fmt.Print(colorDiff(c.Diff))
			case c.Status == statusError:
				fmt.Printf("  %s %s (line %d): %s\n", tag(c.Status), c.Name, c.Line, c.Diff)
			case *verbose:
				fmt.Printf("  %s %-50s %s\n", tag(c.Status), c.Name, formatDuration(c.Duration))
			}
		}
	}

	fmt.Printf("\n%sfiles:%s %d passed, %d failed, %d skipped, %d errored (%d total)\n",
		cBold, cNone, counts[statusPass], counts[statusFail], counts[statusSkip], counts[statusError], len(results))
	if ncases > 0 {
		fmt.Printf("%scases:%s %d compiled in %s\n", cBold, cNone, ncases, elapsed)
	}
}

// colorDiff indents a cmp.Diff report and colors its removed and added lines.
func colorDiff(diff string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		color, t := "", strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(t, "-"):
			color = cRed
		case strings.HasPrefix(t, "+"):
			color = cGreen
		}
		fmt.Fprintf(&sb, "      %s%s%s\n", color, line, cNone)
	}
	return sb.String()
}

// writeJSONReport saves the results. Skipped files keep their previous entry
// so the cache survives a cached run.
func writeJSONReport(results []*FileTestResult, previous TestSuiteResults) TestSuiteResults {
	report := make(TestSuiteResults, len(results))
	for _, r := range results {
		if prev, ok := previous[r.File]; ok && r.Status == statusSkip && prev.Hash == r.Hash {
			report[r.File] = prev
			continue
		}
		report[r.File] = r
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err == nil {
		err = os.WriteFile(*outputJSON, data, 0644)
	}
	if err != nil {
		log.Printf("%s[ERROR]%s report %s: %v\n", cRed, cNone, *outputJSON, err)
	}
	return report
}

func hasFailures(report TestSuiteResults) bool {
	for _, r := range report {
		if r.Status == statusFail || r.Status == statusError {
			return true
		}
	}
	return false
}

// caseFiles resolves space-separated glob patterns to regular files, each
// listed once by absolute path.
func caseFiles(patterns string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrap(err, "pattern %q", pattern)
		}
		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil || seen[abs] {
				continue
			}
			if info, err := os.Stat(abs); err == nil && info.Mode().IsRegular() {
				seen[abs] = true
				out = append(out, abs)
			}
		}
	}
	return out, nil
}
