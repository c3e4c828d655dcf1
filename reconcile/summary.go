package reconcile

import (
	"fmt"
	"io"
	"strings"

	"catalogrecon/catalog"
)

type Counter struct {
	Name  string
	Value int
}

// Check is a count identity that must hold. A failing check is a defect.
type Check struct {
	Name string
	Got  int
	Want int
}

func (c Check) Holds() bool {
	return c.Got == c.Want
}

type InputInfo struct {
	Source   string
	Encoding string
	Rows     int
	Warnings int
}

// Summary is the deterministic run report: inputs, ordered counters, notes,
// aggregated row warnings and count checks.
type Summary struct {
	Operation string
	Output    string
	Inputs    []InputInfo
	Counters  []Counter
	Checks    []Check
	Notes     []string
	Warnings  []catalog.RowWarning
}

func NewSummary(operation string) *Summary {
	return &Summary{Operation: operation}
}

// AddInput records a loaded source and takes over its row warnings.
func (s *Summary) AddInput(set *catalog.RecordSet) {
	if set == nil {
		return
	}
	s.Inputs = append(s.Inputs, InputInfo{
		Source:   set.Source,
		Encoding: set.Encoding,
		Rows:     set.Len(),
		Warnings: len(set.Warnings),
	})
	s.Warnings = append(s.Warnings, set.Warnings...)
}

// Count sets a counter, keeping first-insertion order.
func (s *Summary) Count(name string, value int) {
	for i := range s.Counters {
		if s.Counters[i].Name == name {
			s.Counters[i].Value = value
			return
		}
	}
	s.Counters = append(s.Counters, Counter{Name: name, Value: value})
}

// Get returns a counter value, or 0 when it was never set.
func (s *Summary) Get(name string) int {
	for _, counter := range s.Counters {
		if counter.Name == name {
			return counter.Value
		}
	}
	return 0
}

func (s *Summary) Expect(name string, got, want int) {
	s.Checks = append(s.Checks, Check{Name: name, Got: got, Want: want})
}

func (s *Summary) Note(note string) {
	s.Notes = append(s.Notes, note)
}

// Verify returns an error naming every failed check.
func (s *Summary) Verify() error {
	failed := make([]string, 0)
	for _, check := range s.Checks {
		if !check.Holds() {
			failed = append(failed, fmt.Sprintf("%s (got %d, want %d)", check.Name, check.Got, check.Want))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%s count reconciliation failed: %s", s.Operation, strings.Join(failed, "; "))
}

// Render writes the summary as plain text. Output depends only on the summary
// contents, never on map iteration or time.
func (s *Summary) Render(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Operation: %s\n", s.Operation)
	for _, input := range s.Inputs {
		fmt.Fprintf(&b, "Input: %s (encoding: %s, rows: %d, warnings: %d)\n", input.Source, fallback(input.Encoding, "n/a"), input.Rows, input.Warnings)
	}
	if s.Output != "" {
		fmt.Fprintf(&b, "Output: %s\n", s.Output)
	}

	width := 0
	for _, counter := range s.Counters {
		if len(counter.Name)+1 > width {
			width = len(counter.Name) + 1
		}
	}
	for _, counter := range s.Counters {
		fmt.Fprintf(&b, "  %-*s %d\n", width, counter.Name+":", counter.Value)
	}

	for _, note := range s.Notes {
		fmt.Fprintf(&b, "Note: %s\n", note)
	}
	fmt.Fprintf(&b, "Skipped/repaired rows: %d\n", len(s.Warnings))

	for _, check := range s.Checks {
		status := "ok"
		if !check.Holds() {
			status = fmt.Sprintf("FAILED (got %d, want %d)", check.Got, check.Want)
		}
		fmt.Fprintf(&b, "Check %s: %s\n", check.Name, status)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}
