package pageget

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Report is the serializable summary of a run.
type Report struct {
	RunID     string          `yaml:"run_id"`
	Base      string          `yaml:"base"`
	Output    string          `yaml:"output"`
	Policy    string          `yaml:"policy"`
	Total     int             `yaml:"total"`
	Completed int             `yaml:"completed"`
	Failed    int             `yaml:"failed"`
	Started   time.Time       `yaml:"started"`
	Elapsed   string          `yaml:"elapsed"`
	Failures  []ReportFailure `yaml:"failures,omitempty"`
}

// ReportFailure is one failed index in a [Report].
type ReportFailure struct {
	Index  int    `yaml:"index"`
	Kind   string `yaml:"kind"`
	Status int    `yaml:"status,omitempty"`
	Error  string `yaml:"error"`
}

// Report summarizes o for a run that wrote into output.
func (o *RunOutcome) Report(output string) Report {
	r := Report{
		RunID:     o.RunID.String(),
		Base:      o.Base,
		Output:    output,
		Policy:    o.Policy.String(),
		Total:     o.Total,
		Completed: o.Completed,
		Failed:    len(o.Failed),
		Started:   o.Started.UTC(),
		Elapsed:   o.Elapsed.Round(time.Millisecond).String(),
	}

	for _, f := range o.Failed {
		r.Failures = append(r.Failures, ReportFailure{
			Index:  f.Index,
			Kind:   f.Kind.String(),
			Status: f.StatusCode(),
			Error:  f.Err.Error(),
		})
	}

	return r
}

// Write encodes r as a YAML document.
func (r Report) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing report encoder: %w", err)
	}

	return nil
}
