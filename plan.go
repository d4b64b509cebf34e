package pageget

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Plan describes one batch: which pages to fetch and how to name them.
type Plan struct {
	// Base is the gallery directory URL, normalized by [NormalizeBase].
	Base *url.URL
	// Pages is the page count; jobs cover indices 1..=Pages.
	Pages int
	// Ext is the extension of both the remote resource and the saved file.
	Ext string
	// PadURL requests the zero-padded page name ("007.jpg") instead of
	// the bare index ("7.jpg").
	PadURL bool
}

// Job is one unit of work: fetch URL and persist it as Name.
type Job struct {
	Index int
	URL   *url.URL
	Name  string
	// Err is set when the page URL could not be built. The job still
	// exists and fails through the ordinary result path.
	Err error
}

// Jobs generates exactly one Job per index, in order. A zero page count
// yields no jobs.
func (p Plan) Jobs() ([]Job, error) {
	switch {
	case p.Base == nil:
		return nil, errors.New("plan: base url must not be nil")
	case p.Pages < 0:
		return nil, fmt.Errorf("plan: page count must not be negative, got %d", p.Pages)
	case p.Ext == "":
		return nil, errors.New("plan: extension must not be empty")
	}

	width := NameWidth(p.Pages)

	jobs := make([]Job, 0, p.Pages)
	for i := 1; i <= p.Pages; i++ {
		name := PageName(i, width, p.Ext)

		ref := strconv.Itoa(i) + "." + p.Ext
		if p.PadURL {
			ref = name
		}

		u, err := joinBase(p.Base, ref)

		jobs = append(jobs, Job{
			Index: i,
			URL:   u,
			Name:  name,
			Err:   err,
		})
	}

	return jobs, nil
}
