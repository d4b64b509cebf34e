package pageget_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/adamwoolhether/pageget"
)

func TestNormalizeBase(t *testing.T) {
	tests := map[string]struct {
		raw     string
		want    string
		wantErr bool
	}{
		"adds trailing slash":       {raw: "https://site.example/gallery", want: "https://site.example/gallery/"},
		"keeps trailing slash":      {raw: "https://site.example/gallery/", want: "https://site.example/gallery/"},
		"defaults to https":         {raw: "site.example/gallery", want: "https://site.example/gallery/"},
		"keeps http":                {raw: "http://site.example/a/b", want: "http://site.example/a/b/"},
		"bare host":                 {raw: "site.example", want: "https://site.example/"},
		"host with port":            {raw: "localhost:8080/g", want: "https://localhost:8080/g/"},
		"keeps query":               {raw: "https://site.example/g?token=x", want: "https://site.example/g/?token=x"},
		"drops fragment":            {raw: "https://site.example/g#top", want: "https://site.example/g/"},
		"trims whitespace":          {raw: "  https://site.example/g \n", want: "https://site.example/g/"},
		"empty":                     {raw: "", wantErr: true},
		"blank":                     {raw: "   ", wantErr: true},
		"unsupported scheme":        {raw: "ftp://site.example/g", wantErr: true},
		"missing host":              {raw: "https:///gallery", wantErr: true},
		"invalid host":              {raw: "https://exa mple.com/g", wantErr: true},
		"port without host":         {raw: "https://:80/g", wantErr: true},
		"escaped path is preserved": {raw: "https://site.example/a%2Fb", want: "https://site.example/a%2Fb/"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := pageget.NormalizeBase(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, pageget.ErrInvalidURL) {
					t.Fatalf("expected ErrInvalidURL, got: %v (url %v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.String() != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got.String())
			}
		})
	}
}

func TestPageURL(t *testing.T) {
	tests := map[string]struct {
		base  string
		index int
		ext   string
		want  string
	}{
		"page 7":          {base: "https://site.example/gallery", index: 7, ext: "jpg", want: "https://site.example/gallery/7.jpg"},
		"root directory":  {base: "https://site.example", index: 1, ext: "webp", want: "https://site.example/1.webp"},
		"large index":     {base: "https://site.example/g/", index: 1234, ext: "png", want: "https://site.example/g/1234.png"},
		"nested path":     {base: "http://cdn.example/a/b/c", index: 12, ext: "webp", want: "http://cdn.example/a/b/c/12.webp"},
		"base with query": {base: "https://site.example/g?token=x", index: 2, ext: "jpg", want: "https://site.example/g/2.jpg"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			base, err := pageget.NormalizeBase(tc.base)
			if err != nil {
				t.Fatalf("normalizing base: %v", err)
			}

			got, err := pageget.PageURL(base, tc.index, tc.ext)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.String() != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got.String())
			}
		})
	}
}

func TestPageURL_RejectsUnnormalizedBase(t *testing.T) {
	tests := map[string]*url.URL{
		"nil":               nil,
		"relative":          {Path: "gallery/"},
		"no trailing slash": {Scheme: "https", Host: "site.example", Path: "/gallery"},
		"opaque":            {Scheme: "mailto", Opaque: "someone@site.example"},
	}

	for name, base := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := pageget.PageURL(base, 1, "webp")
			if !errors.Is(err, pageget.ErrInvalidURL) {
				t.Errorf("expected ErrInvalidURL, got: %v", err)
			}
		})
	}
}

func TestPageURL_MalformedExtension(t *testing.T) {
	base, err := pageget.NormalizeBase("https://site.example/g")
	if err != nil {
		t.Fatalf("normalizing base: %v", err)
	}

	if _, err := pageget.PageURL(base, 1, "webp%zz"); !errors.Is(err, pageget.ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL for malformed escape, got: %v", err)
	}
}

func TestPageName(t *testing.T) {
	tests := map[string]struct {
		index int
		width int
		ext   string
		want  string
	}{
		"pads to three":    {index: 7, width: 3, ext: "jpg", want: "007.jpg"},
		"exact width":      {index: 123, width: 3, ext: "webp", want: "123.webp"},
		"wider field":      {index: 7, width: 4, ext: "png", want: "0007.png"},
		"overflows width":  {index: 1234, width: 3, ext: "png", want: "1234.png"},
		"first page":       {index: 1, width: 3, ext: "webp", want: "001.webp"},
		"ten thousandth":   {index: 10000, width: 5, ext: "webp", want: "10000.webp"},
		"ten in five wide": {index: 10, width: 5, ext: "gif", want: "00010.gif"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := pageget.PageName(tc.index, tc.width, tc.ext); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNameWidth(t *testing.T) {
	tests := map[int]int{
		0:     3,
		1:     3,
		9:     3,
		999:   3,
		1000:  4,
		9999:  4,
		10000: 5,
	}

	for pages, want := range tests {
		if got := pageget.NameWidth(pages); got != want {
			t.Errorf("NameWidth(%d): expected %d, got %d", pages, want, got)
		}
	}
}
