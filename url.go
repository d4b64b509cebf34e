package pageget

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// minNameWidth is the narrowest zero-padded index used in page names.
const minNameWidth = 3

// NormalizeBase parses raw into the absolute base URL every page is
// resolved against. A missing scheme defaults to https and a trailing
// slash is appended to the path, so relative joins stay inside the
// gallery directory. Call it once per run, not per page.
func NormalizeBase(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, raw)
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		if u.RawPath != "" {
			u.RawPath += "/"
		}
	}

	u.Fragment = ""
	u.RawFragment = ""

	return u, nil
}

// PageURL resolves "{index}.{ext}" against base. base must be absolute
// and end in a slash, as returned by [NormalizeBase].
func PageURL(base *url.URL, index int, ext string) (*url.URL, error) {
	return joinBase(base, strconv.Itoa(index)+"."+ext)
}

// PageName renders the file name for index: the index zero-padded to
// width digits, a dot, and ext.
func PageName(index, width int, ext string) string {
	return fmt.Sprintf("%0*d.%s", width, index, ext)
}

// NameWidth returns the padding width for a run of pages: three digits,
// widened to fit the largest index so names never collide and always
// sort in page order.
func NameWidth(pages int) int {
	return max(minNameWidth, len(strconv.Itoa(pages)))
}

func joinBase(base *url.URL, name string) (*url.URL, error) {
	switch {
	case base == nil:
		return nil, fmt.Errorf("%w: nil base", ErrInvalidURL)
	case !base.IsAbs() || base.Host == "" || base.Opaque != "":
		return nil, fmt.Errorf("%w: base %q is not an absolute hierarchical url", ErrInvalidURL, base)
	case !strings.HasSuffix(base.Path, "/"):
		return nil, fmt.Errorf("%w: base %q must end with a slash", ErrInvalidURL, base)
	}

	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("%w: page reference %q is not relative", ErrInvalidURL, name)
	}

	return base.ResolveReference(ref), nil
}
