package w3cdid

import (
	"net/url"
	"strings"
)

// URL is a DID or DID URL, e.g. did:example:1234/path?q=1#frag
type URL string

func (u URL) Scheme() string {
	return "did"
}

func (u URL) Method() string {
	p := u.parts()
	return p[0]
}

func (u URL) Id() string {
	p := u.parts()
	if len(p) < 2 {
		return ""
	}

	return p[1]
}

func (u URL) Query() string {
	uri, err := url.Parse(string(u))
	if err != nil {
		return ""
	}
	return uri.RawQuery
}

func (u URL) Fragment() string {
	uri, err := url.Parse(string(u))
	if err != nil {
		return ""
	}
	return uri.Fragment
}

func (u URL) parts() []string {
	uri, err := url.Parse(string(u))
	if err != nil {
		return []string{""}
	}
	return strings.SplitN(uri.Opaque, ":", 2)
}
