package main

import (
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/lightningrodlabs/where/cidutil"
)

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type cidList []cid.Cid

func (c *cidList) String() string {
	parts := make([]string, 0, len(*c))
	for _, id := range *c {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ",")
}

func (c *cidList) Set(v string) error {
	id, err := cidutil.Parse(v)
	if err != nil {
		return err
	}
	*c = append(*c, id)
	return nil
}

// cidValue is an optional single CID flag.
type cidValue struct{ id cid.Cid }

func (c *cidValue) String() string {
	if c == nil || !c.id.Defined() {
		return ""
	}
	return c.id.String()
}

func (c *cidValue) Set(v string) error {
	id, err := cidutil.Parse(v)
	if err != nil {
		return err
	}
	c.id = id
	return nil
}

type metaFlag map[string]string

func (m metaFlag) String() string {
	parts := make([]string, 0, len(m))
	for k, v := range m {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (m metaFlag) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || k == "" {
		return fmt.Errorf("want key=value, got %q", v)
	}
	m[k] = val
	return nil
}
