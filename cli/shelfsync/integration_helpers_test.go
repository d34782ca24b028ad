//go:build integration

package main

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/glorpus-work/shelfsync/test/testutil"
)

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// payload returns size bytes of deterministic content.
func payload(size int, seed byte) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = seed + byte(i%251)
	}
	return data
}

type manifestFile struct {
	name     string
	md5      string
	language string
	platform string
	size     int
}

// manifestYAML describes a single game with the given installers and extras.
func manifestYAML(srv *testutil.TestServer, id int, title string, installers, extras []manifestFile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "games:\n  - id: %d\n    title: %q\n", id, title)
	write := func(section string, files []manifestFile) {
		if len(files) == 0 {
			return
		}
		fmt.Fprintf(&b, "    %s:\n", section)
		for _, f := range files {
			fmt.Fprintf(&b, "      - name: %q\n        url: %q\n        size: %d\n", f.name, srv.EntryURL(f.name), f.size)
			if f.md5 != "" {
				fmt.Fprintf(&b, "        md5: %q\n", f.md5)
			}
			if f.language != "" {
				fmt.Fprintf(&b, "        language: %s\n        platform: %s\n", f.language, f.platform)
			}
		}
	}
	write("installers", installers)
	write("extras", extras)
	return b.String()
}
