package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/subcommands"

	"github.com/nimbusb2/b2core/base"
)

// cleanupCmd is the teacher's internal/bin/cleanup/cleanup.go adapted to a
// subcommand against the Session API: it still walks every bucket whose
// name carries one of the known test-run suffixes and removes it, but
// does so through session-scoped calls instead of the upstream client's
// bucket/object iterators (which this repo doesn't carry forward; see
// DESIGN.md).
type cleanupCmd struct {
	prefix string
}

var cleanupSuffixes = [...]string{
	"b2xfer-tests",
	"base-tests",
}

func (*cleanupCmd) Name() string     { return "cleanup" }
func (*cleanupCmd) Synopsis() string { return "delete leftover test buckets created by this account" }
func (*cleanupCmd) Usage() string {
	return "cleanup [-prefix <accountId>]\n"
}

func (c *cleanupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.prefix, "prefix", "", "bucket name prefix, e.g. an account ID (empty matches every bucket with a test suffix)")
}

func (c *cleanupCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sess, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer sess.Close()

	buckets, err := sess.ListBuckets(ctx, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	prefix := c.prefix
	var kill []*base.Bucket
	for _, bucket := range buckets {
		for _, suffix := range cleanupSuffixes {
			if strings.HasSuffix(bucket.Name, suffix) && (prefix == "" || strings.HasPrefix(bucket.Name, prefix)) {
				kill = append(kill, bucket)
				break
			}
		}
	}

	var wg sync.WaitGroup
	for _, bucket := range kill {
		wg.Add(1)
		go func(b *base.Bucket) {
			defer wg.Done()
			fmt.Println("removing bucket", b.Name)
			if err := b.DeleteBucket(ctx); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}(bucket)
	}
	wg.Wait()
	return subcommands.ExitSuccess
}
