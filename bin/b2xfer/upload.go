package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/nimbusb2/b2core/b2"
)

type uploadCmd struct {
	bucketID    string
	name        string
	contentType string
}

func (*uploadCmd) Name() string     { return "upload" }
func (*uploadCmd) Synopsis() string { return "upload a file to a B2 bucket" }
func (*uploadCmd) Usage() string {
	return "upload -bucket <bucketId> -name <remote name> <local path>\n"
}

func (c *uploadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.bucketID, "bucket", "", "destination bucket ID")
	f.StringVar(&c.name, "name", "", "remote file name (defaults to the local file's base name)")
	f.StringVar(&c.contentType, "content-type", "", "content type (defaults to b2/x-auto)")
}

func (c *uploadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.bucketID == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	path := f.Arg(0)
	name := c.name
	if name == "" {
		name = filepath.Base(path)
	}

	fh, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer fh.Close()

	sess, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer sess.Close()

	file, err := sess.Upload(ctx, b2.UploadRequest{
		BucketID:    c.bucketID,
		FileName:    name,
		ContentType: c.contentType,
		Source:      fh,
		Progress: func(p b2.Progress) {
			fmt.Fprintf(os.Stderr, "\r%s / %s", humanize.Bytes(uint64(p.BytesTransferred)), humanize.Bytes(uint64(p.TotalBytes)))
		},
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("uploaded %s as file %s\n", name, file.ID)
	return subcommands.ExitSuccess
}
