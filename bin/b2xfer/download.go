package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/nimbusb2/b2core/b2"
)

type downloadCmd struct {
	bucketName string
	fileID     string
}

func (*downloadCmd) Name() string     { return "download" }
func (*downloadCmd) Synopsis() string { return "download a file from B2" }
func (*downloadCmd) Usage() string {
	return "download {-bucket <bucketName> <remote name> | -file-id <fileId>} <local path>\n"
}

func (c *downloadCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.bucketName, "bucket", "", "source bucket name (used with a <remote name> argument)")
	f.StringVar(&c.fileID, "file-id", "", "source file ID (alternative to -bucket and <remote name>)")
}

func (c *downloadCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 && c.fileID == "" {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	var remoteName, localPath string
	if c.fileID != "" {
		if f.NArg() != 1 {
			fmt.Fprint(os.Stderr, c.Usage())
			return subcommands.ExitUsageError
		}
		localPath = f.Arg(0)
	} else {
		remoteName = f.Arg(0)
		localPath = f.Arg(1)
	}

	out, err := os.Create(localPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	sess, err := newSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer sess.Close()

	fr, err := sess.Download(ctx, b2.DownloadRequest{
		BucketName: c.bucketName,
		FileName:   remoteName,
		FileID:     c.fileID,
		Sink:       out,
		Progress: func(p b2.Progress) {
			fmt.Fprintf(os.Stderr, "\r%s / %s", humanize.Bytes(uint64(p.BytesTransferred)), humanize.Bytes(uint64(p.TotalBytes)))
		},
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("downloaded file %s (%d bytes)\n", fr.ID, fr.ContentLength)
	return subcommands.ExitSuccess
}
