package main

import (
	"bytes"
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbinfo/internal/errs"
	"github.com/koustreak/dbinfo/internal/filestore"
	"github.com/koustreak/dbinfo/internal/filestore/minio"
	"github.com/koustreak/dbinfo/internal/logger"
)

func newDumpCmd(opts *globalOptions) *cobra.Command {
	var (
		out          string
		createBucket bool
	)

	cmd := &cobra.Command{
		Use:   "dump [schema]",
		Short: "Write every table of a schema with its columns as JSON",
		Long: `Write a JSON snapshot of a schema (default: current schema).

--out selects the destination: "-" for stdout (default), a file path, or
s3://bucket/key to upload through the export settings of the config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			var schemaName string
			if len(args) == 1 {
				schemaName = args[0]
			}
			snap, err := s.inspector.InspectSchema(ctx, schemaName)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := writeJSON(&buf, snap); err != nil {
				return err
			}

			log := logger.FromContext(ctx)
			switch {
			case out == "" || out == "-":
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			case filestore.IsLocation(out):
				loc, err := filestore.ParseLocation(out)
				if err != nil {
					return err
				}
				s.cfg.Export.CreateBucket = s.cfg.Export.CreateBucket || createBucket
				store, err := openStore(&s.cfg.Export)
				if err != nil {
					return err
				}
				defer store.Close()

				info, err := upload(ctx, store, loc, buf.Bytes(), s.cfg.Export.CreateBucket)
				if err != nil {
					return err
				}
				log.InfoWith("snapshot uploaded", map[string]any{
					"location": loc.String(), "tables": len(snap.Tables), "bytes": info.Size, "etag": info.ETag,
				})
				return nil
			default:
				if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
					return errs.Wrap(errs.ErrKindInvalidInput, "failed to write "+out, err)
				}
				log.InfoWith("snapshot written", map[string]any{"path": out, "tables": len(snap.Tables)})
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "destination: -, a file path, or s3://bucket/key")
	cmd.Flags().BoolVar(&createBucket, "create-bucket", false, "create the s3 bucket if it does not exist")
	return cmd
}

// openStore builds the export store for cfg.
var openStore = func(cfg *filestore.Config) (filestore.Store, error) {
	d, err := minio.New(cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// upload stores data at loc and returns the stored object's metadata as the
// server reports it. When the bucket may be created, the store is pinged
// first so bad credentials fail before any bucket is made.
func upload(ctx context.Context, store filestore.Store, loc filestore.Location, data []byte, ping bool) (*filestore.ObjectInfo, error) {
	if ping {
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
	}

	if _, err := store.PutObject(ctx, loc.Bucket, loc.Key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return nil, err
	}

	info, err := store.StatObject(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, err
	}
	if info.Size != int64(len(data)) {
		return nil, errs.Newf(errs.ErrKindQueryFailed, "%s holds %d bytes, wrote %d", loc, info.Size, len(data))
	}
	return info, nil
}
