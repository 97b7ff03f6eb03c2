package minio_test

import (
	"bytes"
	"context"
	"fmt"

	"github.com/koustreak/dbinfo/internal/filestore"
	"github.com/koustreak/dbinfo/internal/filestore/minio"
)

func ExampleNew() {
	ctx := context.Background()
	data := []byte(`{"vendor":"pgsql","schema":"public","tables":[]}`)

	loc, err := filestore.ParseLocation("s3://snapshots/prod/public.json")
	if err != nil {
		fmt.Println(err)
		return
	}

	var store filestore.Store
	store, err = minio.New(filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin"))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer store.Close()

	info, err := store.PutObject(ctx, loc.Bucket, loc.Key, bytes.NewReader(data), int64(len(data)), "application/json")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(info.ETag)
}
