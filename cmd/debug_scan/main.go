// Command debug_scan lists the partitions the scanner finds below an S3
// location without touching the catalog.
//
//	go run ./cmd/debug_scan s3://bucket/events/ year:int month:int day:int
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Journera/glutil/core/awsconf"
	"github.com/Journera/glutil/core/config"
	"github.com/Journera/glutil/core/partition"
	"github.com/Journera/glutil/core/scanner"
	"github.com/Journera/glutil/core/storage"
	"github.com/Journera/glutil/feature/partitioner"

	jsoniter "github.com/json-iterator/go"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("usage: debug_scan s3://bucket/prefix/ name:type...")
	}

	bucket, prefix, err := partitioner.SplitLocation(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	var keys []partition.Key
	for _, arg := range os.Args[2:] {
		name, typ, _ := strings.Cut(arg, ":")
		keys = append(keys, partition.Key{Name: name, Type: partition.TypeOf(typ)})
	}

	// Load config
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	awsCfg, err := awsconf.Load(ctx, cfg.AWS)
	if err != nil {
		log.Fatal(err)
	}

	// Create storage client
	client, err := storage.NewClient(cfg.Storage, awsCfg)
	if err != nil {
		log.Fatal(err)
	}

	found, err := scanner.New(client, bucket).Scan(ctx, prefix, keys, 0)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("=== %d partitions below s3://%s/%s ===\n", len(found), bucket, prefix)
	locations := make(map[string][]string, len(found))
	for _, p := range found {
		fmt.Println(p)
		locations[p.Location] = p.Values
	}

	// Save detailed output
	data, _ := jsoniter.MarshalIndent(locations, "", "  ")
	if err := os.WriteFile("debug_scan.json", data, 0644); err != nil {
		log.Fatal(err)
	}

	fmt.Println("\nDebug complete. Check debug_scan.json for details.")
}
