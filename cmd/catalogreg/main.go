package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/adapter/repo"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/infra"
)

func main() {
	_ = godotenv.Load()

	var (
		baseFlag   string
		listFlag   string
		bucketFlag string
		prefixFlag string
		regionFlag string
		tagsFlag   string
		dbURLFlag  string
		dryRunFlag bool
	)

	flag.StringVar(&baseFlag, "base", "", "URL prefix joined with every key (defaults to the bucket URL with -bucket)")
	flag.StringVar(&listFlag, "list", "", "file with one object key per line")
	flag.StringVar(&bucketFlag, "bucket", "", "S3 bucket to list instead of -list")
	flag.StringVar(&prefixFlag, "prefix", "", "folder inside the bucket, e.g. happy/")
	flag.StringVar(&regionFlag, "region", "ap-southeast-2", "S3 region")
	flag.StringVar(&tagsFlag, "tags", "", "comma separated tags applied to every image")
	flag.StringVar(&dbURLFlag, "database-url", os.Getenv("DATABASE_URL"), "catalog database URL")
	flag.BoolVar(&dryRunFlag, "dry-run", false, "print the URLs that would be inserted")
	flag.Parse()

	tags := parseTags(tagsFlag)
	if len(tags) == 0 {
		exitWithError(errors.New("-tags is required"))
	}
	if (listFlag == "") == (bucketFlag == "") {
		exitWithError(errors.New("exactly one of -list or -bucket must be provided"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var keys []string
	base := strings.TrimSpace(baseFlag)
	if listFlag != "" {
		if base == "" {
			exitWithError(errors.New("-base is required with -list"))
		}
		f, err := os.Open(listFlag)
		if err != nil {
			exitWithError(fmt.Errorf("failed to open key list: %w", err))
		}
		keys, err = readKeys(f)
		f.Close()
		if err != nil {
			exitWithError(fmt.Errorf("failed to read key list: %w", err))
		}
	} else {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(regionFlag))
		if err != nil {
			exitWithError(fmt.Errorf("failed to load aws config: %w", err))
		}
		keys, err = listBucketKeys(ctx, s3.NewFromConfig(awsCfg), bucketFlag, normalizePrefix(prefixFlag))
		if err != nil {
			exitWithError(err)
		}
		if base == "" {
			base = bucketURL(bucketFlag, regionFlag)
		}
	}
	if len(keys) == 0 {
		fmt.Println("No images found")
		return
	}

	dbURL := strings.TrimSpace(dbURLFlag)
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}
	pool, err := infra.NewDBPool(ctx, dbURL)
	if err != nil {
		exitWithError(err)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", "").With().Str("cmd", "catalogreg").Logger()
	catalog := repo.NewCatalogRepository(infra.NewSQLRunner(pool, &logger))
	if err := catalog.EnsureSchema(ctx); err != nil {
		exitWithError(fmt.Errorf("failed to prepare catalog schema: %w", err))
	}

	existing, err := catalog.ExistingURLs(ctx)
	if err != nil {
		exitWithError(fmt.Errorf("failed to load existing urls: %w", err))
	}

	urls := selectNewURLs(base, keys, existing)
	inserted := 0
	for _, url := range urls {
		fmt.Printf("Inserting: %s\n", url)
		if dryRunFlag {
			continue
		}
		_, err := catalog.Insert(ctx, catalogEntry(url, tags))
		if errors.Is(err, repo.ErrDuplicateURL) {
			continue
		}
		if err != nil {
			exitWithError(fmt.Errorf("failed to insert %s: %w", url, err))
		}
		inserted++
	}
	fmt.Printf("%d of %d images inserted\n", inserted, len(keys))
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
