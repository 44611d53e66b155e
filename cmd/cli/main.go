package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/wadjakorntonsri/deeplinker/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/deeplinker/pkg/config"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/domain"
	"github.com/wadjakorntonsri/deeplinker/pkg/core/services"
)

const usage = "expected 'export', 'import' or 'adduser' subcommands"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportFile := exportCmd.String("file", "", "write to file instead of stdout")
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON file to import")
	userCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	userEmail := userCmd.String("email", "", "login email")
	userPassword := userCmd.String("password", "", "password, at least 8 characters")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg := config.Load()
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to db: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		out := io.Writer(os.Stdout)
		if *exportFile != "" {
			f, err := os.Create(*exportFile)
			if err != nil {
				log.Fatalf("Failed to create file: %v", err)
			}
			defer f.Close()
			out = f
		}
		if err := doExport(ctx, repo, out); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		f, err := os.Open(*importFile)
		if err != nil {
			log.Fatalf("Failed to open file: %v", err)
		}
		defer f.Close()
		n, err := doImport(ctx, repo, f)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Imported %d links", n)
	case "adduser":
		userCmd.Parse(os.Args[2:])
		user, err := services.NewAuthService(repo).Register(ctx, *userEmail, *userPassword)
		if err != nil {
			log.Fatalf("Failed to add user: %v", err)
		}
		log.Printf("Added user %s", user.Email)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// dumper and importer are the parts of the repository the CLI needs
type dumper interface {
	Dump(ctx context.Context) ([]domain.Link, error)
}

type importer interface {
	Import(ctx context.Context, link *domain.Link) error
}

// doExport writes every link with its full click history as indented JSON
func doExport(ctx context.Context, repo dumper, w io.Writer) error {
	links, err := repo.Dump(ctx)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(links)
}

// doImport loads an export. Slugs that already exist are skipped.
func doImport(ctx context.Context, repo importer, r io.Reader) (int, error) {
	var links []domain.Link
	if err := json.NewDecoder(r).Decode(&links); err != nil {
		return 0, fmt.Errorf("decode: %w", err)
	}

	count := 0
	for i := range links {
		l := &links[i]
		err := repo.Import(ctx, l)
		switch {
		case errors.Is(err, domain.ErrConflict):
			log.Printf("Skipping existing slug: %s", l.Slug)
		case err != nil:
			log.Printf("Failed to import %s: %v", l.Slug, err)
		default:
			count++
		}
	}
	return count, nil
}
