// +build ignore

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/example/vintagevoice/internal/adapters/filesystem"
	"github.com/example/vintagevoice/internal/config"
	"github.com/example/vintagevoice/internal/db"
)

// Purge deletes a letter's recording after its transaction commits, so a crash
// or I/O error in between leaves the file behind. Recordings stored for a send
// that then failed are left behind the same way. This removes audio files no
// live letter references. Paths and driver come from the config of the current
// directory, as for the vintagevoice binary.

func main() {
	dryRun := flag.Bool("dry-run", false, "Preview deletions without executing")
	minAge := flag.Duration("min-age", 24*time.Hour, "Skip files newer than this (uploads in flight)")
	flag.Parse()

	dir, err := os.Getwd()
	if err != nil {
		fail("Error getting working directory: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		fail("Error loading config: %v", err)
	}
	dbPath, err := cfg.ResolvedDBPath()
	if err != nil {
		fail("Error resolving database path: %v", err)
	}
	blobDir, err := cfg.ResolvedBlobDir()
	if err != nil {
		fail("Error resolving blob directory: %v", err)
	}

	// Without the database every recording would look orphaned.
	if _, err := os.Stat(dbPath); err != nil {
		fail("Error opening database %s: %v", dbPath, err)
	}
	conn, err := db.Open(cfg.DBDriver, dbPath)
	if err != nil {
		fail("Error opening database: %v", err)
	}
	defer conn.Close()

	store, err := filesystem.NewBlobStore(blobDir)
	if err != nil {
		fail("Error opening %s: %v", blobDir, err)
	}

	live, err := liveRefs(conn)
	if err != nil {
		fail("Error loading letters: %v", err)
	}

	orphans, err := store.Orphans(live, time.Now().Add(-*minAge))
	if err != nil {
		fail("Error scanning %s: %v", blobDir, err)
	}

	if len(orphans) == 0 {
		fmt.Println("No orphaned recordings found")
		return
	}

	fmt.Printf("Found %d orphaned recording(s) in %s:\n\n", len(orphans), blobDir)
	for _, ref := range orphans {
		fmt.Printf("  %s\n", ref)
	}
	fmt.Println()

	if *dryRun {
		fmt.Println("=== DRY RUN - No changes made ===")
		return
	}

	ctx := context.Background()
	removed := 0
	for _, ref := range orphans {
		if err := store.Delete(ctx, ref); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing %s: %v\n", ref, err)
			continue
		}
		removed++
	}

	fmt.Printf("=== Sweep complete: %d/%d recordings removed ===\n", removed, len(orphans))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// liveRefs returns the audio refs of letters that still hold their recording.
func liveRefs(conn *sql.DB) (map[string]bool, error) {
	rows, err := conn.Query(`SELECT audio_ref FROM letters WHERE audio_ref != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := map[string]bool{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs[ref] = true
	}
	return refs, rows.Err()
}
