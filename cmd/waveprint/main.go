// Command waveprint is the CLI front end for the waveprint library: a
// thin wrapper that opens a Library and dispatches to its public surface,
// standing in for the host application a real embedder would write.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fatih/color"

	"waveprint"
	"waveprint/export"
	"waveprint/internal/backup"
	"waveprint/internal/xerr"
	"waveprint/search"
)

const defaultDBPath = "waveprint.db"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		cmdAdd(os.Args[2:])
	case "query":
		cmdQuery(os.Args[2:])
	case "export":
		cmdExport(os.Args[2:])
	case "list":
		cmdList(os.Args[2:])
	case "rm":
		cmdRemove(os.Args[2:])
	case "stats":
		cmdStats(os.Args[2:])
	case "backup":
		cmdBackup(os.Args[2:])
	case "version":
		fmt.Println(waveprint.Version)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("usage: waveprint <command> [args]")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  add <file|dir>                                ingest one file or a directory of audio files")
	fmt.Println("  query <file> [-threshold N] [-max N] [-segments]  find similar sounds")
	fmt.Println("  export <csv|markers|midi> <file> -out <path>  query then export the results")
	fmt.Println("  list                                          list registered sounds")
	fmt.Println("  rm <id>                                       remove a registered sound")
	fmt.Println("  stats                                         print store statistics")
	fmt.Println("  backup [-folder ID]                           upload a database snapshot to Google Drive")
}

func openLibrary() *waveprint.Library {
	lib, err := waveprint.Open(defaultDBPath)
	if err != nil {
		fail(err)
	}
	return lib
}

func fail(err error) {
	color.Red("error: %v", err)
	os.Exit(1)
}

func cmdAdd(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: waveprint add <file|dir>")
		os.Exit(1)
	}
	lib := openLibrary()
	defer lib.Close()

	paths, err := collectAudioFiles(args[0])
	if err != nil {
		fail(err)
	}

	ok, failed := ingestConcurrently(lib, paths)
	color.Green("ingested %d files, %d failed", ok, failed)
}

func cmdQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	threshold := fs.Float64("threshold", 50, "score threshold [0,100]")
	max := fs.Int("max", 10, "max results")
	segments := fs.Bool("segments", false, "run segment-localized search")
	var pos []string
	for rest := args; len(rest) > 0; {
		fs.Parse(rest)
		rest = fs.Args()
		if len(rest) > 0 {
			pos = append(pos, rest[0])
			rest = rest[1:]
		}
	}

	if len(pos) < 1 {
		fmt.Println("usage: waveprint query <file> [-threshold N] [-max N] [-segments]")
		os.Exit(1)
	}

	lib := openLibrary()
	defer lib.Close()

	matches := runQuery(lib, pos[0], *threshold, *max, *segments)
	printMatches(matches)
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output path")
	threshold := fs.Float64("threshold", 50, "score threshold [0,100]")
	max := fs.Int("max", 10, "max results")
	var pos []string
	for rest := args; len(rest) > 0; {
		fs.Parse(rest)
		rest = fs.Args()
		if len(rest) > 0 {
			pos = append(pos, rest[0])
			rest = rest[1:]
		}
	}

	if len(pos) < 2 || *out == "" {
		fmt.Println("usage: waveprint export <csv|markers|midi> <file> -out <path>")
		os.Exit(1)
	}

	format := pos[0]
	queryPath := pos[1]

	lib := openLibrary()
	defer lib.Close()

	matches := runQuery(lib, queryPath, *threshold, *max, true)

	var err error
	switch format {
	case "csv":
		err = export.ToCSV(matches, *out)
	case "markers":
		err = export.ToMarkers(matches, *out)
	case "midi":
		err = export.ToMIDI(matches, *out, export.MIDIOptions{})
	default:
		fmt.Println("unknown export format (want csv, markers, or midi)")
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}
	color.Green("exported %d matches to %s", len(matches), *out)
}

func cmdList(args []string) {
	lib := openLibrary()
	defer lib.Close()

	sounds, err := lib.GetAllSounds()
	if err != nil {
		fail(err)
	}
	for _, s := range sounds {
		fmt.Printf("%d\t%s\t%.2fs\n", s.ID, s.Filename, s.Duration)
	}
}

func cmdRemove(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: waveprint rm <id>")
		os.Exit(1)
	}
	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		fail(fmt.Errorf("invalid id %q", args[0]))
	}

	lib := openLibrary()
	defer lib.Close()

	if err := lib.RemoveSound(id); err != nil {
		fail(err)
	}
	color.Green("removed sound %d", id)
}

func cmdStats(args []string) {
	lib := openLibrary()
	defer lib.Close()

	n, err := lib.GetSoundCount()
	if err != nil {
		fail(err)
	}
	fmt.Printf("sounds indexed: %d\n", n)
}

func cmdBackup(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	folder := fs.String("folder", "", "Google Drive folder id (defaults to WAVEPRINT_GOOGLE_DRIVE_FOLDER)")
	fs.Parse(args)

	if !backup.Enabled() {
		fail(fmt.Errorf("backup is not configured: set WAVEPRINT_GOOGLE_CREDENTIALS and WAVEPRINT_GOOGLE_DRIVE_FOLDER"))
	}

	lib := openLibrary()
	defer lib.Close()

	id, err := lib.Backup(context.Background(), *folder)
	if err != nil {
		fail(err)
	}
	color.Green("uploaded snapshot %s", id)
}

func runQuery(lib *waveprint.Library, path string, threshold float64, max int, segments bool) []search.Match {
	var (
		matches []search.Match
		err     error
	)
	if segments {
		matches, err = lib.FindSimilarWithSegments(path, threshold, max)
	} else {
		matches, err = lib.FindSimilar(path, threshold, max)
	}
	if err != nil {
		fail(err)
	}
	return matches
}

func printMatches(matches []search.Match) {
	if len(matches) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, m := range matches {
		fmt.Printf("%6.2f%%  %-30s  %.3fs - %.3fs\n", m.Score, m.Filename, m.MatchStart, m.MatchEnd)
	}
}

// ingestConcurrently adds paths to lib over a bounded worker pool, the
// same jobs/results-channel shape the teacher uses for batch indexing.
func ingestConcurrently(lib *waveprint.Library, paths []string) (ok, failed int) {
	numFiles := len(paths)
	if numFiles == 0 {
		return 0, 0
	}

	maxWorkers := runtime.NumCPU() / 2
	if maxWorkers > numFiles {
		maxWorkers = numFiles
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	jobs := make(chan string, numFiles)
	results := make(chan error, numFiles)

	for w := 0; w < maxWorkers; w++ {
		go func() {
			for p := range jobs {
				_, err := lib.AddSound(p)
				results <- err
			}
		}()
	}
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	for i := 0; i < numFiles; i++ {
		if err := <-results; err != nil {
			color.Red("error: %v", err)
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}

func collectAudioFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, xerr.IO(fmt.Sprintf("cannot stat %s", root), err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".wav", ".mp3", ".flac", ".ogg", ".m4a":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
