package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fellrank-data/race.report/internal/config"
	"github.com/fellrank-data/race.report/internal/db"
	"github.com/fellrank-data/race.report/internal/ingest"
	"github.com/fellrank-data/race.report/internal/monitoring"
	"github.com/fellrank-data/race.report/internal/rating"
	"github.com/fellrank-data/race.report/internal/report"
	"github.com/fellrank-data/race.report/internal/results"
	"github.com/fellrank-data/race.report/internal/stats"
	"github.com/fellrank-data/race.report/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "import":
		handleImport(args)
	case "rank":
		handleRank(args)
	case "rankings":
		handleRankings(args)
	case "runner":
		handleRunner(args)
	case "stats":
		handleStats(args)
	case "report":
		handleReport(args)
	case "races":
		handleRaces(args)
	case "migrate":
		handleMigrate(args)
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`race-report - Race results pipeline and rating engine

Usage: race-report <command> [options]

Commands:
  import     Import result files for a race edition
  rank       Calculate chronological Elo ratings
  rankings   Show the rankings table
  runner     Look up a runner and their history
  stats      Summarise finish times for a race
  report     Render HTML charts (rating history, time histogram)
  races      List imported races
  migrate    Manage the database schema
  version    Show race-report version
  help       Show this help message

Common Flags:
  --config <file>   Configuration file path (or RACEREPORT_CONFIG)
  --db <file>       SQLite database path (overrides configuration)

Examples:
  # Import a CSV of results
  race-report import --race "Ben Nevis Race" --year 2024 results-2024.csv

  # Calculate ratings across every imported edition of a race
  race-report rank --race "Ben Nevis Race" --recalculate

  # All-time rankings for runners with at least 10 comparisons
  race-report rankings --min-games 10 --limit 25

  # Finish-time distribution chart
  race-report report --race "Ben Nevis Race" --year 2024 --out times.html`)
}

// loadConfig layers the config file and applies a --db override.
func loadConfig(configPath, dbOverride string) *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	if dbOverride != "" {
		cfg.DatabasePath = dbOverride
	}
	return cfg
}

func openDB(cfg *config.Config) *db.DB {
	d, err := db.EnsureSchema(cfg.DatabasePath)
	if err != nil {
		fatalf("database: %v", err)
	}
	return d
}

func fatalf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", v...)
	os.Exit(1)
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func handleImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	configPath := fs.String("config", "", "Configuration file path")
	dbPath := fs.String("db", "", "SQLite database path")
	raceName := fs.String("race", "", "Race name (required)")
	year := fs.Int("year", 0, "Race year (required)")
	category := fs.String("category", "", "Race category (e.g. hill, trail, road)")
	date := fs.String("date", "", "Race date (YYYY-MM-DD)")
	timeFormat := fs.String("time-format", "", "Override configured time format")
	strict := fs.Bool("strict", false, "Abort the import on any invalid row")
	verbose := fs.Bool("verbose", false, "Log per-row diagnostics")
	fs.Parse(args)

	if *raceName == "" || *year == 0 {
		fatalf("import requires --race and --year")
	}
	if fs.NArg() < 1 {
		fatalf("import requires at least one result file")
	}
	monitoring.SetVerbose(*verbose)

	cfg := loadConfig(*configPath, *dbPath)
	if *timeFormat != "" {
		cfg.TimeFormat = *timeFormat
	}
	if *strict {
		cfg.Strict = true
	}

	normalizer, err := results.NewNormalizer(cfg.NormalizerConfig(*raceName, *year, *category))
	if err != nil {
		fatalf("import: %v", err)
	}

	d := openDB(cfg)
	defer d.Close()

	raceID, err := d.AddRace(*raceName, strOrNil(*category))
	if err != nil {
		fatalf("import: %v", err)
	}

	// One edition per (race, year); every given file feeds the same edition.
	editionID, err := d.AddEdition(db.Edition{
		RaceID:     raceID,
		Year:       year,
		Date:       strOrNil(*date),
		SourceFile: strOrNil(fs.Arg(0)),
	})
	if err != nil {
		fatalf("import: %v", err)
	}

	total := 0
	for _, path := range fs.Args() {
		table, err := ingest.ReadFile(path)
		if err != nil {
			fatalf("import %s: %v", path, err)
		}
		monitoring.Debugf("parsed %s: %d columns, %d rows", path, len(table.Columns), table.Len())

		recs, err := normalizer.Normalize(table.Columns, table.Rows)
		if err != nil {
			fatalf("import %s: %v", path, err)
		}

		n, err := d.InsertResults(editionID, recs)
		if err != nil {
			fatalf("import %s: %v", path, err)
		}
		total += n
		monitoring.Logf("imported %d results from %s", n, path)
	}
	fmt.Printf("Imported %d results for %s %d\n", total, *raceName, *year)
}

func handleRank(args []string) {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	configPath := fs.String("config", "", "Configuration file path")
	dbPath := fs.String("db", "", "SQLite database path")
	raceName := fs.String("race", "", "Limit to one race (default: all races)")
	year := fs.Int("year", 0, "Limit to one year (default: all years)")
	recalculate := fs.Bool("recalculate", false, "Clear stored ratings before calculating")
	fs.Parse(args)

	cfg := loadConfig(*configPath, *dbPath)
	d := openDB(cfg)
	defer d.Close()

	engine := rating.NewEngine(d)
	if err := engine.Calculate(*raceName, *year, *recalculate); err != nil {
		fatalf("rank: %v", err)
	}
	fmt.Println("Ratings updated")
}

func handleRankings(args []string) {
	fs := flag.NewFlagSet("rankings", flag.ExitOnError)
	configPath := fs.String("config", "", "Configuration file path")
	dbPath := fs.String("db", "", "SQLite database path")
	year := fs.Int("year", 0, "Rankings as of this year (default: all time)")
	limit := fs.Int("limit", 50, "Maximum rows to show (0 for all)")
	minGames := fs.Int("min-games", -1, "Minimum comparisons (default from configuration)")
	fs.Parse(args)

	cfg := loadConfig(*configPath, *dbPath)
	if *minGames < 0 {
		*minGames = cfg.MinGames
	}
	d := openDB(cfg)
	defer d.Close()

	entries, err := d.Rankings(*year, *limit, *minGames)
	if err != nil {
		fatalf("rankings: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("No rankings found. Run 'race-report rank' first.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Rank\tName\tClub\tRating\tGames\tRaces\tYear")
	for i, e := range entries {
		club := ""
		if e.Club != nil {
			club = *e.Club
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%d\t%d\t%d\n",
			i+1, e.Name, club, e.Rating, e.GamesPlayed, e.RacesCount, e.Year)
	}
	w.Flush()
}

func handleRunner(args []string) {
	fs := flag.NewFlagSet("runner", flag.ExitOnError)
	configPath := fs.String("config", "", "Configuration file path")
	dbPath := fs.String("db", "", "SQLite database path")
	name := fs.String("name", "", "Runner name (required)")
	exact := fs.Bool("exact", false, "Exact name match only")
	similar := fs.Bool("similar", false, "Include fuzzy name matches")
	history := fs.Bool("history", false, "Show race and rating history")
	fs.Parse(args)

	if *name == "" {
		fatalf("runner requires --name")
	}

	cfg := loadConfig(*configPath, *dbPath)
	d := openDB(cfg)
	defer d.Close()

	var runners []db.Runner
	var err error
	if *similar {
		runners, err = rating.NewRegistry(d).FindSimilar(*name)
	} else {
		runners, err = d.SearchRunners(*name, *exact)
	}
	if err != nil {
		fatalf("runner: %v", err)
	}
	if len(runners) == 0 {
		fmt.Printf("No runners matching %q\n", *name)
		return
	}

	for _, r := range runners {
		club := "unattached"
		if r.Club != nil {
			club = *r.Club
		}
		fmt.Printf("%s (%s), %d appearances", r.Name, club, r.Appearances)
		if r.FirstSeenYear != nil && r.LastSeenYear != nil {
			fmt.Printf(", seen %d-%d", *r.FirstSeenYear, *r.LastSeenYear)
		}
		fmt.Println()

		if !*history {
			continue
		}
		printRunnerHistory(d, r)
	}
}

func printRunnerHistory(d *db.DB, r db.Runner) {
	rows, err := d.RunnerHistory(r.Name, r.Club)
	if err != nil {
		fatalf("runner: %v", err)
	}
	for _, res := range rows {
		year := "?"
		if res.RaceYear != nil {
			year = fmt.Sprintf("%d", *res.RaceYear)
		}
		pos := "-"
		if res.PositionOverall != nil {
			pos = fmt.Sprintf("%d", *res.PositionOverall)
		}
		t := "-"
		if res.FinishSeconds != nil {
			t = formatSeconds(*res.FinishSeconds)
		}
		fmt.Printf("  %s %s: pos %s, time %s, %s\n", year, res.RaceName, pos, t, res.Status)
	}

	ratings, err := d.RatingHistory(r.ID)
	if err != nil {
		fatalf("runner: %v", err)
	}
	for _, row := range ratings {
		fmt.Printf("  %d rating %.1f (%d games, %d won)\n",
			row.Year, row.Rating, row.GamesPlayed, row.GamesWon)
	}
}

func formatSeconds(s float64) string {
	total := int(s)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// finishedSamples loads finished results with a recorded time as stat samples.
func finishedSamples(d *db.DB, raceName string, year int) []stats.Sample {
	rows, err := d.QueryResults(db.ResultFilter{RaceName: raceName, Year: year})
	if err != nil {
		fatalf("stats: %v", err)
	}
	var samples []stats.Sample
	for _, r := range rows {
		if r.Status != string(results.StatusFinished) || r.FinishMinutes == nil {
			continue
		}
		s := stats.Sample{Name: r.Name, Minutes: *r.FinishMinutes}
		if r.Gender != nil {
			s.Gender = *r.Gender
		}
		if r.AgeCategory != nil {
			s.Category = *r.AgeCategory
		}
		if r.Club != nil {
			s.Club = *r.Club
			s.HasClub = true
		}
		samples = append(samples, s)
	}
	return samples
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "", "Configuration file path")
	dbPath := fs.String("db", "", "SQLite database path")
	raceName := fs.String("race", "", "Race name (required)")
	year := fs.Int("year", 0, "Race year (default: all editions)")
	fs.Parse(args)

	if *raceName == "" {
		fatalf("stats requires --race")
	}

	cfg := loadConfig(*configPath, *dbPath)
	d := openDB(cfg)
	defer d.Close()

	samples := finishedSamples(d, *raceName, *year)
	if len(samples) == 0 {
		fmt.Println("No finished results with times found.")
		return
	}

	minutes := make([]float64, len(samples))
	for i, s := range samples {
		minutes[i] = s.Minutes
	}

	sum := stats.Summarize(minutes)
	fmt.Printf("%s", *raceName)
	if *year != 0 {
		fmt.Printf(" %d", *year)
	}
	fmt.Printf(": %d finishers\n", sum.Count)
	fmt.Printf("  mean %.1f min, median %.1f min, stddev %.1f\n", sum.Mean, sum.Median, sum.StdDev)
	fmt.Printf("  fastest %s, slowest %s\n", formatSeconds(sum.Min*60), formatSeconds(sum.Max*60))

	gc := stats.GenderComparison(samples)
	if gc.A.Count > 0 && gc.B.Count > 0 {
		fmt.Printf("  %s mean %.1f min (%d), %s mean %.1f min (%d)\n",
			gc.LabelA, gc.A.Mean, gc.A.Count, gc.LabelB, gc.B.Mean, gc.B.Count)
	}

	for _, g := range stats.CategoryBreakdown(samples) {
		fmt.Printf("  %-6s %3d finishers, mean %.1f min\n", g.Group, g.Count, g.Mean)
	}
}

func handleReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Configuration file path")
	dbPath := fs.String("db", "", "SQLite database path")
	runnerName := fs.String("runner", "", "Render a rating history chart for this runner")
	raceName := fs.String("race", "", "Render a finish-time histogram for this race")
	year := fs.Int("year", 0, "Race year (with --race)")
	out := fs.String("out", "", "Output HTML file (required)")
	bins := fs.Int("bins", 0, "Histogram bins (default from configuration)")
	fs.Parse(args)

	if *out == "" {
		fatalf("report requires --out")
	}
	if (*runnerName == "") == (*raceName == "") {
		fatalf("report requires exactly one of --runner or --race")
	}

	cfg := loadConfig(*configPath, *dbPath)
	if *bins <= 0 {
		*bins = cfg.HistogramBins
	}
	d := openDB(cfg)
	defer d.Close()

	if *runnerName != "" {
		runners, err := d.SearchRunners(*runnerName, true)
		if err != nil {
			fatalf("report: %v", err)
		}
		if len(runners) == 0 {
			fatalf("report: no runner named %q", *runnerName)
		}
		history, err := d.RatingHistory(runners[0].ID)
		if err != nil {
			fatalf("report: %v", err)
		}
		if err := report.WriteRatingHistory(*out, runners[0].Name, history); err != nil {
			fatalf("report: %v", err)
		}
		fmt.Printf("Wrote rating history for %s to %s\n", runners[0].Name, *out)
		return
	}

	samples := finishedSamples(d, *raceName, *year)
	minutes := make([]float64, len(samples))
	for i, s := range samples {
		minutes[i] = s.Minutes
	}
	title := *raceName
	if *year != 0 {
		title = fmt.Sprintf("%s %d", *raceName, *year)
	}
	if err := report.WriteFinishTimeHistogram(*out, title, minutes, *bins); err != nil {
		fatalf("report: %v", err)
	}
	fmt.Printf("Wrote finish-time histogram to %s\n", *out)
}

func handleRaces(args []string) {
	fs := flag.NewFlagSet("races", flag.ExitOnError)
	configPath := fs.String("config", "", "Configuration file path")
	dbPath := fs.String("db", "", "SQLite database path")
	fs.Parse(args)

	cfg := loadConfig(*configPath, *dbPath)
	d := openDB(cfg)
	defer d.Close()

	races, err := d.ListRaces()
	if err != nil {
		fatalf("races: %v", err)
	}
	if len(races) == 0 {
		fmt.Println("No races imported yet.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Race\tCategory\tEditions\tResults\tYears")
	for _, r := range races {
		category := ""
		if r.Category != nil {
			category = *r.Category
		}
		years := ""
		if r.FirstYear != nil && r.LastYear != nil {
			if *r.FirstYear == *r.LastYear {
				years = fmt.Sprintf("%d", *r.FirstYear)
			} else {
				years = fmt.Sprintf("%d-%d", *r.FirstYear, *r.LastYear)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", r.Name, category, r.Editions, r.ResultCount, years)
	}
	w.Flush()
}

func handleMigrate(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configPath := fs.String("config", "", "Configuration file path")
	dbPath := fs.String("db", "", "SQLite database path")
	fs.Parse(args)

	cfg := loadConfig(*configPath, *dbPath)
	rest := fs.Args()
	if len(rest) == 0 {
		rest = []string{"help"}
	}
	db.RunMigrateCommand(rest, cfg.DatabasePath)
}
