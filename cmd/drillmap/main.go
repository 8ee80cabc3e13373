package main

import (
	"log"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"

	"github.com/kmapviz/drillmap/pkg/app"
	"github.com/kmapviz/drillmap/pkg/boundary"
	"github.com/kmapviz/drillmap/pkg/stats"
)

var cli struct {
	DataDir   string `help:"Directory with provinces/municipalities/submunicipalities.geojson. Empty uses the embedded demo dataset." env:"DRILLMAP_DATA_DIR"`
	CacheDir  string `help:"Boundary cache directory. Empty disables the cache." env:"DRILLMAP_CACHE_DIR"`
	StatsURL  string `help:"Websocket URL of a live statistics feed. Empty uses the demo provider." env:"DRILLMAP_STATS_URL"`
	Indicator string `help:"Indicator shown at startup." default:"population" env:"DRILLMAP_INDICATOR"`
	Year      int    `help:"Year shown at startup." default:"2025" env:"DRILLMAP_YEAR"`
	Width     int    `help:"Initial window width." default:"1280"`
	Height    int    `help:"Initial window height." default:"720"`
	TPS       int    `help:"Ticks per second." default:"60"`
}

func main() {
	godotenv.Load()
	kong.Parse(&cli,
		kong.Name("drillmap"),
		kong.Description("Interactive choropleth map of Korean administrative regions with three-tier drilldown."),
	)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	indicators := stats.DemoIndicators()
	if !contains(indicators, cli.Indicator) {
		log.Fatalf("Unknown indicator %q. Available: %s", cli.Indicator, strings.Join(indicators, ", "))
	}

	var cache *boundary.Cache
	if cli.CacheDir != "" {
		c, err := boundary.OpenCache(cli.CacheDir)
		if err != nil {
			log.Fatalf("Opening boundary cache at %s: %v", cli.CacheDir, err)
		}
		cache = c
	}
	boundaries := boundary.NewProvider(cli.DataDir, cache)

	a, err := app.New(boundaries, stats.DemoProvider{}, indicators, cli.Indicator, cli.Year)
	if err != nil {
		log.Fatalf("Starting the map: %v", err)
	}

	var live *stats.LiveProvider
	if cli.StatsURL != "" {
		live = stats.NewLiveProvider(cli.StatsURL, a.ApplyLive)
		go live.Run()
	}

	ebiten.SetTPS(cli.TPS)
	ebiten.SetWindowSize(cli.Width, cli.Height)
	ebiten.SetWindowTitle("Regional Indicator Map")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err = ebiten.RunGame(a)

	// Release the feed and the badger directory before reporting the
	// game loop's verdict, so a failed run still shuts down cleanly.
	if live != nil {
		live.Close()
	}
	if cache != nil {
		cache.Close()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
