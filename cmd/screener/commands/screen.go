package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/asx-screener/internal/api/handlers"
	"github.com/wonny/asx-screener/internal/contracts"
	"github.com/wonny/asx-screener/internal/render"
	"github.com/wonny/asx-screener/internal/screener"
	"github.com/wonny/asx-screener/internal/snapshot"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "최신 스냅샷 스크리닝",
	Long: `최신 스냅샷을 필터/정렬하여 표로 출력합니다.

Example:
  go run ./cmd/screener screen --sector Finance --sort market_cap --desc
  go run ./cmd/screener screen --min rsi=70 --columns close,change,rsi
  go run ./cmd/screener screen --preset oversold --page-size 25 --page 2
  go run ./cmd/screener screen --preset top_gainers --html gainers.html`,
	RunE: runScreen,
}

var screenFlags struct {
	date     string
	preset   string
	sector   string
	industry string
	exchange string
	kind     string
	query    string
	min      []string
	max      []string
	sort     string
	desc     bool
	columns  string
	page     int
	pageSize int
	html     string
	title    string
}

func init() {
	rootCmd.AddCommand(screenCmd)

	f := screenCmd.Flags()
	f.StringVar(&screenFlags.date, "date", "", "snapshot date YYYY-MM-DD (default latest)")
	f.StringVar(&screenFlags.preset, "preset", "", "apply a preset first")
	f.StringVar(&screenFlags.sector, "sector", "", "sector")
	f.StringVar(&screenFlags.industry, "industry", "", "industry (within the sector)")
	f.StringVar(&screenFlags.exchange, "exchange", "", "exchange")
	f.StringVar(&screenFlags.kind, "type", "", "security type")
	f.StringVarP(&screenFlags.query, "query", "q", "", "ticker/company substring")
	f.StringArrayVar(&screenFlags.min, "min", nil, "lower bound field=value (repeatable)")
	f.StringArrayVar(&screenFlags.max, "max", nil, "upper bound field=value (repeatable)")
	f.StringVar(&screenFlags.sort, "sort", "", "sort column")
	f.BoolVar(&screenFlags.desc, "desc", false, "sort descending")
	f.StringVar(&screenFlags.columns, "columns", "", "comma-separated visible columns")
	f.IntVar(&screenFlags.page, "page", 1, "page number (1-based)")
	f.IntVar(&screenFlags.pageSize, "page-size", 0, "rows per page (25, 50, 100)")
	f.StringVar(&screenFlags.html, "html", "", "write an HTML page to this path ('-' for stdout)")
	f.StringVar(&screenFlags.title, "title", "", "HTML page title")
}

// screenValues maps the flags onto the one-shot screen query parameters
func screenValues() (url.Values, error) {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}

	set("preset", screenFlags.preset)
	set("sector", screenFlags.sector)
	set("industry", screenFlags.industry)
	set("exchange", screenFlags.exchange)
	set("type", screenFlags.kind)
	set("q", screenFlags.query)
	set("sort", screenFlags.sort)
	set("columns", screenFlags.columns)

	if screenFlags.sort != "" && screenFlags.desc {
		v.Set("dir", "desc")
	}

	for side, bounds := range map[string][]string{"min": screenFlags.min, "max": screenFlags.max} {
		for _, b := range bounds {
			field, value, ok := strings.Cut(b, "=")
			if !ok {
				return nil, fmt.Errorf("--%s %q: want field=value", side, b)
			}
			v.Set(side+"."+strings.TrimSpace(field), strings.TrimSpace(value))
		}
	}

	if screenFlags.pageSize != 0 {
		v.Set("page_size", strconv.Itoa(screenFlags.pageSize))
	}
	if screenFlags.page > 1 {
		v.Set("page", strconv.Itoa(screenFlags.page-1))
	}
	return v, nil
}

func runScreen(cmd *cobra.Command, args []string) error {
	values, err := screenValues()
	if err != nil {
		return err
	}
	actions, err := handlers.ParseScreenQuery(values)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	presetList, err := a.presets()
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(ctx, a, screenFlags.date)
	if err != nil {
		return err
	}

	c, err := screener.NewController(snap, screener.Options{
		PageSize: a.cfg.Screener.DefaultPageSize,
		Presets:  presetList,
	})
	if err != nil {
		return err
	}

	view := c.View()
	for _, action := range actions {
		if view, err = c.Apply(action); err != nil {
			return err
		}
	}

	if screenFlags.html != "" {
		return writeHTML(screenFlags.html, screenFlags.title, view)
	}

	PrintHeader(fmt.Sprintf("ASX Screener - %s", view.Date))
	if n := view.Criteria.Active(); n > 0 {
		PrintInfo(fmt.Sprintf("%d active filters", n))
	}
	PrintView(view)
	return nil
}

// loadSnapshot reads the snapshot for date, or the latest when date is empty
func loadSnapshot(ctx context.Context, a *app, date string) (*contracts.Snapshot, error) {
	loader := a.loader()
	if date == "" {
		return loader.Latest(ctx)
	}
	d, err := snapshot.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, d)
}

func writeHTML(path, title string, view screener.View) error {
	if path == "-" {
		return render.Document(os.Stdout, title, view)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.Document(f, title, view); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Wrote %d rows to %s", len(view.Rows), path))
	return nil
}
