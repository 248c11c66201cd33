package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"ytmarket/pkg/market"
)

// classBadges maps competitor tiers to their colored display markers
var classBadges = map[market.CompetitorClass]func(string) string{
	market.ClassShark:   Red,
	market.ClassWhale:   Magenta,
	market.ClassFish:    Yellow,
	market.ClassGuppy:   Green,
	market.ClassUnknown: Dim,
}

// HumanCount renders large counters compactly: 1234 -> 1.2K, 5600000 -> 5.6M
func HumanCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return trimZero(fmt.Sprintf("%.1fB", float64(n)/1e9))
	case n >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1fM", float64(n)/1e6))
	case n >= 1_000:
		return trimZero(fmt.Sprintf("%.1fK", float64(n)/1e3))
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}

// RenderReport writes the full analysis report to w
func RenderReport(w io.Writer, report *market.Report) {
	fmt.Fprintf(w, "\n%s %s\n", Cyan("Keyword:"), Yellow(report.Keyword))
	fmt.Fprintf(w, "%s %s  %s %s  %s %s\n",
		Cyan("Window:"), string(report.Window),
		Cyan("Kind:"), string(report.Kind),
		Cyan("Key:"), fmt.Sprintf("#%d", report.ActiveKey))

	renderRegionStats(w, report)

	if report.Empty() {
		fmt.Fprintf(w, "\n%s\n", Yellow("No results found for this keyword."))
		return
	}

	if report.Kind != market.KindVideo {
		renderIdentifiers(w, report)
		return
	}

	renderRows(w, report.Rows)
	if report.Score != nil {
		renderScore(w, report.Score)
	}
	fmt.Fprintf(w, "\n%s %s\n", Dim("elapsed"), Dim(report.Elapsed.Round(1e7).String()))
}

func renderRegionStats(w io.Writer, report *market.Report) {
	regions := make([]string, 0, len(report.RegionStats))
	for region := range report.RegionStats {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	var parts []string
	for _, region := range regions {
		parts = append(parts, fmt.Sprintf("%s:%d", region, report.RegionStats[region]))
	}

	line := fmt.Sprintf("%d found (%s)", report.TotalFound, strings.Join(parts, " "))
	if report.CapHit {
		line += " " + Red("[cap hit]")
	}
	fmt.Fprintf(w, "%s %s\n", Cyan("Pool:"), line)
}

func renderIdentifiers(w io.Writer, report *market.Report) {
	fmt.Fprintln(w)
	for i, id := range report.IDs {
		fmt.Fprintf(w, "%3d. %s\n", i+1, id)
	}
}

func renderRows(w io.Writer, rows []market.Row) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\n#\tCLASS\tTITLE\tVIEWS\tLIKES\tSUBS\tAGE\tLIKE%\tURL")

	for i, row := range rows {
		badge := classBadges[row.Class]
		if badge == nil {
			badge = Dim
		}

		title := row.Title
		if len([]rune(title)) > 48 {
			title = string([]rune(title)[:47]) + "…"
		}
		if row.Viral {
			title = Magenta("🔥 ") + title
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			i+1,
			badge(strings.ToUpper(string(row.Class))),
			title,
			HumanCount(row.Views),
			HumanCount(row.Likes),
			HumanCount(row.Subscribers),
			row.AgeDisplay,
			row.LikeRate,
			Dim(row.VideoURL))
	}
	tw.Flush()
}

func renderScore(w io.Writer, score *market.ScoreResult) {
	fmt.Fprintf(w, "\n%s\n", Magenta("── Market Verdict ──"))
	fmt.Fprintf(w, "%s %s (%d, density %.1f/day)\n",
		Cyan("Supply:"), supplyColor(score.SupplyLabel), score.SupplyScore, score.Density)
	fmt.Fprintf(w, "%s %d (median subs %s, %d sharks, %d guppies)\n",
		Cyan("Competition:"), score.CompetitorScore,
		HumanCount(int64(score.MedianSubscribers)), score.SharkCount, score.GuppyCount)
	fmt.Fprintf(w, "%s %s\n", Cyan("Composite:"), compositeColor(score.CompositeScore))
	fmt.Fprintf(w, "%s median views %s, median like rate %.1f%%\n",
		Cyan("Engagement:"), HumanCount(int64(score.MedianViews)), score.MedianLikeRate)
}

// supplyColor picks a color matching how crowded the niche is
func supplyColor(label market.SupplyLabel) string {
	switch label {
	case market.SupplySaturated:
		return Red(string(label))
	case market.SupplyCompetitive:
		return Yellow(string(label))
	case market.SupplyScarce:
		return Green(string(label))
	default:
		return Cyan(string(label))
	}
}

// compositeColor renders the composite score: low is an opportunity, high
// is a wall
func compositeColor(score int) string {
	text := fmt.Sprintf("%d/100", score)
	switch {
	case score >= 70:
		return Red(text)
	case score >= 40:
		return Yellow(text)
	default:
		return Green(text)
	}
}
