// Package report renders analysis envelopes as Markdown documents, with an
// HTML variant for embedding in web responses.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gridstat/domain/stats"
	"gridstat/internal/errors"
)

// Markdown renders one envelope as a Markdown document
func Markdown(result *stats.AnalysisResult) (string, error) {
	if err := result.Validate(); err != nil {
		return "", errors.InvalidInput("cannot render malformed result: " + err.Error())
	}

	var b strings.Builder
	switch result.Kind {
	case stats.KindDescriptive:
		renderDescriptive(&b, result.Descriptive)
	case stats.KindCorrelation, stats.KindPartialCorrelation:
		renderCorrelation(&b, result.Correlation)
	case stats.KindDistance:
		renderDistance(&b, result.Distance)
	case stats.KindRegression:
		renderRegression(&b, result.Regression)
	default:
		return "", errors.InvalidInput("unknown analysis kind " + string(result.Kind))
	}
	fmt.Fprintf(&b, "\n*Analysis %s, %s*\n", result.ID, result.CreatedAt.Time().Format("2006-01-02 15:04:05"))
	return b.String(), nil
}

// HTML renders one envelope as an HTML fragment
func HTML(result *stats.AnalysisResult) (string, error) {
	md, err := Markdown(result)
	if err != nil {
		return "", err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(md), p, renderer)), nil
}

func renderDescriptive(b *strings.Builder, d *stats.DescriptiveStatistics) {
	b.WriteString("# Descriptive Statistics\n\n")
	b.WriteString("| Statistic | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| N | %d |\n", d.Count)
	fmt.Fprintf(b, "| Mean | %.4f |\n", d.Mean)
	fmt.Fprintf(b, "| Median | %.4f |\n", d.Median)
	if d.Mode != nil {
		fmt.Fprintf(b, "| Mode | %.4f |\n", *d.Mode)
	}
	fmt.Fprintf(b, "| Std Dev | %.4f |\n", d.StdDev)
	fmt.Fprintf(b, "| Variance | %.4f |\n", d.Variance)
	fmt.Fprintf(b, "| Min | %.4f |\n", d.Min)
	fmt.Fprintf(b, "| Max | %.4f |\n", d.Max)
	fmt.Fprintf(b, "| Range | %.4f |\n", d.Range)
	fmt.Fprintf(b, "| Q1 | %.4f |\n", d.Q1)
	fmt.Fprintf(b, "| Q3 | %.4f |\n", d.Q3)
	fmt.Fprintf(b, "| IQR | %.4f |\n", d.IQR)
	fmt.Fprintf(b, "| Skewness | %.4f |\n", d.Skewness)
	fmt.Fprintf(b, "| Kurtosis | %.4f |\n", d.Kurtosis)
}

func renderCorrelation(b *strings.Builder, c *stats.CorrelationResult) {
	if c.Controls != nil {
		b.WriteString("# Partial Correlation Matrix\n\n")
		names := make([]string, len(c.Controls))
		for i, key := range c.Controls {
			names[i] = key.String()
		}
		fmt.Fprintf(b, "Controlling for: %s\n\n", strings.Join(names, ", "))
	} else {
		fmt.Fprintf(b, "# Correlation Matrix (%s)\n\n", c.Method)
	}
	fmt.Fprintf(b, "N = %d, %s-tailed. Significant cells at p < 0.05 are starred.\n\n", c.SampleSize, c.Tail)

	b.WriteString("| |")
	for _, v := range c.Variables {
		fmt.Fprintf(b, " %s |", v)
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(c.Variables)))
	b.WriteString("\n")
	for i, v := range c.Variables {
		fmt.Fprintf(b, "| **%s** |", v)
		for j := range c.Variables {
			star := ""
			if i != j && c.Significant[i][j] {
				star = "*"
			}
			fmt.Fprintf(b, " %.3f%s |", c.Coefficients[i][j], star)
		}
		b.WriteString("\n")
	}
}

func renderDistance(b *strings.Builder, m *stats.DistanceMatrix) {
	fmt.Fprintf(b, "# Distance Matrix (%s)\n\n", m.Metric)
	fmt.Fprintf(b, "%d cases.\n\n", m.Cases)

	// Full matrices get unwieldy fast; cap the rendered block.
	limit := m.Cases
	if limit > 12 {
		limit = 12
		fmt.Fprintf(b, "Showing the first %d cases.\n\n", limit)
	}
	b.WriteString("| |")
	for j := 0; j < limit; j++ {
		fmt.Fprintf(b, " %d |", j+1)
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", limit))
	b.WriteString("\n")
	for i := 0; i < limit; i++ {
		fmt.Fprintf(b, "| **%d** |", i+1)
		for j := 0; j < limit; j++ {
			fmt.Fprintf(b, " %.3f |", m.Values[i][j])
		}
		b.WriteString("\n")
	}
}

func renderRegression(b *strings.Builder, r *stats.LinearRegressionResult) {
	b.WriteString("# Linear Regression\n\n")
	names := make([]string, len(r.Independents))
	for i, key := range r.Independents {
		names[i] = key.String()
	}
	fmt.Fprintf(b, "%s ~ %s\n\n", r.Dependent, strings.Join(names, " + "))
	fmt.Fprintf(b, "N = %d, R = %.4f, R² = %.4f, adjusted R² = %.4f, SE of estimate = %.4f\n\n",
		r.SampleSize, r.R, r.RSquared, r.AdjustedRSquared, r.StdErrorOfEstimate)

	b.WriteString("| Term | B | SE | Beta | t | p | 95% CI |\n|---|---|---|---|---|---|---|\n")
	for i := range r.Coefficients {
		term := "(Intercept)"
		beta := ""
		if i > 0 {
			term = r.Independents[i-1].String()
			beta = fmt.Sprintf("%.4f", r.Beta[i])
		}
		fmt.Fprintf(b, "| %s | %.4f | %.4f | %s | %.3f | %.4f | [%.4f, %.4f] |\n",
			term, r.Coefficients[i], r.StdErrors[i], beta, r.TStats[i], r.PValues[i],
			r.ConfidenceIntervals[i][0], r.ConfidenceIntervals[i][1])
	}
}
