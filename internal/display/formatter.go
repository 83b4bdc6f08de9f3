// Package display renders catalog data for terminals and for JSON consumers.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/flowr-app/flowr/internal/catalog"
	"github.com/flowr-app/flowr/internal/filter"
	"github.com/flowr-app/flowr/internal/region"
	"github.com/flowr-app/flowr/internal/stats"
)

// Styles for terminal output.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	strainTag    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")) // magenta
	potencyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))            // green
	feelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))            // yellow
	dimStyle     = lipgloss.NewStyle().Faint(true)
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

var titleCaser = cases.Title(language.English)

// ProductJSON is the JSON output shape for a product.
type ProductJSON struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Category      string   `json:"category"`
	StrainType    string   `json:"strainType"`
	Regions       []string `json:"regions"`
	TopFeels      []string `json:"topFeels"`
	TopActivities []string `json:"topActivities"`
	PotencyMode   string   `json:"potencyMode"`
	THCPercent    *float64 `json:"thcPercent"`
	CBDPercent    *float64 `json:"cbdPercent"`
	THCMg         *float64 `json:"thcMg"`
	CBDMg         *float64 `json:"cbdMg"`
	AvgTHC        *float64 `json:"avgTHC"`
}

// ReviewJSON is the JSON output shape for a review.
type ReviewJSON struct {
	ID          string   `json:"id"`
	ProductID   string   `json:"productId"`
	UserID      string   `json:"userId"`
	Rating      int      `json:"rating"`
	Feels       []string `json:"feels"`
	Activity    string   `json:"activity"`
	ReportedTHC *float64 `json:"reportedTHC"`
	Body        string   `json:"body"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// EstimateJSON is the JSON output shape for an average. Value is null when unknown.
type EstimateJSON struct {
	Value  *float64 `json:"value"`
	Source string   `json:"source,omitempty"`
}

// ProductDetail bundles everything shown for a single product.
type ProductDetail struct {
	Product catalog.Product
	Potency stats.Estimate
	Rating  stats.Estimate
	Reviews []catalog.Review
	// PotencyUnavailable is set when a review source could not be read.
	PotencyUnavailable bool
	ReviewsUnavailable bool
}

// ProductDetailJSON is the JSON output shape for a product detail.
type ProductDetailJSON struct {
	Product            ProductJSON  `json:"product"`
	AveragePotency     EstimateJSON `json:"averagePotency"`
	AverageRating      EstimateJSON `json:"averageRating"`
	Reviews            []ReviewJSON `json:"reviews"`
	PotencyUnavailable bool         `json:"potencyUnavailable,omitempty"`
	ReviewsUnavailable bool         `json:"reviewsUnavailable,omitempty"`
}

// PrintProducts renders a list of products to the writer.
func PrintProducts(w io.Writer, products []catalog.Product) {
	fmt.Fprintf(w, "\n%s — %s\n\n",
		headerStyle.Render("Flowr Catalog"),
		cyanStyle.Render(fmt.Sprintf("%d products", len(products))),
	)

	for _, p := range products {
		printProduct(w, p)
		fmt.Fprintln(w)
	}
}

// PrintProductsJSON renders products as JSON.
func PrintProductsJSON(w io.Writer, products []catalog.Product) error {
	out := make([]ProductJSON, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductJSON(p))
	}
	return json.NewEncoder(w).Encode(out)
}

// PrintProductDetail renders one product with its averages and reviews.
func PrintProductDetail(w io.Writer, d ProductDetail) {
	fmt.Fprintln(w)
	printProduct(w, d.Product)

	potency := d.Potency.Percent()
	if d.Potency.Known && d.Potency.Source != stats.SourceNone {
		potency += dimStyle.Render(" (from " + d.Potency.Source.String() + ")")
	}
	fmt.Fprintf(w, "    Avg potency: %s\n", potencyStyle.Render(potency))
	if d.PotencyUnavailable {
		fmt.Fprintf(w, "    %s\n", warningStyle.Render("Some reviews could not be loaded; potency may be incomplete."))
	}
	fmt.Fprintf(w, "    Avg rating:  %s\n", RatingLabel(d.Rating))

	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render(fmt.Sprintf("Reviews (%d)", len(d.Reviews))))
	if d.ReviewsUnavailable {
		fmt.Fprintf(w, "  %s\n\n", warningStyle.Render("Reviews could not be loaded."))
		return
	}
	if len(d.Reviews) == 0 {
		fmt.Fprintf(w, "  %s\n\n", dimStyle.Render("No reviews yet."))
		return
	}
	for _, r := range d.Reviews {
		printReview(w, r)
		fmt.Fprintln(w)
	}
}

// PrintProductDetailJSON renders a product detail as JSON.
func PrintProductDetailJSON(w io.Writer, d ProductDetail) error {
	reviews := make([]ReviewJSON, 0, len(d.Reviews))
	for _, r := range d.Reviews {
		reviews = append(reviews, ToReviewJSON(r))
	}
	return json.NewEncoder(w).Encode(ProductDetailJSON{
		Product:            ToProductJSON(d.Product),
		AveragePotency:     ToEstimateJSON(d.Potency),
		AverageRating:      ToEstimateJSON(d.Rating),
		Reviews:            reviews,
		PotencyUnavailable: d.PotencyUnavailable,
		ReviewsUnavailable: d.ReviewsUnavailable,
	})
}

// PrintReview renders a single review, e.g. after it was saved.
func PrintReview(w io.Writer, r catalog.Review) {
	fmt.Fprintln(w)
	printReview(w, r)
	fmt.Fprintln(w)
}

// PrintReviewJSON renders a review as JSON.
func PrintReviewJSON(w io.Writer, r catalog.Review) error {
	return json.NewEncoder(w).Encode(ToReviewJSON(r))
}

type facetCount struct {
	Name  string
	Count int
}

func sortedCounts(m map[string]int) []facetCount {
	sorted := make([]facetCount, 0, len(m))
	for k, v := range m {
		sorted = append(sorted, facetCount{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Count != sorted[j].Count {
			return sorted[i].Count > sorted[j].Count
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// PrintCategories renders category and region facet counts.
func PrintCategories(w io.Writer, cats, regions map[string]int) {
	fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Categories:"))
	for _, c := range sortedCounts(cats) {
		label := CategoryLabel(c.Name)
		if !filter.IsKnownCategory(c.Name) {
			label += dimStyle.Render(" (" + filter.OtherCategory + ")")
		}
		fmt.Fprintf(w, "  %s: %d products\n", cyanStyle.Render(label), c.Count)
	}

	if len(regions) > 0 {
		fmt.Fprintf(w, "\n%s\n\n", titleStyle.Render("Regions:"))
		for _, r := range sortedCounts(regions) {
			fmt.Fprintf(w, "  %s: %d products\n", cyanStyle.Render(r.Name), r.Count)
		}
	}
	fmt.Fprintln(w)
}

// PrintCategoriesJSON renders facet counts as JSON.
func PrintCategoriesJSON(w io.Writer, cats, regions map[string]int) error {
	return json.NewEncoder(w).Encode(map[string]map[string]int{
		"categories": cats,
		"regions":    regions,
	})
}

// PrintSuggestions renders typeahead matches for the token being typed.
func PrintSuggestions(w io.Writer, token string, suggestions []string) {
	if len(suggestions) == 0 {
		fmt.Fprintf(w, "%s\n", dimStyle.Render(fmt.Sprintf("No suggestions for %q.", token)))
		return
	}
	for _, s := range suggestions {
		fmt.Fprintf(w, "  %s\n", highlight(s, token))
	}
}

// PrintSuggestionsJSON renders suggestions as JSON.
func PrintSuggestionsJSON(w io.Writer, token string, suggestions []string) error {
	if suggestions == nil {
		suggestions = []string{}
	}
	return json.NewEncoder(w).Encode(map[string]any{
		"token":       token,
		"suggestions": suggestions,
	})
}

// PrintVocabulary renders a merged vocabulary list.
func PrintVocabulary(w io.Writer, kind string, words []string) {
	fmt.Fprintf(w, "\n%s — %s\n\n",
		headerStyle.Render(titleCaser.String(kind)),
		cyanStyle.Render(fmt.Sprintf("%d words", len(words))),
	)
	for _, word := range words {
		fmt.Fprintf(w, "  %s\n", word)
	}
	fmt.Fprintln(w)
}

// PrintVocabularyJSON renders a vocabulary list as JSON.
func PrintVocabularyJSON(w io.Writer, kind string, words []string) error {
	if words == nil {
		words = []string{}
	}
	return json.NewEncoder(w).Encode(map[string]any{
		"kind":  kind,
		"words": words,
	})
}

// PrintError prints a styled error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

// PrintWarning prints a styled warning message.
func PrintWarning(w io.Writer, msg string) {
	fmt.Fprintln(w, warningStyle.Render(msg))
}

// PrintNotice prints a dim informational line.
func PrintNotice(w io.Writer, msg string) {
	fmt.Fprintln(w, dimStyle.Render(msg))
}

// CategoryLabel title-cases a category for display.
func CategoryLabel(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return "Uncategorized"
	}
	return titleCaser.String(category)
}

// PotencyLabel formats a product's labelled potency according to its mode.
func PotencyLabel(p catalog.Product) string {
	var parts []string
	switch p.EffectivePotencyMode() {
	case catalog.PotencyDosage:
		if p.THCMg != nil {
			parts = append(parts, "THC "+formatNumber(*p.THCMg)+"mg")
		}
		if p.CBDMg != nil {
			parts = append(parts, "CBD "+formatNumber(*p.CBDMg)+"mg")
		}
	default:
		if p.THCPercent != nil {
			parts = append(parts, "THC "+formatNumber(*p.THCPercent)+"%")
		}
		if p.CBDPercent != nil {
			parts = append(parts, "CBD "+formatNumber(*p.CBDPercent)+"%")
		}
	}
	return strings.Join(parts, " · ")
}

// RegionTags returns compact region tags, abbreviating known region names.
func RegionTags(p catalog.Product) []string {
	tags := p.RegionTags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if abbr, ok := region.Abbreviation(t); ok {
			out = append(out, abbr)
			continue
		}
		out = append(out, strings.TrimSpace(t))
	}
	return out
}

// RatingLabel renders an average rating as stars plus the number.
func RatingLabel(e stats.Estimate) string {
	if !e.Known {
		return stats.Unknown
	}
	return Stars(int(e.Value+0.5)) + " " + e.String()
}

// Stars renders a 1..5 rating as filled and empty stars.
func Stars(n int) string {
	n = min(max(n, 0), 5)
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// ProductTitle returns the display name of a product, falling back to its id.
func ProductTitle(p catalog.Product) string {
	if name := filter.CleanText(p.Name); name != "" {
		return name
	}
	if p.ID != "" {
		return "Product " + p.ID
	}
	return "Unnamed product"
}

func printProduct(w io.Writer, p catalog.Product) {
	tag := ""
	if s := strings.TrimSpace(p.StrainType); s != "" {
		tag = strainTag.Render(strings.ToUpper(s)) + " "
	}
	fmt.Fprintf(w, "  %s%s\n", tag, titleStyle.Render(ProductTitle(p)))

	var parts []string
	if brand := filter.CleanText(p.Brand); brand != "" {
		parts = append(parts, brand)
	}
	parts = append(parts, CategoryLabel(p.Category))
	if potency := PotencyLabel(p); potency != "" {
		parts = append(parts, potencyStyle.Render(potency))
	}
	fmt.Fprintf(w, "    %s\n", strings.Join(parts, " | "))

	if len(p.TopFeels) > 0 || len(p.TopActivities) > 0 {
		var vibe []string
		if len(p.TopFeels) > 0 {
			vibe = append(vibe, feelStyle.Render(strings.Join(p.TopFeels, ", ")))
		}
		if len(p.TopActivities) > 0 {
			vibe = append(vibe, strings.Join(p.TopActivities, ", "))
		}
		fmt.Fprintf(w, "    %s\n", strings.Join(vibe, " | "))
	}

	var meta []string
	if tags := RegionTags(p); len(tags) > 0 {
		meta = append(meta, "Available in "+strings.Join(tags, ", "))
	}
	if p.ID != "" {
		meta = append(meta, "id "+p.ID)
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(strings.Join(meta, " | ")))
	}
}

func printReview(w io.Writer, r catalog.Review) {
	fmt.Fprintf(w, "  %s  %s\n", feelStyle.Render(Stars(r.Rating)), titleStyle.Render(reviewAuthor(r)))

	var parts []string
	if len(r.Feels) > 0 {
		parts = append(parts, "Felt "+strings.Join(r.Feels, ", "))
	}
	if r.Activity != "" {
		parts = append(parts, "while "+r.Activity)
	}
	if r.ReportedTHC != nil {
		parts = append(parts, potencyStyle.Render("THC "+formatNumber(*r.ReportedTHC)+"%"))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(parts, " | "))
	}
	if body := filter.CleanText(r.Body); body != "" {
		fmt.Fprintf(w, "    %s\n", wordWrap(body, 72, "    "))
	}

	var meta []string
	if !r.CreatedAt.IsZero() {
		meta = append(meta, r.CreatedAt.Local().Format("Jan 2, 2006"))
	}
	if r.ID != "" {
		meta = append(meta, "id "+r.ID)
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, "    %s\n", dimStyle.Render(strings.Join(meta, " | ")))
	}
}

func reviewAuthor(r catalog.Review) string {
	if r.UserID == "" {
		return "anonymous"
	}
	return r.UserID
}

// ToProductJSON converts a product to its JSON output shape.
func ToProductJSON(p catalog.Product) ProductJSON {
	regions := make([]string, 0, len(p.RegionTags()))
	for _, t := range p.RegionTags() {
		regions = append(regions, region.Normalize(t))
	}
	return ProductJSON{
		ID:            p.ID,
		Name:          filter.CleanText(p.Name),
		Brand:         filter.CleanText(p.Brand),
		Category:      strings.TrimSpace(p.Category),
		StrainType:    strings.TrimSpace(p.StrainType),
		Regions:       regions,
		TopFeels:      nonNil(p.TopFeels),
		TopActivities: nonNil(p.TopActivities),
		PotencyMode:   p.EffectivePotencyMode().String(),
		THCPercent:    p.THCPercent,
		CBDPercent:    p.CBDPercent,
		THCMg:         p.THCMg,
		CBDMg:         p.CBDMg,
		AvgTHC:        p.AvgTHC,
	}
}

// ToReviewJSON converts a review to its JSON output shape.
func ToReviewJSON(r catalog.Review) ReviewJSON {
	out := ReviewJSON{
		ID:          r.ID,
		ProductID:   r.ProductID,
		UserID:      r.UserID,
		Rating:      r.Rating,
		Feels:       nonNil(r.Feels),
		Activity:    r.Activity,
		ReportedTHC: r.ReportedTHC,
		Body:        r.Body,
	}
	if !r.CreatedAt.IsZero() {
		out.CreatedAt = r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if !r.UpdatedAt.IsZero() {
		out.UpdatedAt = r.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

// ToEstimateJSON converts an estimate to its JSON shape.
func ToEstimateJSON(e stats.Estimate) EstimateJSON {
	if !e.Known {
		return EstimateJSON{}
	}
	v := e.Value
	out := EstimateJSON{Value: &v}
	if e.Source != stats.SourceNone {
		out.Source = e.Source.String()
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func highlight(word, token string) string {
	token = strings.TrimSpace(token)
	idx := strings.Index(strings.ToLower(word), strings.ToLower(token))
	if token == "" || idx < 0 {
		return word
	}
	end := idx + len(token)
	if end > len(word) {
		return word
	}
	return word[:idx] + titleStyle.Render(word[idx:end]) + word[end:]
}

func wordWrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n"+indent)
}
