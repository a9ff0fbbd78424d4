package server

import (
	"bytes"
	"embed"
	"html/template"
	"math"
	"strconv"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("").
		Funcs(template.FuncMap{
			"money":   formatMoney,
			"percent": formatPercent,
			"sign":    signClass,
			"date":    formatDate,
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// groupThousands turns "1234567" into "1,234,567".
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var out strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		out.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if out.Len() > 0 {
			out.WriteByte(',')
		}
		out.WriteString(digits[i : i+3])
	}
	return out.String()
}

// formatMoney renders -3710.85 as "-$3,710.85", the way the site does.
func formatMoney(value float64) string {
	sign := ""
	if value < 0 {
		sign = "-"
	}
	fixed := strconv.FormatFloat(math.Abs(value), 'f', 2, 64)
	whole, fraction, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + fraction
}

// formatPercent renders the fraction -0.0037 as "-0.37%".
func formatPercent(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', 2, 64) + "%"
}

func signClass(value float64) string {
	switch {
	case value > 0:
		return "up"
	case value < 0:
		return "down"
	}
	return ""
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
