package sheets

import (
	"math"
	"strconv"
	"strings"
)

// Row is one raw record from the sheet feed. Column names are
// inconsistent across sheet revisions (english, localized, mixed
// case), so every field lookup goes through an ordered alias list and
// keys are matched case-insensitively. First alias present wins.
type Row map[string]any

// Alias tables, in priority order.
var (
	idAliases        = []string{"id", "sku", "codigo"}
	slugAliases      = []string{"slug"}
	nameAliases      = []string{"name", "nombre", "titulo", "title"}
	priceAliases     = []string{"price", "precio"}
	currencyAliases  = []string{"currency", "moneda"}
	deptAliases      = []string{"departament", "department", "departamento", "rubro"}
	categoryAliases  = []string{"category", "categoria"}
	descAliases      = []string{"description", "descripcion"}
	shortDescAliases = []string{"short_description", "descripcion_corta"}
	imagesAliases    = []string{"images", "imagenes", "image", "imagen"}
	tagsAliases      = []string{"tags", "tags_csv", "etiquetas"}
	typeAliases      = []string{"product_type", "tipo"}
	includesAliases  = []string{"includes", "incluye"}
	isNewAliases     = []string{"is_new", "nuevo"}
	isSaleAliases    = []string{"is_sale", "oferta", "sale"}
	activeAliases    = []string{"active", "activo"}
)

func (r Row) lookup(aliases []string) (any, bool) {
	for _, alias := range aliases {
		for k, v := range r {
			if strings.EqualFold(strings.TrimSpace(k), alias) {
				return v, true
			}
		}
	}
	return nil, false
}

func (r Row) stringField(aliases []string) string {
	v, ok := r.lookup(aliases)
	if !ok {
		return ""
	}
	return asString(v)
}

func (r Row) boolField(aliases []string, def bool) bool {
	v, ok := r.lookup(aliases)
	if !ok {
		return def
	}
	return truthy(v)
}

// listField accepts either a native JSON array or a single delimited
// string; entries are trimmed and empties dropped.
func (r Row) listField(aliases []string, seps string) []string {
	v, ok := r.lookup(aliases)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(asString(e)); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		raw := asString(v)
		if raw == "" {
			return nil
		}
		parts := strings.FieldsFunc(raw, func(c rune) bool {
			return strings.ContainsRune(seps, c)
		})
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		// Sheet ids often arrive as numbers; render integers without
		// the decimal point.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// truthy parses the loose boolean tokens the sheet uses.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "si", "sí", "yes", "y":
			return true
		}
		return false
	default:
		return false
	}
}

// parsePrice coerces a numeric cell or a currency-formatted string
// ("$1.200,00", "1,200.50") into a non-negative amount. When both "."
// and "," appear, the last one is the decimal separator; a lone
// separator followed by exactly three digits is a thousands separator.
// Anything unparsable yields 0.
func parsePrice(v any) float64 {
	switch t := v.(type) {
	case float64:
		return clampPrice(t)
	case string:
		return clampPrice(parsePriceString(t))
	default:
		return 0
	}
}

func parsePriceString(s string) float64 {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' || c == '.' || c == ',' || c == '-' {
			b.WriteRune(c)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	lastDot := strings.LastIndexByte(cleaned, '.')
	lastComma := strings.LastIndexByte(cleaned, ',')

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		cleaned = normalizeSingleSep(cleaned, ',')
	case lastDot >= 0:
		cleaned = normalizeSingleSep(cleaned, '.')
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return f
}

// normalizeSingleSep decides whether the only separator present is a
// thousands or a decimal separator and rewrites to plain "123.45" form.
func normalizeSingleSep(s string, sep byte) string {
	if strings.Count(s, string(sep)) > 1 {
		// "1.234.567" style: all thousands separators.
		return strings.ReplaceAll(s, string(sep), "")
	}
	i := strings.IndexByte(s, sep)
	if len(s)-i-1 == 3 {
		return strings.ReplaceAll(s, string(sep), "")
	}
	if sep == ',' {
		return strings.Replace(s, ",", ".", 1)
	}
	return s
}

func clampPrice(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > maxPrice {
		return 0
	}
	return f
}

// maxPrice guards against absurd parses leaking into totals.
const maxPrice = 1e12
