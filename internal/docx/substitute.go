package docx

import (
	"regexp"
	"strings"
)

// Paragraph surgery. WordprocessingML stores paragraph text as a sequence
// of formatting runs, and a single {name} token can be split across run
// boundaries. Substitution therefore works on the paragraph's concatenated
// text: replace on the whole string, then clear every run's text and put
// the final text into the first run. The first run's formatting wins for
// the whole paragraph when its text changed; interior formatting changes
// mid-placeholder are collapsed. This is a documented limitation.
var (
	paragraphPattern = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	runPattern       = regexp.MustCompile(`(?s)<w:r[ >].*?</w:r>`)
	textPattern      = regexp.MustCompile(`(?s)<w:t(?: [^>]*)?>.*?</w:t>|<w:t(?: [^>]*)?/>`)
	textOpenPattern  = regexp.MustCompile(`(?s)^<w:t(?: [^>]*)?>`)
)

// paragraphs returns every <w:p> element of an XML part. Paragraphs do
// not nest in WordprocessingML, so a non-greedy scan is exact; paragraphs
// inside table cells (at any nesting depth) and headers/footers are plain
// <w:p> elements and are picked up the same way.
func paragraphs(part string) []string {
	return paragraphPattern.FindAllString(part, -1)
}

// paragraphText concatenates the visible text of a paragraph across all
// of its runs, with XML entities decoded.
func paragraphText(para string) string {
	var b strings.Builder
	for _, t := range textPattern.FindAllString(para, -1) {
		b.WriteString(unescapeXML(textContent(t)))
	}
	return b.String()
}

// substitutePart applies the replacement map to every paragraph of one
// XML part and returns the rewritten part. Paragraphs whose text does not
// change are left byte-identical.
func substitutePart(part string, replacements map[string]string) string {
	if len(replacements) == 0 {
		return part
	}
	return paragraphPattern.ReplaceAllStringFunc(part, func(para string) string {
		return substituteParagraph(para, replacements)
	})
}

// substituteParagraph rewrites a single paragraph, tolerant of whitespace
// inside the braces. All tokens are resolved in one pass over the
// concatenated text, so brace text inside a replacement value is never
// re-matched as a token. Every non-reserved discovered name has a map
// entry, which makes the exact lookup on the trimmed name sufficient;
// tokens without an entry (reserved names included) stay literal.
func substituteParagraph(para string, replacements map[string]string) string {
	full := paragraphText(para)
	if !placeholderPattern.MatchString(full) {
		return para
	}

	next := placeholderPattern.ReplaceAllStringFunc(full, func(token string) string {
		name := strings.TrimSpace(token[1 : len(token)-1])
		if value, ok := replacements[name]; ok {
			return value
		}
		return token
	})
	if next == full {
		return para
	}

	return rewriteRuns(para, next)
}

// rewriteRuns clears the text of every run in the paragraph and writes
// the final text into the first run, preserving that run's properties.
func rewriteRuns(para, text string) string {
	first := true
	return runPattern.ReplaceAllStringFunc(para, func(run string) string {
		if first {
			first = false
			return setRunText(run, text)
		}
		return clearRunText(run)
	})
}

// setRunText replaces the first text element of a run with the given
// text and clears any further text elements. A run that carried no text
// element gets one inserted before its closing tag.
func setRunText(run, text string) string {
	element := `<w:t xml:space="preserve">` + escapeXML(text) + `</w:t>`

	done := false
	out := textPattern.ReplaceAllStringFunc(run, func(string) string {
		if done {
			return `<w:t></w:t>`
		}
		done = true
		return element
	})
	if !done {
		out = strings.Replace(out, "</w:r>", element+"</w:r>", 1)
	}
	return out
}

// clearRunText empties every text element of a run, keeping the run and
// its formatting properties in place.
func clearRunText(run string) string {
	return textPattern.ReplaceAllString(run, `<w:t></w:t>`)
}

// textContent strips the <w:t> wrapper off a matched text element.
func textContent(t string) string {
	if strings.HasSuffix(t, "/>") {
		return ""
	}
	open := textOpenPattern.FindString(t)
	if open == "" {
		return ""
	}
	return strings.TrimSuffix(t[len(open):], "</w:t>")
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&#39;", "'",
	"&amp;", "&",
)

func escapeXML(s string) string   { return xmlEscaper.Replace(s) }
func unescapeXML(s string) string { return xmlUnescaper.Replace(s) }
