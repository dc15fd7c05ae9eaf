package processor

import (
	"strings"

	"github.com/akashuv-21/parase/internal/models"
	"golang.org/x/text/unicode/norm"
)

type ProcessorConfig struct {
	IgnoreClasses    []string
	StringsToRemove  []string
	NormalizeUnicode bool
}

// Processor turns a parsed document into the plain text compared by the
// layout benchmark.
type Processor struct {
	config ProcessorConfig
	ignore map[string]bool
}

// DefaultIgnoreClasses are the element categories that carry no reading
// text of their own.
func DefaultIgnoreClasses() []string {
	return []string{models.CategoryFigure, models.CategoryTable, models.CategoryChart}
}

// NewWithConfig builds a processor. A nil StringsToRemove defaults to
// newlines; pass an empty, non-nil slice to keep the text verbatim.
func NewWithConfig(config ProcessorConfig) Processor {
	if config.StringsToRemove == nil {
		config.StringsToRemove = []string{"\n"}
	}

	ignore := make(map[string]bool, len(config.IgnoreClasses))
	for _, class := range config.IgnoreClasses {
		ignore[strings.ToLower(strings.TrimSpace(class))] = true
	}

	return Processor{
		config: config,
		ignore: ignore,
	}
}

func New() Processor {
	return NewWithConfig(ProcessorConfig{IgnoreClasses: DefaultIgnoreClasses()})
}

// Process concatenates the text of every non-ignored element, separated by
// single spaces, and strips the configured substrings.
func (p *Processor) Process(doc models.Document) string {
	texts := make([]string, 0, len(doc.Elements))
	for _, elem := range doc.Elements {
		if p.ignore[strings.ToLower(elem.Category)] {
			continue
		}
		texts = append(texts, elem.Content.Text)
	}

	return p.cleanText(strings.Join(texts, " "))
}

func (p *Processor) cleanText(text string) string {
	for _, s := range p.config.StringsToRemove {
		if s == "" {
			continue
		}
		text = strings.ReplaceAll(text, s, "")
	}

	if p.config.NormalizeUnicode {
		text = norm.NFC.String(text)
	}

	return text
}
