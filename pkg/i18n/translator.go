// Package i18n localizes notification templates. Templates use named
// placeholders of the form %(name)s.
package i18n

import (
	"fmt"
	"regexp"
	"sync"

	"golang.org/x/text/language"
)

// Translator returns template localized and with its placeholders substituted.
type Translator interface {
	Translate(template string, args map[string]interface{}) string
}

var placeholder = regexp.MustCompile(`%\((\w+)\)s`)

// Interpolate replaces %(name)s placeholders with args. Placeholders without a
// matching arg are left untouched.
func Interpolate(template string, args map[string]interface{}) string {
	if len(args) == 0 {
		return template
	}
	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := args[name]
		if !ok {
			return m
		}
		return fmt.Sprint(v)
	})
}

// Passthrough substitutes placeholders without translating.
type Passthrough struct{}

// Translate implements Translator.
func (Passthrough) Translate(template string, args map[string]interface{}) string {
	return Interpolate(template, args)
}

// Catalog holds per-language translations keyed by the source template.
// A Catalog is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	messages map[language.Tag]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
	current  language.Tag
}

// NewCatalog creates a catalog that falls back to the source template
// (written in fallback) when no translation exists.
func NewCatalog(fallback language.Tag) *Catalog {
	c := &Catalog{
		messages: make(map[language.Tag]map[string]string),
		current:  fallback,
	}
	c.addTag(fallback)
	return c
}

// Add registers a translation of template for tag.
func (c *Catalog) Add(tag language.Tag, template, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.addTag(tag)
	if c.messages[tag] == nil {
		c.messages[tag] = make(map[string]string)
	}
	c.messages[tag][template] = translation
}

func (c *Catalog) addTag(tag language.Tag) {
	for _, t := range c.tags {
		if t == tag {
			return
		}
	}
	c.tags = append(c.tags, tag)
	c.matcher = language.NewMatcher(c.tags)
}

// SetLanguage selects the closest supported language to lang, which may be a
// BCP 47 tag or an Accept-Language style list.
func (c *Catalog) SetLanguage(lang string) language.Tag {
	c.mu.Lock()
	defer c.mu.Unlock()

	desired, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(desired) == 0 {
		return c.current
	}
	_, index, _ := c.matcher.Match(desired...)
	c.current = c.tags[index]
	return c.current
}

// Language returns the currently selected language.
func (c *Catalog) Language() language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Translate implements Translator.
func (c *Catalog) Translate(template string, args map[string]interface{}) string {
	c.mu.RLock()
	msg, ok := c.messages[c.current][template]
	c.mu.RUnlock()

	if !ok {
		msg = template
	}
	return Interpolate(msg, args)
}
