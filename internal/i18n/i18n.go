// Package i18n resolves the request locale and renders user-facing messages.
// The locale travels in the request context; nothing here holds a mutable current language.
package i18n

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.Spanish,
}

var matcher = language.NewMatcher(supported)

type ctxKey struct{}

// Supported lists the base language codes the catalog has messages for.
func Supported() []string {
	out := make([]string, 0, len(supported))
	for _, t := range supported {
		b, _ := t.Base()
		out = append(out, b.String())
	}
	return out
}

// Match maps any tag-ish string ("es-MX", "en_US", "fr") to a supported base language.
// ok is false when nothing better than the fallback matched.
func Match(raw string) (lang string, ok bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if raw == "" {
		return baseOf(supported[0]), false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return baseOf(supported[0]), false
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return baseOf(supported[0]), false
	}
	return baseOf(supported[idx]), true
}

// FromAcceptLanguage picks the best supported language for an Accept-Language header.
func FromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return baseOf(supported[0])
	}
	_, idx, _ := matcher.Match(tags...)
	return baseOf(supported[idx])
}

// WithLocale stores the resolved language in ctx.
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the language stored by WithLocale, or the fallback.
func FromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(ctxKey{}).(string); ok && lang != "" {
		return lang
	}
	return baseOf(supported[0])
}

// Middleware seeds the context from Accept-Language. Authenticated routes override it
// with the stored user locale.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := FromAcceptLanguage(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), lang)))
	})
}

func baseOf(t language.Tag) string {
	b, _ := t.Base()
	return b.String()
}
